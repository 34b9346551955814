package services

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/desertthunder/mysubs/internal/models"
	"github.com/desertthunder/mysubs/internal/shared"
)

// listResponse is the camelCase envelope shared by the subscriptions and channels resources.
type listResponse struct {
	Kind          string     `json:"kind"`
	Etag          string     `json:"etag"`
	NextPageToken string     `json:"nextPageToken"`
	PrevPageToken string     `json:"prevPageToken"`
	PageInfo      pageInfo   `json:"pageInfo"`
	Items         []resource `json:"items"`
}

type pageInfo struct {
	TotalResults   int `json:"totalResults"`
	ResultsPerPage int `json:"resultsPerPage"`
}

type resource struct {
	Kind              string             `json:"kind"`
	Etag              string             `json:"etag"`
	ID                string             `json:"id"`
	Snippet           snippet            `json:"snippet"`
	ContentDetails    *contentDetails    `json:"contentDetails"`
	Statistics        *statistics        `json:"statistics"`
	SubscriberSnippet *subscriberSnippet `json:"subscriberSnippet"`
}

type snippet struct {
	PublishedAt  string               `json:"publishedAt"`
	ChannelTitle string               `json:"channelTitle"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	ResourceID   *resourceID          `json:"resourceId"`
	ChannelID    string               `json:"channelId"`
	Thumbnails   map[string]thumbnail `json:"thumbnails"`
}

type resourceID struct {
	Kind      string `json:"kind"`
	ChannelID string `json:"channelId"`
}

type subscriberSnippet struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	ChannelID   string               `json:"channelId"`
	Thumbnails  map[string]thumbnail `json:"thumbnails"`
}

type thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type contentDetails struct {
	TotalItemCount int    `json:"totalItemCount"`
	NewItemCount   int    `json:"newItemCount"`
	ActivityType   string `json:"activityType"`
}

type statistics struct {
	ViewCount             count `json:"viewCount"`
	SubscriberCount       count `json:"subscriberCount"`
	HiddenSubscriberCount bool  `json:"hiddenSubscriberCount"`
	VideoCount            count `json:"videoCount"`
}

// count is a counter the API sends as a numeric string. Anything unparsable becomes 0.
type count int

func (c *count) UnmarshalJSON(b []byte) error {
	n, err := strconv.ParseInt(string(bytes.Trim(b, `"`)), 10, 64)
	if err != nil {
		*c = 0
		return nil
	}
	*c = count(n)
	return nil
}

// decodeSubscriptionPage maps a subscriptions or channels list body to a [models.SubscriptionPage].
func decodeSubscriptionPage(body []byte) (*models.SubscriptionPage, error) {
	var lr listResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return nil, shared.Decode(err)
	}

	page := &models.SubscriptionPage{
		Items:          make([]models.SubscriptionItem, 0, len(lr.Items)),
		NextPageCursor: lr.NextPageToken,
		TotalResults:   lr.PageInfo.TotalResults,
		ResultsPerPage: lr.PageInfo.ResultsPerPage,
	}
	for _, r := range lr.Items {
		page.Items = append(page.Items, r.item())
	}
	return page, nil
}

func (r resource) item() models.SubscriptionItem {
	item := models.SubscriptionItem{
		ID:          r.ID,
		Title:       r.Snippet.Title,
		Description: r.Snippet.Description,
		PublishedAt: r.Snippet.PublishedAt,
		ChannelID:   r.Snippet.ChannelID,
	}
	if r.Snippet.ResourceID != nil && r.Snippet.ResourceID.ChannelID != "" {
		item.ChannelID = r.Snippet.ResourceID.ChannelID
	}

	item.Thumbnails = thumbnails(r.Snippet.Thumbnails)

	if s := r.Statistics; s != nil {
		item.Statistics = &models.Statistics{
			ViewCount:             int(s.ViewCount),
			SubscriberCount:       int(s.SubscriberCount),
			HiddenSubscriberCount: s.HiddenSubscriberCount,
			VideoCount:            int(s.VideoCount),
		}
	}

	if cd := r.ContentDetails; cd != nil {
		item.ContentDetails = &models.ContentDetails{
			TotalItemCount: cd.TotalItemCount,
			NewItemCount:   cd.NewItemCount,
			ActivityType:   cd.ActivityType,
		}
	}

	if ss := r.SubscriberSnippet; ss != nil {
		item.Subscriber = &models.SubscriberSnippet{
			Title:       ss.Title,
			Description: ss.Description,
			ChannelID:   ss.ChannelID,
			Thumbnails:  thumbnails(ss.Thumbnails),
		}
	}
	return item
}

func thumbnails(in map[string]thumbnail) map[string]models.Thumbnail {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]models.Thumbnail, len(in))
	for k, t := range in {
		out[k] = models.Thumbnail{URL: t.URL, Width: t.Width, Height: t.Height}
	}
	return out
}
