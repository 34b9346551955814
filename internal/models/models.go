// package models defines the data model for the subscriptions client
package models

import (
	"time"

	"golang.org/x/oauth2"
)

// Credential is the in-memory access credential returned by an exchange or refresh.
//
// Only RefreshToken is ever persisted, and only through a credential store.
type Credential struct {
	AccessToken  string
	ExpiresIn    int // seconds, 0 when the provider did not say
	TokenType    string
	Scope        string
	RefreshToken string // empty when absent
	ObtainedAt   time.Time
}

// OAuth2Token converts c to an [oauth2.Token] so expiry and header handling follow the oauth2 package.
func (c *Credential) OAuth2Token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  c.AccessToken,
		TokenType:    c.TokenType,
		RefreshToken: c.RefreshToken,
	}
	if c.ExpiresIn > 0 {
		tok.Expiry = c.ObtainedAt.Add(time.Duration(c.ExpiresIn) * time.Second)
	}
	return tok
}

// Live reports whether c holds an access token that has not expired.
func (c *Credential) Live() bool {
	return c != nil && c.OAuth2Token().Valid()
}

// Thumbnail is one sized image of a channel.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Statistics are channel counters. Numeric strings from the provider are parsed with zero as the fallback.
type Statistics struct {
	ViewCount             int  `json:"viewCount"`
	SubscriberCount       int  `json:"subscriberCount"`
	HiddenSubscriberCount bool `json:"hiddenSubscriberCount"`
	VideoCount            int  `json:"videoCount"`
}

// SubscriberSnippet describes the subscriber's own channel on a subscription resource.
type SubscriberSnippet struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	ChannelID   string               `json:"channelId"`
	Thumbnails  map[string]Thumbnail `json:"thumbnails,omitempty"`
}

// ContentDetails summarizes uploads for a subscription.
type ContentDetails struct {
	TotalItemCount int    `json:"totalItemCount"`
	NewItemCount   int    `json:"newItemCount"`
	ActivityType   string `json:"activityType,omitempty"`
}

// SubscriptionItem is a subscription entry or a channel resource.
type SubscriptionItem struct {
	ID             string               `json:"id"`
	Title          string               `json:"title"`
	Description    string               `json:"description"`
	ChannelID      string               `json:"channelId,omitempty"` // empty when the provider sent none
	PublishedAt    string               `json:"publishedAt,omitempty"`
	Thumbnails     map[string]Thumbnail `json:"thumbnails,omitempty"`
	Statistics     *Statistics          `json:"statistics,omitempty"`
	ContentDetails *ContentDetails      `json:"contentDetails,omitempty"`
	Subscriber     *SubscriberSnippet   `json:"subscriber,omitempty"` // only with part=subscriberSnippet
}

// Thumbnail returns the thumbnail stored under key. Missing keys report false.
func (s SubscriptionItem) Thumbnail(key string) (Thumbnail, bool) {
	t, ok := s.Thumbnails[key]
	return t, ok
}

// TargetID is the channel id to open for details: ChannelID when known, otherwise the item id.
func (s SubscriptionItem) TargetID() string {
	if s.ChannelID != "" {
		return s.ChannelID
	}
	return s.ID
}

// PickThumbnail returns the first thumbnail of item present under one of keys, in order.
func PickThumbnail(item SubscriptionItem, keys ...string) (Thumbnail, bool) {
	for _, k := range keys {
		if t, ok := item.Thumbnail(k); ok {
			return t, true
		}
	}
	return Thumbnail{}, false
}

// SubscriptionPage is one page of subscriptions in provider order.
type SubscriptionPage struct {
	Items          []SubscriptionItem `json:"items"`
	NextPageCursor string             `json:"nextPageCursor,omitempty"` // empty on the last page
	TotalResults   int                `json:"totalResults"`
	ResultsPerPage int                `json:"resultsPerPage"`
}

// HasMore reports whether another page can be requested.
func (p *SubscriptionPage) HasMore() bool {
	return p.NextPageCursor != ""
}

// Append adds next's items after p's and adopts next's cursor.
func (p *SubscriptionPage) Append(next *SubscriptionPage) {
	if next == nil {
		return
	}
	p.Items = append(p.Items, next.Items...)
	p.NextPageCursor = next.NextPageCursor
	if next.TotalResults > 0 {
		p.TotalResults = next.TotalResults
	}
	if p.ResultsPerPage == 0 {
		p.ResultsPerPage = next.ResultsPerPage
	}
}

// Account is the signed-in user's own channel, projected to what the client displays.
type Account struct {
	Name       string `json:"name"`
	PictureURL string `json:"pictureUrl"`
}
