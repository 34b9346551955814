// YouTube Data API v3 implementation of [SubscriptionsClient]
//
// Resource shapes are documented at https://developers.google.com/youtube/v3/docs
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"google.golang.org/api/googleapi"

	"github.com/desertthunder/mysubs/internal/models"
	"github.com/desertthunder/mysubs/internal/shared"
)

const (
	defaultYouTubeBaseURL = "https://www.googleapis.com/youtube/v3"
	defaultPageSize       = 15
	maxResponseBody       = 8 << 20
)

// YouTubeService implements [SubscriptionsClient] with lazy authentication.
//
// A request made without a live credential refreshes once first. A request rejected with 401 before
// any refresh refreshes once and is retried once. Nothing else is retried.
type YouTubeService struct {
	tokens     TokenProvider
	baseURL    string
	pageSize   int
	httpClient *http.Client
	logger     *log.Logger
}

// Option configures a [YouTubeService].
type Option func(*YouTubeService)

func WithBaseURL(u string) Option {
	return func(y *YouTubeService) {
		if u != "" {
			y.baseURL = strings.TrimSuffix(u, "/")
		}
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(y *YouTubeService) { y.httpClient = c }
}

func WithLogger(l *log.Logger) Option {
	return func(y *YouTubeService) { y.logger = l }
}

// WithPageSize sets maxResults for subscription pages. Values outside 1..50 keep the default of 15.
func WithPageSize(n int) Option {
	return func(y *YouTubeService) {
		if n > 0 && n <= 50 {
			y.pageSize = n
		}
	}
}

// NewYouTubeService creates a new YouTube client that authenticates through tokens.
func NewYouTubeService(tokens TokenProvider, opts ...Option) *YouTubeService {
	y := &YouTubeService{
		tokens:     tokens,
		baseURL:    defaultYouTubeBaseURL,
		pageSize:   defaultPageSize,
		httpClient: http.DefaultClient,
		logger:     shared.NewLogger(nil),
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube"
}

// ListSubscriptions fetches one page of the signed-in user's subscriptions.
func (y *YouTubeService) ListSubscriptions(ctx context.Context, pageCursor string) (*models.SubscriptionPage, error) {
	q := url.Values{}
	q.Set("mine", "true")
	q.Set("part", "snippet")
	q.Set("order", "alphabetical")
	q.Set("maxResults", strconv.Itoa(y.pageSize))
	if pageCursor != "" {
		q.Set("pageToken", pageCursor)
	}

	body, err := y.get(ctx, "/subscriptions", q, false)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return decodeSubscriptionPage(body)
}

// Account fetches the signed-in user's channel and projects its title and default thumbnail.
//
// A response without items fails with [shared.ErrChannelNotFound], the same as [YouTubeService.Channel].
func (y *YouTubeService) Account(ctx context.Context) (*models.Account, error) {
	q := url.Values{}
	q.Set("part", "snippet,statistics")
	q.Set("mine", "true")

	item, err := y.channel(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	account := &models.Account{Name: item.Title}
	if t, ok := item.Thumbnail("default"); ok {
		account.PictureURL = t.URL
	}
	return account, nil
}

// Channel fetches a channel by id with snippet and statistics.
func (y *YouTubeService) Channel(ctx context.Context, channelID string) (*models.SubscriptionItem, error) {
	if channelID == "" {
		return nil, fmt.Errorf("%w: channel id", shared.ErrMissingArgument)
	}

	q := url.Values{}
	q.Set("part", "snippet,statistics")
	q.Set("id", channelID)

	item, err := y.channel(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("get channel %s: %w", channelID, err)
	}
	return item, nil
}

func (y *YouTubeService) channel(ctx context.Context, q url.Values) (*models.SubscriptionItem, error) {
	body, err := y.get(ctx, "/channels", q, true)
	if err != nil {
		return nil, err
	}

	page, err := decodeSubscriptionPage(body)
	if err != nil {
		return nil, err
	}
	if len(page.Items) == 0 {
		return nil, shared.ErrChannelNotFound
	}
	return &page.Items[0], nil
}

// get performs an authenticated GET with at most one credential refresh.
//
// Without a live credential it makes one refresh and one resource call. With a live credential that
// the API rejects with 401 it makes at most one refresh and two resource calls.
func (y *YouTubeService) get(ctx context.Context, endpoint string, q url.Values, jsonContent bool) ([]byte, error) {
	cred := y.tokens.Current()
	refreshed := false
	if cred == nil {
		y.logger.Debug("lazy refresh before request", "endpoint", endpoint)
		var err error
		if cred, err = y.refresh(ctx); err != nil {
			return nil, err
		}
		refreshed = true
	}

	body, err := y.send(ctx, cred, endpoint, q, jsonContent)
	if err == nil || refreshed || shared.StatusCode(err) != http.StatusUnauthorized {
		return body, err
	}

	y.logger.Info("access token rejected, refreshing once", "endpoint", endpoint)
	if cred, err = y.refresh(ctx); err != nil {
		return nil, err
	}
	return y.send(ctx, cred, endpoint, q, jsonContent)
}

func (y *YouTubeService) refresh(ctx context.Context) (*models.Credential, error) {
	cred, err := y.tokens.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, shared.ErrNotAuthenticated
	}
	return cred, nil
}

func (y *YouTubeService) send(ctx context.Context, cred *models.Credential, endpoint string, q url.Values, jsonContent bool) ([]byte, error) {
	apiURL := y.baseURL + endpoint + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	cred.OAuth2Token().SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")
	if jsonContent {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return nil, shared.Transport(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, shared.Transport(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apiError(resp, body)
	}
	return body, nil
}

// apiError builds a [shared.ProviderError] around the [googleapi.Error] parsed from body.
func apiError(resp *http.Response, body []byte) error {
	r := *resp
	r.Body = io.NopCloser(bytes.NewReader(body))
	cause := googleapi.CheckResponse(&r)

	pe := &shared.ProviderError{Status: resp.StatusCode, Body: body, Cause: cause}

	var gerr *googleapi.Error
	if errors.As(cause, &gerr) {
		pe.Message = gerr.Message
		if len(gerr.Errors) > 0 {
			pe.Code = gerr.Errors[0].Reason
		}
	}
	return pe
}
