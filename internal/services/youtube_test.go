package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/desertthunder/mysubs/internal/auth"
	"github.com/desertthunder/mysubs/internal/credentials"
	"github.com/desertthunder/mysubs/internal/models"
	"github.com/desertthunder/mysubs/internal/shared"
	tu "github.com/desertthunder/mysubs/internal/testing"
)

// fakeGoogle serves a token endpoint at /token and the YouTube resources under /youtube/v3.
type fakeGoogle struct {
	*httptest.Server
	mu       sync.Mutex
	calls    map[string]int
	requests []*http.Request
	token    http.HandlerFunc
	api      http.HandlerFunc
}

func newFakeGoogle(t *testing.T, token, api http.HandlerFunc) *fakeGoogle {
	t.Helper()
	fg := &fakeGoogle{calls: map[string]int{}, token: token, api: api}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		fg.record(r)
		fg.token(w, r)
	})
	mux.HandleFunc("/youtube/v3/", func(w http.ResponseWriter, r *http.Request) {
		fg.record(r)
		fg.api(w, r)
	})

	fg.Server = httptest.NewServer(mux)
	t.Cleanup(fg.Close)
	return fg
}

func (fg *fakeGoogle) record(r *http.Request) {
	fg.mu.Lock()
	defer fg.mu.Unlock()
	fg.calls[r.URL.Path]++
	fg.requests = append(fg.requests, r.Clone(context.Background()))
}

func (fg *fakeGoogle) count(path string) int {
	fg.mu.Lock()
	defer fg.mu.Unlock()
	return fg.calls[path]
}

func (fg *fakeGoogle) total() int {
	fg.mu.Lock()
	defer fg.mu.Unlock()
	return len(fg.requests)
}

func (fg *fakeGoogle) lastRequest() *http.Request {
	fg.mu.Lock()
	defer fg.mu.Unlock()
	return fg.requests[len(fg.requests)-1]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func okToken(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"access_token": "fresh", "expires_in": 3600, "token_type": "Bearer"})
}

func subscriptionsBody(nextPageToken string, ids ...string) map[string]any {
	items := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		items = append(items, map[string]any{
			"kind": "youtube#subscription",
			"etag": "e-" + id,
			"id":   id,
			"snippet": map[string]any{
				"publishedAt": "2024-01-01T00:00:00Z",
				"title":       "Channel " + id,
				"description": "About " + id,
				"resourceId":  map[string]any{"kind": "youtube#channel", "channelId": "UC" + id},
				"channelId":   "UCme",
				"thumbnails": map[string]any{
					"default": map[string]any{"url": "https://img/" + id + "/default.jpg", "width": 88, "height": 88},
					"high":    map[string]any{"url": "https://img/" + id + "/high.jpg"},
				},
			},
		})
	}
	body := map[string]any{
		"kind":     "youtube#subscriptionListResponse",
		"etag":     "etag",
		"pageInfo": map[string]any{"totalResults": 3, "resultsPerPage": 2},
		"items":    items,
	}
	if nextPageToken != "" {
		body["nextPageToken"] = nextPageToken
	}
	return body
}

func channelBody(items ...map[string]any) map[string]any {
	if items == nil {
		items = []map[string]any{}
	}
	return map[string]any{
		"kind":     "youtube#channelListResponse",
		"etag":     "etag",
		"pageInfo": map[string]any{"totalResults": len(items), "resultsPerPage": 5},
		"items":    items,
	}
}

func liveCredential(token string) *models.Credential {
	return &models.Credential{AccessToken: token, ExpiresIn: 3600, TokenType: "Bearer", ObtainedAt: time.Now()}
}

func quietLogger() Option {
	return WithLogger(shared.NewLogger(&bytes.Buffer{}))
}

func newManager(fg *fakeGoogle, store credentials.Store) *auth.Manager {
	cfg := auth.Config{ClientID: "client", RedirectURI: "http://127.0.0.1/cb", TokenURL: fg.URL + "/token"}
	return auth.NewManager(cfg, store, auth.WithHTTPClient(fg.Client()), auth.WithLogger(shared.NewLogger(&bytes.Buffer{})))
}

func newService(fg *fakeGoogle, tokens TokenProvider) *YouTubeService {
	return NewYouTubeService(tokens, WithBaseURL(fg.URL+"/youtube/v3/"), WithHTTPClient(fg.Client()), quietLogger())
}

func TestYouTubeService(t *testing.T) {
	ctx := context.Background()

	t.Run("NewYouTubeService", func(t *testing.T) {
		svc := NewYouTubeService(tu.NewMockTokenProvider(nil), WithPageSize(0))
		if svc.baseURL != defaultYouTubeBaseURL {
			t.Errorf("expected baseURL %s, got %s", defaultYouTubeBaseURL, svc.baseURL)
		}
		if svc.pageSize != defaultPageSize {
			t.Errorf("expected page size %d, got %d", defaultPageSize, svc.pageSize)
		}
		if svc.Name() != "YouTube" {
			t.Errorf("unexpected name %s", svc.Name())
		}
	})

	t.Run("ListSubscriptions", func(t *testing.T) {
		fg := newFakeGoogle(t, okToken, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, subscriptionsBody("X", "A", "B"))
		})
		svc := newService(fg, tu.NewMockTokenProvider(liveCredential("live")))

		page, err := svc.ListSubscriptions(ctx, "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		r := fg.lastRequest()
		if r.URL.Path != "/youtube/v3/subscriptions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer live" {
			t.Errorf("expected bearer header, got %q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("expected json accept header, got %q", got)
		}

		q := r.URL.Query()
		want := map[string]string{"mine": "true", "part": "snippet", "order": "alphabetical", "maxResults": "15"}
		for k, v := range want {
			if q.Get(k) != v {
				t.Errorf("expected %s=%s, got %q", k, v, q.Get(k))
			}
		}
		if q.Has("pageToken") {
			t.Error("first page must not send pageToken")
		}

		if len(page.Items) != 2 || page.NextPageCursor != "X" {
			t.Fatalf("unexpected page %+v", page)
		}
		item := page.Items[0]
		if item.ChannelID != "UCA" {
			t.Errorf("expected resourceId channel, got %s", item.ChannelID)
		}
		if item.TargetID() != "UCA" {
			t.Errorf("expected target UCA, got %s", item.TargetID())
		}
		if th, ok := item.Thumbnail("default"); !ok || th.URL != "https://img/A/default.jpg" || th.Width != 88 {
			t.Errorf("unexpected default thumbnail %+v", th)
		}
		if _, ok := item.Thumbnail("maxres"); ok {
			t.Error("expected missing thumbnail key to be absent")
		}
		if page.TotalResults != 3 || page.ResultsPerPage != 2 {
			t.Errorf("unexpected page info %d/%d", page.TotalResults, page.ResultsPerPage)
		}
	})

	t.Run("pagination preserves order", func(t *testing.T) {
		fg := newFakeGoogle(t, okToken, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("pageToken") == "X" {
				writeJSON(w, http.StatusOK, subscriptionsBody("", "C"))
				return
			}
			writeJSON(w, http.StatusOK, subscriptionsBody("X", "A", "B"))
		})
		svc := newService(fg, tu.NewMockTokenProvider(liveCredential("live")))

		page, err := svc.ListSubscriptions(ctx, "")
		if err != nil {
			t.Fatalf("first page: %v", err)
		}
		next, err := svc.ListSubscriptions(ctx, page.NextPageCursor)
		if err != nil {
			t.Fatalf("second page: %v", err)
		}
		page.Append(next)

		var ids []string
		for _, it := range page.Items {
			ids = append(ids, it.ID)
		}
		if len(ids) != 3 || ids[0] != "A" || ids[1] != "B" || ids[2] != "C" {
			t.Errorf("expected [A B C], got %v", ids)
		}
		if page.NextPageCursor != "" {
			t.Errorf("expected no cursor, got %q", page.NextPageCursor)
		}
	})

	t.Run("Channel", func(t *testing.T) {
		fg := newFakeGoogle(t, okToken, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, channelBody(map[string]any{
				"id": "UC1",
				"snippet": map[string]any{
					"title":       "One",
					"description": "First",
					"thumbnails":  map[string]any{"high": map[string]any{"url": "https://img/high.jpg"}},
				},
				"statistics": map[string]any{
					"viewCount":             "12345",
					"subscriberCount":       "99",
					"hiddenSubscriberCount": false,
					"videoCount":            "not-a-number",
				},
			}))
		})
		svc := newService(fg, tu.NewMockTokenProvider(liveCredential("live")))

		ch, err := svc.Channel(ctx, "UC1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		r := fg.lastRequest()
		if r.URL.Path != "/youtube/v3/channels" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if q := r.URL.Query(); q.Get("id") != "UC1" || q.Get("part") != "snippet,statistics" || q.Has("mine") {
			t.Errorf("unexpected query %v", q)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Error("expected json content type on channel requests")
		}

		if ch.Statistics == nil {
			t.Fatal("expected statistics")
		}
		if ch.Statistics.ViewCount != 12345 || ch.Statistics.SubscriberCount != 99 {
			t.Errorf("unexpected counts %+v", ch.Statistics)
		}
		if ch.Statistics.VideoCount != 0 {
			t.Errorf("expected unparsable videoCount to be 0, got %d", ch.Statistics.VideoCount)
		}
		if ch.ChannelID != "" || ch.TargetID() != "UC1" {
			t.Errorf("expected empty channel id and item id target, got %q/%q", ch.ChannelID, ch.TargetID())
		}
		if th, ok := models.PickThumbnail(*ch, "maxres", "high"); !ok || th.URL != "https://img/high.jpg" {
			t.Errorf("unexpected thumbnail %+v", th)
		}
	})

	t.Run("Channel not found", func(t *testing.T) {
		fg := newFakeGoogle(t, okToken, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, channelBody())
		})
		svc := newService(fg, tu.NewMockTokenProvider(liveCredential("live")))

		if _, err := svc.Channel(ctx, "missing-id"); !errors.Is(err, shared.ErrChannelNotFound) {
			t.Errorf("expected ErrChannelNotFound, got %v", err)
		}
		if _, err := svc.Account(ctx); !errors.Is(err, shared.ErrChannelNotFound) {
			t.Errorf("expected ErrChannelNotFound from Account, got %v", err)
		}
		if _, err := svc.Channel(ctx, ""); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("Account", func(t *testing.T) {
		fg := newFakeGoogle(t, okToken, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("mine") != "true" {
				t.Errorf("expected mine=true, got %v", r.URL.Query())
			}
			writeJSON(w, http.StatusOK, channelBody(map[string]any{
				"id": "UCme",
				"snippet": map[string]any{
					"title":      "Me",
					"thumbnails": map[string]any{"default": map[string]any{"url": "https://img/me.jpg"}},
				},
			}))
		})
		svc := newService(fg, tu.NewMockTokenProvider(liveCredential("live")))

		account, err := svc.Account(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if account.Name != "Me" || account.PictureURL != "https://img/me.jpg" {
			t.Errorf("unexpected account %+v", account)
		}
	})

	t.Run("provider error", func(t *testing.T) {
		fg := newFakeGoogle(t, okToken, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusForbidden, map[string]any{
				"error": map[string]any{
					"code":    403,
					"message": "quota exceeded",
					"errors":  []map[string]any{{"reason": "quotaExceeded", "message": "quota exceeded"}},
				},
			})
		})
		svc := newService(fg, tu.NewMockTokenProvider(liveCredential("live")))

		_, err := svc.ListSubscriptions(ctx, "")
		if !errors.Is(err, shared.ErrProvider) {
			t.Fatalf("expected ErrProvider, got %v", err)
		}
		if shared.StatusCode(err) != http.StatusForbidden {
			t.Errorf("expected 403, got %d", shared.StatusCode(err))
		}

		var gerr *googleapi.Error
		if !errors.As(err, &gerr) {
			t.Fatal("expected *googleapi.Error in chain")
		}
		if gerr.Code != http.StatusForbidden || gerr.Message != "quota exceeded" {
			t.Errorf("unexpected googleapi error %+v", gerr)
		}

		var pe *shared.ProviderError
		if errors.As(err, &pe) && pe.Code != "quotaExceeded" {
			t.Errorf("expected reason quotaExceeded, got %s", pe.Code)
		}
	})

	t.Run("decode failure", func(t *testing.T) {
		fg := newFakeGoogle(t, okToken, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>not json</html>"))
		})
		svc := newService(fg, tu.NewMockTokenProvider(liveCredential("live")))

		if _, err := svc.ListSubscriptions(ctx, ""); !errors.Is(err, shared.ErrDecode) {
			t.Errorf("expected ErrDecode, got %v", err)
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		fg := newFakeGoogle(t, okToken, func(w http.ResponseWriter, r *http.Request) {})
		svc := newService(fg, tu.NewMockTokenProvider(liveCredential("live")))
		fg.Close()

		if _, err := svc.ListSubscriptions(ctx, ""); !errors.Is(err, shared.ErrTransport) {
			t.Errorf("expected ErrTransport, got %v", err)
		}
	})

	t.Run("body read failure", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}, Header: http.Header{}}
		client := &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}
		svc := NewYouTubeService(tu.NewMockTokenProvider(liveCredential("live")), WithHTTPClient(client), quietLogger())

		_, err := svc.ListSubscriptions(ctx, "")
		if !errors.Is(err, shared.ErrTransport) {
			t.Errorf("expected ErrTransport, got %v", err)
		}
	})
}

func TestLazyAuth(t *testing.T) {
	ctx := context.Background()

	t.Run("refreshes once then calls the resource", func(t *testing.T) {
		fg := newFakeGoogle(t, okToken, func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer fresh" {
				t.Errorf("expected refreshed token, got %q", r.Header.Get("Authorization"))
			}
			writeJSON(w, http.StatusOK, subscriptionsBody("", "A"))
		})
		store := credentials.NewMemoryStore()
		store.Set(ctx, credentials.LoginTag, "rt")
		svc := newService(fg, newManager(fg, store))

		if _, err := svc.ListSubscriptions(ctx, ""); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if fg.count("/token") != 1 || fg.count("/youtube/v3/subscriptions") != 1 {
			t.Errorf("expected one refresh and one resource call, got %v", fg.calls)
		}

		if _, err := svc.ListSubscriptions(ctx, ""); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if fg.count("/token") != 1 {
			t.Error("a live credential must not be refreshed again")
		}
	})

	t.Run("missing refresh token", func(t *testing.T) {
		fg := newFakeGoogle(t, okToken, func(w http.ResponseWriter, r *http.Request) {
			t.Error("resource must not be called")
		})
		svc := newService(fg, newManager(fg, credentials.NewMemoryStore()))

		calls := map[string]func() error{
			"ListSubscriptions": func() error { _, err := svc.ListSubscriptions(ctx, ""); return err },
			"Account":           func() error { _, err := svc.Account(ctx); return err },
			"Channel":           func() error { _, err := svc.Channel(ctx, "UC1"); return err },
		}
		for name, call := range calls {
			err := call()
			if !errors.Is(err, shared.ErrMissingRefreshToken) {
				t.Errorf("%s: expected ErrMissingRefreshToken, got %v", name, err)
			}
			if errors.Is(err, shared.ErrTransport) || errors.Is(err, shared.ErrDecode) {
				t.Errorf("%s: must not be a transport or decode failure", name)
			}
		}
		if fg.total() != 0 {
			t.Errorf("expected no requests, got %d", fg.total())
		}
	})

	t.Run("failed refresh is not retried", func(t *testing.T) {
		fg := newFakeGoogle(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_grant"})
		}, func(w http.ResponseWriter, r *http.Request) {
			t.Error("resource must not be called")
		})
		store := credentials.NewMemoryStore()
		store.Set(ctx, credentials.LoginTag, "revoked")
		svc := newService(fg, newManager(fg, store))

		if _, err := svc.Account(ctx); !errors.Is(err, shared.ErrProvider) {
			t.Errorf("expected ErrProvider, got %v", err)
		}
		if fg.total() > 2 || fg.count("/token") != 1 {
			t.Errorf("expected a single refresh attempt, got %v", fg.calls)
		}
	})

	t.Run("rejected token refreshes and retries once", func(t *testing.T) {
		fg := newFakeGoogle(t, okToken, func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer fresh" {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"error": map[string]any{"code": 401, "message": "Invalid Credentials"}})
				return
			}
			writeJSON(w, http.StatusOK, subscriptionsBody("", "A"))
		})
		tokens := tu.NewMockTokenProvider(liveCredential("stale"))
		tokens.Next = liveCredential("fresh")
		svc := newService(fg, tokens)

		if _, err := svc.ListSubscriptions(ctx, ""); err != nil {
			t.Fatalf("expected retry to succeed, got %v", err)
		}
		if tokens.Refreshes() != 1 {
			t.Errorf("expected one refresh, got %d", tokens.Refreshes())
		}
		if fg.count("/youtube/v3/subscriptions") != 2 {
			t.Errorf("expected two resource calls, got %d", fg.count("/youtube/v3/subscriptions"))
		}
	})

	t.Run("rejected after refresh is returned", func(t *testing.T) {
		fg := newFakeGoogle(t, okToken, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": map[string]any{"code": 401, "message": "Invalid Credentials"}})
		})
		tokens := tu.NewMockTokenProvider(nil)
		tokens.Next = liveCredential("fresh")
		svc := newService(fg, tokens)

		_, err := svc.ListSubscriptions(ctx, "")
		if shared.StatusCode(err) != http.StatusUnauthorized {
			t.Errorf("expected 401 provider error, got %v", err)
		}
		if tokens.Refreshes() != 1 || fg.total() != 1 {
			t.Errorf("expected one refresh and one call, got %d and %d", tokens.Refreshes(), fg.total())
		}
	})

	t.Run("refresh without credential", func(t *testing.T) {
		fg := newFakeGoogle(t, okToken, func(w http.ResponseWriter, r *http.Request) {
			t.Error("resource must not be called")
		})
		svc := newService(fg, tu.NewMockTokenProvider(nil))

		if _, err := svc.ListSubscriptions(ctx, ""); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("logout then call", func(t *testing.T) {
		fg := newFakeGoogle(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"access_token": "fresh", "expires_in": 3600, "refresh_token": "rt"})
		}, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, subscriptionsBody("", "A"))
		})
		m := newManager(fg, credentials.NewMemoryStore())
		if _, err := m.Exchange(ctx, "http://127.0.0.1/cb?code=abc"); err != nil {
			t.Fatalf("exchange failed: %v", err)
		}
		svc := newService(fg, m)

		if _, err := svc.ListSubscriptions(ctx, ""); err != nil {
			t.Fatalf("expected signed-in call to succeed, got %v", err)
		}

		m.Logout(ctx)
		if m.IsAuthenticated(ctx) {
			t.Error("expected IsAuthenticated false after logout")
		}
		if _, err := svc.ListSubscriptions(ctx, ""); !errors.Is(err, shared.ErrMissingRefreshToken) {
			t.Errorf("expected ErrMissingRefreshToken, got %v", err)
		}
	})
}

func TestDecodeSubscriptionPage(t *testing.T) {
	t.Run("falls back to snippet channel id", func(t *testing.T) {
		body := []byte(`{"items":[{"id":"s1","snippet":{"title":"t","channelId":"UCsnippet","thumbnails":{}}}]}`)
		page, err := decodeSubscriptionPage(body)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.Items[0].ChannelID != "UCsnippet" {
			t.Errorf("expected snippet channel id, got %q", page.Items[0].ChannelID)
		}
		if page.Items[0].Statistics != nil || page.Items[0].ContentDetails != nil {
			t.Error("expected absent optional sections")
		}
	})

	t.Run("content details and numeric statistics", func(t *testing.T) {
		body := []byte(`{"items":[{"id":"s1","snippet":{"title":"t"},
			"contentDetails":{"totalItemCount":12,"newItemCount":2,"activityType":"all"},
			"statistics":{"viewCount":7,"subscriberCount":null,"videoCount":"3"}}]}`)
		page, err := decodeSubscriptionPage(body)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		item := page.Items[0]
		if item.ContentDetails == nil || item.ContentDetails.TotalItemCount != 12 || item.ContentDetails.ActivityType != "all" {
			t.Errorf("unexpected content details %+v", item.ContentDetails)
		}
		if s := item.Statistics; s.ViewCount != 7 || s.SubscriberCount != 0 || s.VideoCount != 3 {
			t.Errorf("unexpected statistics %+v", s)
		}
	})

	t.Run("subscriber snippet", func(t *testing.T) {
		body := []byte(`{"items":[{"id":"s1","snippet":{"title":"t","resourceId":{"channelId":"UCt"}},
			"subscriberSnippet":{"title":"Me","description":"mine","channelId":"UCme",
				"thumbnails":{"default":{"url":"https://img/me.jpg","width":88}}}},
			{"id":"s2","snippet":{"title":"u"}}]}`)
		page, err := decodeSubscriptionPage(body)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		sub := page.Items[0].Subscriber
		if sub == nil || sub.Title != "Me" || sub.ChannelID != "UCme" || sub.Description != "mine" {
			t.Fatalf("unexpected subscriber snippet %+v", sub)
		}
		if th := sub.Thumbnails["default"]; th.URL != "https://img/me.jpg" || th.Width != 88 {
			t.Errorf("unexpected subscriber thumbnail %+v", th)
		}
		if page.Items[0].ChannelID != "UCt" {
			t.Errorf("subscriber channel must not replace the target channel, got %s", page.Items[0].ChannelID)
		}
		if page.Items[1].Subscriber != nil {
			t.Errorf("expected no subscriber snippet, got %+v", page.Items[1].Subscriber)
		}
	})

	t.Run("empty page", func(t *testing.T) {
		page, err := decodeSubscriptionPage([]byte(`{"kind":"youtube#subscriptionListResponse"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(page.Items) != 0 || page.HasMore() {
			t.Errorf("expected empty final page, got %+v", page)
		}
	})
}
