package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/desertthunder/mysubs/internal/credentials"
	"github.com/desertthunder/mysubs/internal/models"
	"github.com/desertthunder/mysubs/internal/shared"
	tu "github.com/desertthunder/mysubs/internal/testing"
)

const testRedirect = "http://127.0.0.1:3000/oauth2redirect"

// tokenServer is a fake token endpoint that records every form it receives.
type tokenServer struct {
	*httptest.Server
	mu      sync.Mutex
	forms   []url.Values
	handler func(w http.ResponseWriter, form url.Values)
}

func newTokenServer(t *testing.T, handler func(w http.ResponseWriter, form url.Values)) *tokenServer {
	t.Helper()
	ts := &tokenServer{handler: handler}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("expected form content type, got %s", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse form: %v", err)
		}

		ts.mu.Lock()
		ts.forms = append(ts.forms, r.PostForm)
		ts.mu.Unlock()

		ts.handler(w, r.PostForm)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *tokenServer) calls() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.forms)
}

func (ts *tokenServer) form(i int) url.Values {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.forms[i]
}

func writeToken(w http.ResponseWriter, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(body)
}

func newTestManager(ts *tokenServer, store credentials.Store, opts ...Option) *Manager {
	cfg := Config{
		ClientID:    "client-123",
		RedirectURI: testRedirect,
		AuthURL:     "https://accounts.example.com/auth",
		TokenURL:    ts.URL,
		Scopes:      []string{YouTubeReadOnlyScope},
	}
	opts = append([]Option{WithHTTPClient(ts.Client()), WithLogger(shared.NewLogger(&bytes.Buffer{}))}, opts...)
	return NewManager(cfg, store, opts...)
}

func TestManagerExchange(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the returned refresh token", func(t *testing.T) {
		ts := newTokenServer(t, func(w http.ResponseWriter, form url.Values) {
			writeToken(w, map[string]any{
				"access_token":  "at-1",
				"expires_in":    3599,
				"token_type":    "Bearer",
				"scope":         YouTubeReadOnlyScope,
				"refresh_token": "rt-1",
			})
		})
		store := credentials.NewMemoryStore()
		m := newTestManager(ts, store)

		cred, err := m.Exchange(ctx, testRedirect+"?code=abc&scope=x")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		stored, err := store.Get(ctx, credentials.LoginTag)
		if err != nil {
			t.Fatalf("expected stored refresh token, got %v", err)
		}
		if stored != "rt-1" || cred.RefreshToken != "rt-1" {
			t.Errorf("expected rt-1 stored and returned, got %q and %q", stored, cred.RefreshToken)
		}
		if cred.AccessToken != "at-1" || cred.ExpiresIn != 3599 || cred.Scope != YouTubeReadOnlyScope {
			t.Errorf("unexpected credential %+v", cred)
		}

		form := ts.form(0)
		want := map[string]string{
			"code":         "abc",
			"client_id":    "client-123",
			"redirect_uri": testRedirect,
			"grant_type":   "authorization_code",
		}
		for k, v := range want {
			if form.Get(k) != v {
				t.Errorf("expected %s=%s, got %q", k, v, form.Get(k))
			}
		}
		if _, ok := form["client_secret"]; ok {
			t.Error("client_secret must not be sent when not configured")
		}

		if cur := m.Current(); cur == nil || cur.AccessToken != "at-1" {
			t.Errorf("expected current credential at-1, got %+v", cur)
		}
		if !m.IsAuthenticated(ctx) {
			t.Error("expected IsAuthenticated after exchange")
		}
	})

	t.Run("sends client secret when configured", func(t *testing.T) {
		ts := newTokenServer(t, func(w http.ResponseWriter, form url.Values) {
			writeToken(w, map[string]any{"access_token": "at", "expires_in": "3600"})
		})
		m := newTestManager(ts, credentials.NewMemoryStore())
		m.config.ClientSecret = "shh"

		cred, err := m.Exchange(ctx, testRedirect+"?code=abc")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ts.form(0).Get("client_secret") != "shh" {
			t.Error("expected client_secret in form")
		}
		if cred.ExpiresIn != 3600 || cred.TokenType != "Bearer" {
			t.Errorf("expected string expires_in and default token type, got %+v", cred)
		}
	})

	t.Run("missing code", func(t *testing.T) {
		ts := newTokenServer(t, func(w http.ResponseWriter, form url.Values) {
			t.Error("token endpoint must not be called")
		})
		m := newTestManager(ts, credentials.NewMemoryStore())

		tt := []string{
			testRedirect,
			testRedirect + "?state=xyz",
			testRedirect + "?error=access_denied&error_description=user+said+no",
			"://not a url",
		}
		for _, redirect := range tt {
			if _, err := m.Exchange(ctx, redirect); !errors.Is(err, shared.ErrMissingAuthorizationCode) {
				t.Errorf("%q: expected ErrMissingAuthorizationCode, got %v", redirect, err)
			}
		}

		_, err := m.Exchange(ctx, testRedirect+"?error=access_denied")
		if err == nil || !strings.Contains(err.Error(), "access_denied") {
			t.Errorf("expected provider error in message, got %v", err)
		}
	})

	t.Run("persistence failure is swallowed", func(t *testing.T) {
		ts := newTokenServer(t, func(w http.ResponseWriter, form url.Values) {
			writeToken(w, map[string]any{"access_token": "at", "expires_in": 3600, "refresh_token": "rt"})
		})
		store := tu.NewFailingStore()
		store.SetErr = credentials.ErrUnavailable
		m := newTestManager(ts, store)

		cred, err := m.Exchange(ctx, testRedirect+"?code=abc")
		if err != nil {
			t.Fatalf("expected exchange to succeed, got %v", err)
		}
		if cred.RefreshToken != "rt" {
			t.Errorf("expected refresh token in credential, got %q", cred.RefreshToken)
		}
		if m.Current() == nil {
			t.Error("expected current credential despite persistence failure")
		}
	})

	t.Run("provider error", func(t *testing.T) {
		ts := newTokenServer(t, func(w http.ResponseWriter, form url.Values) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant","error_description":"Bad Request"}`))
		})
		m := newTestManager(ts, credentials.NewMemoryStore())

		_, err := m.Exchange(ctx, testRedirect+"?code=expired")
		if !errors.Is(err, shared.ErrProvider) {
			t.Fatalf("expected ErrProvider, got %v", err)
		}
		if shared.StatusCode(err) != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", shared.StatusCode(err))
		}

		var re *oauth2.RetrieveError
		if !errors.As(err, &re) {
			t.Fatal("expected *oauth2.RetrieveError in chain")
		}
		if re.ErrorCode != "invalid_grant" {
			t.Errorf("expected invalid_grant, got %s", re.ErrorCode)
		}
		if m.Current() != nil {
			t.Error("failed exchange must not set a credential")
		}
	})

	t.Run("decode failure", func(t *testing.T) {
		tt := []string{`not json`, `{"token_type":"Bearer"}`, `{"access_token":"x","expires_in":"soon"}`}
		for _, body := range tt {
			ts := newTokenServer(t, func(w http.ResponseWriter, form url.Values) {
				w.Write([]byte(body))
			})
			m := newTestManager(ts, credentials.NewMemoryStore())

			_, err := m.Exchange(ctx, testRedirect+"?code=abc")
			if !errors.Is(err, shared.ErrDecode) {
				t.Errorf("%s: expected ErrDecode, got %v", body, err)
			}
			if errors.Is(err, shared.ErrTransport) {
				t.Errorf("%s: decode failure must not be a transport failure", body)
			}
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		ts := newTokenServer(t, func(w http.ResponseWriter, form url.Values) {})
		m := newTestManager(ts, credentials.NewMemoryStore())
		ts.Close()

		if _, err := m.Exchange(ctx, testRedirect+"?code=abc"); !errors.Is(err, shared.ErrTransport) {
			t.Errorf("expected ErrTransport, got %v", err)
		}
	})
}

func TestManagerRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("carries the stored refresh token forward", func(t *testing.T) {
		ts := newTokenServer(t, func(w http.ResponseWriter, form url.Values) {
			writeToken(w, map[string]any{"access_token": "at-2", "expires_in": 3600, "token_type": "Bearer"})
		})
		store := credentials.NewMemoryStore()
		store.Set(ctx, credentials.LoginTag, "rt-stored")
		m := newTestManager(ts, store)

		cred, err := m.Refresh(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cred.RefreshToken != "rt-stored" {
			t.Errorf("expected carried refresh token, got %q", cred.RefreshToken)
		}

		form := ts.form(0)
		if form.Get("grant_type") != "refresh_token" || form.Get("refresh_token") != "rt-stored" || form.Get("client_id") != "client-123" {
			t.Errorf("unexpected refresh form %v", form)
		}
		if m.Current().AccessToken != "at-2" {
			t.Error("expected current credential to be replaced")
		}
	})

	t.Run("persists a rotated refresh token", func(t *testing.T) {
		ts := newTokenServer(t, func(w http.ResponseWriter, form url.Values) {
			writeToken(w, map[string]any{"access_token": "at", "expires_in": 3600, "refresh_token": "rt-new"})
		})
		store := credentials.NewMemoryStore()
		store.Set(ctx, credentials.LoginTag, "rt-old")
		m := newTestManager(ts, store)

		if _, err := m.Refresh(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if v, _ := store.Get(ctx, credentials.LoginTag); v != "rt-new" {
			t.Errorf("expected rt-new stored, got %q", v)
		}
	})

	t.Run("missing refresh token", func(t *testing.T) {
		ts := newTokenServer(t, func(w http.ResponseWriter, form url.Values) {
			t.Error("token endpoint must not be called")
		})

		stores := map[string]credentials.Store{
			"empty":       credentials.NewMemoryStore(),
			"unavailable": &tu.FailingStore{Store: credentials.NewMemoryStore(), GetErr: credentials.ErrUnavailable},
		}
		for name, store := range stores {
			t.Run(name, func(t *testing.T) {
				m := newTestManager(ts, store)
				if _, err := m.Refresh(ctx); !errors.Is(err, shared.ErrMissingRefreshToken) {
					t.Errorf("expected ErrMissingRefreshToken, got %v", err)
				}
			})
		}
	})

	t.Run("concurrent callers share one request", func(t *testing.T) {
		release := make(chan struct{})
		ts := newTokenServer(t, func(w http.ResponseWriter, form url.Values) {
			<-release
			writeToken(w, map[string]any{"access_token": "shared", "expires_in": 3600})
		})
		store := credentials.NewMemoryStore()
		store.Set(ctx, credentials.LoginTag, "rt")
		m := newTestManager(ts, store)

		const callers = 8
		var wg sync.WaitGroup
		var failures atomic.Int32
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				cred, err := m.Refresh(ctx)
				if err != nil || cred.AccessToken != "shared" {
					failures.Add(1)
				}
			}()
		}

		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		if failures.Load() != 0 {
			t.Errorf("expected every caller to get the shared credential, %d failed", failures.Load())
		}
		if ts.calls() != 1 {
			t.Errorf("expected a single token request, got %d", ts.calls())
		}
	})

	t.Run("cancelled caller does not fail the others", func(t *testing.T) {
		arrived := make(chan struct{})
		release := make(chan struct{})
		ts := newTokenServer(t, func(w http.ResponseWriter, form url.Values) {
			close(arrived)
			<-release
			writeToken(w, map[string]any{"access_token": "shared", "expires_in": 3600})
		})
		store := credentials.NewMemoryStore()
		store.Set(ctx, credentials.LoginTag, "rt")
		m := newTestManager(ts, store)

		firstCtx, cancelFirst := context.WithCancel(ctx)
		firstErr := make(chan error, 1)
		go func() {
			_, err := m.Refresh(firstCtx)
			firstErr <- err
		}()
		<-arrived

		type result struct {
			cred *models.Credential
			err  error
		}
		second := make(chan result, 1)
		go func() {
			cred, err := m.Refresh(ctx)
			second <- result{cred, err}
		}()
		time.Sleep(50 * time.Millisecond)

		cancelFirst()
		if err := <-firstErr; !errors.Is(err, shared.ErrTransport) || !errors.Is(err, context.Canceled) {
			t.Errorf("expected the cancelled caller to get a transport error, got %v", err)
		}
		close(release)

		res := <-second
		if res.err != nil || res.cred.AccessToken != "shared" {
			t.Fatalf("expected the live caller to get the shared credential, got %+v, %v", res.cred, res.err)
		}
		if cur := m.Current(); cur == nil || cur.AccessToken != "shared" {
			t.Errorf("expected the shared credential to be committed, got %+v", cur)
		}
		if ts.calls() != 1 {
			t.Errorf("expected a single token request, got %d", ts.calls())
		}
	})

	t.Run("cancelled caller returns before the grant completes", func(t *testing.T) {
		block := make(chan struct{})
		var served atomic.Bool
		ts := newTokenServer(t, func(w http.ResponseWriter, form url.Values) {
			if !served.Swap(true) {
				writeToken(w, map[string]any{"access_token": "at-old", "expires_in": 3600, "refresh_token": "rt-old"})
				return
			}
			<-block
			writeToken(w, map[string]any{"access_token": "at-new", "expires_in": 3600, "refresh_token": "rt-new"})
		})
		t.Cleanup(func() { close(block) })

		store := credentials.NewMemoryStore()
		m := newTestManager(ts, store)
		if _, err := m.Exchange(ctx, testRedirect+"?code=abc"); err != nil {
			t.Fatalf("exchange failed: %v", err)
		}

		cctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		_, err := m.Refresh(cctx)
		if !errors.Is(err, shared.ErrTransport) || !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected transport deadline error, got %v", err)
		}

		if cur := m.Current(); cur == nil || cur.AccessToken != "at-old" {
			t.Errorf("expected at-old to remain current, got %+v", cur)
		}
		if v, _ := store.Get(ctx, credentials.LoginTag); v != "rt-old" {
			t.Errorf("expected rt-old to remain stored, got %q", v)
		}
	})
}

func TestManagerLogout(t *testing.T) {
	ctx := context.Background()
	ts := newTokenServer(t, func(w http.ResponseWriter, form url.Values) {
		writeToken(w, map[string]any{"access_token": "at", "expires_in": 3600, "refresh_token": "rt"})
	})
	m := newTestManager(ts, credentials.NewMemoryStore())

	if _, err := m.Exchange(ctx, testRedirect+"?code=abc"); err != nil {
		t.Fatalf("exchange failed: %v", err)
	}

	m.Logout(ctx)
	m.Logout(ctx)

	if m.IsAuthenticated(ctx) {
		t.Error("expected IsAuthenticated false after logout")
	}
	if m.Current() != nil {
		t.Error("expected no current credential after logout")
	}
	if _, err := m.Refresh(ctx); !errors.Is(err, shared.ErrMissingRefreshToken) {
		t.Errorf("expected ErrMissingRefreshToken after logout, got %v", err)
	}
}

func TestManagerCurrentExpiry(t *testing.T) {
	ts := newTokenServer(t, func(w http.ResponseWriter, form url.Values) {
		writeToken(w, map[string]any{"access_token": "at", "expires_in": 3600})
	})
	past := func() time.Time { return time.Now().Add(-2 * time.Hour) }
	m := newTestManager(ts, credentials.NewMemoryStore(), WithClock(past))

	if _, err := m.Exchange(context.Background(), testRedirect+"?code=abc"); err != nil {
		t.Fatalf("exchange failed: %v", err)
	}
	if m.Current() != nil {
		t.Error("expected expired credential to be reported as absent")
	}
}

func TestAuthCodeURL(t *testing.T) {
	ts := newTokenServer(t, func(w http.ResponseWriter, form url.Values) {})
	m := newTestManager(ts, credentials.NewMemoryStore())

	u, err := url.Parse(m.AuthCodeURL("state-1"))
	if err != nil {
		t.Fatalf("invalid url: %v", err)
	}

	q := u.Query()
	want := map[string]string{
		"response_type": "code",
		"client_id":     "client-123",
		"redirect_uri":  testRedirect,
		"scope":         YouTubeReadOnlyScope,
		"access_type":   "offline",
		"state":         "state-1",
	}
	for k, v := range want {
		if q.Get(k) != v {
			t.Errorf("expected %s=%s, got %q", k, v, q.Get(k))
		}
	}
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(shared.GoogleConfig{ClientID: "id", RedirectURI: testRedirect})

	if cfg.TokenURL != "https://oauth2.googleapis.com/token" {
		t.Errorf("expected google token url, got %s", cfg.TokenURL)
	}
	if len(cfg.Scopes) != 1 || cfg.Scopes[0] != YouTubeReadOnlyScope {
		t.Errorf("expected read-only scope, got %v", cfg.Scopes)
	}
}
