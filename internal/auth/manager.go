package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/desertthunder/mysubs/internal/credentials"
	"github.com/desertthunder/mysubs/internal/models"
	"github.com/desertthunder/mysubs/internal/shared"
)

const maxTokenBody = 1 << 20

// Manager holds the current access credential and mints new ones from the token endpoint.
type Manager struct {
	config     Config
	oauth      *oauth2.Config
	store      credentials.Store
	httpClient *http.Client
	logger     *log.Logger
	now        func() time.Time

	mu      sync.RWMutex
	current *models.Credential
	flight  singleflight.Group
}

// Option configures a [Manager].
type Option func(*Manager)

// WithHTTPClient sets the client used for token requests. Its timeout bounds every grant.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) { m.httpClient = c }
}

func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithClock replaces time.Now for expiry bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a [Manager] with no current credential.
func NewManager(config Config, store credentials.Store, opts ...Option) *Manager {
	m := &Manager{
		config:     config,
		oauth:      config.oauth2Config(),
		store:      store,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     shared.NewLogger(nil),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AuthCodeURL builds the consent page URL, asking for offline access so a refresh token is issued.
func (m *Manager) AuthCodeURL(state string) string {
	return m.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// IsAuthenticated reports whether a refresh token is stored, whether or not a credential is in memory.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	v, err := m.store.Get(ctx, credentials.LoginTag)
	if err != nil && !errors.Is(err, credentials.ErrNotFound) {
		m.logger.Warn("credential store unavailable", "error", err)
	}
	return err == nil && v != ""
}

// Current returns a copy of the live credential, or nil when there is none or it has expired.
func (m *Manager) Current() *models.Credential {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil || !m.current.OAuth2Token().Valid() {
		return nil
	}
	c := *m.current
	return &c
}

// Exchange trades the authorization code in redirectURL for a credential.
//
// redirectURL is the full URL the consent page redirected to. A URL without a code, including one
// carrying the provider's error parameter, fails with [shared.ErrMissingAuthorizationCode].
func (m *Manager) Exchange(ctx context.Context, redirectURL string) (*models.Credential, error) {
	code, err := authorizationCode(redirectURL)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", m.config.ClientID)
	form.Set("redirect_uri", m.config.RedirectURI)
	form.Set("grant_type", "authorization_code")
	if m.config.ClientSecret != "" {
		form.Set("client_secret", m.config.ClientSecret)
	}

	m.logger.Debug("exchanging authorization code")
	cred, err := m.requestToken(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("code exchange: %w", err)
	}

	if err := m.commit(ctx, cred, cred.RefreshToken != ""); err != nil {
		return nil, fmt.Errorf("code exchange: %w", err)
	}
	m.logger.Info("signed in", "scope", cred.Scope, "expires_in", cred.ExpiresIn)
	return cloneCredential(cred), nil
}

// Refresh mints a new access credential from the stored refresh token.
//
// Concurrent calls share one token request. A caller whose ctx ends while waiting returns early.
// The shared request ignores that cancellation and is bounded by the HTTP client timeout, so the
// callers still waiting get its result and a completed grant is committed.
func (m *Manager) Refresh(ctx context.Context) (*models.Credential, error) {
	flightCtx := context.WithoutCancel(ctx)
	ch := m.flight.DoChan("refresh", func() (any, error) {
		return m.refresh(flightCtx)
	})

	select {
	case <-ctx.Done():
		return nil, shared.Transport(ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return cloneCredential(res.Val.(*models.Credential)), nil
	}
}

func (m *Manager) refresh(ctx context.Context) (*models.Credential, error) {
	stored, err := m.store.Get(ctx, credentials.LoginTag)
	if err != nil {
		if !errors.Is(err, credentials.ErrNotFound) {
			m.logger.Warn("credential store unavailable, treating refresh token as absent", "error", err)
		}
		return nil, shared.ErrMissingRefreshToken
	}
	if stored == "" {
		return nil, shared.ErrMissingRefreshToken
	}

	form := url.Values{}
	form.Set("refresh_token", stored)
	form.Set("client_id", m.config.ClientID)
	form.Set("grant_type", "refresh_token")
	if m.config.ClientSecret != "" {
		form.Set("client_secret", m.config.ClientSecret)
	}

	m.logger.Debug("refreshing access token")
	cred, err := m.requestToken(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	rotated := cred.RefreshToken != "" && cred.RefreshToken != stored
	if cred.RefreshToken == "" {
		cred.RefreshToken = stored
	}

	if err := m.commit(ctx, cred, rotated); err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	m.logger.Info("refreshed access token", "expires_in", cred.ExpiresIn, "rotated", rotated)
	return cred, nil
}

// Logout forgets the stored refresh token and the in-memory credential. It is safe to call repeatedly.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.store.Clear(ctx, credentials.LoginTag); err != nil {
		m.logger.Warn("failed to clear stored refresh token", "error", err)
	}

	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	m.logger.Info("signed out")
}

// commit persists the refresh token when persist is set, then publishes cred.
//
// Nothing is written when ctx has ended, so a cancelled grant leaves the previous state in place.
// Persistence failures are logged and do not fail the grant.
func (m *Manager) commit(ctx context.Context, cred *models.Credential, persist bool) error {
	if err := ctx.Err(); err != nil {
		return shared.Transport(err)
	}

	if persist {
		if err := m.store.Set(ctx, credentials.LoginTag, cred.RefreshToken); err != nil {
			m.logger.Warn("failed to persist refresh token", "error", err)
		} else {
			m.logger.Debug("persisted refresh token")
		}
	}

	m.mu.Lock()
	m.current = cloneCredential(cred)
	m.mu.Unlock()
	return nil
}

// requestToken posts form to the token endpoint and decodes the credential.
func (m *Manager) requestToken(ctx context.Context, form url.Values) (*models.Credential, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, shared.Transport(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenBody))
	if err != nil {
		return nil, shared.Transport(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, tokenError(resp, body)
	}

	return decodeToken(body, m.now())
}

// authorizationCode extracts the code query parameter from the consent redirect.
func authorizationCode(redirectURL string) (string, error) {
	u, err := url.Parse(redirectURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrMissingAuthorizationCode, err)
	}

	q := u.Query()
	if code := q.Get("code"); code != "" {
		return code, nil
	}

	if e := q.Get("error"); e != "" {
		if desc := q.Get("error_description"); desc != "" {
			e += ": " + desc
		}
		return "", fmt.Errorf("%w: provider returned %s", shared.ErrMissingAuthorizationCode, e)
	}
	return "", shared.ErrMissingAuthorizationCode
}

func cloneCredential(c *models.Credential) *models.Credential {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
