package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/desertthunder/mysubs/internal/models"
	"github.com/desertthunder/mysubs/internal/shared"
)

// ErrInvalidState means the callback's state did not match the one sent to the consent page.
var ErrInvalidState = errors.New("invalid state parameter")

// Exchanger trades a consent redirect URL for a credential. [auth.Manager] implements it.
type Exchanger interface {
	Exchange(ctx context.Context, redirectURL string) (*models.Credential, error)
}

// OAuthResult contains the result of an OAuth authorization flow.
type OAuthResult struct {
	Credential *models.Credential
	err        error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// OAuthHandler handles the redirect of the authorization code flow.
// It implements [Handler] for registration with a [BasicRouter].
type OAuthHandler struct {
	exchanger   Exchanger
	state       string
	path        string
	resultChan  chan OAuthResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewOAuthHandler creates a handler serving path that accepts a single callback carrying state.
// The state token should be random per login for CSRF protection.
func NewOAuthHandler(exchanger Exchanger, state, path string) *OAuthHandler {
	if path == "" {
		path = "/oauth2redirect"
	}
	return &OAuthHandler{
		exchanger:  exchanger,
		state:      state,
		path:       path,
		resultChan: make(chan OAuthResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{h.path}
}

// ServeHTTP validates state, exchanges the redirect URL and sends the result through the result channel.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	if r.URL.Query().Get("state") != h.state {
		h.Send(OAuthResult{err: ErrInvalidState})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	cred, err := h.exchanger.Exchange(r.Context(), callbackURL(r))
	if err != nil {
		h.Send(OAuthResult{err: err})
		if errors.Is(err, shared.ErrMissingAuthorizationCode) {
			http.Error(w, "Authorization failed", http.StatusBadRequest)
		} else {
			http.Error(w, "Token exchange failed", http.StatusBadGateway)
		}
		return
	}

	h.Send(OAuthResult{Credential: cred})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

// Send sends the OAuth result through the channel (only once).
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving OAuth flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.resultChan
}

// callbackURL rebuilds the absolute URL the browser requested. The receiver only listens on loopback, so http.
func callbackURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

const successPage = `
<!DOCTYPE html>
<html>
<head>
    <title>Signed in</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #FF0033; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ Signed in to MySubs</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`
