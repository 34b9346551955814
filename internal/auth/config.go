package auth

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/desertthunder/mysubs/internal/shared"
)

// YouTubeReadOnlyScope is the only scope the client asks for.
const YouTubeReadOnlyScope = "https://www.googleapis.com/auth/youtube.readonly"

// Config is the OAuth client registration.
type Config struct {
	ClientID     string
	ClientSecret string // sent only when set; installed mobile clients have none
	RedirectURI  string
	AuthURL      string
	TokenURL     string
	Scopes       []string
}

// ConfigFrom maps the [google] config section, filling Google's endpoints and the read-only scope when unset.
func ConfigFrom(g shared.GoogleConfig) Config {
	c := Config{
		ClientID:     g.ClientID,
		ClientSecret: g.ClientSecret,
		RedirectURI:  g.RedirectURI,
		AuthURL:      g.AuthURL,
		TokenURL:     g.TokenURL,
		Scopes:       g.Scopes,
	}
	if c.AuthURL == "" {
		c.AuthURL = google.Endpoint.AuthURL
	}
	if c.TokenURL == "" {
		c.TokenURL = google.Endpoint.TokenURL
	}
	if len(c.Scopes) == 0 {
		c.Scopes = []string{YouTubeReadOnlyScope}
	}
	return c
}

func (c Config) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURI,
		Scopes:       c.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.AuthURL,
			TokenURL:  c.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}
