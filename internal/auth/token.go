package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"github.com/desertthunder/mysubs/internal/models"
	"github.com/desertthunder/mysubs/internal/shared"
)

// tokenResponse is the token endpoint's snake_case body.
type tokenResponse struct {
	AccessToken  string  `json:"access_token"`
	ExpiresIn    seconds `json:"expires_in"`
	TokenType    string  `json:"token_type"`
	Scope        string  `json:"scope"`
	RefreshToken string  `json:"refresh_token"`
}

// tokenErrorResponse is the RFC 6749 error body.
type tokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorURI         string `json:"error_uri"`
}

// seconds accepts expires_in as a JSON number or a numeric string.
type seconds int

func (s *seconds) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	b = bytes.Trim(b, `"`)
	if len(b) == 0 {
		return nil
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("expires_in: %w", err)
	}
	*s = seconds(n)
	return nil
}

// decodeToken maps a token endpoint body to a [models.Credential] obtained at now.
func decodeToken(body []byte, now time.Time) (*models.Credential, error) {
	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, shared.Decode(fmt.Errorf("token response: %w", err))
	}
	if tr.AccessToken == "" {
		return nil, shared.Decode(fmt.Errorf("token response has no access_token"))
	}

	tokenType := tr.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	return &models.Credential{
		AccessToken:  tr.AccessToken,
		ExpiresIn:    int(tr.ExpiresIn),
		TokenType:    tokenType,
		Scope:        tr.Scope,
		RefreshToken: tr.RefreshToken,
		ObtainedAt:   now,
	}, nil
}

// tokenError builds a [shared.ProviderError] for a non-2xx token endpoint response.
func tokenError(resp *http.Response, body []byte) error {
	var er tokenErrorResponse
	_ = json.Unmarshal(body, &er)

	return &shared.ProviderError{
		Status:  resp.StatusCode,
		Code:    er.Error,
		Message: er.ErrorDescription,
		Body:    body,
		Cause: &oauth2.RetrieveError{
			Response:         resp,
			Body:             body,
			ErrorCode:        er.Error,
			ErrorDescription: er.ErrorDescription,
			ErrorURI:         er.ErrorURI,
		},
	}
}
