package shared

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrMissingAuthorizationCode = fmt.Errorf("missing authorization code")
	ErrMissingRefreshToken      = fmt.Errorf("no refresh token available")
	ErrNotAuthenticated         = fmt.Errorf("not authenticated")

	// API and transport errors
	ErrTransport       = fmt.Errorf("transport failure")
	ErrDecode          = fmt.Errorf("decode failure")
	ErrProvider        = fmt.Errorf("provider error")
	ErrChannelNotFound = fmt.Errorf("channel not found")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// ProviderError is a non-2xx response from the identity provider or the YouTube API.
//
// It matches [ErrProvider] with [errors.Is] and unwraps to the provider specific cause
// (*oauth2.RetrieveError or *googleapi.Error) for callers that need the raw details.
type ProviderError struct {
	Status  int    // HTTP status code
	Code    string // provider error code, e.g. invalid_grant or forbidden
	Message string // human readable description, may be empty
	Body    []byte // raw response body
	Cause   error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("provider error (status %d)", e.Status)
	if e.Code != "" {
		msg += ": " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *ProviderError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrProvider}
	}
	return []error{ErrProvider, e.Cause}
}

// StatusCode returns the HTTP status carried by a [ProviderError] in err's chain, or 0.
func StatusCode(err error) int {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Status
	}
	return 0
}

// Transport wraps err as an [ErrTransport] failure, keeping err matchable with [errors.Is].
func Transport(err error) error {
	return fmt.Errorf("%w: %w", ErrTransport, err)
}

// Decode wraps err as an [ErrDecode] failure.
func Decode(err error) error {
	return fmt.Errorf("%w: %w", ErrDecode, err)
}
