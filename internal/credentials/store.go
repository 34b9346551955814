// Package credentials holds the refresh token between sessions.
//
// A [Store] is an opaque tag to secret mapping with at most one value per tag. The token manager only
// ever uses [LoginTag]. Backends:
//   - [KeyringStore] : the OS keychain (default)
//   - [FileStore] : a 0600 JSON file guarded by a cross-process lock
//   - [SSMStore] : AWS Systems Manager Parameter Store, SecureString parameters
//   - [MemoryStore] : process memory, for tests and throwaway sessions
//
// The SQLite backend lives in the repositories package.
package credentials

import (
	"context"
	"errors"
	"fmt"
)

// Tag names a stored secret.
type Tag string

// LoginTag is the tag the refresh token is stored under.
const LoginTag Tag = "login"

var (
	// ErrNotFound means nothing is stored under the tag.
	ErrNotFound = errors.New("credential not found")
	// ErrUnavailable means the backend itself failed.
	ErrUnavailable = errors.New("credential store unavailable")
)

// Store persists secrets by tag.
type Store interface {
	// Get returns the value under tag, [ErrNotFound] when there is none,
	// or an error matching [ErrUnavailable] when the backend fails.
	Get(ctx context.Context, tag Tag) (string, error)

	// Set replaces any previous value under tag.
	Set(ctx context.Context, tag Tag, value string) error

	// Clear removes the value under tag. Clearing an absent tag is not an error.
	Clear(ctx context.Context, tag Tag) error
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}
