package credentials

import (
	"context"
	"errors"

	"github.com/zalando/go-keyring"
)

const defaultService = "mysubs"

// KeyringStore keeps secrets in the OS keychain under one service name, one entry per tag.
type KeyringStore struct {
	service string
}

// NewKeyringStore creates a keychain store. An empty service falls back to "mysubs".
func NewKeyringStore(service string) *KeyringStore {
	if service == "" {
		service = defaultService
	}
	return &KeyringStore{service: service}
}

func (k *KeyringStore) Get(ctx context.Context, tag Tag) (string, error) {
	v, err := keyring.Get(k.service, string(tag))
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return "", ErrNotFound
	case err != nil:
		return "", unavailable("keyring get", err)
	}
	return v, nil
}

// Set overwrites the keychain entry. The keychain replaces entries in place, so no clear is needed first.
func (k *KeyringStore) Set(ctx context.Context, tag Tag, value string) error {
	if err := keyring.Set(k.service, string(tag), value); err != nil {
		return unavailable("keyring set", err)
	}
	return nil
}

func (k *KeyringStore) Clear(ctx context.Context, tag Tag) error {
	err := keyring.Delete(k.service, string(tag))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return unavailable("keyring delete", err)
	}
	return nil
}

// Probe writes and removes a throwaway entry to check that a keychain is reachable.
func (k *KeyringStore) Probe() error {
	const probe = "mysubs::probe"
	if err := keyring.Set(k.service, probe, "probe"); err != nil {
		return unavailable("keyring probe", err)
	}
	_ = keyring.Delete(k.service, probe)
	return nil
}
