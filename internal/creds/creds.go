// Package creds stores platform passwords in the operating system
// keychain so they never land in config files or the project store.
package creds

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const service = "photomise-atprotocol"

// ErrNotFound indicates no password is stored for the user.
var ErrNotFound = errors.New("no stored credential")

// Get returns the stored password for a user handle.
func Get(user string) (string, error) {
	secret, err := keyring.Get(service, user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, user)
		}
		return "", fmt.Errorf("read keychain: %w", err)
	}
	return secret, nil
}

// Set stores the password for a user handle, replacing any previous one.
func Set(user, password string) error {
	if err := keyring.Set(service, user, password); err != nil {
		return fmt.Errorf("write keychain: %w", err)
	}
	return nil
}

// Delete removes the stored password for a user handle.
func Delete(user string) error {
	if err := keyring.Delete(service, user); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete keychain entry: %w", err)
	}
	return nil
}
