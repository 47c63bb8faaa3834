package auth

import (
	"errors"

	"github.com/zalando/go-keyring"
)

type keyringBackend struct{}

func (keyringBackend) location() string { return "system keyring" }

func (keyringBackend) get() (string, error) {
	v, err := keyring.Get(serviceName, SessionKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", errNotFound
	}
	return v, err
}

func (keyringBackend) set(value string) error {
	return keyring.Set(serviceName, SessionKey, value)
}

func (keyringBackend) remove() error {
	err := keyring.Delete(serviceName, SessionKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return errNotFound
	}
	return err
}

// keyringAvailable probes the keyring with a throwaway entry.
func keyringAvailable() bool {
	const testKey = "moviepilot::probe"
	if err := keyring.Set(serviceName, testKey, "probe"); err != nil {
		return false
	}
	_ = keyring.Delete(serviceName, testKey)
	return true
}
