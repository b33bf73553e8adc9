package auth

import (
	"os"
)

// EnvironmentStore reads credentials from environment variables.
// It is read-only: Store and Delete always fail.
type EnvironmentStore struct{}

// NewEnvironmentStore creates an environment variable store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve builds an account from TIKTOK_USERNAME and TIKTOK_PASSWORD.
// The username argument is ignored; the environment defines the account.
func (e *EnvironmentStore) Retrieve(username string) (*Account, error) {
	envUsername := os.Getenv("TIKTOK_USERNAME")
	envPassword := os.Getenv("TIKTOK_PASSWORD")

	if envUsername == "" || envPassword == "" {
		return nil, ErrCredentialsNotFound
	}

	loginMethod := os.Getenv("LOGIN_METHOD")
	if loginMethod == "" {
		loginMethod = "email"
	}

	return &Account{
		Username:    envUsername,
		Password:    envPassword,
		LoginMethod: loginMethod,
	}, nil
}

// List returns the environment account when one is configured
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(username string) error {
	return ErrStoreUnavailable
}

// Exists checks if the environment holds a complete set of credentials
func (e *EnvironmentStore) Exists(username string) bool {
	_, err := e.Retrieve(username)
	return err == nil
}
