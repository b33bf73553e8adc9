package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Account holds the TikTok login credentials for one account.
type Account struct {
	Username     string    `json:"username"`
	Password     string    `json:"password"`
	LoginMethod  string    `json:"login_method"`
	LastModified time.Time `json:"last_modified"`
}

// CredentialStore defines the interface for credential storage backends
type CredentialStore interface {
	// Store saves the account credentials
	Store(account *Account) error

	// Retrieve gets the account credentials for a username
	Retrieve(username string) (*Account, error)

	// List returns all stored accounts
	List() ([]*Account, error)

	// Delete removes the stored credentials for a username
	Delete(username string) error

	// Exists checks if credentials exist for a username
	Exists(username string) bool
}

// Manager handles credential storage across multiple backends
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a credential manager with the default backend chain:
// OS keyring first, then an encrypted file, then environment variables.
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	// Try OS keyring first (most secure)
	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	// Encrypted file store as fallback
	configDir, err := getConfigDir()
	if err == nil {
		encPath := filepath.Join(configDir, "credentials.enc")
		if encStore, err := NewEncryptedFileStore(encPath); err == nil {
			stores = append(stores, encStore)
		}
	}

	// Environment variables as last resort (read-only)
	stores = append(stores, NewEnvironmentStore())

	if len(stores) == 0 {
		return nil, fmt.Errorf("no credential stores available")
	}

	return &Manager{stores: stores}, nil
}

// Store saves credentials using the first available backend
func (m *Manager) Store(account *Account) error {
	if account.Username == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidCredentials)
	}
	if account.Password == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidCredentials)
	}
	if account.LoginMethod == "" {
		account.LoginMethod = "email"
	}
	if account.LoginMethod != "email" && account.LoginMethod != "google" {
		return fmt.Errorf("%w: login method must be email or google, got %q", ErrInvalidCredentials, account.LoginMethod)
	}

	account.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(account); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}

	return fmt.Errorf("failed to store credentials in any backend: %w", lastErr)
}

// Retrieve gets credentials for a username from the first backend that has them
func (m *Manager) Retrieve(username string) (*Account, error) {
	var lastErr error
	for _, store := range m.stores {
		if account, err := store.Retrieve(username); err == nil {
			return account, nil
		} else {
			lastErr = err
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrCredentialsNotFound, lastErr)
}

// RetrieveDefault gets the default account. Environment variables win when
// set, otherwise the first stored account is used.
func (m *Manager) RetrieveDefault() (*Account, error) {
	// Environment variables take precedence
	envStore := NewEnvironmentStore()
	if account, err := envStore.Retrieve(""); err == nil {
		return account, nil
	}

	accounts, err := m.List()
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, ErrCredentialsNotFound
	}

	return accounts[0], nil
}

// List returns all accounts across every backend, newest first.
// Duplicate usernames keep the most recently modified entry.
func (m *Manager) List() ([]*Account, error) {
	seen := make(map[string]*Account)

	for _, store := range m.stores {
		accounts, err := store.List()
		if err != nil {
			continue
		}
		for _, account := range accounts {
			existing, ok := seen[account.Username]
			if !ok || account.LastModified.After(existing.LastModified) {
				seen[account.Username] = account
			}
		}
	}

	result := make([]*Account, 0, len(seen))
	for _, account := range seen {
		result = append(result, account)
	}

	// Newest first
	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			if result[j].LastModified.After(result[i].LastModified) {
				result[i], result[j] = result[j], result[i]
			}
		}
	}

	return result, nil
}

// Delete removes credentials for a username from every backend that has them
func (m *Manager) Delete(username string) error {
	deleted := false
	for _, store := range m.stores {
		if store.Exists(username) {
			if err := store.Delete(username); err == nil {
				deleted = true
			}
		}
	}

	if !deleted {
		return ErrCredentialsNotFound
	}
	return nil
}

// DeleteAll removes every stored account
func (m *Manager) DeleteAll() error {
	accounts, err := m.List()
	if err != nil {
		return err
	}

	for _, account := range accounts {
		m.Delete(account.Username)
	}
	return nil
}

// getConfigDir returns the tokclean config directory, creating it if needed
func getConfigDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		baseDir = filepath.Join(home, "Library", "Application Support")
	case "windows":
		baseDir = os.Getenv("APPDATA")
		if baseDir == "" {
			return "", fmt.Errorf("APPDATA not set")
		}
	default:
		baseDir = os.Getenv("XDG_CONFIG_HOME")
		if baseDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(home, ".config")
		}
	}

	configDir := filepath.Join(baseDir, "tokclean")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", err
	}

	return configDir, nil
}

// SanitizeAccount returns a copy safe for logging. The password is always
// fully masked.
func SanitizeAccount(account *Account) *Account {
	if account == nil {
		return nil
	}

	sanitized := *account
	if sanitized.Password != "" {
		sanitized.Password = strings.Repeat("*", 8)
	}
	return &sanitized
}

// Common errors
var (
	ErrCredentialsNotFound = fmt.Errorf("credentials not found")
	ErrInvalidCredentials  = fmt.Errorf("invalid credentials")
	ErrStoreUnavailable    = fmt.Errorf("credential store unavailable")
)
