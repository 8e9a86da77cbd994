// Package keystore provides encrypted storage for Puter auth tokens.
package keystore

import (
	"os"
	"path/filepath"
	"runtime"
)

// Keystore defines the interface for secure token storage.
type Keystore interface {
	// Set stores a token under an account name.
	Set(account, token string) error
	// Get retrieves a token by account name. Returns error if not found.
	Get(account string) (string, error)
	// Delete removes a token by account name.
	Delete(account string) error
	// List returns all stored account names.
	List() ([]string, error)
}

// ErrTokenNotFound is returned when a requested account does not exist.
type ErrTokenNotFound struct {
	Account string
}

func (e *ErrTokenNotFound) Error() string {
	return "no token stored for account: " + e.Account
}

// DefaultKeystorePath returns the default keystore file path.
// - macOS/Linux: ~/.puterai/tokens.enc
// - Windows: %USERPROFILE%\.puterai\tokens.enc
func DefaultKeystorePath() string {
	var homeDir string

	if runtime.GOOS == "windows" {
		homeDir = os.Getenv("USERPROFILE")
	} else {
		homeDir = os.Getenv("HOME")
	}

	if homeDir == "" {
		return "tokens.enc"
	}

	return filepath.Join(homeDir, ".puterai", "tokens.enc")
}

// NewKeystore creates a new keystore using file-based encrypted storage.
func NewKeystore() (Keystore, error) {
	return NewFileKeystore(DefaultKeystorePath())
}
