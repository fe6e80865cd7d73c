package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/arorarohan/strava-data-analysis/pkg"

	"github.com/BurntSushi/toml"
)

// ErrMissingCredentials - the credentials file is absent, unreadable,
// or missing the client keys; the user must create it from the template first.
var ErrMissingCredentials = errors.New("credentials missing")

type Credentials struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	AccessToken  string `toml:"access_token,omitempty"`
	RefreshToken string `toml:"refresh_token,omitempty"`
	ExpiresAt    int64  `toml:"expires_at,omitempty"`
}

func (c Credentials) HasToken() bool {
	return c.AccessToken != ""
}

// Expired reports whether the access token is stale at the given moment.
// A token with unknown expiry is treated as expired, forcing a refresh.
func (c Credentials) Expired(now time.Time) bool {
	if c.AccessToken == "" || c.ExpiresAt == 0 {
		return true
	}
	return now.Unix() >= c.ExpiresAt
}

// FileStore persists the credentials as a small TOML file.
// Single process, single invocation - no locking, but writes are atomic
// (temp file + rename) so a killed process cannot leave a corrupt store.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
	}
}

func (s *FileStore) Load() (Credentials, error) {
	var creds Credentials

	if exists, err := pkg.PathExists(s.path, false); err != nil || !exists {
		return creds, fmt.Errorf("%w: credentials file not found at %s (copy credentials.example.toml and fill in the client keys)", ErrMissingCredentials, s.path)
	}

	if _, err := toml.DecodeFile(s.path, &creds); err != nil {
		return creds, fmt.Errorf("%w: malformed credentials file %s: %s", ErrMissingCredentials, s.path, err)
	}

	if creds.ClientID == "" || creds.ClientSecret == "" {
		return creds, fmt.Errorf("%w: client_id and client_secret must be set in %s", ErrMissingCredentials, s.path)
	}

	return creds, nil
}

func (s *FileStore) Save(creds Credentials) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(s.path), ".credentials-*.toml")
	if err != nil {
		return fmt.Errorf("create temp credentials file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if err := toml.NewEncoder(tmpFile).Encode(creds); err != nil {
		tmpFile.Close()
		return fmt.Errorf("encode credentials: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp credentials file: %w", err)
	}

	if err := os.Chmod(tmpFile.Name(), 0o600); err != nil {
		return fmt.Errorf("chmod temp credentials file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), s.path); err != nil {
		return fmt.Errorf("replace credentials file: %w", err)
	}

	return nil
}
