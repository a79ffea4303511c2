// Package settings persists the client's user-editable settings as TOML.
package settings

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/google/renameio/v2"
)

type Settings struct {
	ServerURL   string `toml:"server_url"`
	FallbackDir string `toml:"fallback_dir,omitempty"`
	AuthToken   string `toml:"auth_token,omitempty"`
}

// DefaultPath is <UserConfigDir>/scribely/settings.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(dir, "scribely", "settings.toml"), nil
}

// Store reads the settings file on every access so edits made by another
// process are picked up without a restart.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// Load returns the zero Settings when the file does not exist yet.
func (s *Store) Load() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (Settings, error) {
	var out Settings
	if _, err := toml.DecodeFile(s.path, &out); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Settings{}, nil
		}
		return Settings{}, fmt.Errorf("failed to parse settings file %s: %w", s.path, err)
	}
	return out, nil
}

func (s *Store) Save(v Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(v)
}

func (s *Store) save(v Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := renameio.WriteFile(s.path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}

// ServerURL returns the configured server URL, or "" when none is set or the
// file cannot be read.
func (s *Store) ServerURL() string {
	v, err := s.Load()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(v.ServerURL)
}

func (s *Store) SetServerURL(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.load()
	if err != nil {
		return err
	}
	v.ServerURL = strings.TrimSpace(url)
	return s.save(v)
}

// Token returns the optional bearer token for the intake API.
func (s *Store) Token() string {
	v, err := s.Load()
	if err != nil {
		return ""
	}
	return v.AuthToken
}
