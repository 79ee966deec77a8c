package sdk

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type StoredSession struct {
	Token       string `yaml:"token"`
	AccountID   string `yaml:"account_id"`
	Email       string `yaml:"email"`
	DisplayName string `yaml:"display_name,omitempty"`
}

// SessionFile keeps the session token on disk with owner-only permissions.
type SessionFile struct {
	Path string
}

func NewSessionFile(path string) *SessionFile {
	return &SessionFile{Path: path}
}

// Load returns a zero session when the file does not exist.
func (f *SessionFile) Load() (StoredSession, error) {
	raw, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return StoredSession{}, nil
	}
	if err != nil {
		return StoredSession{}, fmt.Errorf("failed to read session file: %w", err)
	}

	var s StoredSession
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return StoredSession{}, fmt.Errorf("failed to parse session file: %w", err)
	}
	return s, nil
}

func (f *SessionFile) Save(s StoredSession) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	raw, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(f.Path, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

func (f *SessionFile) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
