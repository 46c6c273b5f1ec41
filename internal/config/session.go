package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type savedSession struct {
	Cookies map[string]string `yaml:"cookies"`
}

// SessionPath returns the cookie file that sits next to the profile.
func SessionPath(profile string) string {
	return filepath.Join(filepath.Dir(profile), "session.yaml")
}

// LoadSession reads saved session cookies (name → value). A missing file
// yields nil.
func LoadSession(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	var s savedSession
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	return s.Cookies, nil
}

// SaveSession writes cookies to path with owner-only permissions. An empty
// set removes the file.
func SaveSession(path string, cookies map[string]string) error {
	if len(cookies) == 0 {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove session: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	data, err := yaml.Marshal(savedSession{Cookies: cookies})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
