package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// FileStore persists the token as JSON at a fixed path, created on first
// consent and overwritten in place on refresh.
type FileStore struct {
	Path string
}

func (s *FileStore) Load() (*oauth2.Token, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("decoding token file %s: %w", s.Path, err)
	}
	return token, nil
}

func (s *FileStore) Save(token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("creating credentials directory: %w", err)
	}

	f, err := os.OpenFile(s.Path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("opening token file %s: %w", s.Path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("writing token file %s: %w", s.Path, err)
	}
	return nil
}
