package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type file struct {
	Token string `json:"token"`
}

// Session holds the bearer token persisted between runs. The file is read
// once by Load; later reads come from memory.
type Session struct {
	path string

	mu    sync.RWMutex
	token string
}

// Load reads the session file at path. A missing file yields an
// unauthenticated session.
func Load(path string) (*Session, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("session: path must not be empty")
	}
	s := &Session{path: path}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: Load read: %w", err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return s, nil
	}

	var f file
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("session: Load decode: %w", err)
	}
	s.token = strings.TrimSpace(f.Token)
	return s, nil
}

// InMemory returns a session that is never persisted.
func InMemory(token string) *Session {
	return &Session{token: strings.TrimSpace(token)}
}

func (s *Session) Path() string {
	return s.path
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Save stores token in memory and on disk with 0600 permissions.
func (s *Session) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("session: token must not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path != "" {
		if err := writeFile(s.path, file{Token: token}); err != nil {
			return err
		}
	}
	s.token = token
	return nil
}

// Clear forgets the token and removes the session file.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("session: Clear: %w", err)
	}
	return nil
}

func writeFile(path string, f file) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("session: Save mkdir: %w", err)
	}
	raw, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("session: Save encode: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("session: Save write: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("session: Save rename: %w", err)
	}
	return nil
}
