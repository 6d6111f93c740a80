// Package session keeps the bearer credential used for product API calls.
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// TokenSource отдаёт текущий bearer-токен. Пустая строка допустима: запрос уйдёт без токена.
type TokenSource interface {
	Token() (string, error)
}

// FileStore хранит токен в локальном файле и перечитывает его при каждом запросе.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Token() (string, error) {
	if s.path == "" {
		return "", nil
	}
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read session token: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func (s *FileStore) Save(token string) error {
	if s.path == "" {
		return errors.New("session file not configured")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write session token: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear session token: %w", err)
	}
	return nil
}

// Static is a fixed token, handy for tests and one-off tools.
type Static string

func (s Static) Token() (string, error) { return string(s), nil }
