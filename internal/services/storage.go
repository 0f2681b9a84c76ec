package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStorage persists generated files under names relative to its root.
type FileStorage interface {
	Save(name string, data []byte) (string, error)
	Read(name string) ([]byte, error)
}

type LocalStorage struct {
	root string
}

func NewLocalStorage(root string) *LocalStorage {
	return &LocalStorage{root: root}
}

func (s *LocalStorage) resolve(name string) (string, error) {
	clean := filepath.Clean("/" + name)
	full := filepath.Join(s.root, clean)
	if !strings.HasPrefix(full, filepath.Clean(s.root)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return full, nil
}

// Save writes data atomically and returns the stored name.
func (s *LocalStorage) Save(name string, data []byte) (string, error) {
	full, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, full); err != nil {
		return "", err
	}
	return filepath.ToSlash(strings.TrimPrefix(filepath.Clean("/"+name), "/")), nil
}

func (s *LocalStorage) Read(name string) ([]byte, error) {
	full, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}
