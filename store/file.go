package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"storefront_cli/domain"
)

// FileStore is a JSON file-backed implementation of
// domain.CredentialStore. The file holds one credentials record; saves
// go through a tmp file and rename so a crash never leaves a torn file.
type FileStore struct {
	mu    sync.RWMutex
	creds domain.Credentials
	path  string
}

// compile-time assertion
var _ domain.CredentialStore = (*FileStore)(nil)

// NewFileStore constructs a FileStore at the given path. If the file
// exists it will be loaded; a missing file means no stored session.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	if err := s.loadFromFile(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) loadFromFile() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			// no file yet; that's fine
			return nil
		}
		return err
	}
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, &s.creds)
}

func (s *FileStore) saveToFile() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(s.creds, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) Load(ctx context.Context) (domain.Credentials, error) {
	if err := ctx.Err(); err != nil {
		return domain.Credentials{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds, nil
}

func (s *FileStore) Save(ctx context.Context, creds domain.Credentials) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
	return s.saveToFile()
}

func (s *FileStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = domain.Credentials{}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
