package stage3d

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Persisted keys.
const (
	KeyObjects             = "objects"
	KeyCollapsedContainers = "collapsedContainers"
	KeyViewportRotateX     = "viewportRotateX"
	KeyViewportRotateY     = "viewportRotateY"
	KeyViewportRotateZ     = "viewportRotateZ"
	KeyViewportZoom        = "viewportZoom"
	KeyViewportFov         = "viewportFov"
)

// Store is the key-value persistence collaborator. Load reports ok=false for
// a key that was never saved.
type Store interface {
	Load(key string) (value []byte, ok bool, err error)
	Save(key string, value []byte) error
}

// MemStore is an in-memory Store.
type MemStore struct {
	mu     sync.Mutex
	values map[string][]byte
	saves  int

	// SaveErr, when set, makes every Save fail with it.
	SaveErr error
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string][]byte)}
}

// Load implements Store.
func (s *MemStore) Load(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Save implements Store.
func (s *MemStore) Save(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.values[key] = append([]byte(nil), value...)
	s.saves++
	return nil
}

// Saves returns the number of successful writes.
func (s *MemStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// DirStore keeps one file per key inside a directory. Writes go through a
// temporary file and a rename so a failed write never leaves a partial value.
type DirStore struct {
	dir string
}

// NewDirStore creates the directory if needed and returns a store rooted there.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir %s: %w", dir, err)
	}
	return &DirStore{dir: dir}, nil
}

// Dir returns the store directory.
func (s *DirStore) Dir() string {
	return s.dir
}

func (s *DirStore) path(key string) (string, error) {
	if key == "" || filepath.Base(key) != key || key == "." || key == ".." {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(s.dir, key), nil
}

// Load implements Store.
func (s *DirStore) Load(key string) ([]byte, bool, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Save implements Store.
func (s *DirStore) Save(key string, value []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	f, err := os.CreateTemp(s.dir, "."+key+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(value); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
