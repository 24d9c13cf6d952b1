package toy

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ardnew/softportal/pkg"
)

// Store defines the interface for toy image backends.
// Images are raw memory dumps with no header or checksum.
type Store interface {
	// Load returns a copy of the image stored under key.
	// Returns pkg.ErrToyNotFound if no image exists.
	Load(key string) ([]byte, error)

	// Save replaces the image stored under key.
	// Readers never observe a partially written image.
	Save(key string, data []byte) error

	// Close releases resources held by the store.
	Close() error
}

// Lister is implemented by stores that can enumerate their keys.
type Lister interface {
	Keys() ([]string, error)
}

// DefaultKeyPattern maps slot indexes to image names.
const DefaultKeyPattern = "slot-%02d.bin"

// KeyPattern maps a slot index to a storage key using a fmt verb.
type KeyPattern string

// Key returns the storage key for slot index.
func (p KeyPattern) Key(index int) string {
	if p == "" {
		p = DefaultKeyPattern
	}
	return fmt.Sprintf(string(p), index)
}

// Validate checks that the pattern formats exactly one integer.
func (p KeyPattern) Validate() error {
	if p == "" {
		return nil
	}
	if strings.Count(string(p), "%") != 1 {
		return fmt.Errorf("key pattern %q: want exactly one verb: %w", string(p), pkg.ErrInvalidParameter)
	}
	if k := p.Key(0); strings.Contains(k, "%!") {
		return fmt.Errorf("key pattern %q: %w", string(p), pkg.ErrInvalidParameter)
	}
	return nil
}

// MemoryStore implements Store using in-memory buffers.
type MemoryStore struct {
	images map[string][]byte
	mutex  sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{images: make(map[string][]byte)}
}

// Load returns a copy of the image under key.
func (m *MemoryStore) Load(key string) ([]byte, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	data, ok := m.images[key]
	if !ok {
		return nil, pkg.ErrToyNotFound
	}
	return append([]byte(nil), data...), nil
}

// Save stores a copy of data under key.
func (m *MemoryStore) Save(key string, data []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.images[key] = append([]byte(nil), data...)
	return nil
}

// Keys lists the stored image keys in order.
func (m *MemoryStore) Keys() ([]string, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	keys := make([]string, 0, len(m.images))
	for k := range m.images {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op for memory storage.
func (m *MemoryStore) Close() error {
	return nil
}

// FileStore implements Store with one raw image file per key under a root
// directory.
type FileStore struct {
	root string
}

// NewFileStore creates a file store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create toy dir: %w", err)
	}
	return &FileStore{root: dir}, nil
}

// Root returns the store's root directory.
func (f *FileStore) Root() string {
	return f.root
}

// Path returns the file path backing key.
func (f *FileStore) Path(key string) string {
	return filepath.Join(f.root, filepath.FromSlash(key))
}

// Load reads the image file for key.
func (f *FileStore) Load(key string) ([]byte, error) {
	data, err := os.ReadFile(f.Path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, pkg.ErrToyNotFound
		}
		return nil, err
	}
	return data, nil
}

// Save atomically replaces the image file for key by writing a temporary
// file in the same directory and renaming it over the existing one.
func (f *FileStore) Save(key string, data []byte) error {
	path := f.Path(key)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Keys lists the image files under the root in order, as slash-separated
// keys. Hidden files, including in-progress saves, are skipped.
func (f *FileStore) Keys() ([]string, error) {
	var keys []string
	err := filepath.WalkDir(f.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != f.root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(f.root, path)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op for file storage.
func (f *FileStore) Close() error {
	return nil
}

// Compile-time interface checks
var (
	_ Store  = (*MemoryStore)(nil)
	_ Store  = (*FileStore)(nil)
	_ Lister = (*MemoryStore)(nil)
	_ Lister = (*FileStore)(nil)
	_ Lister = (*SQLiteStore)(nil)
)
