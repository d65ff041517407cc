package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const fileExt = ".json"

// FileStore keeps one JSON file per key in a directory. Writes go through a
// temp file and a rename so readers in other processes never see a partial
// entry.
type FileStore struct {
	dir        string
	enabled    bool
	ttlSeconds int

	mu sync.RWMutex
}

// Stats summarizes the files in a FileStore.
type Stats struct {
	Directory string
	Entries   int
	Bytes     int64
}

// NewFileStore opens a store in dir, creating it if needed. A disabled store
// answers every call with ErrCacheDisabled.
func NewFileStore(dir string, enabled bool, ttlSeconds int) (*FileStore, error) {
	if !enabled {
		return &FileStore{}, nil
	}
	if dir == "" {
		return nil, errors.New("cache: directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("cache: creating %s: %w", dir, err)
	}
	return &FileStore{dir: dir, enabled: true, ttlSeconds: ttlSeconds}, nil
}

// Directory is the directory holding the entry files.
func (s *FileStore) Directory() string { return s.dir }

func (s *FileStore) guard(key string) error {
	if !s.enabled {
		return ErrCacheDisabled
	}
	if key == "" {
		return ErrInvalidCacheKey
	}
	return nil
}

// path names the entry file after the SHA-256 of key, so no two keys share
// a file whatever characters the agent name contains.
func (s *FileStore) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+fileExt)
}

// Get returns the entry for key. An expired entry is removed and reported
// as ErrCacheExpired. A file whose stored key differs from key is reported
// as ErrCacheNotFound.
func (s *FileStore) Get(key string) (*Entry, error) {
	if err := s.guard(key); err != nil {
		return nil, err
	}
	path := s.path(key)

	s.mu.RLock()
	entry, err := readEntry(path)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	if entry.Key != key {
		return nil, ErrCacheNotFound
	}

	if entry.IsExpired() {
		s.mu.Lock()
		_ = os.Remove(path)
		s.mu.Unlock()
		return nil, ErrCacheExpired
	}
	return entry, nil
}

// Set writes data under key with the store's TTL.
func (s *FileStore) Set(key string, data json.RawMessage) error {
	if err := s.guard(key); err != nil {
		return err
	}

	buf, err := json.MarshalIndent(NewEntry(key, data, s.ttlSeconds), "", "  ")
	if err != nil {
		return fmt.Errorf("cache: encoding %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)
	tmp := path + ".tmp"
	if err = os.WriteFile(tmp, buf, 0600); err != nil {
		return fmt.Errorf("cache: writing %s: %w", key, err)
	}
	if err = os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("cache: writing %s: %w", key, err)
	}
	return nil
}

// Delete removes key. A missing key is not an error.
func (s *FileStore) Delete(key string) error {
	if err := s.guard(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cache: deleting %s: %w", key, err)
	}
	return nil
}

// Clear removes every entry file. Other files in the directory are left.
func (s *FileStore) Clear() error {
	if !s.enabled {
		return ErrCacheDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.walk(func(path string, _ fs.DirEntry) error {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("cache: removing %s: %w", filepath.Base(path), err)
		}
		return nil
	})
}

// CleanupExpired removes expired entries and returns how many went.
// Unreadable files are skipped.
func (s *FileStore) CleanupExpired() (int, error) {
	if !s.enabled {
		return 0, ErrCacheDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	err := s.walk(func(path string, _ fs.DirEntry) error {
		entry, err := readEntry(path)
		if err != nil || !entry.IsExpired() {
			return nil
		}
		if os.Remove(path) == nil {
			removed++
		}
		return nil
	})
	return removed, err
}

// Stats counts entry files, expired ones included, and their total size.
func (s *FileStore) Stats() (Stats, error) {
	if !s.enabled {
		return Stats{}, ErrCacheDisabled
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{Directory: s.dir}
	err := s.walk(func(_ string, d fs.DirEntry) error {
		info, err := d.Info()
		if err != nil {
			return nil
		}
		stats.Entries++
		stats.Bytes += info.Size()
		return nil
	})
	return stats, err
}

// walk calls fn for each entry file. The caller holds mu.
func (s *FileStore) walk(fn func(path string, d fs.DirEntry) error) error {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("cache: reading %s: %w", s.dir, err)
	}
	for _, d := range dirEntries {
		if d.IsDir() || filepath.Ext(d.Name()) != fileExt {
			continue
		}
		if err = fn(filepath.Join(s.dir, d.Name()), d); err != nil {
			return err
		}
	}
	return nil
}

func readEntry(path string) (*Entry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrCacheNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache: reading %s: %w", filepath.Base(path), err)
	}

	var entry Entry
	if err = json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("cache: decoding %s: %w", filepath.Base(path), err)
	}
	return &entry, nil
}
