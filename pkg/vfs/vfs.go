// Package vfs holds compiler artifacts in memory until they are persisted
// to an output directory.
package vfs

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

// MaxStoreBytes caps the total size of all artifacts in one store.
const MaxStoreBytes = 16 << 20

// validName accepts a base name plus one or more extensions, e.g.
// "Factorial.asm" or "Factorial.vm.zip". Path separators are never valid.
var validName = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_-]{0,63}(\.[A-Za-z0-9]{1,8}){0,3}$`)

var (
	ErrNotFound      = errors.New("artifact not found")
	ErrInvalidName   = errors.New("invalid artifact name")
	ErrQuotaExceeded = errors.New("artifact store quota exceeded")
)

type Artifact struct {
	Data     []byte
	Created  time.Time
	Modified time.Time
}

// Kind is the final extension of name without the dot, e.g. "asm".
func Kind(name string) string {
	return strings.TrimPrefix(filepath.Ext(name), ".")
}

// Store is an in-memory set of named artifacts. Writes mark an artifact
// dirty until the next PersistTo.
type Store struct {
	mu        sync.RWMutex
	files     map[string]*Artifact
	dirty     map[string]bool
	usedBytes int
}

func NewStore() *Store {
	return &Store{
		files: make(map[string]*Artifact),
		dirty: make(map[string]bool),
	}
}

// Write stores a copy of data under name, replacing any previous version.
func (s *Store) Write(name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !validName.MatchString(name) {
		return ErrInvalidName
	}

	oldSize := 0
	entry, ok := s.files[name]
	if ok {
		oldSize = len(entry.Data)
	}

	newSize := len(data)
	if s.usedBytes-oldSize+newSize > MaxStoreBytes {
		return ErrQuotaExceeded
	}

	newData := make([]byte, newSize)
	copy(newData, data)

	if entry == nil {
		entry = &Artifact{Created: time.Now()}
		s.files[name] = entry
	}
	entry.Data = newData
	entry.Modified = time.Now()

	s.dirty[name] = true
	s.usedBytes = s.usedBytes - oldSize + newSize
	return nil
}

func (s *Store) WriteString(name, text string) error {
	return s.Write(name, []byte(text))
}

func (s *Store) Read(name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !validName.MatchString(name) {
		return nil, ErrInvalidName
	}
	entry, ok := s.files[name]
	if !ok {
		return nil, ErrNotFound
	}
	return entry.Data, nil
}

func (s *Store) Size(name string) (int, error) {
	data, err := s.Read(name)
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

// Delete removes name. The next PersistTo also removes it from disk.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !validName.MatchString(name) {
		return ErrInvalidName
	}
	entry, ok := s.files[name]
	if !ok {
		return ErrNotFound
	}

	s.usedBytes -= len(entry.Data)
	delete(s.files, name)
	s.dirty[name] = true
	return nil
}

func (s *Store) UsedBytes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usedBytes
}

// Dirty reports whether anything changed since the last PersistTo.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.dirty) > 0
}

// List returns all artifact names, sorted.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.files))
	for k := range s.files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Store) GetMeta(name string) (time.Time, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !validName.MatchString(name) {
		return time.Time{}, time.Time{}, ErrInvalidName
	}
	entry, ok := s.files[name]
	if !ok {
		return time.Time{}, time.Time{}, ErrNotFound
	}
	return entry.Created, entry.Modified, nil
}

// LoadFrom reads every regular file with a valid name from dir. A missing
// directory is not an error.
func (s *Store) LoadFrom(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !validName.MatchString(name) {
			continue
		}

		fullPath := filepath.Join(dir, name)
		raw, err := os.ReadFile(fullPath)
		if err != nil {
			continue
		}

		a := &Artifact{Data: raw, Created: time.Now(), Modified: time.Now()}
		if info, err := os.Stat(fullPath); err == nil {
			a.Created = info.ModTime()
			a.Modified = info.ModTime()
		}
		if old, ok := s.files[name]; ok {
			s.usedBytes -= len(old.Data)
		}
		s.files[name] = a
		s.usedBytes += len(raw)
	}
	return nil
}

// PersistTo writes dirty artifacts to dir, creating it if needed, and
// removes deleted ones. It returns the first I/O error; artifacts that
// failed stay dirty.
func (s *Store) PersistTo(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// copy under the lock, then do I/O without it
	s.mu.Lock()
	snapshot := make(map[string]*Artifact)
	var deleted []string
	for name := range s.dirty {
		if entry, ok := s.files[name]; ok {
			data := make([]byte, len(entry.Data))
			copy(data, entry.Data)
			snapshot[name] = &Artifact{Data: data, Created: entry.Created, Modified: entry.Modified}
		} else {
			deleted = append(deleted, name)
		}
		delete(s.dirty, name)
	}
	s.mu.Unlock()

	var firstErr error
	for _, name := range deleted {
		err := os.Remove(filepath.Join(dir, name))
		if err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}

	for name, entry := range snapshot {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, entry.Data, 0644); err != nil {
			s.mu.Lock()
			s.dirty[name] = true
			s.mu.Unlock()
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		_ = os.Chtimes(path, time.Now(), entry.Modified)
	}
	return firstErr
}
