// Package cache provides a persistent store for CIM metadata. Enumerating
// classes over the wire is the slowest part of management completion, so
// class lists and class schemas are persisted between invocations.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nacre-sh/nacre/internal/cim"
)

// Entry holds the persisted metadata of one namespace.
type Entry struct {
	Namespace  string                `json:"namespace"`
	ClassNames []string              `json:"class_names,omitempty"`
	Classes    map[string]*cim.Class `json:"classes,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
	Version    string                `json:"version"`
}

// Store manages the persistent and in-memory metadata cache.
type Store struct {
	path    string
	version string
	mu      sync.RWMutex
	entries map[string]*Entry // lowercase namespace -> entry
}

// New creates a store backed by the given file, loading any existing content.
func New(path, version string) (*Store, error) {
	s := &Store{
		path:    path,
		version: version,
		entries: make(map[string]*Entry),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return s, nil
}

func nsKey(namespace string) string { return strings.ToLower(namespace) }

// ClassNames returns the persisted class list of a namespace.
func (s *Store) ClassNames(namespace string) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, found := s.entries[nsKey(namespace)]
	if !found || entry.ClassNames == nil {
		return nil, false
	}
	return entry.ClassNames, true
}

// SetClassNames stores the class list of a namespace and persists it.
func (s *Store) SetClassNames(namespace string, names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.entry(namespace)
	entry.ClassNames = names
	entry.Timestamp = time.Now()
	return s.persist()
}

// Class returns the persisted schema of one class.
func (s *Store) Class(namespace, className string) (*cim.Class, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, found := s.entries[nsKey(namespace)]
	if !found {
		return nil, false
	}
	cls, ok := entry.Classes[strings.ToLower(className)]
	return cls, ok
}

// SetClass stores one class schema under its namespace and persists it.
func (s *Store) SetClass(cls *cim.Class) error {
	if cls == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.entry(cls.Namespace)
	if entry.Classes == nil {
		entry.Classes = map[string]*cim.Class{}
	}
	entry.Classes[strings.ToLower(cls.Name)] = cls
	entry.Timestamp = time.Now()
	return s.persist()
}

// Delete removes a namespace's entry.
func (s *Store) Delete(namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, nsKey(namespace))
	return s.persist()
}

// Clear removes all entries.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*Entry)
	return s.persist()
}

// IsFresh reports whether a namespace entry exists, was written by the same
// version, and is younger than maxAge. A zero maxAge disables the age check.
func (s *Store) IsFresh(namespace string, maxAge time.Duration) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, found := s.entries[nsKey(namespace)]
	if !found || entry.Version != s.version {
		return false
	}
	return maxAge == 0 || time.Since(entry.Timestamp) < maxAge
}

// entry returns the namespace entry, creating it if needed. Callers hold mu.
func (s *Store) entry(namespace string) *Entry {
	k := nsKey(namespace)
	entry, found := s.entries[k]
	if !found {
		entry = &Entry{Namespace: namespace, Version: s.version}
		s.entries[k] = entry
	}
	entry.Version = s.version
	return entry
}

// load reads the store from disk. Entries written by another version are
// dropped so a schema change never surfaces stale shapes.
func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}

	var entries map[string]*Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}

	for k, entry := range entries {
		if entry.Version == s.version {
			s.entries[k] = entry
		}
	}
	return nil
}

// persist writes the store to disk. Callers hold mu.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0o600)
}
