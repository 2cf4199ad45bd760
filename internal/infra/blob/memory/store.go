// Package memory implements an in-memory artifact tree for tests.
package memory

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"dicomstatic/internal/blob/core"
)

// Store implements core.Store backed by process memory. Intended for tests.
type Store struct {
	mu   sync.RWMutex
	objs map[string][]byte
}

// New returns an empty in-memory store.
func New() *Store { return &Store{objs: make(map[string][]byte)} }

// Driver returns the backend identifier.
func (s *Store) Driver() core.Driver { return core.DriverMemory }

// Write stores a copy of data under key, replacing any prior artifact.
func (s *Store) Write(_ context.Context, key string, data []byte) error {
	clean, err := core.CleanKey(key)
	if err != nil {
		return err
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	s.mu.Lock()
	s.objs[clean] = cp
	s.mu.Unlock()
	return nil
}

// Open returns a reader over a copy of the artifact bytes.
func (s *Store) Open(_ context.Context, key string) (io.ReadCloser, error) {
	clean, err := core.CleanKey(key)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	data, ok := s.objs[clean]
	s.mu.RUnlock()
	if !ok {
		return nil, core.NotExist(key)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return io.NopCloser(bytes.NewReader(cp)), nil
}

// Exists reports whether key names a stored artifact.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	clean, err := core.CleanKey(key)
	if err != nil {
		return false, err
	}
	s.mu.RLock()
	_, ok := s.objs[clean]
	s.mu.RUnlock()
	return ok, nil
}

// List derives the immediate children of dir from the stored key space,
// sorted by name.
func (s *Store) List(_ context.Context, dir string) ([]core.Entry, error) {
	prefix := ""
	if dir != "" {
		clean, err := core.CleanKey(dir)
		if err != nil {
			return nil, err
		}
		prefix = clean + "/"
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	children := make(map[string]bool)
	for k := range s.objs {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		rest := k[len(prefix):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			children[rest[:i]] = true
		} else if _, seen := children[rest]; !seen {
			children[rest] = false
		}
	}
	out := make([]core.Entry, 0, len(children))
	for name, isDir := range children {
		out = append(out, core.Entry{Name: name, Dir: isDir})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Keys returns every artifact key with the given prefix, sorted.
func (s *Store) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.objs))
	for k := range s.objs {
		if prefix == "" || strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
