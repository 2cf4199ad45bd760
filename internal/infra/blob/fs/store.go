// Package fs implements the artifact tree on the local filesystem.
package fs

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"dicomstatic/internal/blob/core"
)

const tempPrefix = ".tmp-"

// Store persists artifacts as plain files under a root directory. Keys map
// one-to-one to relative paths, so the on-disk layout is the canonical tree.
type Store struct {
	root string
}

// New returns a filesystem store rooted at dir, creating the directory when
// it does not exist.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("fs: root directory required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute tree root.
func (s *Store) Root() string { return s.root }

// Driver returns the backend identifier.
func (s *Store) Driver() core.Driver { return core.DriverFilesystem }

func (s *Store) pathFor(key string) (string, error) {
	clean, err := core.CleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// Write stores data under key. The artifact is staged in a temporary file in
// the target directory and renamed into place, so readers never observe a
// partial artifact and re-writes replace atomically.
func (s *Store) Write(_ context.Context, key string, data []byte) error {
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// Open returns a reader over the artifact bytes. Missing artifacts surface
// as fs.ErrNotExist via the underlying *PathError.
func (s *Store) Open(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, core.NotExist(key)
	}
	return f, nil
}

// Exists reports whether key names a stored artifact.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// List returns the immediate children of dir sorted by name. Staged
// temporary files are excluded. A missing dir yields an empty slice.
func (s *Store) List(_ context.Context, dir string) ([]core.Entry, error) {
	path := s.root
	if dir != "" {
		var err error
		path, err = s.pathFor(dir)
		if err != nil {
			return nil, err
		}
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]core.Entry, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), tempPrefix) {
			continue
		}
		out = append(out, core.Entry{Name: e.Name(), Dir: e.IsDir()})
	}
	return out, nil
}

// Keys walks the tree and returns every artifact key with the given prefix,
// sorted lexically.
func (s *Store) Keys(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), tempPrefix) {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if prefix == "" || strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}
