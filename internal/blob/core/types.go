// Package core defines the storage abstractions shared by the artifact tree
// backends used by the archive and retrieval services.
package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
)

// Driver identifies a concrete artifact storage backend implementation.
type Driver string

const (
	// DriverFilesystem represents the local filesystem implementation (default).
	DriverFilesystem Driver = "fs"
	// DriverS3 represents an S3 / MinIO compatible implementation.
	DriverS3 Driver = "s3"
	// DriverMemory represents an in-memory implementation typically used in tests.
	DriverMemory Driver = "memory"
)

// Entry describes one immediate child of a tree node. Dir is true when the
// child contains further children rather than artifact bytes.
type Entry struct {
	Name string `json:"name"`
	Dir  bool   `json:"dir"`
}

// Store is the artifact tree contract shared by all backends. Keys are
// slash-separated paths relative to the configured root. Write replaces any
// existing artifact atomically so readers never observe partial content;
// absence is reported via errors matching fs.ErrNotExist.
type Store interface {
	Write(ctx context.Context, key string, data []byte) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	// List returns the immediate children of dir sorted by name. A missing
	// dir yields an empty slice, not an error.
	List(ctx context.Context, dir string) ([]Entry, error)
	// Keys returns every artifact key with the given prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Driver() Driver
}

// ErrInvalidKey reports a key that escapes the tree or is empty.
var ErrInvalidKey = errors.New("blobstore: invalid key")

// CleanKey canonicalizes a slash-separated key and rejects keys that are
// empty, absolute, or traverse outside the tree.
func CleanKey(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	clean := path.Clean(key)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return clean, nil
}

// NotExist wraps fs.ErrNotExist with the missing key for uniform absence
// reporting across backends.
func NotExist(key string) error {
	return fmt.Errorf("artifact %s: %w", key, fs.ErrNotExist)
}
