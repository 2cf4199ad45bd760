// Package blob re-exports the artifact tree abstractions and constructs
// storage backends. Higher layers import only this package; the concrete
// drivers live under internal/infra/blob.
package blob

import (
	"context"

	"dicomstatic/internal/blob/core"
	infrafs "dicomstatic/internal/infra/blob/fs"
	inframemory "dicomstatic/internal/infra/blob/memory"
	infras3 "dicomstatic/internal/infra/blob/s3"
)

type (
	// Driver identifies a storage backend driver.
	Driver = core.Driver
	// Entry describes one immediate child of a tree node.
	Entry = core.Entry
	// Store is the artifact tree contract implemented by all backends.
	Store = core.Store
)

const (
	// DriverFilesystem is the local filesystem driver (default).
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3-compatible driver.
	DriverS3 = core.DriverS3
	// DriverMemory is the in-memory test driver.
	DriverMemory = core.DriverMemory
)

// ErrInvalidKey reports a key that escapes the tree or is empty.
var ErrInvalidKey = core.ErrInvalidKey

// NewFilesystem constructs a filesystem-backed store rooted at dir.
func NewFilesystem(dir string) (Store, error) { return infrafs.New(dir) }

// NewMemory constructs an in-memory store.
func NewMemory() Store { return inframemory.New() }

// S3Config re-exports the S3 backend configuration.
type S3Config = infras3.Config

// NewS3 constructs an S3-backed store from the provided configuration.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) { return infras3.New(ctx, cfg) }

// NewMockS3ForTests exposes the in-memory S3 mock for cross-package tests.
func NewMockS3ForTests() Store { return infras3.NewMockForTests() }
