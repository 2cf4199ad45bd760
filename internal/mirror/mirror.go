// Package mirror copies a populated artifact tree between storage backends.
// Keys are identical on both sides, so a mirrored bucket serves the same
// layout the filesystem tree does.
package mirror

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"dicomstatic/internal/blob"
)

// Sync copies every artifact under src to dst, overwriting what is already
// there, and returns the number of artifacts written. Keys are visited in
// lexical order so repeated runs touch the tree identically.
func Sync(ctx context.Context, src, dst blob.Store, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	keys, err := src.Keys(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("enumerate source: %w", err)
	}
	for i, key := range keys {
		if err := copyKey(ctx, src, dst, key); err != nil {
			return i, err
		}
		logger.Debug("artifact mirrored", zap.String("key", key))
	}
	logger.Info("mirror complete",
		zap.Int("artifacts", len(keys)),
		zap.String("source", string(src.Driver())),
		zap.String("destination", string(dst.Driver())))
	return len(keys), nil
}

func copyKey(ctx context.Context, src, dst blob.Store, key string) error {
	rc, err := src.Open(ctx, key)
	if err != nil {
		return fmt.Errorf("open %s: %w", key, err)
	}
	data, err := io.ReadAll(rc)
	if cerr := rc.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if err := dst.Write(ctx, key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
