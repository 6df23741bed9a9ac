package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// artifactExtension is the on-disk artifact naming convention shared with
// the executor that populates the cache.
const artifactExtension = ".tar.zst"

// DirBackend checks a local cache directory for artifacts by hash. It only
// ever stats paths; it never creates the directory or its entries.
type DirBackend struct {
	Dir string
}

// Exists reports whether an artifact file for the hash is present.
func (b *DirBackend) Exists(ctx context.Context, hash string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(filepath.Join(b.Dir, hash+artifactExtension))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat local cache entry: %w", err)
	}
	return true, nil
}
