// Package fsutil provides file system utility functions.
package fsutil

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// Digester computes sha256 content digests for files on the local file
// system. It implements the hash.FileDigester collaborator interface.
type Digester struct {
	// Root is prepended to relative paths; empty means the process working
	// directory.
	Root string
}

// Digest returns a hex sha256 digest per requested path. The first
// unreadable path fails the whole call with an error wrapping the
// underlying *fs.PathError.
func (d *Digester) Digest(ctx context.Context, paths []string) (map[string]string, error) {
	digests := make(map[string]string, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		full := p
		if d.Root != "" {
			full = filepath.Join(d.Root, p)
		}
		data, err := os.ReadFile(full)
		if err != nil {
			return nil, fmt.Errorf("failed to digest input '%s': %w", p, err)
		}
		sum := sha256.Sum256(data)
		digests[p] = hex.EncodeToString(sum[:])
	}
	return digests, nil
}
