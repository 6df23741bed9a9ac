package hash

import "context"

// FileDigester is the collaborator that supplies content digests for input
// files. Implementations fail with an error wrapping *fs.PathError for each
// unreadable path; glob expansion, if any, happens before this interface.
type FileDigester interface {
	// Digest returns a content digest per path. The result maps every
	// requested path or the call fails; partial results are not returned.
	Digest(ctx context.Context, paths []string) (map[string]string, error)
}
