package hash

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/vk/monoplan/internal/config"
)

// TaskHash is the fixed-width lowercase hex digest identifying one unit of
// work (a full sha256, 64 characters).
type TaskHash string

func (h TaskHash) String() string { return string(h) }

// HashError reports that a task's hash could not be computed, most commonly
// because an input file digest was unavailable. It wraps the collaborator's
// original error.
type HashError struct {
	Task string
	Err  error
}

func (e *HashError) Error() string {
	return fmt.Sprintf("failed to hash task '%s': %v", e.Task, e.Err)
}

func (e *HashError) Unwrap() error { return e.Err }

// Input carries every determining input of a task hash. All sequences are
// ordered explicitly before hashing; map iteration order never leaks into
// the digest.
type Input struct {
	// Command is the resolved command string.
	Command string
	// Definition is the total merge result for the task.
	Definition config.ResolvedTaskDefinition
	// InputDigests maps input file paths to their content digests.
	InputDigests map[string]string
	// EnvValues maps each declared environment variable name to its value.
	// Undeclared variables must not appear here.
	EnvValues map[string]string
	// UpstreamHashes holds dependency hashes in declared dependency order.
	UpstreamHashes []TaskHash
}

// Compute derives the deterministic TaskHash for the given inputs.
//
// Every field is length-prefixed and every section is preceded by an
// explicit element count, so an absent section contributes the count 0
// rather than being skipped and adjacent fields can never be confused.
// Env names are sorted lexicographically; input digests are ordered by
// path; upstream hashes keep their dependency order.
func Compute(in Input) TaskHash {
	h := sha256.New()
	write := func(data []byte) {
		var prefix [8]byte
		binary.BigEndian.PutUint64(prefix[:], uint64(len(data)))
		h.Write(prefix[:])
		h.Write(data)
	}
	writeCount := func(n int) {
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(n))
		h.Write(buf[:])
	}

	write([]byte(in.Command))

	// The resolved definition has a fixed field set and order, so its JSON
	// encoding is canonical.
	defJSON, err := json.Marshal(in.Definition)
	if err != nil {
		// ResolvedTaskDefinition is a plain value struct; this cannot fail.
		panic(fmt.Sprintf("hash: marshal resolved definition: %v", err))
	}
	write(defJSON)

	paths := make([]string, 0, len(in.InputDigests))
	for p := range in.InputDigests {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	writeCount(len(paths))
	for _, p := range paths {
		write([]byte(p))
		write([]byte(in.InputDigests[p]))
	}

	names := make([]string, 0, len(in.EnvValues))
	for name := range in.EnvValues {
		names = append(names, name)
	}
	sort.Strings(names)
	writeCount(len(names))
	for _, name := range names {
		write([]byte(name))
		write([]byte(in.EnvValues[name]))
	}

	writeCount(len(in.UpstreamHashes))
	for _, upstream := range in.UpstreamHashes {
		write([]byte(upstream))
	}

	return TaskHash(hex.EncodeToString(h.Sum(nil)))
}
