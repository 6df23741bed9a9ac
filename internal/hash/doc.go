// Package hash computes the content-addressable hash that identifies one
// unit of work. The hash is a pure function of the task's command, resolved
// definition, input file digests, declared environment values, and upstream
// task hashes; it contains no timestamps or machine identity, so identical
// inputs hash identically across runs and machines.
package hash
