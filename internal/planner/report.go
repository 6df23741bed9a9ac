package planner

import (
	"github.com/vk/monoplan/internal/cache"
	"github.com/vk/monoplan/internal/config"
	"github.com/vk/monoplan/internal/hash"
)

// TaskReport is the planned result for one task node. It is assembled once
// per node during a planning run and consumed verbatim by both report
// encodings, so the two can never disagree.
type TaskReport struct {
	// Task is the node ID: `pkg#task` in workspace scope, the bare task
	// name in single-package scope.
	Task string
	Hash hash.TaskHash
	// CacheState is the observed presence per cache tier.
	CacheState cache.State
	Command    string
	// Outputs holds the resolved output globs minus negations.
	Outputs []string
	// ExcludedOutputs holds the negated globs with the '!' stripped; nil
	// when no negations are configured, never an empty list.
	ExcludedOutputs []string
	// LogFile is where a real run would write the task's log.
	LogFile string
	// Dependencies and Dependents list neighbor node IDs, in declaration
	// and discovery order respectively.
	Dependencies []string
	Dependents   []string
	// ResolvedTaskDefinition is the total merge result, emitted verbatim.
	ResolvedTaskDefinition config.ResolvedTaskDefinition
}
