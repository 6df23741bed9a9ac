package config

// Output modes recognized by the engine. They control how much of a cached
// task's output would be replayed on a real run; the planner only records
// the resolved value.
const (
	OutputModeFull       = "full"
	OutputModeHashOnly   = "hash-only"
	OutputModeNewOnly    = "new-only"
	OutputModeErrorsOnly = "errors-only"
	OutputModeNone       = "none"
)

// Model is the unified, format-agnostic representation of the entire
// workspace configuration: the root-level task layer plus one task layer
// per member package.
type Model struct {
	// RootTasks is the root-level configuration layer, keyed by task name.
	// Root-level definitions apply to every package unless overridden.
	RootTasks map[string]*TaskDefinition
	// Packages holds the member packages in workspace declaration order.
	Packages []*Package
}

// Package is one member package of the workspace.
type Package struct {
	// Name is the package's identity in task references (`name#task`).
	Name string
	// Dir is the package directory, relative to the workspace root.
	Dir string
	// Tasks is the package-level configuration layer, keyed by task name.
	Tasks map[string]*TaskDefinition
}

// PackageByName returns the named package, or nil if it is not a member.
func (m *Model) PackageByName(name string) *Package {
	for _, p := range m.Packages {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// TaskDefinition is one raw configuration layer for a task. Every field is
// optional: a nil pointer or nil slice means "not set at this layer" and
// falls through to the layer below during resolution. A present-but-empty
// list is a real value and replaces the lower layer wholesale.
type TaskDefinition struct {
	// Command is the shell command a real run would execute.
	Command *string
	// Outputs are glob patterns for produced artifacts. Patterns prefixed
	// with '!' negate earlier inclusions.
	Outputs []string
	// Cache controls whether results are eligible for caching.
	Cache *bool
	// DependsOn lists task references that must complete first, either
	// `task` (same package) or `pkg#task` (cross-package).
	DependsOn []string
	// Inputs are the file paths whose digests determine the task hash.
	Inputs []string
	// OutputMode is one of the OutputMode* constants.
	OutputMode *string
	// Env names the environment variables whose values feed the task hash.
	Env []string
	// Persistent marks long-running tasks that never exit on their own.
	Persistent *bool
}

// ResolvedTaskDefinition is the immutable, total merge of the root and
// package layers for one task. Every field has a defined value; list fields
// are never nil so they marshal as [] rather than null. The JSON field set
// and order are part of the report contract.
type ResolvedTaskDefinition struct {
	Outputs    []string `json:"outputs"`
	Cache      bool     `json:"cache"`
	DependsOn  []string `json:"dependsOn"`
	Inputs     []string `json:"inputs"`
	OutputMode string   `json:"outputMode"`
	Env        []string `json:"env"`
	Persistent bool     `json:"persistent"`
}
