package dag

import (
	"fmt"
	"strings"
)

// ScopeError reports a cross-package task reference encountered in
// single-package scope.
type ScopeError struct {
	// Task is the ID of the task whose configuration holds the reference.
	Task string
	// Reference is the offending `pkg#task` reference.
	Reference string
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("scope error in task '%s': cross-package reference '%s' is not allowed in single-package mode", e.Task, e.Reference)
}

// CycleError reports a dependency cycle. Members lists the involved task
// IDs in cycle order, starting and ending at the same task.
type CycleError struct {
	Members []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic dependency detected: %s", strings.Join(e.Members, " -> "))
}
