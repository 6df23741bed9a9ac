package config

import "fmt"

// ConfigError reports an unresolvable or malformed task reference.
type ConfigError struct {
	// Task identifies the task whose configuration is at fault; empty when
	// the fault is not attributable to a single task.
	Task string
	// Reference is the offending task reference, if any.
	Reference string
	Msg       string
}

func (e *ConfigError) Error() string {
	switch {
	case e.Task != "" && e.Reference != "":
		return fmt.Sprintf("config error in task '%s': %s '%s'", e.Task, e.Msg, e.Reference)
	case e.Task != "":
		return fmt.Sprintf("config error in task '%s': %s", e.Task, e.Msg)
	default:
		return fmt.Sprintf("config error: %s", e.Msg)
	}
}

// Resolve merges the package-level and root-level layers for one task into
// a total ResolvedTaskDefinition. Either layer may be nil. The package layer
// wins field-by-field when set; list fields replace wholesale, never append.
// Unset fields default to the empty list, false, or "full".
func Resolve(taskName string, pkgDef, rootDef *TaskDefinition) ResolvedTaskDefinition {
	return ResolvedTaskDefinition{
		Outputs:    mergeList(pkgDef.outputs(), rootDef.outputs()),
		Cache:      mergeBool(pkgDef.cache(), rootDef.cache()),
		DependsOn:  mergeList(pkgDef.dependsOn(), rootDef.dependsOn()),
		Inputs:     mergeList(pkgDef.inputs(), rootDef.inputs()),
		OutputMode: mergeString(pkgDef.outputMode(), rootDef.outputMode(), OutputModeFull),
		Env:        mergeList(pkgDef.env(), rootDef.env()),
		Persistent: mergeBool(pkgDef.persistent(), rootDef.persistent()),
	}
}

// ResolveCommand merges the command field by the same package-wins rule.
// The command is not part of the resolved definition; it is reported and
// hashed separately.
func ResolveCommand(pkgDef, rootDef *TaskDefinition) string {
	if s := pkgDef.command(); s != nil {
		return *s
	}
	if s := rootDef.command(); s != nil {
		return *s
	}
	return ""
}

// nil-safe field accessors so Resolve never branches on layer presence.

func (d *TaskDefinition) command() *string {
	if d == nil {
		return nil
	}
	return d.Command
}

func (d *TaskDefinition) outputs() []string {
	if d == nil {
		return nil
	}
	return d.Outputs
}

func (d *TaskDefinition) cache() *bool {
	if d == nil {
		return nil
	}
	return d.Cache
}

func (d *TaskDefinition) dependsOn() []string {
	if d == nil {
		return nil
	}
	return d.DependsOn
}

func (d *TaskDefinition) inputs() []string {
	if d == nil {
		return nil
	}
	return d.Inputs
}

func (d *TaskDefinition) outputMode() *string {
	if d == nil {
		return nil
	}
	return d.OutputMode
}

func (d *TaskDefinition) env() []string {
	if d == nil {
		return nil
	}
	return d.Env
}

func (d *TaskDefinition) persistent() *bool {
	if d == nil {
		return nil
	}
	return d.Persistent
}

// mergeList picks the higher layer when it is set (non-nil) and guarantees a
// non-nil result so list fields marshal as [] instead of null.
func mergeList(pkg, root []string) []string {
	src := root
	if pkg != nil {
		src = pkg
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

func mergeBool(pkg, root *bool) bool {
	if pkg != nil {
		return *pkg
	}
	if root != nil {
		return *root
	}
	return false
}

func mergeString(pkg, root *string, def string) string {
	if pkg != nil {
		return *pkg
	}
	if root != nil {
		return *root
	}
	return def
}
