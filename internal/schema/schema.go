// Package schema declares the HCL shapes of monoplan configuration files.
// These structs are decode targets only; the hcl package translates them
// into the format-agnostic config model.
package schema

import "github.com/hashicorp/hcl/v2"

// Task represents a `task` block in a root or package configuration file.
// All attributes are optional so a block can override a single field of the
// layer below it.
type Task struct {
	Name       string   `hcl:"name,label"`
	Command    *string  `hcl:"command,optional"`
	Outputs    []string `hcl:"outputs,optional"`
	Cache      *bool    `hcl:"cache,optional"`
	DependsOn  []string `hcl:"depends_on,optional"`
	Inputs     []string `hcl:"inputs,optional"`
	OutputMode *string  `hcl:"output_mode,optional"`
	Env        []string `hcl:"env,optional"`
	Persistent *bool    `hcl:"persistent,optional"`
}

// Workspace represents the `workspace` block of the root configuration file.
// Packages is kept as a raw expression so the loader can evaluate and
// type-check it with a useful error message.
type Workspace struct {
	Packages hcl.Expression `hcl:"packages"`
}

// RootConfig represents the top-level structure of the root configuration
// file: the optional workspace membership plus the root task layer.
type RootConfig struct {
	Workspace *Workspace `hcl:"workspace,block"`
	Tasks     []*Task    `hcl:"task,block"`
	Body      hcl.Body   `hcl:",remain"`
}

// PackageConfig represents a member package's configuration file, which
// carries only that package's task layer.
type PackageConfig struct {
	Tasks []*Task  `hcl:"task,block"`
	Body  hcl.Body `hcl:",remain"`
}
