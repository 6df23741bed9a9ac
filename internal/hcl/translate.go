// This file contains the logic for translating HCL schema structs into the
// format-agnostic configuration model defined in the config package.

package hcl

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/monoplan/internal/config"
	"github.com/vk/monoplan/internal/schema"
)

// translateTasks converts decoded task blocks into one raw configuration
// layer, keyed by task name. Later blocks with the same name win.
func translateTasks(tasks []*schema.Task) map[string]*config.TaskDefinition {
	layer := make(map[string]*config.TaskDefinition, len(tasks))
	for _, t := range tasks {
		layer[t.Name] = &config.TaskDefinition{
			Command:    t.Command,
			Outputs:    t.Outputs,
			Cache:      t.Cache,
			DependsOn:  t.DependsOn,
			Inputs:     t.Inputs,
			OutputMode: t.OutputMode,
			Env:        t.Env,
			Persistent: t.Persistent,
		}
	}
	return layer
}

// translatePackages evaluates the workspace `packages` expression into a
// list of package names, rejecting anything that is not a list of strings.
func translatePackages(ws *schema.Workspace) ([]string, error) {
	val, diags := ws.Packages.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid workspace packages expression: %w", diags)
	}
	if !val.CanIterateElements() {
		return nil, fmt.Errorf("workspace packages must be a list of strings, got %s", val.Type().FriendlyName())
	}

	var names []string
	it := val.ElementIterator()
	for it.Next() {
		_, elem := it.Element()
		if elem.Type() != cty.String || elem.IsNull() {
			return nil, fmt.Errorf("workspace packages must be a list of strings, got element of type %s", elem.Type().FriendlyName())
		}
		names = append(names, elem.AsString())
	}
	return names, nil
}
