package dag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/monoplan/internal/config"
)

// taskLayer builds a raw layer from task name to depends_on list.
func taskLayer(deps map[string][]string) map[string]*config.TaskDefinition {
	cmd := "true"
	layer := make(map[string]*config.TaskDefinition, len(deps))
	for name, dependsOn := range deps {
		layer[name] = &config.TaskDefinition{Command: &cmd, DependsOn: dependsOn}
	}
	return layer
}

func singlePackageModel(deps map[string][]string) *config.Model {
	return &config.Model{RootTasks: taskLayer(deps)}
}

func TestBuild_SinglePackageChain(t *testing.T) {
	t.Parallel()

	model := singlePackageModel(map[string][]string{
		"build":   {"codegen"},
		"codegen": nil,
		"test":    {"build"},
	})

	graph, err := Build(context.Background(), []string{"test"}, model, true)
	require.NoError(t, err)
	require.Len(t, graph.Nodes, 3)

	test := graph.Nodes["test"]
	build := graph.Nodes["build"]
	codegen := graph.Nodes["codegen"]
	require.NotNil(t, test)
	require.NotNil(t, build)
	require.NotNil(t, codegen)

	assert.Equal(t, []string{"build"}, test.Dependencies)
	assert.Equal(t, []string{"codegen"}, build.Dependencies)
	assert.Equal(t, []string{"test"}, build.Dependents)
	assert.Equal(t, []string{"build"}, codegen.Dependents)
	assert.Empty(t, codegen.Dependencies)
}

func TestBuild_InverseAdjacencyIsConsistent(t *testing.T) {
	t.Parallel()

	model := singlePackageModel(map[string][]string{
		"deploy":  {"build", "test"},
		"build":   {"codegen"},
		"test":    {"codegen"},
		"codegen": nil,
	})

	graph, err := Build(context.Background(), []string{"deploy"}, model, true)
	require.NoError(t, err)

	// dependents(B) contains A iff A's dependencies contain B.
	for _, node := range graph.Nodes {
		for _, depID := range node.Dependencies {
			assert.Contains(t, graph.Nodes[depID].Dependents, node.ID)
		}
		for _, depID := range node.Dependents {
			assert.Contains(t, graph.Nodes[depID].Dependencies, node.ID)
		}
	}
}

func TestBuild_TopoOrderRespectsDependencies(t *testing.T) {
	t.Parallel()

	model := singlePackageModel(map[string][]string{
		"deploy":  {"build", "test"},
		"build":   {"codegen"},
		"test":    {"codegen"},
		"codegen": nil,
	})

	graph, err := Build(context.Background(), []string{"deploy"}, model, true)
	require.NoError(t, err)

	position := map[string]int{}
	for i, node := range graph.TopoOrder() {
		position[node.ID] = i
	}
	require.Len(t, position, 4)
	for _, node := range graph.Nodes {
		for _, depID := range node.Dependencies {
			assert.Less(t, position[depID], position[node.ID],
				"dependency %s must come before %s", depID, node.ID)
		}
	}
}

func TestBuild_CycleError(t *testing.T) {
	t.Parallel()

	model := singlePackageModel(map[string][]string{
		"A": {"B"},
		"B": {"A"},
	})

	_, err := Build(context.Background(), []string{"A"}, model, true)
	require.Error(t, err)

	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Contains(t, cycleErr.Members, "A")
	assert.Contains(t, cycleErr.Members, "B")
}

func TestBuild_UnknownDependencyIsConfigError(t *testing.T) {
	t.Parallel()

	model := singlePackageModel(map[string][]string{
		"build": {"no-such-task"},
	})

	_, err := Build(context.Background(), []string{"build"}, model, true)
	require.Error(t, err)

	var cfgErr *config.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "build", cfgErr.Task)
	assert.Equal(t, "no-such-task", cfgErr.Reference)
}

func TestBuild_UnknownRequestedTask(t *testing.T) {
	t.Parallel()

	model := singlePackageModel(map[string][]string{"build": nil})

	_, err := Build(context.Background(), []string{"lint"}, model, true)
	var cfgErr *config.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "lint", cfgErr.Task)
}

func TestBuild_SinglePackageRejectsCrossPackageRefs(t *testing.T) {
	t.Parallel()

	cmd := "true"
	model := &config.Model{RootTasks: map[string]*config.TaskDefinition{
		"build": {Command: &cmd, DependsOn: []string{"lib#codegen"}},
	}}

	_, err := Build(context.Background(), []string{"build"}, model, true)
	require.Error(t, err)

	var scopeErr *ScopeError
	require.ErrorAs(t, err, &scopeErr)
	assert.Equal(t, "build", scopeErr.Task)
	assert.Equal(t, "lib#codegen", scopeErr.Reference)
}

func TestBuild_WorkspaceCrossPackageDependency(t *testing.T) {
	t.Parallel()

	cmd := "true"
	model := &config.Model{
		RootTasks: map[string]*config.TaskDefinition{
			"build": {Command: &cmd},
		},
		Packages: []*config.Package{
			{Name: "app", Dir: "app", Tasks: map[string]*config.TaskDefinition{
				"build": {DependsOn: []string{"lib#build"}},
			}},
			{Name: "lib", Dir: "lib", Tasks: map[string]*config.TaskDefinition{}},
		},
	}

	graph, err := Build(context.Background(), []string{"build"}, model, false)
	require.NoError(t, err)
	require.Len(t, graph.Nodes, 2)

	app := graph.Nodes["app#build"]
	lib := graph.Nodes["lib#build"]
	require.NotNil(t, app)
	require.NotNil(t, lib)
	assert.Equal(t, []string{"lib#build"}, app.Dependencies)
	assert.Equal(t, []string{"app#build"}, lib.Dependents)

	// The package layer overrode nothing for lib, so the root command stands.
	assert.Equal(t, "true", lib.Command)
}

func TestBuild_WorkspaceRequiresPackages(t *testing.T) {
	t.Parallel()

	model := singlePackageModel(map[string][]string{"build": nil})

	_, err := Build(context.Background(), []string{"build"}, model, false)
	var cfgErr *config.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}
