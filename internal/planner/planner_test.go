package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/monoplan/internal/cache"
	"github.com/vk/monoplan/internal/config"
	"github.com/vk/monoplan/internal/hash"
)

// fakeDigester serves digests from a map and fails for unknown paths,
// standing in for the file-system collaborator.
type fakeDigester struct {
	digests map[string]string
}

func (f *fakeDigester) Digest(_ context.Context, paths []string) (map[string]string, error) {
	out := make(map[string]string, len(paths))
	for _, p := range paths {
		digest, ok := f.digests[p]
		if !ok {
			return nil, errors.New("unreadable input: " + p)
		}
		out[p] = digest
	}
	return out, nil
}

// missBackend reports every hash as absent.
type missBackend struct{}

func (missBackend) Exists(context.Context, string) (bool, error) { return false, nil }

// hitBackend reports every hash as present.
type hitBackend struct{}

func (hitBackend) Exists(context.Context, string) (bool, error) { return true, nil }

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

// buildScenarioModel is the single-package workspace from the planning
// contract: one cached `build` task with a single output and no deps.
func buildScenarioModel() *config.Model {
	return &config.Model{RootTasks: map[string]*config.TaskDefinition{
		"build": {
			Command: strPtr("echo 'building' > foo"),
			Outputs: []string{"foo"},
			Cache:   boolPtr(true),
		},
	}}
}

func newTestPlanner(model *config.Model, digests map[string]string, env map[string]string, workers int) *Planner {
	probe := cache.NewProbe(missBackend{}, missBackend{})
	return New(model, &fakeDigester{digests: digests}, probe, env, workers)
}

func TestPlan_SingleTaskScenario(t *testing.T) {
	t.Parallel()

	p := newTestPlanner(buildScenarioModel(), nil, nil, 4)
	reports, err := p.Plan(context.Background(), []string{"build"}, true)
	require.NoError(t, err)
	require.Len(t, reports, 1)

	r := reports[0]
	assert.Equal(t, "build", r.Task)
	assert.Len(t, string(r.Hash), 64)
	assert.False(t, r.CacheState.Local)
	assert.False(t, r.CacheState.Remote)
	assert.Equal(t, "echo 'building' > foo", r.Command)
	assert.Equal(t, []string{"foo"}, r.Outputs)
	assert.Nil(t, r.ExcludedOutputs, "no negated globs must encode as nil, not an empty list")
	assert.Equal(t, ".monoplan/monoplan-build.log", r.LogFile)
	assert.Empty(t, r.Dependencies)
	assert.Empty(t, r.Dependents)

	expected := config.ResolvedTaskDefinition{
		Outputs:    []string{"foo"},
		Cache:      true,
		DependsOn:  []string{},
		Inputs:     []string{},
		OutputMode: config.OutputModeFull,
		Env:        []string{},
		Persistent: false,
	}
	assert.Equal(t, expected, r.ResolvedTaskDefinition)
}

func TestPlan_DeterministicAcrossRunsAndWorkerCounts(t *testing.T) {
	t.Parallel()

	model := &config.Model{RootTasks: map[string]*config.TaskDefinition{
		"deploy":  {Command: strPtr("deploy"), DependsOn: []string{"build", "test"}},
		"build":   {Command: strPtr("build"), DependsOn: []string{"codegen"}},
		"test":    {Command: strPtr("test"), DependsOn: []string{"codegen"}},
		"codegen": {Command: strPtr("codegen"), Inputs: []string{"schema.json"}},
	}}
	digests := map[string]string{"schema.json": "abc123"}

	serial := newTestPlanner(model, digests, nil, 1)
	parallel := newTestPlanner(model, digests, nil, 8)

	first, err := serial.Plan(context.Background(), []string{"deploy"}, true)
	require.NoError(t, err)
	second, err := parallel.Plan(context.Background(), []string{"deploy"}, true)
	require.NoError(t, err)

	require.Len(t, first, 4)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Task, second[i].Task, "report order must be topological and stable")
		assert.Equal(t, first[i].Hash, second[i].Hash, "hashes must not depend on scheduling")
	}
}

func TestPlan_UpstreamHashFlowsDownstream(t *testing.T) {
	t.Parallel()

	model := &config.Model{RootTasks: map[string]*config.TaskDefinition{
		"build":   {Command: strPtr("build"), DependsOn: []string{"codegen"}},
		"codegen": {Command: strPtr("codegen"), Inputs: []string{"schema.json"}},
	}}

	planBoth := func(schemaDigest string) map[string]hash.TaskHash {
		p := newTestPlanner(model, map[string]string{"schema.json": schemaDigest}, nil, 2)
		reports, err := p.Plan(context.Background(), []string{"build"}, true)
		require.NoError(t, err)
		hashes := make(map[string]hash.TaskHash, len(reports))
		for _, r := range reports {
			hashes[r.Task] = r.Hash
		}
		return hashes
	}

	before := planBoth("digest-one")
	after := planBoth("digest-two")

	// Changing codegen's input must ripple into build through the upstream
	// hash chain even though build's own inputs are unchanged.
	assert.NotEqual(t, before["codegen"], after["codegen"])
	assert.NotEqual(t, before["build"], after["build"])
}

func TestPlan_DeclaredEnvAffectsHash(t *testing.T) {
	t.Parallel()

	model := &config.Model{RootTasks: map[string]*config.TaskDefinition{
		"build": {Command: strPtr("build"), Env: []string{"CC"}},
	}}

	planWith := func(env map[string]string) hash.TaskHash {
		p := newTestPlanner(model, nil, env, 1)
		reports, err := p.Plan(context.Background(), []string{"build"}, true)
		require.NoError(t, err)
		return reports[0].Hash
	}

	base := planWith(map[string]string{"CC": "clang"})
	changedDeclared := planWith(map[string]string{"CC": "gcc"})
	changedUndeclared := planWith(map[string]string{"CC": "clang", "UNRELATED": "x"})

	assert.NotEqual(t, base, changedDeclared)
	assert.Equal(t, base, changedUndeclared, "undeclared env vars must not affect the hash")
}

func TestPlan_DigestFailureAbortsWholeRun(t *testing.T) {
	t.Parallel()

	model := &config.Model{RootTasks: map[string]*config.TaskDefinition{
		"build":   {Command: strPtr("build"), DependsOn: []string{"codegen"}},
		"codegen": {Command: strPtr("codegen"), Inputs: []string{"missing.json"}},
	}}

	p := newTestPlanner(model, map[string]string{}, nil, 2)
	reports, err := p.Plan(context.Background(), []string{"build"}, true)

	require.Error(t, err)
	assert.Nil(t, reports, "no partial report on failure")

	var hashErr *hash.HashError
	require.ErrorAs(t, err, &hashErr)
	assert.Equal(t, "codegen", hashErr.Task, "the error must carry the originating task identity")
}

func TestPlan_CacheStateIsObservedPerTier(t *testing.T) {
	t.Parallel()

	probe := cache.NewProbe(hitBackend{}, missBackend{})
	p := New(buildScenarioModel(), &fakeDigester{}, probe, nil, 1)

	reports, err := p.Plan(context.Background(), []string{"build"}, true)
	require.NoError(t, err)
	assert.True(t, reports[0].CacheState.Local)
	assert.False(t, reports[0].CacheState.Remote)
}

func TestPlan_NegatedOutputGlobs(t *testing.T) {
	t.Parallel()

	model := &config.Model{RootTasks: map[string]*config.TaskDefinition{
		"build": {
			Command: strPtr("build"),
			Outputs: []string{"dist/**", "!dist/tmp/**"},
		},
	}}

	p := newTestPlanner(model, nil, nil, 1)
	reports, err := p.Plan(context.Background(), []string{"build"}, true)
	require.NoError(t, err)

	r := reports[0]
	assert.Equal(t, []string{"dist/**"}, r.Outputs)
	assert.Equal(t, []string{"dist/tmp/**"}, r.ExcludedOutputs)
	// The resolved definition keeps the raw globs untouched.
	assert.Equal(t, []string{"dist/**", "!dist/tmp/**"}, r.ResolvedTaskDefinition.Outputs)
}

func TestPlan_WorkspaceScopeTaskIdentity(t *testing.T) {
	t.Parallel()

	model := &config.Model{
		RootTasks: map[string]*config.TaskDefinition{
			"build": {Command: strPtr("build")},
		},
		Packages: []*config.Package{
			{Name: "app", Dir: "app", Tasks: map[string]*config.TaskDefinition{
				"build": {DependsOn: []string{"lib#build"}},
			}},
			{Name: "lib", Dir: "lib", Tasks: map[string]*config.TaskDefinition{}},
		},
	}

	p := newTestPlanner(model, nil, nil, 2)
	reports, err := p.Plan(context.Background(), []string{"build"}, false)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	// Topological order puts lib#build first.
	assert.Equal(t, "lib#build", reports[0].Task)
	assert.Equal(t, "app#build", reports[1].Task)
	assert.Equal(t, []string{"lib#build"}, reports[1].Dependencies)
	assert.Equal(t, []string{"app#build"}, reports[0].Dependents)
	assert.Equal(t, "lib/.monoplan/monoplan-build.log", reports[0].LogFile)

	// app#build carries a dependsOn and an upstream hash that lib#build
	// does not, so the two hashes must differ.
	assert.NotEqual(t, reports[0].Hash, reports[1].Hash)
}

func TestPlan_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newTestPlanner(buildScenarioModel(), nil, nil, 2)
	reports, err := p.Plan(ctx, []string{"build"}, true)

	require.Error(t, err)
	assert.Nil(t, reports)
}
