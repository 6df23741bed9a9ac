// Package planner orchestrates a dry run: it builds the task graph, then
// resolves, hashes, and cache-probes every node without executing anything.
// That last property is the defining invariant separating a dry run from a
// real run; nothing in this package shells out or writes to a cache.
package planner

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/vk/monoplan/internal/cache"
	"github.com/vk/monoplan/internal/config"
	"github.com/vk/monoplan/internal/ctxlog"
	"github.com/vk/monoplan/internal/dag"
	"github.com/vk/monoplan/internal/hash"
)

// logDirName is the per-package directory a real run would log into.
const logDirName = ".monoplan"

// errSkipped marks nodes abandoned because an upstream node failed or the
// run was canceled. It is a symptom, never the root cause.
var errSkipped = errors.New("skipped")

// Planner plans one or more requested tasks against a loaded workspace
// model. All collaborators are consumed through interfaces; the planner
// itself holds no mutable state between invocations.
type Planner struct {
	model    *config.Model
	digester hash.FileDigester
	probe    *cache.Probe
	// env is the immutable environment snapshot consulted for declared
	// env var names.
	env     map[string]string
	workers int
}

// New assembles a Planner. workers caps hashing/probing concurrency; values
// below one fall back to one.
func New(model *config.Model, digester hash.FileDigester, probe *cache.Probe, env map[string]string, workers int) *Planner {
	if workers < 1 {
		workers = 1
	}
	return &Planner{model: model, digester: digester, probe: probe, env: env, workers: workers}
}

// nodeState is the write-once slot for one node's planning result. The
// worker that plans the node is the only writer; readers are dependents
// (after the channel handoff) and the final collection loop (after the
// WaitGroup barrier).
type nodeState struct {
	report   TaskReport
	hash     hash.TaskHash
	err      error
	skipOnce sync.Once
}

// Plan produces a TaskReport per graph node, in topological order. Mutually
// independent nodes are planned in parallel; a node is only picked up once
// its last pending dependency has finished, so upstream hashes are always
// available. Any node failure aborts the whole run with the originating
// task identity attached and no partial report.
func (p *Planner) Plan(ctx context.Context, requested []string, singlePackage bool) ([]TaskReport, error) {
	logger := ctxlog.FromContext(ctx)

	graph, err := dag.Build(ctx, requested, p.model, singlePackage)
	if err != nil {
		return nil, err
	}
	logger.Debug("Dependency graph built.", "node_count", len(graph.Nodes))

	states := make(map[string]*nodeState, len(graph.Nodes))
	for id := range graph.Nodes {
		states[id] = &nodeState{}
	}

	readyChan := make(chan *dag.Node, len(graph.Nodes))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	rootCount := 0
	for _, node := range graph.Nodes {
		if node.PendingDeps() == 0 {
			readyChan <- node
			rootCount++
		}
	}
	logger.Debug("Seeded ready queue with graph leaves.", "count", rootCount)

	var wg sync.WaitGroup
	wg.Add(len(graph.Nodes))
	for i := 0; i < p.workers; i++ {
		go p.worker(runCtx, graph, states, readyChan, cancel, &wg, i)
	}

	wg.Wait()
	close(readyChan)

	reports := make([]TaskReport, 0, len(graph.Nodes))
	for _, node := range graph.TopoOrder() {
		state := states[node.ID]
		if state.err != nil && !errors.Is(state.err, errSkipped) && !errors.Is(state.err, context.Canceled) {
			logger.Error("Planning failed for task.", "task", node.ID, "error", state.err)
			return nil, state.err
		}
		reports = append(reports, state.report)
	}
	// Every real error surfaces above; anything left is a canceled run.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Debug("Planning complete.", "task_count", len(reports))
	return reports, nil
}

// worker is the core processing loop for a single concurrent worker.
func (p *Planner) worker(ctx context.Context, graph *dag.Graph, states map[string]*nodeState, readyChan chan *dag.Node, cancel context.CancelFunc, wg *sync.WaitGroup, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for node := range readyChan {
		workerLogger := logger.With("workerID", workerID, "nodeID", node.ID)
		state := states[node.ID]

		if ctx.Err() != nil {
			state.skipOnce.Do(func() {
				workerLogger.Warn("Context canceled, skipping node.")
				state.err = fmt.Errorf("%w: %v", errSkipped, ctx.Err())
				wg.Done()
			})
			// Settle the whole downstream subtree so the run drains.
			p.skipDependents(ctx, graph, states, node, wg)
			continue
		}

		workerLogger.Debug("Worker picked up node for planning.")
		report, err := p.planNode(ctx, states, node)
		if err != nil {
			workerLogger.Error("Node planning failed.", "error", err)
			state.err = err
			cancel()
			p.skipDependents(ctx, graph, states, node, wg)
			wg.Done()
			continue
		}

		state.report = report
		state.hash = report.Hash
		workerLogger.Debug("Node planned.", "hash", report.Hash)

		for _, depID := range node.Dependents {
			dependent := graph.Nodes[depID]
			if dependent.DecrementPending() == 0 {
				workerLogger.Debug("Unlocking dependent node.", "dependentID", depID)
				readyChan <- dependent
			}
		}

		wg.Done()
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

// skipDependents recursively marks all downstream nodes as skipped and
// settles their WaitGroup slots, so a failure drains the run promptly.
func (p *Planner) skipDependents(ctx context.Context, graph *dag.Graph, states map[string]*nodeState, node *dag.Node, wg *sync.WaitGroup) {
	logger := ctxlog.FromContext(ctx)
	for _, depID := range node.Dependents {
		dependent := graph.Nodes[depID]
		states[depID].skipOnce.Do(func() {
			logger.Warn("Skipping dependent task due to upstream failure.", "nodeID", depID, "dependency", node.ID)
			states[depID].err = fmt.Errorf("%w due to upstream failure of '%s'", errSkipped, node.ID)
			wg.Done()
			p.skipDependents(ctx, graph, states, dependent, wg)
		})
	}
}

// planNode resolves one node into a TaskReport: digest the declared inputs,
// fold everything into the task hash, and probe the caches. Upstream hashes
// are read from the dependencies' write-once slots, which are complete by
// the time this node becomes ready.
func (p *Planner) planNode(ctx context.Context, states map[string]*nodeState, node *dag.Node) (TaskReport, error) {
	resolved := node.Resolved

	inputPaths := make([]string, 0, len(resolved.Inputs))
	for _, input := range resolved.Inputs {
		inputPaths = append(inputPaths, path.Join(node.PackageDir, input))
	}
	inputDigests, err := p.digester.Digest(ctx, inputPaths)
	if err != nil {
		return TaskReport{}, &hash.HashError{Task: node.ID, Err: err}
	}

	envValues := make(map[string]string, len(resolved.Env))
	for _, name := range resolved.Env {
		// Declared-but-unset variables participate with an empty value, so
		// setting one later changes the hash.
		envValues[name] = p.env[name]
	}

	upstream := make([]hash.TaskHash, 0, len(node.Dependencies))
	for _, depID := range node.Dependencies {
		upstream = append(upstream, states[depID].hash)
	}

	taskHash := hash.Compute(hash.Input{
		Command:        node.Command,
		Definition:     resolved,
		InputDigests:   inputDigests,
		EnvValues:      envValues,
		UpstreamHashes: upstream,
	})

	cacheState := p.probe.Check(ctx, string(taskHash))

	outputs, excluded := splitOutputs(resolved.Outputs)
	return TaskReport{
		Task:                   node.ID,
		Hash:                   taskHash,
		CacheState:             cacheState,
		Command:                node.Command,
		Outputs:                outputs,
		ExcludedOutputs:        excluded,
		LogFile:                path.Join(node.PackageDir, logDirName, "monoplan-"+node.Task+".log"),
		Dependencies:           append([]string{}, node.Dependencies...),
		Dependents:             append([]string{}, node.Dependents...),
		ResolvedTaskDefinition: resolved,
	}, nil
}

// splitOutputs separates negated globs from inclusions. The excluded list
// stays nil when no negations are configured; the report contract encodes
// that as JSON null.
func splitOutputs(globs []string) (outputs []string, excluded []string) {
	outputs = []string{}
	for _, glob := range globs {
		if negated := strings.TrimPrefix(glob, "!"); negated != glob {
			excluded = append(excluded, negated)
			continue
		}
		outputs = append(outputs, glob)
	}
	return outputs, excluded
}
