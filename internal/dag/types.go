package dag

import (
	"strings"
	"sync/atomic"

	"github.com/vk/monoplan/internal/config"
)

// Graph is the task dependency graph for one planning invocation. It is
// immutable after Build returns; the per-node pending counters are the only
// mutable state and are safe for concurrent use.
type Graph struct {
	// Nodes stores all nodes in the graph, keyed by their unique ID.
	Nodes map[string]*Node
	// order is the topological order of node IDs, dependencies first.
	order []string
}

// Node represents a single task in the graph, identified by package name
// and task name. Adjacency is kept as ID lists into the graph's node map,
// never as mutual owning pointers.
type Node struct {
	// ID is `pkg#task` in workspace scope and the bare task name in
	// single-package scope.
	ID string
	// Package is empty in single-package scope.
	Package string
	Task    string
	// PackageDir is the package directory relative to the workspace root;
	// empty for the workspace root itself.
	PackageDir string

	// Command and Resolved are the merge results attached during Build.
	Command  string
	Resolved config.ResolvedTaskDefinition

	// Dependencies holds direct dependency IDs in declaration order.
	Dependencies []string
	// Dependents holds direct dependent IDs in discovery order.
	Dependents []string

	// pending counts unfinished dependencies during a planning run.
	pending atomic.Int32
}

// InitPending resets the node's pending-dependency counter. Called once per
// node before a planning run starts.
func (n *Node) InitPending() {
	n.pending.Store(int32(len(n.Dependencies)))
}

// PendingDeps returns the current pending-dependency count.
func (n *Node) PendingDeps() int32 {
	return n.pending.Load()
}

// DecrementPending records one completed dependency and returns the new
// pending count. The caller that observes zero owns releasing the node.
func (n *Node) DecrementPending() int32 {
	return n.pending.Add(-1)
}

// TopoOrder returns the graph's nodes with every dependency ordered before
// its dependents. Ties are broken by node ID, so the order is deterministic.
func (g *Graph) TopoOrder() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.Nodes[id])
	}
	return nodes
}

// nodeID forms the canonical node ID for a (package, task) pair.
func nodeID(pkg, task string) string {
	if pkg == "" {
		return task
	}
	return pkg + "#" + task
}

// splitRef splits a task reference into its package and task parts. The
// package part is empty for same-package references.
func splitRef(ref string) (pkg, task string, cross bool) {
	if i := strings.Index(ref, "#"); i >= 0 {
		return ref[:i], ref[i+1:], true
	}
	return "", ref, false
}
