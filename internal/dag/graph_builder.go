package dag

import (
	"context"
	"sort"

	"github.com/vk/monoplan/internal/config"
	"github.com/vk/monoplan/internal/ctxlog"
)

// Build constructs a complete, validated dependency graph for the requested
// tasks: the requested nodes plus the transitive closure of their resolved
// depends_on references. Each node carries its merged configuration.
//
// In single-package scope the workspace root is the only package; task
// references must be bare task names and `pkg#task` references are rejected
// with a ScopeError.
func Build(ctx context.Context, requested []string, model *config.Model, singlePackage bool) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.", "requested", requested, "single_package", singlePackage)

	b := &builder{
		model:         model,
		singlePackage: singlePackage,
		graph:         &Graph{Nodes: make(map[string]*Node)},
	}

	// First pass: create nodes for the requested tasks and the transitive
	// closure of their dependencies, linking edges as they are discovered.
	for _, task := range requested {
		if err := b.addRequested(task); err != nil {
			return nil, err
		}
	}
	logger.Debug("Build: Node creation and linking complete.", "node_count", len(b.graph.Nodes))

	if err := b.graph.detectCycles(); err != nil {
		return nil, err
	}
	logger.Debug("Build: Cycle detection passed.")

	b.graph.order = b.graph.topoSort()
	for _, node := range b.graph.Nodes {
		node.InitPending()
	}
	logger.Debug("Build: Graph construction successful.")
	return b.graph, nil
}

type builder struct {
	model         *config.Model
	singlePackage bool
	graph         *Graph
}

// addRequested creates the entry nodes for one requested task name.
func (b *builder) addRequested(task string) error {
	if b.singlePackage {
		if b.model.RootTasks[task] == nil {
			return &config.ConfigError{Task: task, Msg: "task is not defined"}
		}
		_, err := b.addNode(nil, task)
		return err
	}

	if len(b.model.Packages) == 0 {
		return &config.ConfigError{Msg: "workspace scope requires a workspace block with at least one package"}
	}

	found := false
	for _, pkg := range b.model.Packages {
		if !b.defined(pkg, task) {
			continue
		}
		found = true
		if _, err := b.addNode(pkg, task); err != nil {
			return err
		}
	}
	if !found {
		return &config.ConfigError{Task: task, Msg: "task is not defined in any workspace package"}
	}
	return nil
}

// defined reports whether a task exists for the package at either layer.
func (b *builder) defined(pkg *config.Package, task string) bool {
	if pkg != nil && pkg.Tasks[task] != nil {
		return true
	}
	return b.model.RootTasks[task] != nil
}

// addNode creates (or returns) the node for (pkg, task), resolves its
// configuration, and recursively links its dependencies. Edges are appended
// in declaration order for dependencies and discovery order for dependents.
func (b *builder) addNode(pkg *config.Package, task string) (*Node, error) {
	pkgName, pkgDir := "", ""
	var pkgDef *config.TaskDefinition
	if pkg != nil {
		pkgName, pkgDir = pkg.Name, pkg.Dir
		pkgDef = pkg.Tasks[task]
	}
	id := nodeID(pkgName, task)
	if existing, ok := b.graph.Nodes[id]; ok {
		return existing, nil
	}

	rootDef := b.model.RootTasks[task]
	node := &Node{
		ID:         id,
		Package:    pkgName,
		Task:       task,
		PackageDir: pkgDir,
		Command:    config.ResolveCommand(pkgDef, rootDef),
		Resolved:   config.Resolve(task, pkgDef, rootDef),
	}
	// Register before recursing so reference cycles terminate; they are
	// reported by detectCycles with the full member list.
	b.graph.Nodes[id] = node

	for _, ref := range node.Resolved.DependsOn {
		dep, err := b.resolveRef(node, ref)
		if err != nil {
			return nil, err
		}
		node.Dependencies = append(node.Dependencies, dep.ID)
		dep.Dependents = append(dep.Dependents, node.ID)
	}
	return node, nil
}

// resolveRef resolves one depends_on reference from the given node into a
// target node, enforcing scope and existence rules.
func (b *builder) resolveRef(from *Node, ref string) (*Node, error) {
	refPkg, refTask, cross := splitRef(ref)

	if b.singlePackage {
		if cross {
			return nil, &ScopeError{Task: from.ID, Reference: ref}
		}
		if b.model.RootTasks[refTask] == nil {
			return nil, &config.ConfigError{Task: from.ID, Reference: ref, Msg: "depends on unknown task"}
		}
		return b.addNode(nil, refTask)
	}

	targetPkg := b.model.PackageByName(from.Package)
	if cross {
		targetPkg = b.model.PackageByName(refPkg)
		if targetPkg == nil {
			return nil, &config.ConfigError{Task: from.ID, Reference: ref, Msg: "depends on unknown package"}
		}
	}
	if !b.defined(targetPkg, refTask) {
		return nil, &config.ConfigError{Task: from.ID, Reference: ref, Msg: "depends on unknown task"}
	}
	return b.addNode(targetPkg, refTask)
}

// detectCycles checks for circular dependencies in the graph using DFS and
// reports the members of the first cycle found.
func (g *Graph) detectCycles() error {
	visiting := make(map[string]bool)
	visited := make(map[string]bool)
	var stack []string

	var visit func(node *Node) error
	visit = func(node *Node) error {
		visiting[node.ID] = true
		stack = append(stack, node.ID)
		for _, depID := range node.Dependencies {
			dep := g.Nodes[depID]
			if visiting[dep.ID] {
				// Slice the stack from the dependency's first appearance to
				// get the cycle members in order, closing the loop.
				start := 0
				for i, id := range stack {
					if id == dep.ID {
						start = i
						break
					}
				}
				members := append(append([]string{}, stack[start:]...), dep.ID)
				return &CycleError{Members: members}
			}
			if !visited[dep.ID] {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		stack = stack[:len(stack)-1]
		delete(visiting, node.ID)
		visited[node.ID] = true
		return nil
	}

	for _, id := range sortedIDs(g.Nodes) {
		if !visited[id] {
			if err := visit(g.Nodes[id]); err != nil {
				return err
			}
		}
	}
	return nil
}

// topoSort orders node IDs with dependencies before dependents using Kahn's
// algorithm. The ready set is kept sorted so the result is deterministic.
// Only called on graphs that already passed cycle detection.
func (g *Graph) topoSort() []string {
	pending := make(map[string]int, len(g.Nodes))
	var ready []string
	for id, node := range g.Nodes {
		pending[id] = len(node.Dependencies)
		if len(node.Dependencies) == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.Nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		var released []string
		for _, depID := range g.Nodes[id].Dependents {
			pending[depID]--
			if pending[depID] == 0 {
				released = append(released, depID)
			}
		}
		sort.Strings(released)
		ready = mergeSorted(ready, released)
	}
	return order
}

// mergeSorted merges two ascending string slices into one.
func mergeSorted(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] <= b[j] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

// sortedIDs returns the map's keys in ascending order.
func sortedIDs(nodes map[string]*Node) []string {
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
