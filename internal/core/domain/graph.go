package domain

import (
	"iter"
	"slices"

	"go.trai.ch/zerr"
)

// Graph is a dependency graph of build targets.
type Graph struct {
	targets        map[string]Target
	executionOrder []string
}

// NewGraph creates a graph from the given root targets, registering their
// transitive dependencies. It returns an error when two distinct targets
// share a name.
func NewGraph(roots ...Target) (*Graph, error) {
	g := &Graph{targets: make(map[string]Target)}
	for _, t := range roots {
		if err := g.add(t); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *Graph) add(t Target) error {
	if existing, ok := g.targets[t.Name()]; ok {
		if existing != t {
			return zerr.With(ErrTargetAlreadyExists, "target", t.Name())
		}
		return nil
	}
	g.targets[t.Name()] = t
	for _, dep := range t.Dependencies() {
		if err := g.add(dep); err != nil {
			return err
		}
	}
	return nil
}

// TargetCount returns the number of registered targets.
func (g *Graph) TargetCount() int {
	return len(g.targets)
}

// Get returns the target with the given name.
func (g *Graph) Get(name string) (Target, bool) {
	t, ok := g.targets[name]
	return t, ok
}

// Validate checks the graph for cycles using a depth-first topological sort
// and populates the execution order. A cycle is a configuration error and
// carries the cycle path in the error metadata.
func (g *Graph) Validate() error {
	g.executionOrder = make([]string, 0, len(g.targets))
	visited := make(map[string]int) // 0: unvisited, 1: visiting, 2: visited
	var path []string

	var visit func(t Target) error
	visit = func(t Target) error {
		visited[t.Name()] = 1
		path = append(path, t.Name())

		for _, dep := range t.Dependencies() {
			if _, ok := g.targets[dep.Name()]; !ok {
				return zerr.With(ErrMissingDependency, "dependency", dep.Name())
			}
			switch visited[dep.Name()] {
			case 1:
				return g.cycleError(path, dep.Name())
			case 0:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[t.Name()] = 2
		path = path[:len(path)-1]
		g.executionOrder = append(g.executionOrder, t.Name())
		return nil
	}

	for name, t := range g.targets {
		if visited[name] == 0 {
			if err := visit(t); err != nil {
				return err
			}
		}
	}

	return nil
}

func (g *Graph) cycleError(path []string, dep string) error {
	cyclePath := ""
	startIdx := 0
	for i, node := range path {
		if node == dep {
			startIdx = i
			break
		}
	}
	for i := startIdx; i < len(path); i++ {
		cyclePath += path[i] + " -> "
	}
	cyclePath += dep
	return zerr.With(ErrCycleDetected, "cycle", cyclePath)
}

// ExecutionOrder returns the target names in execution order. It assumes
// Validate has been called and returned nil.
func (g *Graph) ExecutionOrder() []string {
	return slices.Clone(g.executionOrder)
}

// Walk returns an iterator yielding targets in execution order. It assumes
// Validate has been called and returned nil.
func (g *Graph) Walk() iter.Seq[Target] {
	return func(yield func(Target) bool) {
		for _, name := range g.executionOrder {
			if !yield(g.targets[name]) {
				return
			}
		}
	}
}
