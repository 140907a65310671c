// SPDX-License-Identifier: MPL-2.0

// Package dag holds the module dependency graph of the workspace. The
// orchestration order is declared by hand; this package proves that the
// declared order is a valid topological order and detects dependency cycles.
package dag

import (
	"fmt"
	"strings"
)

type (
	// CycleError indicates that the dependency graph contains a cycle.
	CycleError struct {
		// Cycle contains the modules that could not be ordered.
		Cycle []string
	}

	// OrderError reports a module placed before one of its dependencies.
	OrderError struct {
		Module     string
		Dependency string
	}

	// UnknownModuleError reports an order entry or edge endpoint that was never
	// added to the graph.
	UnknownModuleError struct {
		Module string
	}

	// Graph is a directed graph of module dependencies. An edge from A to B
	// means "A must be built before B".
	Graph struct {
		adjacency map[string][]string
		// nodes keeps insertion order so sorting is deterministic.
		nodes   []string
		nodeSet map[string]bool
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("module %q is ordered before its dependency %q", e.Module, e.Dependency)
}

func (e *UnknownModuleError) Error() string {
	return fmt.Sprintf("unknown module %q", e.Module)
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		adjacency: make(map[string][]string),
		nodeSet:   make(map[string]bool),
	}
}

// AddNode adds a module to the graph. Adding an existing module is a no-op.
func (g *Graph) AddNode(name string) {
	if g.nodeSet[name] {
		return
	}
	g.nodeSet[name] = true
	g.nodes = append(g.nodes, name)
}

// AddEdge records that from must be built before to.
// Both modules are added implicitly.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	g.adjacency[from] = append(g.adjacency[from], to)
}

// Has reports whether the module is part of the graph.
func (g *Graph) Has(name string) bool {
	return g.nodeSet[name]
}

// Len returns the number of modules in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// TopologicalSort returns a valid build order using Kahn's algorithm.
// Modules at the same level keep their insertion order.
func (g *Graph) TopologicalSort() ([]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	inDegree := make(map[string]int, len(g.nodes))
	for _, node := range g.nodes {
		inDegree[node] = 0
	}
	for _, neighbors := range g.adjacency {
		for _, neighbor := range neighbors {
			inDegree[neighbor]++
		}
	}

	queue := make([]string, 0, len(g.nodes))
	for _, node := range g.nodes {
		if inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	result := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range g.adjacency[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
			}
		}
	}

	if len(result) != len(g.nodes) {
		var cycle []string
		for _, node := range g.nodes {
			if inDegree[node] > 0 {
				cycle = append(cycle, node)
			}
		}
		return nil, &CycleError{Cycle: cycle}
	}

	return result, nil
}

// CheckOrder verifies that order lists every dependency of a module before the
// module itself. Modules may appear more than once (feature expansion); the
// first occurrence is the one that counts. Every module in order must be known
// to the graph, but the graph may contain modules absent from order.
func (g *Graph) CheckOrder(order []string) error {
	if _, err := g.TopologicalSort(); err != nil {
		return err
	}

	position := make(map[string]int, len(order))
	for i, name := range order {
		if !g.nodeSet[name] {
			return &UnknownModuleError{Module: name}
		}
		if _, seen := position[name]; !seen {
			position[name] = i
		}
	}

	for _, from := range g.nodes {
		fromPos, fromOK := position[from]
		for _, to := range g.adjacency[from] {
			toPos, toOK := position[to]
			if !toOK {
				continue
			}
			if !fromOK || fromPos > toPos {
				return &OrderError{Module: to, Dependency: from}
			}
		}
	}

	return nil
}
