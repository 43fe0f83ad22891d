// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidGraph is returned when the graph definition cannot be used
var ErrInvalidGraph = errors.New("invalid dependency graph")

// Graph is an immutable set of module names with depends-on edges
type Graph struct {
	nodes      map[string]bool
	dependsOn  map[string][]string
	dependents map[string][]string
}

// BuildGraph validates the nodes and edges and returns the graph.
// edges maps a node to the nodes it depends on.
func BuildGraph(nodes []string, edges map[string][]string) (*Graph, error) {
	g := &Graph{
		nodes:      make(map[string]bool, len(nodes)),
		dependsOn:  make(map[string][]string, len(nodes)),
		dependents: make(map[string][]string, len(nodes)),
	}

	for _, node := range nodes {
		if node == "" {
			return nil, fmt.Errorf("%w: empty node name", ErrInvalidGraph)
		}
		if g.nodes[node] {
			return nil, fmt.Errorf("%w: duplicate node '%s'", ErrInvalidGraph, node)
		}
		g.nodes[node] = true
	}

	for node, deps := range edges {
		if !g.nodes[node] {
			return nil, fmt.Errorf("%w: edges defined for unknown node '%s'", ErrInvalidGraph, node)
		}

		seen := make(map[string]bool, len(deps))
		for _, dep := range deps {
			if dep == node {
				return nil, fmt.Errorf("%w: node '%s' depends on itself", ErrInvalidGraph, node)
			}
			if !g.nodes[dep] {
				return nil, fmt.Errorf("%w: node '%s' depends on non-existent node '%s'", ErrInvalidGraph, node, dep)
			}
			if seen[dep] {
				continue
			}
			seen[dep] = true
			g.dependsOn[node] = append(g.dependsOn[node], dep)
			g.dependents[dep] = append(g.dependents[dep], node)
		}
	}

	for node := range g.nodes {
		sort.Strings(g.dependsOn[node])
		sort.Strings(g.dependents[node])
	}

	if cycle := g.findCycle(); cycle != "" {
		return nil, fmt.Errorf("%w: circular dependency detected: %s", ErrInvalidGraph, cycle)
	}

	return g, nil
}

// Has reports whether name is a node of the graph
func (g *Graph) Has(name string) bool {
	return g.nodes[name]
}

// Nodes returns all node names sorted
func (g *Graph) Nodes() []string {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DependsOn returns the prerequisites of name
func (g *Graph) DependsOn(name string) []string {
	return append([]string(nil), g.dependsOn[name]...)
}

// DirectDependents returns the nodes whose prerequisites contain name
func (g *Graph) DirectDependents(name string) []string {
	return append([]string(nil), g.dependents[name]...)
}

// TransitiveDependents returns every node that depends on name, directly or through other
// nodes. The result is sorted and never contains name itself.
func (g *Graph) TransitiveDependents(name string) []string {
	visited := map[string]bool{name: true}
	queue := append([]string(nil), g.dependents[name]...)
	var result []string

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true
		result = append(result, current)
		queue = append(queue, g.dependents[current]...)
	}

	sort.Strings(result)
	return result
}

// TopologicalOrder returns the nodes with prerequisites before their dependents.
// Nodes that become ready at the same time are ordered by name.
func (g *Graph) TopologicalOrder() []string {
	remaining := make(map[string]int, len(g.nodes))
	var ready []string
	for node := range g.nodes {
		remaining[node] = len(g.dependsOn[node])
		if remaining[node] == 0 {
			ready = append(ready, node)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		node := ready[0]
		ready = ready[1:]
		order = append(order, node)

		var released []string
		for _, dependent := range g.dependents[node] {
			remaining[dependent]--
			if remaining[dependent] == 0 {
				released = append(released, dependent)
			}
		}
		ready = append(ready, released...)
		sort.Strings(ready)
	}

	return order
}

// findCycle returns a readable cycle path, or "" when the graph is acyclic
func (g *Graph) findCycle() string {
	const (
		unvisited = iota
		inPath
		done
	)
	state := make(map[string]int, len(g.nodes))
	var path []string

	var visit func(node string) string
	visit = func(node string) string {
		switch state[node] {
		case inPath:
			start := 0
			for i, n := range path {
				if n == node {
					start = i
					break
				}
			}
			cycle := append(append([]string(nil), path[start:]...), node)
			return strings.Join(cycle, " -> ")
		case done:
			return ""
		}

		state[node] = inPath
		path = append(path, node)
		for _, dep := range g.dependsOn[node] {
			if cycle := visit(dep); cycle != "" {
				return cycle
			}
		}
		path = path[:len(path)-1]
		state[node] = done
		return ""
	}

	for _, node := range g.Nodes() {
		if cycle := visit(node); cycle != "" {
			return cycle
		}
	}
	return ""
}
