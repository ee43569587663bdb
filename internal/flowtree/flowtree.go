// SPDX-FileCopyrightText: 2025 The Flowdeck Authors
// SPDX-License-Identifier: EUPL-1.2

// Package flowtree renders the component hierarchy of an exported flow.
// Edges point from a producing component to its consumer, so the root is the
// final consumer and a node's children are its upstream sources.
package flowtree

import (
	"fmt"
	"io"
	"strings"
)

// Node is one component in a flow graph.
type Node struct {
	ID          string `json:"id"`
	Type        string `json:"type,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// Label returns the name shown for the node in rendered output.
func (n Node) Label() string {
	if n.DisplayName != "" {
		return n.DisplayName
	}

	if n.Type != "" {
		return n.Type
	}

	return n.ID
}

// Edge is a directed connection from a source component to its target.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is a flow's set of components and connections.
type Graph struct {
	Name  string `json:"name"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// FindRoot returns the node that is never a source of any edge, the flow's
// terminal consumer. Returns false when the graph is empty or every node
// feeds into another one.
func (g *Graph) FindRoot() (Node, bool) {
	sources := make(map[string]bool, len(g.Edges))
	for _, edge := range g.Edges {
		sources[edge.Source] = true
	}

	for _, node := range g.Nodes {
		if !sources[node.ID] {
			return node, true
		}
	}

	return Node{}, false
}

// Children returns the upstream nodes feeding directly into the given node:
// the sources of every edge whose target is the node.
func (g *Graph) Children(node Node) []Node {
	byID := make(map[string]Node, len(g.Nodes))
	for _, candidate := range g.Nodes {
		byID[candidate.ID] = candidate
	}

	var children []Node

	for _, edge := range g.Edges {
		if edge.Target != node.ID {
			continue
		}

		if child, ok := byID[edge.Source]; ok {
			children = append(children, child)
		}
	}

	return children
}

// Walk visits the hierarchy depth-first starting at the root, calling visit
// with each node and its depth. A node already on the current path is not
// descended into again, so cyclic graphs terminate with the cycle silently
// truncated.
func (g *Graph) Walk(visit func(node Node, depth int)) {
	root, ok := g.FindRoot()
	if !ok {
		return
	}

	visited := make(map[string]bool, len(g.Nodes))
	g.walk(root, 0, visited, visit)
}

func (g *Graph) walk(node Node, depth int, visited map[string]bool, visit func(Node, int)) {
	if visited[node.ID] {
		return
	}

	visited[node.ID] = true
	visit(node, depth)

	for _, child := range g.Children(node) {
		g.walk(child, depth+1, visited, visit)
	}
}

// Render writes an indented tree of the hierarchy. An empty or rootless
// graph renders nothing beyond the flow name.
func (g *Graph) Render(writer io.Writer) error {
	if g.Name != "" {
		if _, err := fmt.Fprintln(writer, g.Name); err != nil {
			return err
		}
	}

	root, ok := g.FindRoot()
	if !ok {
		_, err := fmt.Fprintln(writer, "(no root component)")

		return err
	}

	var builder strings.Builder

	builder.WriteString(root.Label() + "\n")

	visited := map[string]bool{root.ID: true}

	children := g.Children(root)
	for i, child := range children {
		g.render(&builder, child, "", i == len(children)-1, visited)
	}

	_, err := io.WriteString(writer, builder.String())

	return err
}

func (g *Graph) render(builder *strings.Builder, node Node, prefix string, last bool, visited map[string]bool) {
	connector := "├── "
	childPrefix := prefix + "│   "

	if last {
		connector = "└── "
		childPrefix = prefix + "    "
	}

	builder.WriteString(prefix + connector + node.Label() + "\n")

	if visited[node.ID] {
		return
	}

	visited[node.ID] = true

	children := g.Children(node)
	for i, child := range children {
		g.render(builder, child, childPrefix, i == len(children)-1, visited)
	}
}
