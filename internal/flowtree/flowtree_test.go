// SPDX-FileCopyrightText: 2025 The Flowdeck Authors
// SPDX-License-Identifier: EUPL-1.2

package flowtree_test

import (
	"strings"
	"testing"

	"github.com/flowdeck/flowdeck/internal/flowtree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearGraph() *flowtree.Graph {
	// prompt -> model -> output
	return &flowtree.Graph{
		Name: "Basic Prompting",
		Nodes: []flowtree.Node{
			{ID: "prompt-1", DisplayName: "Prompt"},
			{ID: "model-1", DisplayName: "Language Model"},
			{ID: "output-1", DisplayName: "Chat Output"},
		},
		Edges: []flowtree.Edge{
			{Source: "prompt-1", Target: "model-1"},
			{Source: "model-1", Target: "output-1"},
		},
	}
}

func TestFindRoot(t *testing.T) {
	t.Parallel()

	root, ok := linearGraph().FindRoot()
	require.True(t, ok)
	assert.Equal(t, "output-1", root.ID)
}

func TestFindRootEmptyGraph(t *testing.T) {
	t.Parallel()

	graph := &flowtree.Graph{}

	_, ok := graph.FindRoot()
	assert.False(t, ok)
}

func TestFindRootFullCycle(t *testing.T) {
	t.Parallel()

	// Every node is a source, so no root exists.
	graph := &flowtree.Graph{
		Nodes: []flowtree.Node{{ID: "a"}, {ID: "b"}},
		Edges: []flowtree.Edge{
			{Source: "a", Target: "b"},
			{Source: "b", Target: "a"},
		},
	}

	_, ok := graph.FindRoot()
	assert.False(t, ok)
}

func TestChildren(t *testing.T) {
	t.Parallel()

	graph := linearGraph()

	children := graph.Children(flowtree.Node{ID: "output-1"})
	require.Len(t, children, 1)
	assert.Equal(t, "model-1", children[0].ID)

	leaf := graph.Children(flowtree.Node{ID: "prompt-1"})
	assert.Empty(t, leaf)
}

func TestWalkOrderAndDepth(t *testing.T) {
	t.Parallel()

	var order []string

	var depths []int

	linearGraph().Walk(func(node flowtree.Node, depth int) {
		order = append(order, node.ID)
		depths = append(depths, depth)
	})

	assert.Equal(t, []string{"output-1", "model-1", "prompt-1"}, order)
	assert.Equal(t, []int{0, 1, 2}, depths)
}

func TestWalkTruncatesCycle(t *testing.T) {
	t.Parallel()

	// root <- a <- b <- a: the b->a edge closes a cycle below the root.
	graph := &flowtree.Graph{
		Nodes: []flowtree.Node{{ID: "root"}, {ID: "a"}, {ID: "b"}},
		Edges: []flowtree.Edge{
			{Source: "a", Target: "root"},
			{Source: "b", Target: "a"},
			{Source: "a", Target: "b"},
		},
	}

	var order []string

	graph.Walk(func(node flowtree.Node, _ int) {
		order = append(order, node.ID)
	})

	assert.Equal(t, []string{"root", "a", "b"}, order)
}

func TestRender(t *testing.T) {
	t.Parallel()

	var builder strings.Builder

	require.NoError(t, linearGraph().Render(&builder))

	expected := "Basic Prompting\n" +
		"Chat Output\n" +
		"└── Language Model\n" +
		"    └── Prompt\n"
	assert.Equal(t, expected, builder.String())
}

func TestRenderNoRoot(t *testing.T) {
	t.Parallel()

	var builder strings.Builder

	graph := &flowtree.Graph{}
	require.NoError(t, graph.Render(&builder))
	assert.Contains(t, builder.String(), "no root component")
}

func TestLoad(t *testing.T) {
	t.Parallel()

	payload := `{
		"name": "Demo Flow",
		"data": {
			"nodes": [
				{"id": "n1", "data": {"type": "Prompt", "node": {"display_name": "Prompt"}}},
				{"id": "n2", "data": {"type": "ChatOutput", "node": {"display_name": "Chat Output"}}}
			],
			"edges": [
				{"source": "n1", "target": "n2"}
			]
		}
	}`

	graph, err := flowtree.Load(strings.NewReader(payload))
	require.NoError(t, err)

	assert.Equal(t, "Demo Flow", graph.Name)
	require.Len(t, graph.Nodes, 2)
	require.Len(t, graph.Edges, 1)

	root, ok := graph.FindRoot()
	require.True(t, ok)
	assert.Equal(t, "Chat Output", root.Label())
}

func TestLoadMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: "not json at all"},
		{name: "node without id", payload: `{"data":{"nodes":[{"data":{}}],"edges":[]}}`},
		{name: "edge missing endpoint", payload: `{"data":{"nodes":[{"id":"n1","data":{}}],"edges":[{"source":"n1"}]}}`},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, err := flowtree.Load(strings.NewReader(testCase.payload))
			require.ErrorIs(t, err, flowtree.ErrMalformedFlow)
		})
	}
}
