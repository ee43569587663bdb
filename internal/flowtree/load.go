// SPDX-FileCopyrightText: 2025 The Flowdeck Authors
// SPDX-License-Identifier: EUPL-1.2

package flowtree

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrMalformedFlow is returned by Load for input that is not a flow export.
var ErrMalformedFlow = errors.New("malformed flow file")

// Wire shapes of a flow export. Only the fields the tree needs are decoded.
type flowFile struct {
	Name string   `json:"name"`
	Data flowData `json:"data"`
}

type flowData struct {
	Nodes []flowNode `json:"nodes"`
	Edges []flowEdge `json:"edges"`
}

type flowNode struct {
	ID   string       `json:"id"`
	Data flowNodeData `json:"data"`
}

type flowNodeData struct {
	Type string       `json:"type"`
	Node flowNodeMeta `json:"node"`
}

type flowNodeMeta struct {
	DisplayName string `json:"display_name"`
}

type flowEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Load decodes an exported flow file into a Graph.
func Load(reader io.Reader) (*Graph, error) {
	var file flowFile

	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedFlow, err)
	}

	graph := &Graph{
		Name:  file.Name,
		Nodes: make([]Node, 0, len(file.Data.Nodes)),
		Edges: make([]Edge, 0, len(file.Data.Edges)),
	}

	for _, node := range file.Data.Nodes {
		if node.ID == "" {
			return nil, fmt.Errorf("%w: node without id", ErrMalformedFlow)
		}

		graph.Nodes = append(graph.Nodes, Node{
			ID:          node.ID,
			Type:        node.Data.Type,
			DisplayName: node.Data.Node.DisplayName,
		})
	}

	for _, edge := range file.Data.Edges {
		if edge.Source == "" || edge.Target == "" {
			return nil, fmt.Errorf("%w: edge missing endpoint", ErrMalformedFlow)
		}

		graph.Edges = append(graph.Edges, Edge{Source: edge.Source, Target: edge.Target})
	}

	return graph, nil
}
