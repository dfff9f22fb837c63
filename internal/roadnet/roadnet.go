// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package roadnet

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
)

// DefaultClass is the canonical classification for segments that carry no
// usable highway tag. It is also the style-lookup fallback key.
const DefaultClass = "unclassified"

// Node is a road intersection or way vertex.
type Node struct {
	ID  int64   `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Edge is one road segment between two nodes.
type Edge struct {
	From   int64   `json:"from"`
	To     int64   `json:"to"`
	Class  string  `json:"class"`
	Length float64 `json:"length"` // meters
	Name   string  `json:"name,omitempty"`
}

// Network is an attributed road graph. It is immutable once a producer hands
// it out; the builder methods exist for providers and tests constructing one.
type Network struct {
	Place       string         `json:"place"`
	NetworkType string         `json:"network_type"`
	Nodes       map[int64]Node `json:"nodes"`
	Edges       []Edge         `json:"edges"`
}

// New returns an empty network for the given place and network type.
func New(place, networkType string) *Network {
	return &Network{
		Place:       place,
		NetworkType: networkType,
		Nodes:       make(map[int64]Node),
	}
}

// AddNode records a node, overwriting any previous coordinates for the ID.
func (n *Network) AddNode(node Node) {
	if n.Nodes == nil {
		n.Nodes = make(map[int64]Node)
	}
	n.Nodes[node.ID] = node
}

// AddEdge records a segment. The classification is normalized here, once,
// so lookups downstream never see raw multi-valued tags.
func (n *Network) AddEdge(from, to int64, length float64, name string, classTags ...string) {
	n.Edges = append(n.Edges, Edge{
		From:   from,
		To:     to,
		Class:  NormalizeClass(classTags...),
		Length: length,
		Name:   name,
	})
}

// NormalizeClass reduces a (possibly multi-valued) highway tag to a single
// canonical classification: the first non-empty tag, or DefaultClass.
func NormalizeClass(tags ...string) string {
	for _, t := range tags {
		if t != "" {
			return t
		}
	}
	return DefaultClass
}

// SortedNodeIDs returns all node IDs in ascending order. This is the
// network's stable iteration order; subsampling in the analysis layer
// depends on it being deterministic.
func (n *Network) SortedNodeIDs() []int64 {
	ids := make([]int64, 0, len(n.Nodes))
	for id := range n.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Undirected projects the network onto a gonum undirected graph for the
// connectivity and centrality primitives. Self-loops and edges referencing
// unknown nodes are skipped.
func (n *Network) Undirected() *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	for _, id := range n.SortedNodeIDs() {
		g.AddNode(simple.Node(id))
	}
	for _, e := range n.Edges {
		if e.From == e.To {
			continue
		}
		if _, ok := n.Nodes[e.From]; !ok {
			continue
		}
		if _, ok := n.Nodes[e.To]; !ok {
			continue
		}
		g.SetEdge(simple.Edge{F: simple.Node(e.From), T: simple.Node(e.To)})
	}
	return g
}

// Center is the arithmetic mean of all node coordinates. Returns false when
// the network has no nodes.
func (n *Network) Center() (lat, lon float64, ok bool) {
	if len(n.Nodes) == 0 {
		return 0, 0, false
	}
	for _, node := range n.Nodes {
		lat += node.Lat
		lon += node.Lon
	}
	count := float64(len(n.Nodes))
	return lat / count, lon / count, true
}

// Classes returns the distinct edge classifications in ascending order.
func (n *Network) Classes() []string {
	seen := make(map[string]bool)
	for _, e := range n.Edges {
		seen[e.Class] = true
	}
	classes := make([]string, 0, len(seen))
	for c := range seen {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	return classes
}
