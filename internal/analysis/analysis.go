// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package analysis

import (
	"time"

	"github.com/apex/log"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/bdgeo/roadctl/internal/roadnet"
)

// Betweenness centrality is O(V*E); above this many nodes it is computed on
// a fixed-size subsample instead of the whole graph. Deliberately approximate.
const (
	BetweennessSampleThreshold = 5000
	BetweennessSampleSize      = 1000
)

// Stats is the connectivity summary for one road network. Field names double
// as the cached JSON schema, so renames are schema changes.
type Stats struct {
	TotalNodes               int     `json:"total_nodes"`
	TotalEdges               int     `json:"total_edges"`
	IsConnected              bool    `json:"is_connected"`
	Components               int     `json:"number_of_components"`
	AvgDegreeCentrality      float64 `json:"avg_degree_centrality"`
	AvgBetweennessCentrality float64 `json:"avg_betweenness_centrality"`
	BetweennessSampled       bool    `json:"betweenness_sampled"`
	AnalysisDate             string  `json:"analysis_date"`
}

// Connectivity computes the stats for a network. Connectivity and component
// counts are over the undirected projection; a graph is connected iff it has
// exactly one component.
func Connectivity(n *roadnet.Network) Stats {
	g := n.Undirected()

	components := topo.ConnectedComponents(g)

	stats := Stats{
		TotalNodes:   len(n.Nodes),
		TotalEdges:   len(n.Edges),
		IsConnected:  len(components) == 1,
		Components:   len(components),
		AnalysisDate: time.Now().Format("2006-01-02 15:04:05"),
	}

	stats.AvgDegreeCentrality = avgDegreeCentrality(g)

	sample := BetweennessSample(n)
	if sample != nil {
		log.Debugf("betweenness subsampled to %d of %d nodes", len(sample), len(n.Nodes))
		stats.BetweennessSampled = true
		g = subgraph(n, sample)
	}
	stats.AvgBetweennessCentrality = avgBetweenness(g)

	return stats
}

// BetweennessSample returns the node IDs betweenness will be computed over,
// or nil when the whole graph is small enough to use directly. The sample is
// the first BetweennessSampleSize IDs in the network's stable iteration order.
func BetweennessSample(n *roadnet.Network) []int64 {
	if len(n.Nodes) <= BetweennessSampleThreshold {
		return nil
	}
	return n.SortedNodeIDs()[:BetweennessSampleSize]
}

// avgDegreeCentrality is the mean over nodes of degree/(n-1).
func avgDegreeCentrality(g *simple.UndirectedGraph) float64 {
	order := g.Nodes().Len()
	if order < 2 {
		return 0
	}

	var sum float64
	nodes := g.Nodes()
	for nodes.Next() {
		sum += float64(g.From(nodes.Node().ID()).Len()) / float64(order-1)
	}
	return sum / float64(order)
}

// avgBetweenness is the mean normalized betweenness centrality. gonum
// reports raw scores summed over ordered (s,t) pairs for the non-zero nodes
// only, so normalizing to the usual [0,1] undirected scale divides by
// (n-1)(n-2), and the mean divides by the full node count.
func avgBetweenness(g *simple.UndirectedGraph) float64 {
	order := g.Nodes().Len()
	if order < 3 {
		return 0
	}

	scores := network.Betweenness(g)

	var sum float64
	for _, v := range scores {
		sum += v
	}

	norm := 1.0 / (float64(order-1) * float64(order-2))
	return sum * norm / float64(order)
}

// subgraph induces the undirected graph on the sampled node set.
func subgraph(n *roadnet.Network, ids []int64) *simple.UndirectedGraph {
	keep := make(map[int64]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}

	g := simple.NewUndirectedGraph()
	for _, id := range ids {
		g.AddNode(simple.Node(id))
	}
	for _, e := range n.Edges {
		if e.From == e.To || !keep[e.From] || !keep[e.To] {
			continue
		}
		g.SetEdge(simple.Edge{F: simple.Node(e.From), T: simple.Node(e.To)})
	}
	return g
}
