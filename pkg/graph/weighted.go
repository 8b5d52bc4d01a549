package graph

import (
	"math"

	"lintang/saferoute/pkg/datastructure"
)

// WeightedGraph is a snapshot with one scalar cost per edge. Edges with an infinite cost
// (blocked) are left out of the adjacency. Costs are fixed for the lifetime of the view.
type WeightedGraph struct {
	snap     *Snapshot
	outEdges [][]datastructure.EdgePair
}

// NewWeightedGraph binds costs (indexed by edge index) to snap.
func NewWeightedGraph(snap *Snapshot, costs []float64) *WeightedGraph {
	w := &WeightedGraph{
		snap:     snap,
		outEdges: make([][]datastructure.EdgePair, snap.NumNodes()),
	}
	for n := range snap.outEdges {
		pairs := make([]datastructure.EdgePair, 0, len(snap.outEdges[n]))
		for _, eIDx := range snap.outEdges[n] {
			if math.IsInf(costs[eIDx], 1) {
				continue
			}
			pairs = append(pairs, datastructure.EdgePair{
				EdgeIDx:   eIDx,
				ToNodeIDX: snap.nodeIdx[snap.edges[eIDx].To],
				Weight:    costs[eIDx],
			})
		}
		w.outEdges[n] = pairs
	}
	return w
}

func (w *WeightedGraph) NumNodes() int {
	return w.snap.NumNodes()
}

func (w *WeightedGraph) NodeIndex(id int64) (int32, bool) {
	return w.snap.NodeIndex(id)
}

func (w *WeightedGraph) NodeID(nodeIDx int32) int64 {
	return w.snap.nodes[nodeIDx].ID
}

func (w *WeightedGraph) GetOutEdges(nodeIDx int32) []datastructure.EdgePair {
	return w.outEdges[nodeIDx]
}
