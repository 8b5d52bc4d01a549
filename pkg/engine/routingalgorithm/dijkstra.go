package routingalgorithm

import (
	"errors"
	"fmt"

	"lintang/saferoute/pkg/datastructure"
	"lintang/saferoute/pkg/graph"
	"lintang/saferoute/pkg/util"
)

var (
	ErrInvalidNode = graph.ErrInvalidNode
	ErrNoPath      = errors.New("no path between source and target")
	ErrInvalidK    = errors.New("k must be at least 1")
)

type WeightedGraph interface {
	NumNodes() int
	NodeIndex(id int64) (int32, bool)
	NodeID(nodeIDx int32) int64
	GetOutEdges(nodeIDx int32) []datastructure.EdgePair
}

type RouteAlgorithm struct {
	g WeightedGraph
}

func NewRouteAlgorithm(g WeightedGraph) *RouteAlgorithm {
	return &RouteAlgorithm{g: g}
}

// Exclusion is a restricted view of the graph for one search: removed nodes and removed
// ordered edges. The graph itself is never touched.
type Exclusion struct {
	nodes map[int32]struct{}
	edges map[[2]int32]struct{}
}

func NewExclusion() *Exclusion {
	return &Exclusion{
		nodes: make(map[int32]struct{}),
		edges: make(map[[2]int32]struct{}),
	}
}

func (e *Exclusion) excludeNode(nodeIDx int32) {
	e.nodes[nodeIDx] = struct{}{}
}

func (e *Exclusion) excludeEdge(from, to int32) {
	e.edges[[2]int32{from, to}] = struct{}{}
}

func (e *Exclusion) hasNode(nodeIDx int32) bool {
	if e == nil {
		return false
	}
	_, ok := e.nodes[nodeIDx]
	return ok
}

func (e *Exclusion) hasEdge(from, to int32) bool {
	if e == nil {
		return false
	}
	_, ok := e.edges[[2]int32{from, to}]
	return ok
}

// ExcludeNode removes node id from the view. Unknown ids are ignored.
func (rt *RouteAlgorithm) ExcludeNode(ex *Exclusion, id int64) {
	if idx, ok := rt.g.NodeIndex(id); ok {
		ex.excludeNode(idx)
	}
}

// ExcludeEdge removes the ordered edge from -> to from the view. Unknown ids are ignored.
func (rt *RouteAlgorithm) ExcludeEdge(ex *Exclusion, from, to int64) {
	u, ok := rt.g.NodeIndex(from)
	if !ok {
		return
	}
	v, ok := rt.g.NodeIndex(to)
	if !ok {
		return
	}
	ex.excludeEdge(u, v)
}

type cameFromPair struct {
	Weight  float64
	NodeIDx int32
}

// indexedPath is a path in node indices, used inside the search.
type indexedPath struct {
	nodes []int32
	costs []float64
	cost  float64
}

// ShortestPath returns the minimum cost path from -> to on the view restricted by ex (may be nil).
func (rt *RouteAlgorithm) ShortestPath(from, to int64, ex *Exclusion) (datastructure.Path, error) {
	src, ok := rt.g.NodeIndex(from)
	if !ok {
		return datastructure.Path{}, fmt.Errorf("%w: source %d", ErrInvalidNode, from)
	}
	dst, ok := rt.g.NodeIndex(to)
	if !ok {
		return datastructure.Path{}, fmt.Errorf("%w: target %d", ErrInvalidNode, to)
	}
	p, found := rt.dijkstra(src, dst, ex)
	if !found {
		return datastructure.Path{}, ErrNoPath
	}
	return rt.toPath(p), nil
}

/*
dijkstra single source single target di restricted view. Node yang ada di ex.nodes tidak pernah
di visit, edge yang ada di ex.edges tidak pernah di relax. Tie antar node dengan cost sama
diputus pakai node index (== urutan node id), relax hanya kalau cost strictly lebih kecil.

time complexity: O((V+E)logV), priority queue pakai binary heap.
*/
func (rt *RouteAlgorithm) dijkstra(from, to int32, ex *Exclusion) (indexedPath, bool) {
	if ex.hasNode(from) || ex.hasNode(to) {
		return indexedPath{}, false
	}

	cost := make(map[int32]float64)
	cameFrom := make(map[int32]cameFromPair)
	visited := make(map[int32]bool)

	pq := NewMinHeap[int32]()
	pq.Insert(PriorityQueueNode[int32]{Rank: 0, Item: from})
	cost[from] = 0
	cameFrom[from] = cameFromPair{0, -1}

	for pq.Size() > 0 {
		curr, _ := pq.ExtractMin()
		if curr.Item == to {
			return rt.createPath(from, to, cameFrom), true
		}
		visited[curr.Item] = true

		for _, arc := range rt.g.GetOutEdges(curr.Item) {
			next := arc.ToNodeIDX
			if visited[next] || ex.hasNode(next) || ex.hasEdge(curr.Item, next) {
				continue
			}

			newCost := cost[curr.Item] + arc.Weight
			oldCost, seen := cost[next]
			if !seen {
				cost[next] = newCost
				cameFrom[next] = cameFromPair{arc.Weight, curr.Item}
				pq.Insert(PriorityQueueNode[int32]{Rank: newCost, Item: next})
			} else if newCost < oldCost {
				cost[next] = newCost
				cameFrom[next] = cameFromPair{arc.Weight, curr.Item}
				pq.DecreaseKey(PriorityQueueNode[int32]{Rank: newCost, Item: next})
			}
		}
	}
	return indexedPath{}, false
}

func (rt *RouteAlgorithm) createPath(from, to int32, cameFrom map[int32]cameFromPair) indexedPath {
	nodes := []int32{}
	costs := []float64{}
	for v := to; v != -1; v = cameFrom[v].NodeIDx {
		nodes = append(nodes, v)
		if v != from {
			costs = append(costs, cameFrom[v].Weight)
		}
	}
	util.ReverseG(nodes)
	util.ReverseG(costs)
	return indexedPath{nodes: nodes, costs: costs, cost: sumCosts(costs)}
}

func (rt *RouteAlgorithm) toPath(p indexedPath) datastructure.Path {
	ids := make([]int64, len(p.nodes))
	for i, n := range p.nodes {
		ids[i] = rt.g.NodeID(n)
	}
	costs := make([]float64, len(p.costs))
	copy(costs, p.costs)
	return datastructure.Path{Nodes: ids, EdgeCosts: costs, Cost: p.cost}
}

// sumCosts adds edge costs from the source side, the same order Dijkstra accumulates them.
func sumCosts(costs []float64) float64 {
	total := 0.0
	for _, c := range costs {
		total += c
	}
	return total
}
