package routingalgorithm

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"lintang/saferoute/pkg/datastructure"
)

// Budget bounds one k shortest paths search. Zero means unbounded.
type Budget struct {
	MaxSpurSearches int
}

/*
KShortestPaths yen's algorithm. Menghasilkan maksimal k simple path dari -> to, urut cost
non-decreasing.

untuk setiap path yang terakhir di accept, setiap node di path itu (kecuali target) jadi spur node:
  - root path = prefix path sampai spur node.
  - edge spur node -> next node dari semua accepted path dengan root path yang sama di exclude.
  - semua node root path kecuali spur node di exclude, supaya spur path gak balik lagi ke root.
  - dijkstra dari spur node ke target di restricted view, root + spur path jadi candidate.

candidate disimpan di min-heap (cost, urutan node) dan di dedupe pakai urutan node lengkap.
Kalau ctx selesai atau budget spur search habis, accepted prefix di return dengan Truncated.
*/
func (rt *RouteAlgorithm) KShortestPaths(ctx context.Context, from, to int64, k int, budget Budget) (datastructure.RankedPaths, error) {
	if k < 1 {
		return datastructure.RankedPaths{}, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}
	src, ok := rt.g.NodeIndex(from)
	if !ok {
		return datastructure.RankedPaths{}, fmt.Errorf("%w: source %d", ErrInvalidNode, from)
	}
	dst, ok := rt.g.NodeIndex(to)
	if !ok {
		return datastructure.RankedPaths{}, fmt.Errorf("%w: target %d", ErrInvalidNode, to)
	}

	if src == dst {
		return datastructure.RankedPaths{
			Paths: []datastructure.Path{{Nodes: []int64{from}, EdgeCosts: []float64{}, Cost: 0}},
		}, nil
	}

	first, found := rt.dijkstra(src, dst, nil)
	if !found {
		return datastructure.RankedPaths{NoPath: true}, nil
	}

	accepted := []indexedPath{first}
	seen := map[string]struct{}{pathKey(first.nodes): {}}
	candidates := newCandidateHeap()
	spurSearches := 0
	truncated := false

search:
	for len(accepted) < k {
		last := accepted[len(accepted)-1]

		for i := 0; i < len(last.nodes)-1; i++ {
			if ctx.Err() != nil || (budget.MaxSpurSearches > 0 && spurSearches >= budget.MaxSpurSearches) {
				truncated = true
				break search
			}

			spurNode := last.nodes[i]
			rootPath := last.nodes[:i+1]

			ex := NewExclusion()
			for _, p := range accepted {
				if len(p.nodes) > i+1 && samePrefix(p.nodes, rootPath) {
					ex.excludeEdge(p.nodes[i], p.nodes[i+1])
				}
			}
			for _, n := range rootPath[:i] {
				ex.excludeNode(n)
			}

			spurSearches++
			spurPath, found := rt.dijkstra(spurNode, dst, ex)
			if !found {
				continue
			}

			nodes := make([]int32, 0, i+len(spurPath.nodes))
			nodes = append(nodes, rootPath[:i]...)
			nodes = append(nodes, spurPath.nodes...)

			key := pathKey(nodes)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			costs := make([]float64, 0, len(nodes)-1)
			costs = append(costs, last.costs[:i]...)
			costs = append(costs, spurPath.costs...)

			candidates.push(indexedPath{nodes: nodes, costs: costs, cost: sumCosts(costs)})
		}

		if candidates.size() == 0 {
			break
		}
		accepted = append(accepted, candidates.pop())
	}

	res := datastructure.RankedPaths{
		Paths:     make([]datastructure.Path, len(accepted)),
		Truncated: truncated,
	}
	for i, p := range accepted {
		res.Paths[i] = rt.toPath(p)
	}
	return res, nil
}

func samePrefix(nodes, prefix []int32) bool {
	if len(nodes) < len(prefix) {
		return false
	}
	for i := range prefix {
		if nodes[i] != prefix[i] {
			return false
		}
	}
	return true
}

func pathKey(nodes []int32) string {
	var sb strings.Builder
	for i, n := range nodes {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(int64(n), 10))
	}
	return sb.String()
}
