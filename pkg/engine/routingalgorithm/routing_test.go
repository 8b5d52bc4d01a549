package routingalgorithm_test

import (
	"context"
	"encoding/json"
	"testing"

	"lintang/saferoute/pkg/costmodel"
	"lintang/saferoute/pkg/datastructure"
	"lintang/saferoute/pkg/engine/routingalgorithm"
	"lintang/saferoute/pkg/graph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEdge struct {
	id       int64
	from, to int64
	time     float64
}

func newTestSnapshot(t *testing.T, nodes []int64, edges []testEdge) *graph.Snapshot {
	t.Helper()
	b := graph.NewBuilder(false)
	for _, id := range nodes {
		b.AddNode(datastructure.Node{ID: id, Lat: -7.5 + float64(id)*0.001, Lon: 110.8})
	}
	for _, e := range edges {
		b.AddEdge(datastructure.EdgeRecord{
			ID:            e.id,
			From:          e.from,
			To:            e.to,
			DistanceM:     100 * e.time,
			FreeflowTimeS: e.time,
			RoadQuality:   10,
			SafetyIndex:   1,
		})
	}
	snap, err := b.Build()
	require.NoError(t, err)
	return snap
}

// cost == freeflow time, so edge weights in the tests are the times above.
func newTimeOnlyRouter(t *testing.T, snap *graph.Snapshot) *routingalgorithm.RouteAlgorithm {
	t.Helper()
	m, err := costmodel.NewModel(costmodel.Weights{Time: 1}, costmodel.DefaultQMax)
	require.NoError(t, err)
	w, err := m.WeightEdges(snap)
	require.NoError(t, err)
	return routingalgorithm.NewRouteAlgorithm(w)
}

// A=1 B=2 C=3 D=4
func abcdSnapshot(t *testing.T) *graph.Snapshot {
	return newTestSnapshot(t, []int64{1, 2, 3, 4}, []testEdge{
		{id: 10, from: 1, to: 2, time: 1},
		{id: 11, from: 2, to: 3, time: 1},
		{id: 12, from: 3, to: 4, time: 1},
		{id: 13, from: 1, to: 3, time: 5},
	})
}

// 3x3 grid, every monotone path from 1 to 9 is a simple path.
func gridSnapshot(t *testing.T) *graph.Snapshot {
	return newTestSnapshot(t, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9}, []testEdge{
		{id: 1, from: 1, to: 2, time: 1},
		{id: 2, from: 2, to: 3, time: 2},
		{id: 3, from: 1, to: 4, time: 2},
		{id: 4, from: 2, to: 5, time: 1},
		{id: 5, from: 3, to: 6, time: 1},
		{id: 6, from: 4, to: 5, time: 1},
		{id: 7, from: 5, to: 6, time: 2},
		{id: 8, from: 4, to: 7, time: 1},
		{id: 9, from: 5, to: 8, time: 2},
		{id: 10, from: 6, to: 9, time: 1},
		{id: 11, from: 7, to: 8, time: 1},
		{id: 12, from: 8, to: 9, time: 1},
	})
}

func TestShortestPath(t *testing.T) {
	t.Run("success shortest path abcd", func(t *testing.T) {
		rt := newTimeOnlyRouter(t, abcdSnapshot(t))

		p, err := rt.ShortestPath(1, 4, nil)
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2, 3, 4}, p.Nodes)
		assert.Equal(t, []float64{1, 1, 1}, p.EdgeCosts)
		assert.Equal(t, 3.0, p.Cost)
		assert.Equal(t, 3, p.Hops())
	})

	t.Run("success shortest path with excluded node", func(t *testing.T) {
		rt := newTimeOnlyRouter(t, abcdSnapshot(t))
		ex := routingalgorithm.NewExclusion()
		rt.ExcludeNode(ex, 2)

		p, err := rt.ShortestPath(1, 4, ex)
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 3, 4}, p.Nodes)
		assert.Equal(t, 6.0, p.Cost)
	})

	t.Run("success shortest path with excluded edge", func(t *testing.T) {
		rt := newTimeOnlyRouter(t, abcdSnapshot(t))
		ex := routingalgorithm.NewExclusion()
		rt.ExcludeEdge(ex, 3, 4)

		_, err := rt.ShortestPath(1, 4, ex)
		assert.ErrorIs(t, err, routingalgorithm.ErrNoPath)
	})

	t.Run("equal cost ties resolved by node index", func(t *testing.T) {
		snap := newTestSnapshot(t, []int64{1, 2, 3, 4}, []testEdge{
			{id: 1, from: 1, to: 3, time: 1},
			{id: 2, from: 3, to: 4, time: 1},
			{id: 3, from: 1, to: 2, time: 1},
			{id: 4, from: 2, to: 4, time: 1},
		})
		rt := newTimeOnlyRouter(t, snap)

		p, err := rt.ShortestPath(1, 4, nil)
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2, 4}, p.Nodes)
	})

	t.Run("fail unknown node", func(t *testing.T) {
		rt := newTimeOnlyRouter(t, abcdSnapshot(t))

		_, err := rt.ShortestPath(1, 99, nil)
		assert.ErrorIs(t, err, routingalgorithm.ErrInvalidNode)
	})

	t.Run("fail unreachable target", func(t *testing.T) {
		rt := newTimeOnlyRouter(t, abcdSnapshot(t))

		_, err := rt.ShortestPath(4, 1, nil)
		assert.ErrorIs(t, err, routingalgorithm.ErrNoPath)
	})
}

func TestKShortestPaths(t *testing.T) {
	ctx := context.Background()

	t.Run("success k=2 abcd", func(t *testing.T) {
		rt := newTimeOnlyRouter(t, abcdSnapshot(t))

		res, err := rt.KShortestPaths(ctx, 1, 4, 2, routingalgorithm.Budget{})
		require.NoError(t, err)
		require.Len(t, res.Paths, 2)
		assert.False(t, res.Truncated)
		assert.False(t, res.NoPath)

		assert.Equal(t, []int64{1, 2, 3, 4}, res.Paths[0].Nodes)
		assert.Equal(t, 3.0, res.Paths[0].Cost)
		assert.Equal(t, []int64{1, 3, 4}, res.Paths[1].Nodes)
		assert.Equal(t, 6.0, res.Paths[1].Cost)
	})

	t.Run("success fewer than k when candidates run out", func(t *testing.T) {
		rt := newTimeOnlyRouter(t, abcdSnapshot(t))

		res, err := rt.KShortestPaths(ctx, 1, 4, 5, routingalgorithm.Budget{})
		require.NoError(t, err)
		assert.Len(t, res.Paths, 2)
		assert.False(t, res.Truncated)
	})

	t.Run("success k=1 equals shortest path", func(t *testing.T) {
		rt := newTimeOnlyRouter(t, gridSnapshot(t))

		sp, err := rt.ShortestPath(1, 9, nil)
		require.NoError(t, err)
		res, err := rt.KShortestPaths(ctx, 1, 9, 1, routingalgorithm.Budget{})
		require.NoError(t, err)
		require.Len(t, res.Paths, 1)
		assert.Equal(t, sp, res.Paths[0])
	})

	t.Run("success every grid path, simple and non-decreasing", func(t *testing.T) {
		rt := newTimeOnlyRouter(t, gridSnapshot(t))

		res, err := rt.KShortestPaths(ctx, 1, 9, 10, routingalgorithm.Budget{})
		require.NoError(t, err)
		require.Len(t, res.Paths, 6)

		seen := map[string]bool{}
		for i, p := range res.Paths {
			visited := map[int64]bool{}
			for _, n := range p.Nodes {
				assert.False(t, visited[n], "path %v repeats node %d", p.Nodes, n)
				visited[n] = true
			}
			key, _ := json.Marshal(p.Nodes)
			assert.False(t, seen[string(key)], "duplicate path %v", p.Nodes)
			seen[string(key)] = true

			assert.Equal(t, 1, int(p.Nodes[0]))
			assert.Equal(t, 9, int(p.Nodes[len(p.Nodes)-1]))
			if i > 0 {
				assert.LessOrEqual(t, res.Paths[i-1].Cost, p.Cost)
			}
		}
		assert.Equal(t, 5.0, res.Paths[0].Cost)
		assert.Equal(t, 6.0, res.Paths[5].Cost)
	})

	t.Run("success equal cost candidates in node order", func(t *testing.T) {
		rt := newTimeOnlyRouter(t, gridSnapshot(t))

		res, err := rt.KShortestPaths(ctx, 1, 9, 6, routingalgorithm.Budget{})
		require.NoError(t, err)
		require.Len(t, res.Paths, 6)
		assert.Equal(t, []int64{1, 4, 5, 6, 9}, res.Paths[4].Nodes)
		assert.Equal(t, []int64{1, 4, 5, 8, 9}, res.Paths[5].Nodes)
	})

	t.Run("success larger k keeps earlier entries", func(t *testing.T) {
		rt := newTimeOnlyRouter(t, gridSnapshot(t))

		small, err := rt.KShortestPaths(ctx, 1, 9, 3, routingalgorithm.Budget{})
		require.NoError(t, err)
		large, err := rt.KShortestPaths(ctx, 1, 9, 6, routingalgorithm.Budget{})
		require.NoError(t, err)
		require.Len(t, small.Paths, 3)
		assert.Equal(t, small.Paths, large.Paths[:3])
	})

	t.Run("success deterministic", func(t *testing.T) {
		rt := newTimeOnlyRouter(t, gridSnapshot(t))

		a, err := rt.KShortestPaths(ctx, 1, 9, 6, routingalgorithm.Budget{})
		require.NoError(t, err)
		b, err := rt.KShortestPaths(ctx, 1, 9, 6, routingalgorithm.Budget{})
		require.NoError(t, err)

		aj, _ := json.Marshal(a)
		bj, _ := json.Marshal(b)
		assert.Equal(t, string(aj), string(bj))
	})

	t.Run("success blocked edge never used", func(t *testing.T) {
		snap := abcdSnapshot(t)
		blocked := datastructure.NewEdgeUpdate(11)
		blocked.Blocked = true
		snap, err := snap.ApplyUpdates([]datastructure.EdgeUpdate{blocked})
		require.NoError(t, err)
		rt := newTimeOnlyRouter(t, snap)

		res, err := rt.KShortestPaths(ctx, 1, 4, 3, routingalgorithm.Budget{})
		require.NoError(t, err)
		require.Len(t, res.Paths, 1)
		assert.Equal(t, []int64{1, 3, 4}, res.Paths[0].Nodes)
	})

	t.Run("success source equals target", func(t *testing.T) {
		rt := newTimeOnlyRouter(t, abcdSnapshot(t))

		res, err := rt.KShortestPaths(ctx, 2, 2, 3, routingalgorithm.Budget{})
		require.NoError(t, err)
		require.Len(t, res.Paths, 1)
		assert.Equal(t, []int64{2}, res.Paths[0].Nodes)
		assert.Equal(t, 0.0, res.Paths[0].Cost)
		assert.Equal(t, 0, res.Paths[0].Hops())
	})

	t.Run("success unreachable target reports no path", func(t *testing.T) {
		rt := newTimeOnlyRouter(t, abcdSnapshot(t))

		res, err := rt.KShortestPaths(ctx, 4, 1, 3, routingalgorithm.Budget{})
		require.NoError(t, err)
		assert.True(t, res.NoPath)
		assert.Empty(t, res.Paths)
	})

	t.Run("truncated by spur search budget", func(t *testing.T) {
		rt := newTimeOnlyRouter(t, gridSnapshot(t))

		res, err := rt.KShortestPaths(ctx, 1, 9, 5, routingalgorithm.Budget{MaxSpurSearches: 1})
		require.NoError(t, err)
		assert.True(t, res.Truncated)
		require.Len(t, res.Paths, 1)

		sp, err := rt.ShortestPath(1, 9, nil)
		require.NoError(t, err)
		assert.Equal(t, sp, res.Paths[0])
	})

	t.Run("truncated by cancelled context", func(t *testing.T) {
		rt := newTimeOnlyRouter(t, gridSnapshot(t))
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		res, err := rt.KShortestPaths(cctx, 1, 9, 5, routingalgorithm.Budget{})
		require.NoError(t, err)
		assert.True(t, res.Truncated)
		assert.Len(t, res.Paths, 1)
	})

	t.Run("fail invalid k", func(t *testing.T) {
		rt := newTimeOnlyRouter(t, abcdSnapshot(t))

		_, err := rt.KShortestPaths(ctx, 1, 4, 0, routingalgorithm.Budget{})
		assert.ErrorIs(t, err, routingalgorithm.ErrInvalidK)
	})

	t.Run("fail invalid node", func(t *testing.T) {
		rt := newTimeOnlyRouter(t, abcdSnapshot(t))

		_, err := rt.KShortestPaths(ctx, 77, 4, 2, routingalgorithm.Budget{})
		assert.ErrorIs(t, err, routingalgorithm.ErrInvalidNode)
	})
}

func TestMinHeap(t *testing.T) {
	t.Run("success extract in rank then item order", func(t *testing.T) {
		pq := routingalgorithm.NewMinHeap[int32]()
		pq.Insert(routingalgorithm.PriorityQueueNode[int32]{Rank: 3, Item: 1})
		pq.Insert(routingalgorithm.PriorityQueueNode[int32]{Rank: 1, Item: 5})
		pq.Insert(routingalgorithm.PriorityQueueNode[int32]{Rank: 1, Item: 2})
		pq.Insert(routingalgorithm.PriorityQueueNode[int32]{Rank: 2, Item: 4})

		assert.NoError(t, pq.DecreaseKey(routingalgorithm.PriorityQueueNode[int32]{Rank: 0.5, Item: 4}))
		assert.True(t, pq.Contains(4))

		got := []int32{}
		for pq.Size() > 0 {
			n, err := pq.ExtractMin()
			require.NoError(t, err)
			got = append(got, n.Item)
		}
		assert.Equal(t, []int32{4, 2, 5, 1}, got)
		assert.False(t, pq.Contains(4))

		_, err := pq.ExtractMin()
		assert.Error(t, err)
	})
}
