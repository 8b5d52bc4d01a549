package kv_test

import (
	"testing"

	"lintang/saferoute/pkg/datastructure"
	"lintang/saferoute/pkg/graph"
	"lintang/saferoute/pkg/kv"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemKV(t *testing.T) *kv.KVDB {
	t.Helper()
	db, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	require.NoError(t, err)
	k := kv.NewKVDB(db, false)
	t.Cleanup(func() { k.Close() })
	return k
}

// line graph with enough edges to span several stored chunks.
func lineSnapshot(t *testing.T, numNodes int) *graph.Snapshot {
	t.Helper()
	b := graph.NewBuilder(true)
	for i := 1; i <= numNodes; i++ {
		b.AddNode(datastructure.Node{ID: int64(i), Name: "jl. slamet riyadi", Lat: -7.56 + float64(i)*1e-5, Lon: 110.82})
	}
	for i := 1; i < numNodes; i++ {
		b.AddEdge(datastructure.EdgeRecord{
			ID:            int64(i),
			From:          int64(i),
			To:            int64(i + 1),
			DistanceM:     12.5,
			FreeflowTimeS: 1.5,
			RoadQuality:   8,
			SafetyIndex:   0.9,
		})
	}
	snap, err := b.Build()
	require.NoError(t, err)

	up := datastructure.NewEdgeUpdate(3)
	up.TrafficMultiplier = 2
	up.Blocked = true
	snap, err = snap.ApplyUpdates([]datastructure.EdgeUpdate{up})
	require.NoError(t, err)
	return snap
}

func TestSnapshotStore(t *testing.T) {
	t.Run("success save and load current", func(t *testing.T) {
		k := newMemKV(t)
		snap := lineSnapshot(t, 5000)

		require.NoError(t, k.SaveSnapshot(snap.Record(), true))

		rec, err := k.LoadCurrentSnapshot()
		require.NoError(t, err)
		assert.Equal(t, snap.ID(), rec.ID)
		assert.Len(t, rec.Edges, snap.NumEdges())
		assert.Len(t, rec.Nodes, 5000)

		back, err := graph.FromRecord(rec)
		require.NoError(t, err)
		assert.Equal(t, snap.Record(), back.Record())
	})

	t.Run("success current moves to latest", func(t *testing.T) {
		k := newMemKV(t)
		first := lineSnapshot(t, 10)
		second := lineSnapshot(t, 20)

		require.NoError(t, k.SaveSnapshot(first.Record(), true))
		require.NoError(t, k.SaveSnapshot(second.Record(), true))

		rec, err := k.LoadCurrentSnapshot()
		require.NoError(t, err)
		assert.Equal(t, second.ID(), rec.ID)

		old, err := k.LoadSnapshot(first.ID())
		require.NoError(t, err)
		assert.Len(t, old.Nodes, 10)
	})

	t.Run("fail empty store", func(t *testing.T) {
		k := newMemKV(t)

		_, err := k.LoadCurrentSnapshot()
		assert.ErrorIs(t, err, kv.ErrSnapshotNotFound)
	})

	t.Run("fail unknown id", func(t *testing.T) {
		k := newMemKV(t)

		_, err := k.LoadSnapshot("nope")
		assert.ErrorIs(t, err, kv.ErrSnapshotNotFound)
	})
}
