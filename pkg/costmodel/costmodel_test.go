package costmodel_test

import (
	"math"
	"testing"

	"lintang/saferoute/pkg/costmodel"
	"lintang/saferoute/pkg/datastructure"
	"lintang/saferoute/pkg/graph"
	"lintang/saferoute/pkg/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCost(t *testing.T) {
	m := costmodel.Default()

	cases := []struct {
		name    string
		factors datastructure.EdgeFactors
		want    float64
	}{
		{
			name:    "free flowing perfect road",
			factors: datastructure.EdgeFactors{Time: 60, Traffic: 1, RoadQuality: 10},
			want:    0.4*60 + 0.3*1,
		},
		{
			name:    "congested rainy poor road",
			factors: datastructure.EdgeFactors{Time: 30, Traffic: 2.5, RoadQuality: 4, Weather: 8},
			want:    0.4*30 + 0.3*2.5 + 0.2*6 + 0.1*8,
		},
		{
			name:    "zero everything",
			factors: datastructure.EdgeFactors{RoadQuality: 10},
			want:    0,
		},
	}
	for _, tc := range cases {
		t.Run("success "+tc.name, func(t *testing.T) {
			got, err := m.Cost(tc.factors)
			require.NoError(t, err)
			assert.Equal(t, util.RoundFloat(tc.want, 9), util.RoundFloat(got, 9))
		})
	}

	t.Run("success blocked is infinite", func(t *testing.T) {
		got, err := m.Cost(datastructure.EdgeFactors{Time: 1, Traffic: 1, RoadQuality: 5, Blocked: true})
		require.NoError(t, err)
		assert.True(t, math.IsInf(got, 1))
	})

	invalid := []datastructure.EdgeFactors{
		{Time: -1, Traffic: 1, RoadQuality: 5},
		{Time: 1, Traffic: -0.5, RoadQuality: 5},
		{Time: 1, Traffic: 1, RoadQuality: -2},
		{Time: 1, Traffic: 1, RoadQuality: 11},
		{Time: math.NaN(), Traffic: 1, RoadQuality: 5},
		{Time: 1, Traffic: 1, RoadQuality: 5, Weather: math.Inf(1)},
	}
	for _, f := range invalid {
		t.Run("fail invalid factors", func(t *testing.T) {
			_, err := m.Cost(f)
			assert.ErrorIs(t, err, graph.ErrInvalidEdgeData)
		})
	}
}

func TestNewModel(t *testing.T) {
	t.Run("success custom weights", func(t *testing.T) {
		m, err := costmodel.NewModel(costmodel.Weights{Time: 1}, 5)
		require.NoError(t, err)
		assert.Equal(t, 5.0, m.QMax())

		got, err := m.Cost(datastructure.EdgeFactors{Time: 7, Traffic: 3, RoadQuality: 1, Weather: 2})
		require.NoError(t, err)
		assert.Equal(t, 7.0, got)
	})

	t.Run("fail negative weight", func(t *testing.T) {
		_, err := costmodel.NewModel(costmodel.Weights{Time: -0.1}, 10)
		assert.ErrorIs(t, err, costmodel.ErrInvalidWeights)
	})

	t.Run("fail infinite qmax", func(t *testing.T) {
		_, err := costmodel.NewModel(costmodel.DefaultWeights(), math.Inf(1))
		assert.ErrorIs(t, err, costmodel.ErrInvalidWeights)
	})
}

func TestWeightEdges(t *testing.T) {
	b := graph.NewBuilder(false)
	b.AddNode(datastructure.Node{ID: 1})
	b.AddNode(datastructure.Node{ID: 2})
	b.AddNode(datastructure.Node{ID: 3})
	b.AddEdge(datastructure.EdgeRecord{ID: 1, From: 1, To: 2, FreeflowTimeS: 10, RoadQuality: 10})
	b.AddEdge(datastructure.EdgeRecord{ID: 2, From: 1, To: 3, FreeflowTimeS: 10, RoadQuality: 10})
	snap, err := b.Build()
	require.NoError(t, err)

	t.Run("success blocked edges dropped from view", func(t *testing.T) {
		up := datastructure.NewEdgeUpdate(2)
		up.Blocked = true
		blocked, err := snap.ApplyUpdates([]datastructure.EdgeUpdate{up})
		require.NoError(t, err)

		w, err := costmodel.Default().WeightEdges(blocked)
		require.NoError(t, err)
		src, _ := w.NodeIndex(1)
		pairs := w.GetOutEdges(src)
		require.Len(t, pairs, 1)
		assert.Equal(t, int64(2), w.NodeID(pairs[0].ToNodeIDX))
		assert.Equal(t, util.RoundFloat(0.4*10+0.3, 9), util.RoundFloat(pairs[0].Weight, 9))
	})

	t.Run("fail quality pushed above qmax", func(t *testing.T) {
		up := datastructure.NewEdgeUpdate(1)
		up.RoadQualityAdjust = 3
		bad, err := snap.ApplyUpdates([]datastructure.EdgeUpdate{up})
		require.NoError(t, err)

		_, err = costmodel.Default().WeightEdges(bad)
		assert.ErrorIs(t, err, graph.ErrInvalidEdgeData)
	})
}
