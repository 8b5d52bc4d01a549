package geo_test

import (
	"testing"

	"lintang/saferoute/pkg/datastructure"
	"lintang/saferoute/pkg/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineDistance(t *testing.T) {
	t.Run("success one degree of latitude", func(t *testing.T) {
		d := geo.HaversineDistance(0, 110, 1, 110)
		assert.InDelta(t, 111195, d, 5)
	})

	t.Run("success same point", func(t *testing.T) {
		assert.Equal(t, 0.0, geo.HaversineDistance(-7.55, 110.82, -7.55, 110.82))
	})
}

func TestRenderPath(t *testing.T) {
	t.Run("success google example polyline", func(t *testing.T) {
		nodes := []datastructure.Node{
			{ID: 1, Lat: 38.5, Lon: -120.2},
			{ID: 2, Lat: 40.7, Lon: -120.95},
			{ID: 3, Lat: 43.252, Lon: -126.453},
		}
		assert.Equal(t, "_p~iF~ps|U_ulLnnqC_mqNvxq`@", geo.RenderPath(nodes))
	})
}

func TestNodeIndex(t *testing.T) {
	nodes := []datastructure.Node{
		{ID: 1, Name: "Gladak", Lat: -7.5755, Lon: 110.8243},
		{ID: 2, Name: "Manahan", Lat: -7.5561, Lon: 110.8063},
		{ID: 3, Name: "Jebres", Lat: -7.5613, Lon: 110.8389},
	}
	ix := geo.NewNodeIndex(nodes)

	t.Run("success nearest node", func(t *testing.T) {
		n, dist, err := ix.Nearest(-7.5560, 110.8065)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n.ID)
		assert.Less(t, dist, 50.0)
	})

	t.Run("success wider ring when nothing close", func(t *testing.T) {
		n, _, err := ix.Nearest(-7.5900, 110.8243)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n.ID)
	})

	t.Run("fail far away location", func(t *testing.T) {
		_, _, err := ix.Nearest(-6.2, 106.8)
		assert.ErrorIs(t, err, geo.ErrNoNearbyNode)
	})
}
