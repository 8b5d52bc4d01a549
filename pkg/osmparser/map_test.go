package osmparser

import (
	"testing"

	"lintang/saferoute/pkg/datastructure"
	"lintang/saferoute/pkg/geo"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWay(id osm.WayID, nodes []osm.NodeID, tags ...string) *osm.Way {
	w := &osm.Way{ID: id}
	for _, n := range nodes {
		w.Nodes = append(w.Nodes, osm.WayNode{ID: n})
	}
	for i := 0; i+1 < len(tags); i += 2 {
		w.Tags = append(w.Tags, osm.Tag{Key: tags[i], Value: tags[i+1]})
	}
	return w
}

func testCoords() map[osm.NodeID]datastructure.Coordinate {
	return map[osm.NodeID]datastructure.Coordinate{
		1: {Lat: -7.5700, Lon: 110.8200},
		2: {Lat: -7.5700, Lon: 110.8210},
		3: {Lat: -7.5700, Lon: 110.8220},
		4: {Lat: -7.5710, Lon: 110.8220},
		5: {Lat: -7.5720, Lon: 110.8220},
		6: {Lat: -7.5730, Lon: 110.8220},
	}
}

func edgesOf(res Result, from, to int64) []datastructure.EdgeRecord {
	out := []datastructure.EdgeRecord{}
	for _, e := range res.Edges {
		if e.From == from && e.To == to {
			out = append(out, e)
		}
	}
	return out
}

func TestBuildGraph(t *testing.T) {
	coords := testCoords()

	t.Run("success intersections only, two-way and oneway", func(t *testing.T) {
		ways := []*osm.Way{
			newWay(100, []osm.NodeID{1, 2, 3}, "highway", "residential", "name", "Jalan Slamet Riyadi"),
			newWay(101, []osm.NodeID{3, 4, 5}, "highway", "primary", "oneway", "yes"),
			newWay(102, []osm.NodeID{5, 6}, "highway", "service", "oneway", "-1"),
		}
		res := BuildGraph(ways, coords)

		ids := []int64{}
		for _, n := range res.Nodes {
			ids = append(ids, n.ID)
		}
		// 2 and 4 are used by one way only
		assert.ElementsMatch(t, []int64{1, 3, 5, 6}, ids)
		assert.Equal(t, "Jalan Slamet Riyadi", res.Nodes[0].Name)
		require.Len(t, res.Edges, 4)

		fwd := edgesOf(res, 1, 3)
		back := edgesOf(res, 3, 1)
		require.Len(t, fwd, 1)
		require.Len(t, back, 1)
		assert.Equal(t, fwd[0].ID, back[0].ID)
		want := geo.HaversineDistance(-7.57, 110.82, -7.57, 110.821) + geo.HaversineDistance(-7.57, 110.821, -7.57, 110.822)
		assert.InDelta(t, want, fwd[0].DistanceM, 0.01)
		assert.InDelta(t, fwd[0].DistanceM/(30/3.6), fwd[0].FreeflowTimeS, 0.01)

		assert.Len(t, edgesOf(res, 3, 5), 1)
		assert.Empty(t, edgesOf(res, 5, 3))

		assert.Len(t, edgesOf(res, 6, 5), 1)
		assert.Empty(t, edgesOf(res, 5, 6))
	})

	t.Run("success shared interior node splits the way", func(t *testing.T) {
		ways := []*osm.Way{
			newWay(100, []osm.NodeID{1, 2, 3}, "highway", "residential"),
			newWay(101, []osm.NodeID{2, 4}, "highway", "residential"),
		}
		res := BuildGraph(ways, coords)

		assert.Len(t, res.Nodes, 4)
		assert.Len(t, edgesOf(res, 1, 2), 1)
		assert.Len(t, edgesOf(res, 2, 3), 1)
		assert.Len(t, edgesOf(res, 2, 4), 1)
		assert.Equal(t, "node 1", res.Nodes[0].Name)
	})

	t.Run("success nodes without coordinates are skipped", func(t *testing.T) {
		ways := []*osm.Way{
			newWay(100, []osm.NodeID{1, 99, 3}, "highway", "residential"),
			newWay(101, []osm.NodeID{98, 4}, "highway", "residential"),
		}
		res := BuildGraph(ways, coords)

		assert.Len(t, res.Nodes, 2)
		require.Len(t, res.Edges, 2)
		assert.Len(t, edgesOf(res, 1, 3), 1)
	})
}

func TestWayAttributes(t *testing.T) {
	t.Run("success maxspeed tag", func(t *testing.T) {
		assert.Equal(t, 50.0, parseMaxSpeed("50"))
		assert.Equal(t, 60.0, parseMaxSpeed("60 km/h"))
		assert.InDelta(t, 48.28, parseMaxSpeed("30 mph"), 0.01)
		assert.Equal(t, 0.0, parseMaxSpeed("signals"))
		assert.Equal(t, 0.0, parseMaxSpeed(""))
	})

	t.Run("success road type fallback speed", func(t *testing.T) {
		info := getWayInfo(newWay(1, nil, "highway", "secondary", "maxspeed", "none"))
		assert.Equal(t, 65.0, info.maxSpeed)
	})

	t.Run("success quality within 0..10", func(t *testing.T) {
		assert.Equal(t, 9.5, roadQuality("motorway", "asphalt"))
		assert.Equal(t, 0.0, roadQuality("track", "mud"))
		assert.Equal(t, 7.0, roadQuality("primary_link", "paving_stones"))
		assert.Equal(t, defaultRoadQuality, roadQuality("", ""))
	})

	t.Run("success safety index", func(t *testing.T) {
		assert.Equal(t, 8.5, safetyIndex(map[string]string{"lit": "yes", "sidewalk": "both"}, 30))
		assert.Equal(t, 5.5, safetyIndex(map[string]string{}, 95))
	})

	t.Run("success car filter", func(t *testing.T) {
		assert.True(t, isOsmWayUsedByCars(map[string]string{"highway": "residential"}))
		assert.False(t, isOsmWayUsedByCars(map[string]string{"highway": "footway"}))
		assert.False(t, isOsmWayUsedByCars(map[string]string{"highway": "primary", "access": "private"}))
		assert.False(t, isOsmWayUsedByCars(map[string]string{"highway": "primary", "oneway": "reversible"}))
		assert.False(t, isOsmWayUsedByCars(map[string]string{"building": "yes"}))
	})
}
