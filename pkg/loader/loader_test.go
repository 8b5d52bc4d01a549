package loader_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lintang/saferoute/pkg/datastructure"
	"lintang/saferoute/pkg/graph"
	"lintang/saferoute/pkg/loader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nodesCSV = `id,name,lat,lon
1,"Gladak, Surakarta",-7.5755,110.8243
2,Manahan,-7.5561,110.8063
3,Jebres,-7.5613,110.8389
`

const edgesCSV = `u,v,distance_m,freeflow_time_s,road_quality,safety_index,edge_id
1,2,2900.5,240,7,0.8,0
2,3,3600,300,6.5,0.7,1
1,3,1800,200,8,0.9,2
`

func TestReadNodes(t *testing.T) {
	t.Run("success quoted names", func(t *testing.T) {
		nodes, err := loader.ReadNodes(strings.NewReader(nodesCSV), "nodes.csv")
		require.NoError(t, err)
		require.Len(t, nodes, 3)
		assert.Equal(t, datastructure.Node{ID: 1, Name: "Gladak, Surakarta", Lat: -7.5755, Lon: 110.8243}, nodes[0])
	})

	t.Run("fail bad latitude carries file and line", func(t *testing.T) {
		_, err := loader.ReadNodes(strings.NewReader("id,name,lat,lon\n1,a,x,110\n"), "nodes.csv")
		assert.ErrorIs(t, err, loader.ErrMalformed)
		assert.Contains(t, err.Error(), "nodes.csv:2")
	})

	t.Run("fail missing fields", func(t *testing.T) {
		_, err := loader.ReadNodes(strings.NewReader("1,a,-7.5\n"), "nodes.csv")
		assert.ErrorIs(t, err, loader.ErrMalformed)
	})
}

func TestReadEdges(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		edges, err := loader.ReadEdges(strings.NewReader(edgesCSV), "edges.csv")
		require.NoError(t, err)
		require.Len(t, edges, 3)
		assert.Equal(t, datastructure.EdgeRecord{
			ID: 0, From: 1, To: 2, DistanceM: 2900.5, FreeflowTimeS: 240, RoadQuality: 7, SafetyIndex: 0.8,
		}, edges[0])
	})

	t.Run("success write then read", func(t *testing.T) {
		edges, err := loader.ReadEdges(strings.NewReader(edgesCSV), "edges.csv")
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, loader.WriteEdges(&buf, edges))
		back, err := loader.ReadEdges(&buf, "edges.csv")
		require.NoError(t, err)
		assert.Equal(t, edges, back)
	})

	t.Run("fail bad edge id", func(t *testing.T) {
		_, err := loader.ReadEdges(strings.NewReader("1,2,10,1,5,1,abc\n"), "edges.csv")
		assert.ErrorIs(t, err, loader.ErrMalformed)
		assert.Contains(t, err.Error(), "edge_id")
	})
}

func TestReadUpdates(t *testing.T) {
	t.Run("success optional fields default", func(t *testing.T) {
		js := `{"2": {"rain_mm_hr": 4.5}, "0": {"traffic_multiplier": 2.1, "blocked": true, "road_quality_adjust": -1.5}}`
		updates, err := loader.ReadUpdates(strings.NewReader(js), "updates.json")
		require.NoError(t, err)
		require.Len(t, updates, 2)

		assert.Equal(t, datastructure.EdgeUpdate{EdgeID: 0, TrafficMultiplier: 2.1, RoadQualityAdjust: -1.5, Blocked: true}, updates[0])
		assert.Equal(t, datastructure.EdgeUpdate{EdgeID: 2, TrafficMultiplier: 1, RainMmHr: 4.5}, updates[1])
	})

	t.Run("success write then read", func(t *testing.T) {
		in := []datastructure.EdgeUpdate{
			{EdgeID: 1, TrafficMultiplier: 1.3, RainMmHr: 2},
			{EdgeID: 7, TrafficMultiplier: 1, Blocked: true},
		}
		var buf bytes.Buffer
		require.NoError(t, loader.WriteUpdates(&buf, in))
		out, err := loader.ReadUpdates(&buf, "updates.json")
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("fail non numeric key", func(t *testing.T) {
		_, err := loader.ReadUpdates(strings.NewReader(`{"a": {}}`), "updates.json")
		assert.ErrorIs(t, err, loader.ErrMalformed)
	})

	t.Run("fail not json", func(t *testing.T) {
		_, err := loader.ReadUpdates(strings.NewReader(`[1,2`), "updates.json")
		assert.ErrorIs(t, err, loader.ErrMalformed)
	})
}

func writeFiles(t *testing.T, updates string) loader.Files {
	t.Helper()
	dir := t.TempDir()
	files := loader.Files{
		NodesPath: filepath.Join(dir, "nodes.csv"),
		EdgesPath: filepath.Join(dir, "edges.csv"),
	}
	require.NoError(t, os.WriteFile(files.NodesPath, []byte(nodesCSV), 0o644))
	require.NoError(t, os.WriteFile(files.EdgesPath, []byte(edgesCSV), 0o644))
	if updates != "" {
		files.UpdatesPath = filepath.Join(dir, "updates.json")
		require.NoError(t, os.WriteFile(files.UpdatesPath, []byte(updates), 0o644))
	}
	return files
}

func TestLoadSnapshot(t *testing.T) {
	t.Run("success directed without updates", func(t *testing.T) {
		snap, err := loader.LoadSnapshot(writeFiles(t, ""), false)
		require.NoError(t, err)
		assert.Equal(t, 3, snap.NumNodes())
		assert.Equal(t, 3, snap.NumEdges())
	})

	t.Run("success bidirectional with updates", func(t *testing.T) {
		snap, err := loader.LoadSnapshot(writeFiles(t, `{"1": {"blocked": true}}`), true)
		require.NoError(t, err)
		assert.Equal(t, 6, snap.NumEdges())
		for _, eIDx := range snap.EdgesByID(1) {
			assert.True(t, snap.GetEdge(eIDx).Update.Blocked)
		}
	})

	t.Run("fail update for unknown edge", func(t *testing.T) {
		_, err := loader.LoadSnapshot(writeFiles(t, `{"99": {"blocked": true}}`), false)
		assert.ErrorIs(t, err, graph.ErrUnknownEdge)
	})

	t.Run("fail negative rain", func(t *testing.T) {
		_, err := loader.LoadSnapshot(writeFiles(t, `{"1": {"rain_mm_hr": -2}}`), false)
		assert.ErrorIs(t, err, graph.ErrInvalidEdgeData)
	})

	t.Run("success updates file written atomically", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "updates.json")
		up := datastructure.NewEdgeUpdate(3)
		require.NoError(t, loader.WriteUpdatesFile(path, []datastructure.EdgeUpdate{up}))

		got, err := loader.ReadUpdatesFile(path)
		require.NoError(t, err)
		assert.Equal(t, []datastructure.EdgeUpdate{up}, got)
		_, err = os.Stat(path + ".tmp")
		assert.True(t, os.IsNotExist(err))
	})
}
