package osmparser

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"lintang/saferoute/pkg/datastructure"

	"github.com/k0kubun/go-ansi"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/schollz/progressbar/v3"
)

func newBar(max int, desc string, verbose bool) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetVisibility(verbose),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

func ParseFile(ctx context.Context, path string, verbose bool) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()
	return Parse(ctx, f, verbose)
}

// Parse reads an osm.pbf extract twice: ways used by cars first, then the coordinates of their nodes.
func Parse(ctx context.Context, rs io.ReadSeeker, verbose bool) (Result, error) {
	procs := max(1, runtime.GOMAXPROCS(0)-1)

	scanner := osmpbf.New(ctx, rs, procs)
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	bar := newBar(-1, "[cyan][1/3][reset] memproses openstreetmap way...", verbose)
	ways := []*osm.Way{}
	wayNodes := make(map[osm.NodeID]struct{})
	for scanner.Scan() {
		way, ok := scanner.Object().(*osm.Way)
		if !ok || !isOsmWayUsedByCars(way.TagMap()) {
			continue
		}
		ways = append(ways, way)
		for _, n := range way.Nodes {
			wayNodes[n.ID] = struct{}{}
		}
		bar.Add(1)
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return Result{}, fmt.Errorf("scan ways: %w", err)
	}
	scanner.Close()

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return Result{}, err
	}
	scanner = osmpbf.New(ctx, rs, procs)
	defer scanner.Close()
	scanner.SkipWays = true
	scanner.SkipRelations = true

	bar = newBar(len(wayNodes), "[cyan][2/3][reset] memproses openstreetmap node...", verbose)
	coords := make(map[osm.NodeID]datastructure.Coordinate, len(wayNodes))
	for scanner.Scan() {
		node, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, used := wayNodes[node.ID]; used {
			coords[node.ID] = datastructure.NewCoordinate(node.Lat, node.Lon)
			bar.Add(1)
		}
	}
	if err := scanner.Err(); err != nil {
		return Result{}, fmt.Errorf("scan nodes: %w", err)
	}

	return BuildGraph(ways, coords), nil
}
