package geo

import (
	"errors"
	"math"

	"lintang/saferoute/pkg/datastructure"

	"github.com/uber/h3-go/v4"
)

var ErrNoNearbyNode = errors.New("no road network node around the location")

const (
	h3Resolution   = 9
	searchRadiusKm = 0.7
	maxRingLevel   = 10
)

// NodeIndex buckets snapshot nodes by their h3 cell for nearest node lookups.
type NodeIndex struct {
	cells map[h3.Cell][]datastructure.Node
}

func NewNodeIndex(nodes []datastructure.Node) *NodeIndex {
	ix := &NodeIndex{cells: make(map[h3.Cell][]datastructure.Node)}
	for _, n := range nodes {
		cell := h3.LatLngToCell(h3.NewLatLng(n.Lat, n.Lon), h3Resolution)
		ix.cells[cell] = append(ix.cells[cell], n)
	}
	return ix
}

/*
Nearest returns the node closest to (lat, lon) and its distance in meters.

kandidat diambil dari cell lokasi dan neighbor cell dalam radius 0.7 km. kalau kosong (misal lokasi di
tengah sawah), ring h3 diperluas sampai level 10.
*/
func (ix *NodeIndex) Nearest(lat, lon float64) (datastructure.Node, float64, error) {
	origin := h3.LatLngToCell(h3.NewLatLng(lat, lon), h3Resolution)

	candidates := []datastructure.Node{}
	for _, cell := range kRingIndexesArea(origin, searchRadiusKm) {
		candidates = append(candidates, ix.cells[cell]...)
	}

	for lev := 1; lev <= maxRingLevel && len(candidates) == 0; lev++ {
		for _, cell := range h3.GridDisk(origin, lev) {
			candidates = append(candidates, ix.cells[cell]...)
		}
	}

	if len(candidates) == 0 {
		return datastructure.Node{}, 0, ErrNoNearbyNode
	}

	best := datastructure.Node{}
	bestDist := math.Inf(1)
	for _, n := range candidates {
		d := HaversineDistance(lat, lon, n.Lat, n.Lon)
		if d < bestDist || (d == bestDist && n.ID < best.ID) {
			best, bestDist = n, d
		}
	}
	return best, bestDist, nil
}

/*
  - https://observablehq.com/@nrabinowitz/h3-radius-lookup?collection=@nrabinowitz/h3
    cell disk di sekitar origin yang luasnya >= lingkaran dengan radius searchRadiusKm
*/
func kRingIndexesArea(origin h3.Cell, searchRadiusKm float64) []h3.Cell {
	originArea := h3.CellAreaKm2(origin)
	searchArea := math.Pi * searchRadiusKm * searchRadiusKm

	radius := 0
	diskArea := originArea
	for diskArea < searchArea {
		radius++
		cellCount := float64(3*radius*(radius+1) + 1)
		diskArea = cellCount * originArea
	}
	return h3.GridDisk(origin, radius)
}
