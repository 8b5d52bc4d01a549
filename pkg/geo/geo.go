package geo

import (
	"lintang/saferoute/pkg/datastructure"

	"github.com/golang/geo/s2"
	"github.com/twpayne/go-polyline"
)

const earthRadiusM = 6371008.8

// HaversineDistance great-circle distance dalam meter.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * earthRadiusM
}

// RenderPath encodes node coordinates as a google encoded polyline.
func RenderPath(nodes []datastructure.Node) string {
	coords := make([][]float64, 0, len(nodes))
	for _, n := range nodes {
		coords = append(coords, []float64{n.Lat, n.Lon})
	}
	return string(polyline.EncodeCoords(coords))
}
