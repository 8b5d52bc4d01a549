package osmparser

import (
	"math"
	"strconv"
	"strings"

	"lintang/saferoute/pkg/datastructure"
	"lintang/saferoute/pkg/geo"
	"lintang/saferoute/pkg/util"

	"github.com/paulmach/osm"
)

const defaultRoadQuality = 7.0
const defaultSafetyIndex = 7.0

var ValidRoadType = map[string]bool{
	"motorway":       true,
	"trunk":          true,
	"primary":        true,
	"secondary":      true,
	"tertiary":       true,
	"unclassified":   true,
	"residential":    true,
	"motorway_link":  true,
	"trunk_link":     true,
	"primary_link":   true,
	"secondary_link": true,
	"tertiary_link":  true,
	"living_street":  true,
	"road":           true,
	"service":        true,
	"track":          true,
}

// Result is a road network in loader form: nodes.csv and edges.csv rows.
type Result struct {
	Nodes []datastructure.Node
	Edges []datastructure.EdgeRecord
}

/*
BuildGraph hanya simpan node intersection: node yang dipakai >= 2 way atau ujung way. Node di
tengah way dibuang, jaraknya dijumlah ke edge antar intersection. Edge id urut per segment, segment
two-way pakai edge id yang sama untuk kedua arah.
*/
func BuildGraph(ways []*osm.Way, coords map[osm.NodeID]datastructure.Coordinate) Result {
	usedInRoad := make(map[osm.NodeID]int)
	for _, way := range ways {
		for _, n := range way.Nodes {
			if _, ok := coords[n.ID]; ok {
				usedInRoad[n.ID]++
			}
		}
	}

	res := Result{Nodes: []datastructure.Node{}, Edges: []datastructure.EdgeRecord{}}
	added := make(map[osm.NodeID]struct{})
	addNode := func(id osm.NodeID, name string) {
		if _, ok := added[id]; ok {
			return
		}
		added[id] = struct{}{}
		if name == "" {
			name = "node " + strconv.FormatInt(int64(id), 10)
		}
		c := coords[id]
		res.Nodes = append(res.Nodes, datastructure.Node{ID: int64(id), Name: name, Lat: c.Lat, Lon: c.Lon})
	}

	edgeID := int64(1)
	for _, way := range ways {
		info := getWayInfo(way)

		nodes := make([]osm.NodeID, 0, len(way.Nodes))
		for _, n := range way.Nodes {
			if _, ok := coords[n.ID]; ok {
				nodes = append(nodes, n.ID)
			}
		}
		if len(nodes) < 2 {
			continue
		}

		from := nodes[0]
		addNode(from, info.name)
		dist := 0.0
		for i := 1; i < len(nodes); i++ {
			prev, curr := coords[nodes[i-1]], coords[nodes[i]]
			dist += geo.HaversineDistance(prev.Lat, prev.Lon, curr.Lat, curr.Lon)
			if i != len(nodes)-1 && usedInRoad[nodes[i]] < 2 {
				continue
			}

			to := nodes[i]
			addNode(to, info.name)
			if from != to && dist > 0 {
				rec := datastructure.EdgeRecord{
					ID:            edgeID,
					DistanceM:     util.RoundFloat(dist, 2),
					FreeflowTimeS: util.RoundFloat(dist/(info.maxSpeed/3.6), 2),
					RoadQuality:   info.quality,
					SafetyIndex:   info.safety,
				}
				if !info.oneWay || !info.reversed {
					fwd := rec
					fwd.From, fwd.To = int64(from), int64(to)
					res.Edges = append(res.Edges, fwd)
				}
				if !info.oneWay || info.reversed {
					rev := rec
					rev.From, rev.To = int64(to), int64(from)
					res.Edges = append(res.Edges, rev)
				}
				edgeID++
			}
			from = to
			dist = 0
		}
	}
	return res
}

type wayInfo struct {
	name     string
	roadType string
	maxSpeed float64
	oneWay   bool
	reversed bool
	quality  float64
	safety   float64
}

func getWayInfo(way *osm.Way) wayInfo {
	tags := way.TagMap()
	info := wayInfo{
		name:     tags["name"],
		roadType: tags["highway"],
	}

	switch tags["oneway"] {
	case "yes", "true", "1":
		info.oneWay = true
	case "-1", "reverse":
		info.oneWay = true
		info.reversed = true
	}
	if tags["junction"] == "roundabout" && tags["oneway"] == "" {
		info.oneWay = true
	}

	info.maxSpeed = parseMaxSpeed(tags["maxspeed"])
	if info.maxSpeed <= 0 {
		info.maxSpeed = RoadTypeMaxSpeed(info.roadType)
	}
	info.quality = roadQuality(info.roadType, tags["surface"])
	info.safety = safetyIndex(tags, info.maxSpeed)
	return info
}

// parseMaxSpeed "50", "50 km/h", "30 mph". Returns 0 when the tag is unusable (e.g. "signals").
func parseMaxSpeed(v string) float64 {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	fields := strings.Fields(v)
	speed, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0
	}
	if strings.HasSuffix(v, "mph") {
		speed *= 1.609344
	}
	return speed
}

func RoadTypeMaxSpeed(roadType string) float64 {
	switch roadType {
	case "motorway":
		return 95
	case "trunk":
		return 85
	case "primary":
		return 75
	case "secondary":
		return 65
	case "tertiary":
		return 50
	case "unclassified":
		return 50
	case "residential":
		return 30
	case "service":
		return 20
	case "motorway_link":
		return 90
	case "trunk_link":
		return 80
	case "primary_link":
		return 70
	case "secondary_link":
		return 60
	case "tertiary_link":
		return 50
	case "living_street":
		return 20
	default:
		return 40
	}
}

// roadQuality skor 0..10 dari kelas jalan, dikoreksi tag surface.
func roadQuality(roadType, surface string) float64 {
	q := defaultRoadQuality
	switch strings.TrimSuffix(roadType, "_link") {
	case "motorway", "trunk":
		q = 9
	case "primary":
		q = 8.5
	case "secondary":
		q = 8
	case "tertiary":
		q = 7.5
	case "residential", "unclassified", "road":
		q = 6.5
	case "service", "living_street":
		q = 6
	case "track":
		q = 3
	}

	switch surface {
	case "asphalt", "concrete":
		q += 0.5
	case "paving_stones", "sett", "cobblestone":
		q -= 1.5
	case "unpaved", "gravel", "dirt", "ground", "mud", "sand", "compacted":
		q -= 3
	}
	return math.Max(0, math.Min(10, q))
}

// safetyIndex 0..10, lampu jalan dan trotoar menaikkan, jalan cepat menurunkan.
func safetyIndex(tags map[string]string, maxSpeed float64) float64 {
	s := defaultSafetyIndex
	if tags["lit"] == "yes" {
		s++
	}
	if sw, ok := tags["sidewalk"]; ok && sw != "no" && sw != "none" {
		s += 0.5
	}
	if maxSpeed >= 80 {
		s -= 1.5
	}
	return math.Max(0, math.Min(10, s))
}

// https://github.com/RoutingKit/RoutingKit/blob/master/src/osm_profile.cpp  [is_osm_way_used_by_cars()]
func isOsmWayUsedByCars(tagMap map[string]string) bool {
	_, ok := tagMap["junction"]
	if ok {
		return true
	}

	highway, okHW := tagMap["highway"]
	if !okHW {
		return false
	}

	motorcar, ok := tagMap["motorcar"]
	if ok && motorcar == "no" {
		return false
	}

	motorVehicle, ok := tagMap["motor_vehicle"]
	if ok && motorVehicle == "no" {
		return false
	}

	access, ok := tagMap["access"]
	if ok {
		if !(access == "yes" || access == "permissive" || access == "designated" || access == "delivery" || access == "destination") {
			return false
		}
	}

	if highway == "bicycle_road" {
		return tagMap["motorcar"] == "yes"
	}

	oneway, ok := tagMap["oneway"]
	if ok && (oneway == "reversible" || oneway == "alternating") {
		return false
	}

	return ValidRoadType[highway]
}
