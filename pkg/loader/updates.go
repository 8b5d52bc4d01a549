package loader

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"lintang/saferoute/pkg/datastructure"
)

// updateJSON one entry of updates.json. Missing fields keep the neutral value.
type updateJSON struct {
	TrafficMultiplier *float64 `json:"traffic_multiplier"`
	RainMmHr          *float64 `json:"rain_mm_hr"`
	RoadQualityAdjust *float64 `json:"road_quality_adjust"`
	Blocked           *bool    `json:"blocked"`
}

type updateOut struct {
	TrafficMultiplier float64 `json:"traffic_multiplier"`
	RainMmHr          float64 `json:"rain_mm_hr"`
	RoadQualityAdjust float64 `json:"road_quality_adjust"`
	Blocked           bool    `json:"blocked"`
}

// ReadUpdates parses updates.json, an object keyed by edge id. The result is ordered by edge id.
// Values are not range checked here, Snapshot.ApplyUpdates does that.
func ReadUpdates(r io.Reader, name string) ([]datastructure.EdgeUpdate, error) {
	raw := map[string]updateJSON{}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", name, ErrMalformed, err)
	}

	updates := make([]datastructure.EdgeUpdate, 0, len(raw))
	for key, u := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: edge id %q", name, ErrMalformed, key)
		}
		up := datastructure.NewEdgeUpdate(id)
		if u.TrafficMultiplier != nil {
			up.TrafficMultiplier = *u.TrafficMultiplier
		}
		if u.RainMmHr != nil {
			up.RainMmHr = *u.RainMmHr
		}
		if u.RoadQualityAdjust != nil {
			up.RoadQualityAdjust = *u.RoadQualityAdjust
		}
		if u.Blocked != nil {
			up.Blocked = *u.Blocked
		}
		updates = append(updates, up)
	}
	sort.Slice(updates, func(i, j int) bool { return updates[i].EdgeID < updates[j].EdgeID })
	return updates, nil
}

func WriteUpdates(w io.Writer, updates []datastructure.EdgeUpdate) error {
	out := make(map[string]updateOut, len(updates))
	for _, u := range updates {
		out[strconv.FormatInt(u.EdgeID, 10)] = updateOut{
			TrafficMultiplier: u.TrafficMultiplier,
			RainMmHr:          u.RainMmHr,
			RoadQualityAdjust: u.RoadQualityAdjust,
			Blocked:           u.Blocked,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
