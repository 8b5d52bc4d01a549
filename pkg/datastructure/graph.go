package datastructure

// Node is a road network vertex as delivered by the node loader.
type Node struct {
	ID   int64   `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// EdgeRecord is one row of the edge loader: raw, static attributes of a road segment.
type EdgeRecord struct {
	ID            int64
	From          int64
	To            int64
	DistanceM     float64
	FreeflowTimeS float64
	RoadQuality   float64
	SafetyIndex   float64
}

// EdgeUpdate replaces the effective live factors of one edge (keyed by edge id).
type EdgeUpdate struct {
	EdgeID            int64
	TrafficMultiplier float64
	RainMmHr          float64
	RoadQualityAdjust float64
	Blocked           bool
}

// NewEdgeUpdate returns the neutral update: free flowing, dry, unblocked.
func NewEdgeUpdate(edgeID int64) EdgeUpdate {
	return EdgeUpdate{
		EdgeID:            edgeID,
		TrafficMultiplier: 1.0,
	}
}

// EdgeFactors are the raw inputs of the cost model.
type EdgeFactors struct {
	Time        float64
	Traffic     float64
	RoadQuality float64
	Weather     float64
	Blocked     bool
}

// Edge is a directed edge of a snapshot: the static record plus the update in effect.
type Edge struct {
	EdgeRecord
	Update EdgeUpdate
}

func (e Edge) Factors() EdgeFactors {
	return EdgeFactors{
		Time:        e.FreeflowTimeS,
		Traffic:     e.Update.TrafficMultiplier,
		RoadQuality: e.RoadQuality + e.Update.RoadQualityAdjust,
		Weather:     e.Update.RainMmHr,
		Blocked:     e.Update.Blocked,
	}
}

// EdgePair is an outgoing arc in a weighted graph view.
type EdgePair struct {
	EdgeIDx   int32
	ToNodeIDX int32
	Weight    float64
}

// SnapshotRecord is the persisted form of a snapshot: source records plus updates in effect.
type SnapshotRecord struct {
	ID            string
	CreatedAtUnix int64
	Bidirectional bool
	Nodes         []Node
	Edges         []EdgeRecord
	Updates       []EdgeUpdate
}
