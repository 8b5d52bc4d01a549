package datastructure

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{
		Lat: lat,
		Lon: lon,
	}
}

// Path is a simple path with its total cost. EdgeCosts[i] is the cost of Nodes[i] -> Nodes[i+1].
type Path struct {
	Nodes     []int64
	EdgeCosts []float64
	Cost      float64
}

func (p Path) Hops() int {
	if len(p.Nodes) == 0 {
		return 0
	}
	return len(p.Nodes) - 1
}

// RankedPaths is the raw output of the k shortest paths search.
type RankedPaths struct {
	Paths     []Path
	Truncated bool
	NoPath    bool
}

type ReasonCode string

const (
	ReasonHigherCost      ReasonCode = "HigherCost"
	ReasonMoreHops        ReasonCode = "MoreHops"
	ReasonDetour          ReasonCode = "Detour"
	ReasonHeavyEdge       ReasonCode = "HeavyEdge"
	ReasonLikelyMoreTurns ReasonCode = "LikelyMoreTurns"
	ReasonNegligible      ReasonCode = "Negligible"
)

type Reason struct {
	Code    ReasonCode `json:"code"`
	Value   float64    `json:"value,omitempty"`
	Nodes   []int64    `json:"nodes,omitempty"`
	More    bool       `json:"more,omitempty"`
	Message string     `json:"message"`
}

type EdgeRef struct {
	From int64   `json:"from"`
	To   int64   `json:"to"`
	Cost float64 `json:"cost"`
}

type Explanation struct {
	CostDelta   float64   `json:"cost_delta"`
	HopDelta    int       `json:"hop_delta"`
	DetourNodes []int64   `json:"detour_nodes"`
	HeavyEdges  []EdgeRef `json:"heavy_edges"`
	Reasons     []Reason  `json:"reasons"`
}

type RankedRoute struct {
	Path        []int64      `json:"path"`
	TotalCost   float64      `json:"total_cost"`
	Hops        int          `json:"hops"`
	DistanceM   float64      `json:"distance_m"`
	DurationS   float64      `json:"duration_s"`
	Polyline    string       `json:"polyline"`
	Explanation *Explanation `json:"explanation,omitempty"`
}

type RankedResult struct {
	SnapshotID string        `json:"snapshot_id"`
	Routes     []RankedRoute `json:"routes"`
	Truncated  bool          `json:"truncated"`
	NoPath     bool          `json:"no_path"`
}
