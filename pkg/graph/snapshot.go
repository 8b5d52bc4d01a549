package graph

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"lintang/saferoute/pkg/datastructure"

	"github.com/google/uuid"
)

var (
	ErrInvalidNode     = errors.New("invalid node")
	ErrUnknownEdge     = errors.New("unknown edge id")
	ErrInvalidEdgeData = errors.New("invalid edge data")
)

// Snapshot is an immutable road network state. Node indices are dense and assigned in ascending
// node id order, out edges of every node are sorted by target index.
type Snapshot struct {
	id            string
	createdAt     time.Time
	bidirectional bool

	nodes   []datastructure.Node
	nodeIdx map[int64]int32

	records  []datastructure.EdgeRecord // source records, after duplicate resolution
	edges    []datastructure.Edge
	outEdges [][]int32
	edgeIdx  map[[2]int32]int32
	byID     map[int64][]int32
	updates  map[int64]datastructure.EdgeUpdate
}

func (s *Snapshot) ID() string {
	return s.id
}

func (s *Snapshot) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Snapshot) NumNodes() int {
	return len(s.nodes)
}

func (s *Snapshot) NumEdges() int {
	return len(s.edges)
}

func (s *Snapshot) NodeIndex(id int64) (int32, bool) {
	idx, ok := s.nodeIdx[id]
	return idx, ok
}

func (s *Snapshot) GetNode(nodeIDx int32) datastructure.Node {
	return s.nodes[nodeIDx]
}

func (s *Snapshot) Nodes() []datastructure.Node {
	return s.nodes
}

func (s *Snapshot) GetEdge(edgeIDx int32) datastructure.Edge {
	return s.edges[edgeIDx]
}

func (s *Snapshot) GetOutEdges(nodeIDx int32) []int32 {
	return s.outEdges[nodeIDx]
}

// EdgeBetween returns the edge index of from -> to.
func (s *Snapshot) EdgeBetween(from, to int32) (int32, bool) {
	e, ok := s.edgeIdx[[2]int32{from, to}]
	return e, ok
}

func (s *Snapshot) NumUpdates() int {
	return len(s.updates)
}

func (s *Snapshot) Bidirectional() bool {
	return s.bidirectional
}

// FindNodeByName returns the node whose name equals q, otherwise the first node (in id order)
// whose name contains q case-insensitively.
func (s *Snapshot) FindNodeByName(q string) (datastructure.Node, bool) {
	for _, n := range s.nodes {
		if n.Name == q {
			return n, true
		}
	}
	lq := strings.ToLower(q)
	for _, n := range s.nodes {
		if strings.Contains(strings.ToLower(n.Name), lq) {
			return n, true
		}
	}
	return datastructure.Node{}, false
}

// EdgeIDs returns every distinct edge id in ascending order.
func (s *Snapshot) EdgeIDs() []int64 {
	ids := make([]int64, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// EdgesByID returns the edge indices carrying edgeID (two for a bidirectional record).
func (s *Snapshot) EdgesByID(edgeID int64) []int32 {
	return s.byID[edgeID]
}

// ApplyUpdates returns a new snapshot where each named edge id carries its new update. Edges not
// named keep the update they had. The receiver is never modified.
func (s *Snapshot) ApplyUpdates(updates []datastructure.EdgeUpdate) (*Snapshot, error) {
	return s.withUpdates(updates, true)
}

// ReplaceUpdates is ApplyUpdates against a clean network: edges not named go back to the neutral
// update (traffic 1, no rain, no adjustment, open).
func (s *Snapshot) ReplaceUpdates(updates []datastructure.EdgeUpdate) (*Snapshot, error) {
	return s.withUpdates(updates, false)
}

func (s *Snapshot) withUpdates(updates []datastructure.EdgeUpdate, keep bool) (*Snapshot, error) {
	if err := ValidateUpdates(updates); err != nil {
		return nil, err
	}
	for _, u := range updates {
		if _, ok := s.byID[u.EdgeID]; !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownEdge, u.EdgeID)
		}
	}

	merged := make(map[int64]datastructure.EdgeUpdate, len(s.updates)+len(updates))
	if keep {
		for id, u := range s.updates {
			merged[id] = u
		}
	}
	for _, u := range updates {
		merged[u.EdgeID] = u
	}

	next := &Snapshot{
		id:            uuid.NewString(),
		createdAt:     time.Now(),
		bidirectional: s.bidirectional,
		nodes:         s.nodes,
		nodeIdx:       s.nodeIdx,
		records:       s.records,
		edges:         make([]datastructure.Edge, len(s.edges)),
		outEdges:      s.outEdges,
		edgeIdx:       s.edgeIdx,
		byID:          s.byID,
		updates:       merged,
	}
	for i, e := range s.edges {
		if u, ok := merged[e.ID]; ok {
			e.Update = u
		} else {
			e.Update = datastructure.NewEdgeUpdate(e.ID)
		}
		next.edges[i] = e
	}
	return next, nil
}

// Record returns the persisted form of the snapshot. Updates are ordered by edge id.
func (s *Snapshot) Record() datastructure.SnapshotRecord {
	updates := make([]datastructure.EdgeUpdate, 0, len(s.updates))
	for _, u := range s.updates {
		updates = append(updates, u)
	}
	sort.Slice(updates, func(i, j int) bool { return updates[i].EdgeID < updates[j].EdgeID })

	return datastructure.SnapshotRecord{
		ID:            s.id,
		CreatedAtUnix: s.createdAt.Unix(),
		Bidirectional: s.bidirectional,
		Nodes:         s.nodes,
		Edges:         s.records,
		Updates:       updates,
	}
}

// FromRecord rebuilds a snapshot from its persisted form, keeping the stored id. Stored edges are
// already materialized in both directions, so they are replayed as directed records.
func FromRecord(rec datastructure.SnapshotRecord) (*Snapshot, error) {
	b := NewBuilder(false)
	for _, n := range rec.Nodes {
		b.AddNode(n)
	}
	for _, e := range rec.Edges {
		b.AddEdge(e)
	}
	snap, err := b.Build()
	if err != nil {
		return nil, err
	}
	if len(rec.Updates) > 0 {
		snap, err = snap.ApplyUpdates(rec.Updates)
		if err != nil {
			return nil, err
		}
	}
	snap.id = rec.ID
	snap.bidirectional = rec.Bidirectional
	snap.createdAt = time.Unix(rec.CreatedAtUnix, 0)
	return snap, nil
}

func ValidateUpdates(updates []datastructure.EdgeUpdate) error {
	for _, u := range updates {
		if !finiteNonNegative(u.TrafficMultiplier) {
			return fmt.Errorf("%w: edge %d traffic_multiplier=%v", ErrInvalidEdgeData, u.EdgeID, u.TrafficMultiplier)
		}
		if !finiteNonNegative(u.RainMmHr) {
			return fmt.Errorf("%w: edge %d rain_mm_hr=%v", ErrInvalidEdgeData, u.EdgeID, u.RainMmHr)
		}
		if math.IsNaN(u.RoadQualityAdjust) || math.IsInf(u.RoadQualityAdjust, 0) {
			return fmt.Errorf("%w: edge %d road_quality_adjust=%v", ErrInvalidEdgeData, u.EdgeID, u.RoadQualityAdjust)
		}
	}
	return nil
}

func finiteNonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1) && !math.IsNaN(v)
}
