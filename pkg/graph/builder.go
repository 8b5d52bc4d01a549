package graph

import (
	"fmt"
	"math"
	"sort"
	"time"

	"lintang/saferoute/pkg/datastructure"

	"github.com/google/uuid"
)

// Builder collects node and edge records and materializes a Snapshot.
//
// At most one edge is kept per ordered pair: when the same (from, to) is written twice the last
// write wins, including its edge id. With bidirectional set every record also writes its reverse
// pair under the same edge id, so an update to that id affects both directions.
type Builder struct {
	bidirectional bool
	nodes         map[int64]datastructure.Node
	edges         []datastructure.EdgeRecord
	pairPos       map[[2]int64]int
}

func NewBuilder(bidirectional bool) *Builder {
	return &Builder{
		bidirectional: bidirectional,
		nodes:         make(map[int64]datastructure.Node),
		pairPos:       make(map[[2]int64]int),
	}
}

func (b *Builder) AddNode(n datastructure.Node) {
	b.nodes[n.ID] = n
}

func (b *Builder) AddEdge(e datastructure.EdgeRecord) {
	b.put(e)
	if b.bidirectional && e.From != e.To {
		rev := e
		rev.From, rev.To = e.To, e.From
		b.put(rev)
	}
}

func (b *Builder) put(e datastructure.EdgeRecord) {
	key := [2]int64{e.From, e.To}
	if pos, ok := b.pairPos[key]; ok {
		b.edges[pos] = e
		return
	}
	b.pairPos[key] = len(b.edges)
	b.edges = append(b.edges, e)
}

func (b *Builder) Build() (*Snapshot, error) {
	ids := make([]int64, 0, len(b.nodes))
	for id := range b.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	s := &Snapshot{
		id:            uuid.NewString(),
		createdAt:     time.Now(),
		bidirectional: b.bidirectional,
		nodes:         make([]datastructure.Node, len(ids)),
		nodeIdx:       make(map[int64]int32, len(ids)),
		edges:         make([]datastructure.Edge, 0, len(b.edges)),
		outEdges:      make([][]int32, len(ids)),
		edgeIdx:       make(map[[2]int32]int32, len(b.edges)),
		byID:          make(map[int64][]int32),
		updates:       make(map[int64]datastructure.EdgeUpdate),
	}
	for i, id := range ids {
		s.nodes[i] = b.nodes[id]
		s.nodeIdx[id] = int32(i)
	}

	for _, rec := range b.edges {
		if err := validateRecord(rec); err != nil {
			return nil, err
		}
		from, ok := s.nodeIdx[rec.From]
		if !ok {
			return nil, fmt.Errorf("%w: edge %d references node %d", ErrInvalidNode, rec.ID, rec.From)
		}
		to, ok := s.nodeIdx[rec.To]
		if !ok {
			return nil, fmt.Errorf("%w: edge %d references node %d", ErrInvalidNode, rec.ID, rec.To)
		}

		eIDx := int32(len(s.edges))
		s.edges = append(s.edges, datastructure.Edge{
			EdgeRecord: rec,
			Update:     datastructure.NewEdgeUpdate(rec.ID),
		})
		s.outEdges[from] = append(s.outEdges[from], eIDx)
		s.edgeIdx[[2]int32{from, to}] = eIDx
		s.byID[rec.ID] = append(s.byID[rec.ID], eIDx)
	}

	for n := range s.outEdges {
		out := s.outEdges[n]
		sort.Slice(out, func(i, j int) bool {
			return s.nodeIdx[s.edges[out[i]].To] < s.nodeIdx[s.edges[out[j]].To]
		})
	}

	s.records = s.sourceRecords()
	return s, nil
}

// sourceRecords lists every materialized directed edge, reverse pairs included.
func (s *Snapshot) sourceRecords() []datastructure.EdgeRecord {
	recs := make([]datastructure.EdgeRecord, 0, len(s.edges))
	for _, e := range s.edges {
		recs = append(recs, e.EdgeRecord)
	}
	return recs
}

func validateRecord(e datastructure.EdgeRecord) error {
	for _, v := range []float64{e.DistanceM, e.FreeflowTimeS, e.RoadQuality, e.SafetyIndex} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: edge %d has a non-finite attribute", ErrInvalidEdgeData, e.ID)
		}
	}
	if e.DistanceM < 0 || e.FreeflowTimeS < 0 || e.RoadQuality < 0 {
		return fmt.Errorf("%w: edge %d has a negative attribute", ErrInvalidEdgeData, e.ID)
	}
	return nil
}
