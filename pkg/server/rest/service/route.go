package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"lintang/saferoute/pkg/concurrent"
	"lintang/saferoute/pkg/costmodel"
	"lintang/saferoute/pkg/datastructure"
	"lintang/saferoute/pkg/geo"
	"lintang/saferoute/pkg/graph"
	"lintang/saferoute/pkg/server"

	"go.uber.org/zap"
)

type SnapshotStore interface {
	SaveSnapshot(rec datastructure.SnapshotRecord, makeCurrent bool) error
}

type Explainer interface {
	Explain(best, candidate datastructure.Path) datastructure.Explanation
}

type Options struct {
	MaxK            int
	MaxSpurSearches int
	BatchWorkers    int
	RequestTimeout  time.Duration
}

// snapshotState semua yang dibutuhkan satu request. Di swap sekaligus, request yang sedang jalan
// tetap pakai state lama.
type snapshotState struct {
	snap  *graph.Snapshot
	view  *graph.WeightedGraph
	index *geo.NodeIndex
}

type RouteService struct {
	log       *zap.Logger
	model     *costmodel.Model
	explainer Explainer
	store     SnapshotStore
	opts      Options

	state    atomic.Pointer[snapshotState]
	updateMu sync.Mutex
}

// NewRouteService store may be nil, snapshots are then kept in memory only.
func NewRouteService(log *zap.Logger, model *costmodel.Model, explainer Explainer, store SnapshotStore, opts Options) *RouteService {
	if opts.BatchWorkers < 1 {
		opts.BatchWorkers = 1
	}
	return &RouteService{
		log:       log,
		model:     model,
		explainer: explainer,
		store:     store,
		opts:      opts,
	}
}

type SnapshotInfo struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	NumNodes      int       `json:"num_nodes"`
	NumEdges      int       `json:"num_edges"`
	NumUpdates    int       `json:"num_updates"`
	Bidirectional bool      `json:"bidirectional"`
}

func snapshotInfo(s *graph.Snapshot) SnapshotInfo {
	return SnapshotInfo{
		ID:            s.ID(),
		CreatedAt:     s.CreatedAt(),
		NumNodes:      s.NumNodes(),
		NumEdges:      s.NumEdges(),
		NumUpdates:    s.NumUpdates(),
		Bidirectional: s.Bidirectional(),
	}
}

// LoadSnapshot makes snap the served snapshot. The default cost view is computed up front, so a
// snapshot with invalid edge data is rejected here instead of on every request.
func (uc *RouteService) LoadSnapshot(snap *graph.Snapshot, persist bool) error {
	view, err := uc.model.WeightEdges(snap)
	if err != nil {
		return server.WrapErrorf(err, server.ErrBadParamInput, "snapshot %s has invalid edge data: %v", snap.ID(), err)
	}

	if persist && uc.store != nil {
		if err := uc.store.SaveSnapshot(snap.Record(), true); err != nil {
			return server.WrapErrorf(err, server.ErrInternalServerError, "failed to persist snapshot %s", snap.ID())
		}
	}

	uc.state.Store(&snapshotState{
		snap:  snap,
		view:  view,
		index: geo.NewNodeIndex(snap.Nodes()),
	})
	uc.log.Info("snapshot loaded",
		zap.String("snapshot_id", snap.ID()),
		zap.Int("nodes", snap.NumNodes()),
		zap.Int("edges", snap.NumEdges()),
		zap.Int("updates", snap.NumUpdates()))
	return nil
}

func (uc *RouteService) current() (*snapshotState, error) {
	st := uc.state.Load()
	if st == nil {
		return nil, server.WrapErrorf(nil, server.ErrUnavailable, "no road network snapshot loaded yet")
	}
	return st, nil
}

// ApplyUpdates builds the next snapshot from the current one and swaps it in. Edges not named keep
// their update.
func (uc *RouteService) ApplyUpdates(ctx context.Context, updates []datastructure.EdgeUpdate) (SnapshotInfo, error) {
	return uc.swap(func(s *graph.Snapshot) (*graph.Snapshot, error) { return s.ApplyUpdates(updates) })
}

// ReplaceUpdates makes updates the whole update set, e.g. after updates.json changed on disk.
func (uc *RouteService) ReplaceUpdates(ctx context.Context, updates []datastructure.EdgeUpdate) (SnapshotInfo, error) {
	return uc.swap(func(s *graph.Snapshot) (*graph.Snapshot, error) { return s.ReplaceUpdates(updates) })
}

func (uc *RouteService) swap(next func(*graph.Snapshot) (*graph.Snapshot, error)) (SnapshotInfo, error) {
	uc.updateMu.Lock()
	defer uc.updateMu.Unlock()

	st, err := uc.current()
	if err != nil {
		return SnapshotInfo{}, err
	}
	snap, err := next(st.snap)
	switch {
	case errors.Is(err, graph.ErrUnknownEdge):
		return SnapshotInfo{}, server.WrapErrorf(err, server.ErrNotFound, "%v", err)
	case err != nil:
		return SnapshotInfo{}, server.WrapErrorf(err, server.ErrBadParamInput, "%v", err)
	}

	if err := uc.LoadSnapshot(snap, true); err != nil {
		return SnapshotInfo{}, err
	}
	return snapshotInfo(snap), nil
}

func (uc *RouteService) CurrentSnapshot(ctx context.Context) (SnapshotInfo, error) {
	st, err := uc.current()
	if err != nil {
		return SnapshotInfo{}, err
	}
	return snapshotInfo(st.snap), nil
}

// CurrentUpdates returns the update set in effect, ordered by edge id.
func (uc *RouteService) CurrentUpdates() ([]datastructure.EdgeUpdate, error) {
	st, err := uc.current()
	if err != nil {
		return nil, err
	}
	return st.snap.Record().Updates, nil
}

type NearestNode struct {
	Node      datastructure.Node
	DistanceM float64
}

func (uc *RouteService) NearestNode(ctx context.Context, lat, lon float64) (NearestNode, error) {
	st, err := uc.current()
	if err != nil {
		return NearestNode{}, err
	}
	n, dist, err := st.index.Nearest(lat, lon)
	if err != nil {
		return NearestNode{}, server.WrapErrorf(err, server.ErrNotFound, "sorry!! the location you entered is not covered on my map :(")
	}
	return NearestNode{Node: n, DistanceM: dist}, nil
}

func (uc *RouteService) FindNodeByName(ctx context.Context, name string) (datastructure.Node, error) {
	st, err := uc.current()
	if err != nil {
		return datastructure.Node{}, err
	}
	n, ok := st.snap.FindNodeByName(name)
	if !ok {
		return datastructure.Node{}, server.WrapErrorf(nil, server.ErrNotFound, "no node named %q", name)
	}
	return n, nil
}

type batchJob struct {
	idx int
	req RankRequest
}

type batchResult struct {
	idx int
	res datastructure.RankedResult
	err error
}

type BatchItem struct {
	Result datastructure.RankedResult
	Err    error
}

// RankBatch ranks independent requests concurrently against one snapshot. Items keep request
// order, a failing request does not fail the others.
func (uc *RouteService) RankBatch(ctx context.Context, reqs []RankRequest) ([]BatchItem, error) {
	st, err := uc.current()
	if err != nil {
		return nil, err
	}

	workers := concurrent.NewWorkerPool[batchJob, batchResult](uc.opts.BatchWorkers, len(reqs))
	for i, req := range reqs {
		workers.AddJob(batchJob{idx: i, req: req})
	}
	workers.Close()

	workers.Start(func(job batchJob) batchResult {
		res, err := uc.rank(ctx, st, job.req)
		return batchResult{idx: job.idx, res: res, err: err}
	})
	workers.Wait()

	items := make([]BatchItem, len(reqs))
	for r := range workers.CollectResults() {
		items[r.idx] = BatchItem{Result: r.res, Err: r.err}
	}
	return items, nil
}
