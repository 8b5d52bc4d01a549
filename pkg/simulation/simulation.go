// Package simulation generates synthetic live updates (traffic spikes, rain, quality drops,
// blockages) for a road network, one tick at a time.
package simulation

import (
	"context"
	"errors"
	"sort"
	"time"

	"lintang/saferoute/pkg/config"
	"lintang/saferoute/pkg/datastructure"
	"lintang/saferoute/pkg/util"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"
)

var ErrNoEdges = errors.New("no edges to simulate updates for")

type Simulator struct {
	cfg     config.SimulationConfig
	rnd     *rand.Rand
	edgeIDs []int64
	qMax    float64
	log     *zap.Logger
}

// NewSimulator edge ids are sorted so the same seed always touches the same edges.
func NewSimulator(cfg config.SimulationConfig, edgeIDs []int64, qMax float64, log *zap.Logger) *Simulator {
	ids := append([]int64(nil), edgeIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return &Simulator{
		cfg:     cfg,
		rnd:     rand.New(rand.NewSource(uint64(cfg.Seed))),
		edgeIDs: ids,
		qMax:    qMax,
		log:     log,
	}
}

func (s *Simulator) uniform(lo, hi float64) float64 {
	return util.RoundFloat(lo+s.rnd.Float64()*(hi-lo), 2)
}

/*
Tick picks EdgesPerTick random edges and overwrites their update entry. The pool of edges is the
current update set, or every edge of the network when the update set is still empty. Quality
adjustment is clamped so road_quality + adjust stays within [0, qMax] when the base quality is known.
*/
func (s *Simulator) Tick(current []datastructure.EdgeUpdate, baseQuality map[int64]float64) ([]datastructure.EdgeUpdate, error) {
	byID := make(map[int64]datastructure.EdgeUpdate, len(current))
	pool := make([]int64, 0, len(current))
	for _, u := range current {
		byID[u.EdgeID] = u
		pool = append(pool, u.EdgeID)
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i] < pool[j] })
	if len(pool) == 0 {
		pool = s.edgeIDs
	}
	if len(pool) == 0 {
		return nil, ErrNoEdges
	}

	for i := 0; i < s.cfg.EdgesPerTick; i++ {
		id := pool[s.rnd.Intn(len(pool))]
		up := datastructure.NewEdgeUpdate(id)
		up.TrafficMultiplier = s.uniform(s.cfg.TrafficMin, s.cfg.TrafficMax)
		up.RoadQualityAdjust = s.uniform(s.cfg.QualityAdjMin, s.cfg.QualityAdjMax)
		if q, ok := baseQuality[id]; ok {
			up.RoadQualityAdjust = clampAdjust(q, up.RoadQualityAdjust, s.qMax)
		}
		up.Blocked = s.rnd.Float64() < s.cfg.BlockProbability
		up.RainMmHr = s.uniform(0, s.cfg.RainMax)
		byID[id] = up
	}

	next := make([]datastructure.EdgeUpdate, 0, len(byID))
	for _, u := range byID {
		next = append(next, u)
	}
	sort.Slice(next, func(i, j int) bool { return next[i].EdgeID < next[j].EdgeID })
	return next, nil
}

func clampAdjust(base, adj, qMax float64) float64 {
	if base+adj < 0 {
		return -base
	}
	if base+adj > qMax {
		return qMax - base
	}
	return adj
}

// Sink receives every generated update set, e.g. the updates file or a running service.
type Sink interface {
	Current() ([]datastructure.EdgeUpdate, error)
	Publish(ctx context.Context, updates []datastructure.EdgeUpdate) error
}

// Run ticks cfg.Ticks times (forever when Ticks is 0), waiting cfg.Interval between ticks.
func (s *Simulator) Run(ctx context.Context, sink Sink, baseQuality map[int64]float64) error {
	ticker := time.NewTicker(max(s.cfg.Interval, time.Millisecond))
	defer ticker.Stop()

	for t := 0; s.cfg.Ticks == 0 || t < s.cfg.Ticks; t++ {
		current, err := sink.Current()
		if err != nil {
			return err
		}
		next, err := s.Tick(current, baseQuality)
		if err != nil {
			return err
		}
		if err := sink.Publish(ctx, next); err != nil {
			return err
		}
		s.log.Info("simulated updates tick", zap.Int("tick", t), zap.Int("updates", len(next)))

		if s.cfg.Ticks != 0 && t == s.cfg.Ticks-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
