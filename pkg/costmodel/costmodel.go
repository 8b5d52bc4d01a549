package costmodel

import (
	"errors"
	"fmt"
	"math"

	"lintang/saferoute/pkg/datastructure"
	"lintang/saferoute/pkg/graph"
)

var ErrInvalidWeights = errors.New("invalid cost weights")

const DefaultQMax = 10.0

type Weights struct {
	Time    float64 `mapstructure:"time" json:"time"`
	Traffic float64 `mapstructure:"traffic" json:"traffic"`
	Quality float64 `mapstructure:"quality" json:"quality"`
	Weather float64 `mapstructure:"weather" json:"weather"`
}

func DefaultWeights() Weights {
	return Weights{
		Time:    0.4,
		Traffic: 0.3,
		Quality: 0.2,
		Weather: 0.1,
	}
}

// Model turns raw edge factors into one scalar cost:
//
//	w_time*time + w_traffic*traffic + w_quality*(qMax - road_quality) + w_weather*weather
type Model struct {
	weights Weights
	qMax    float64
}

func NewModel(w Weights, qMax float64) (*Model, error) {
	for _, v := range []float64{w.Time, w.Traffic, w.Quality, w.Weather, qMax} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %+v qmax=%v", ErrInvalidWeights, w, qMax)
		}
	}
	return &Model{weights: w, qMax: qMax}, nil
}

func Default() *Model {
	return &Model{weights: DefaultWeights(), qMax: DefaultQMax}
}

func (m *Model) Weights() Weights {
	return m.weights
}

func (m *Model) QMax() float64 {
	return m.qMax
}

// Cost returns +Inf for a blocked edge. Factors that would give a negative or non-finite cost are
// rejected with graph.ErrInvalidEdgeData, never clamped.
func (m *Model) Cost(f datastructure.EdgeFactors) (float64, error) {
	if f.Blocked {
		return math.Inf(1), nil
	}
	for _, v := range []float64{f.Time, f.Traffic, f.RoadQuality, f.Weather} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: factors %+v", graph.ErrInvalidEdgeData, f)
		}
	}
	if f.RoadQuality > m.qMax {
		return 0, fmt.Errorf("%w: road quality %v above %v", graph.ErrInvalidEdgeData, f.RoadQuality, m.qMax)
	}

	cost := m.weights.Time*f.Time +
		m.weights.Traffic*f.Traffic +
		m.weights.Quality*(m.qMax-f.RoadQuality) +
		m.weights.Weather*f.Weather
	if cost < 0 || math.IsNaN(cost) || math.IsInf(cost, 0) {
		return 0, fmt.Errorf("%w: cost %v", graph.ErrInvalidEdgeData, cost)
	}
	return cost, nil
}

// WeightEdges computes the cost of every edge of snap once and returns the weighted view the
// search runs on. The first invalid edge aborts.
func (m *Model) WeightEdges(snap *graph.Snapshot) (*graph.WeightedGraph, error) {
	costs := make([]float64, snap.NumEdges())
	for i := range costs {
		e := snap.GetEdge(int32(i))
		c, err := m.Cost(e.Factors())
		if err != nil {
			return nil, fmt.Errorf("edge %d (%d->%d): %w", e.ID, e.From, e.To, err)
		}
		costs[i] = c
	}
	return graph.NewWeightedGraph(snap, costs), nil
}
