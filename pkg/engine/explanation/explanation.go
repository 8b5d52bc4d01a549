// Package explanation compares an alternative route with the best one and lists, in a fixed
// order, the reasons it ranked lower. Explanations are advisory and never feed back into ranking.
package explanation

import (
	"fmt"
	"math"
	"strings"

	"lintang/saferoute/pkg/datastructure"
	"lintang/saferoute/pkg/util"
)

type Config struct {
	// HeavyFloor is the minimum heavy-edge threshold.
	HeavyFloor float64 `mapstructure:"heavy_floor"`
	// HeavyRatio scales the most expensive candidate edge into the heavy-edge threshold.
	HeavyRatio float64 `mapstructure:"heavy_ratio"`
	// DetourLimit is how many detour nodes a Detour reason lists before the "more" marker.
	DetourLimit int `mapstructure:"detour_limit"`
	// TurnHopDelta is the hop difference from which LikelyMoreTurns fires.
	TurnHopDelta int `mapstructure:"turn_hop_delta"`
}

func DefaultConfig() Config {
	return Config{
		HeavyFloor:   8.0,
		HeavyRatio:   0.75,
		DetourLimit:  6,
		TurnHopDelta: 2,
	}
}

type Explainer struct {
	cfg Config
}

func NewExplainer(cfg Config) *Explainer {
	return &Explainer{cfg: cfg}
}

// Explain runs the checks in order: cost, hops, detour, heavy edges, turns. When none fires the
// single reason is Negligible, so the reason list is never empty.
func (e *Explainer) Explain(best, candidate datastructure.Path) datastructure.Explanation {
	ex := datastructure.Explanation{
		CostDelta:   candidate.Cost - best.Cost,
		HopDelta:    candidate.Hops() - best.Hops(),
		DetourNodes: detourNodes(best, candidate),
		HeavyEdges:  []datastructure.EdgeRef{},
		Reasons:     []datastructure.Reason{},
	}

	// sums of float edge costs differ in the last bits, a real tie must not read as a higher cost
	if util.RoundFloat(ex.CostDelta, 2) > 0 {
		ex.Reasons = append(ex.Reasons, datastructure.Reason{
			Code:    datastructure.ReasonHigherCost,
			Value:   ex.CostDelta,
			Message: fmt.Sprintf("Longer than best by %s units.", util.FormatFloat(ex.CostDelta, 2)),
		})
	}

	if ex.HopDelta > 0 {
		ex.Reasons = append(ex.Reasons, datastructure.Reason{
			Code:    datastructure.ReasonMoreHops,
			Value:   float64(ex.HopDelta),
			Message: fmt.Sprintf("More hops (%d edges vs %d).", candidate.Hops(), best.Hops()),
		})
	}

	if len(ex.DetourNodes) > 0 {
		listed := ex.DetourNodes
		more := false
		if e.cfg.DetourLimit > 0 && len(listed) > e.cfg.DetourLimit {
			listed = listed[:e.cfg.DetourLimit]
			more = true
		}
		ex.Reasons = append(ex.Reasons, datastructure.Reason{
			Code:    datastructure.ReasonDetour,
			Value:   float64(len(ex.DetourNodes)),
			Nodes:   append([]int64(nil), listed...),
			More:    more,
			Message: fmt.Sprintf("Detours via nodes %s.", formatNodes(listed, more)),
		})
	}

	if len(candidate.EdgeCosts) > 0 {
		threshold := e.heavyThreshold(candidate.EdgeCosts)
		for i, c := range candidate.EdgeCosts {
			if c >= threshold {
				ex.HeavyEdges = append(ex.HeavyEdges, datastructure.EdgeRef{
					From: candidate.Nodes[i],
					To:   candidate.Nodes[i+1],
					Cost: c,
				})
			}
		}
		if len(ex.HeavyEdges) > 0 {
			ex.Reasons = append(ex.Reasons, datastructure.Reason{
				Code:    datastructure.ReasonHeavyEdge,
				Value:   threshold,
				Message: fmt.Sprintf("Contains high-cost road segments (weights >= %s).", util.FormatFloat(threshold, 1)),
			})
		}
	}

	if e.cfg.TurnHopDelta > 0 && ex.HopDelta >= e.cfg.TurnHopDelta {
		ex.Reasons = append(ex.Reasons, datastructure.Reason{
			Code:    datastructure.ReasonLikelyMoreTurns,
			Value:   float64(ex.HopDelta),
			Message: "Likely more turns/complex routing (more intermediate stops).",
		})
	}

	if len(ex.Reasons) == 0 {
		ex.Reasons = append(ex.Reasons, datastructure.Reason{
			Code:    datastructure.ReasonNegligible,
			Message: "Mostly similar to best; small variations cause slightly higher cost.",
		})
	}
	return ex
}

func (e *Explainer) heavyThreshold(costs []float64) float64 {
	maxCost := math.Inf(-1)
	for _, c := range costs {
		maxCost = math.Max(maxCost, c)
	}
	return math.Max(e.cfg.HeavyFloor, e.cfg.HeavyRatio*maxCost)
}

// detourNodes nodes in candidate not on best, in candidate order.
func detourNodes(best, candidate datastructure.Path) []int64 {
	onBest := make(map[int64]struct{}, len(best.Nodes))
	for _, n := range best.Nodes {
		onBest[n] = struct{}{}
	}
	detour := []int64{}
	for _, n := range candidate.Nodes {
		if _, ok := onBest[n]; !ok {
			detour = append(detour, n)
		}
	}
	return detour
}

func formatNodes(nodes []int64, more bool) string {
	parts := make([]string, 0, len(nodes)+1)
	for _, n := range nodes {
		parts = append(parts, fmt.Sprint(n))
	}
	if more {
		parts = append(parts, "...")
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
