package service

import (
	"context"
	"errors"

	"lintang/saferoute/pkg/costmodel"
	"lintang/saferoute/pkg/datastructure"
	"lintang/saferoute/pkg/engine/routingalgorithm"
	"lintang/saferoute/pkg/geo"
	"lintang/saferoute/pkg/graph"
	"lintang/saferoute/pkg/server"

	"go.uber.org/zap"
)

// RankRequest weights and qMax override the configured cost model for this request only.
type RankRequest struct {
	SourceNode int64
	TargetNode int64
	K          int
	Weights    *costmodel.Weights
	QMax       *float64
}

// Rank returns up to K loopless routes from source to target, cheapest first, each alternative
// explained against the best route.
func (uc *RouteService) Rank(ctx context.Context, req RankRequest) (datastructure.RankedResult, error) {
	st, err := uc.current()
	if err != nil {
		return datastructure.RankedResult{}, err
	}
	return uc.rank(ctx, st, req)
}

func (uc *RouteService) rank(ctx context.Context, st *snapshotState, req RankRequest) (datastructure.RankedResult, error) {
	if req.K < 1 || (uc.opts.MaxK > 0 && req.K > uc.opts.MaxK) {
		return datastructure.RankedResult{}, server.WrapErrorf(routingalgorithm.ErrInvalidK, server.ErrBadParamInput,
			"k must be within 1..%d, got %d", uc.opts.MaxK, req.K)
	}

	view, err := uc.viewFor(st, req)
	if err != nil {
		return datastructure.RankedResult{}, err
	}

	if uc.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.opts.RequestTimeout)
		defer cancel()
	}

	rt := routingalgorithm.NewRouteAlgorithm(view)
	ranked, err := rt.KShortestPaths(ctx, req.SourceNode, req.TargetNode, req.K,
		routingalgorithm.Budget{MaxSpurSearches: uc.opts.MaxSpurSearches})
	if errors.Is(err, routingalgorithm.ErrInvalidNode) {
		return datastructure.RankedResult{}, server.WrapErrorf(err, server.ErrNotFound, "%v", err)
	}
	if err != nil {
		return datastructure.RankedResult{}, server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
	}

	res := datastructure.RankedResult{
		SnapshotID: st.snap.ID(),
		Routes:     make([]datastructure.RankedRoute, 0, len(ranked.Paths)),
		Truncated:  ranked.Truncated,
		NoPath:     ranked.NoPath,
	}
	for i, p := range ranked.Paths {
		route := uc.buildRoute(st.snap, p)
		if i > 0 {
			ex := uc.explainer.Explain(ranked.Paths[0], p)
			route.Explanation = &ex
		}
		res.Routes = append(res.Routes, route)
	}

	uc.log.Debug("ranked routes",
		zap.String("snapshot_id", res.SnapshotID),
		zap.Int64("source", req.SourceNode),
		zap.Int64("target", req.TargetNode),
		zap.Int("k", req.K),
		zap.Int("routes", len(res.Routes)),
		zap.Bool("truncated", res.Truncated),
		zap.Bool("no_path", res.NoPath))
	return res, nil
}

// viewFor reuses the snapshot's default view unless the request brings its own cost parameters.
func (uc *RouteService) viewFor(st *snapshotState, req RankRequest) (*graph.WeightedGraph, error) {
	if req.Weights == nil && req.QMax == nil {
		return st.view, nil
	}
	w := uc.model.Weights()
	if req.Weights != nil {
		w = *req.Weights
	}
	qMax := uc.model.QMax()
	if req.QMax != nil {
		qMax = *req.QMax
	}

	m, err := costmodel.NewModel(w, qMax)
	if err != nil {
		return nil, server.WrapErrorf(err, server.ErrBadParamInput, "%v", err)
	}
	view, err := m.WeightEdges(st.snap)
	if err != nil {
		return nil, server.WrapErrorf(err, server.ErrBadParamInput, "%v", err)
	}
	return view, nil
}

// buildRoute adds raw totals and geometry. Duration is freeflow time scaled by the traffic
// multiplier in effect.
func (uc *RouteService) buildRoute(snap *graph.Snapshot, p datastructure.Path) datastructure.RankedRoute {
	route := datastructure.RankedRoute{
		Path:      p.Nodes,
		TotalCost: p.Cost,
		Hops:      p.Hops(),
	}

	nodes := make([]datastructure.Node, 0, len(p.Nodes))
	for i, id := range p.Nodes {
		u, _ := snap.NodeIndex(id)
		nodes = append(nodes, snap.GetNode(u))
		if i+1 == len(p.Nodes) {
			break
		}
		v, _ := snap.NodeIndex(p.Nodes[i+1])
		if eIDx, ok := snap.EdgeBetween(u, v); ok {
			e := snap.GetEdge(eIDx)
			route.DistanceM += e.DistanceM
			route.DurationS += e.FreeflowTimeS * e.Update.TrafficMultiplier
		}
	}
	route.Polyline = geo.RenderPath(nodes)
	return route
}
