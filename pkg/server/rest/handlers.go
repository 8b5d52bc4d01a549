package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"lintang/saferoute/pkg/costmodel"
	"lintang/saferoute/pkg/datastructure"
	"lintang/saferoute/pkg/loader"
	"lintang/saferoute/pkg/server"
	"lintang/saferoute/pkg/server/rest/service"
	"lintang/saferoute/pkg/util"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

type RouteService interface {
	Rank(ctx context.Context, req service.RankRequest) (datastructure.RankedResult, error)
	RankBatch(ctx context.Context, reqs []service.RankRequest) ([]service.BatchItem, error)
	NearestNode(ctx context.Context, lat, lon float64) (service.NearestNode, error)
	FindNodeByName(ctx context.Context, name string) (datastructure.Node, error)
	CurrentSnapshot(ctx context.Context) (service.SnapshotInfo, error)
	ApplyUpdates(ctx context.Context, updates []datastructure.EdgeUpdate) (service.SnapshotInfo, error)
}

type RouteHandler struct {
	svc          RouteService
	promeMetrics *metrics
	validate     *validator.Validate
	trans        ut.Translator
}

func RouteRouter(r *chi.Mux, svc RouteService, m *metrics) {
	validate := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)

	handler := &RouteHandler{svc, m, validate, trans}

	r.Group(func(r chi.Router) {
		r.Route("/api/routes", func(r chi.Router) {
			r.Post("/rank", handler.rank)
			r.Post("/rank-batch", handler.rankBatch)
			r.Get("/nearest-node", handler.nearestNode)
			r.Get("/node", handler.nodeByName)
		})
		r.Route("/api/snapshots", func(r chi.Router) {
			r.Get("/current", handler.currentSnapshot)
			r.Post("/updates", handler.applyUpdates)
		})
	})
}

// CostWeights model info
//
//	@Description	bobot cost model per faktor edge
type CostWeights struct {
	Time    float64 `json:"time" validate:"gte=0"`
	Traffic float64 `json:"traffic" validate:"gte=0"`
	Quality float64 `json:"quality" validate:"gte=0"`
	Weather float64 `json:"weather" validate:"gte=0"`
}

// RankRequest model info
//
//	@Description	request body untuk ranking k rute alternatif antara 2 node
type RankRequest struct {
	SourceNode  *int64       `json:"source_node" validate:"required"`
	TargetNode  *int64       `json:"target_node" validate:"required"`
	K           int          `json:"k" validate:"required,min=1,max=50"`
	CostWeights *CostWeights `json:"cost_weights,omitempty" validate:"omitempty"`
	QMax        *float64     `json:"q_max,omitempty" validate:"omitempty,gte=0"`
}

func (s *RankRequest) Bind(r *http.Request) error {
	if s.SourceNode == nil || s.TargetNode == nil {
		return errors.New("invalid request")
	}
	return nil
}

func (s *RankRequest) toServiceRequest() service.RankRequest {
	req := service.RankRequest{
		SourceNode: *s.SourceNode,
		TargetNode: *s.TargetNode,
		K:          s.K,
		QMax:       s.QMax,
	}
	if s.CostWeights != nil {
		req.Weights = &costmodel.Weights{
			Time:    s.CostWeights.Time,
			Traffic: s.CostWeights.Traffic,
			Quality: s.CostWeights.Quality,
			Weather: s.CostWeights.Weather,
		}
	}
	return req
}

func outcome(res datastructure.RankedResult, err error) string {
	switch {
	case err != nil:
		return "error"
	case res.NoPath:
		return "no_path"
	case res.Truncated:
		return "truncated"
	default:
		return "ok"
	}
}

func (h *RouteHandler) validateStruct(w http.ResponseWriter, r *http.Request, data interface{}) bool {
	if err := h.validate.Struct(data); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			render.Render(w, r, ErrInvalidRequest(err))
			return false
		}
		render.Render(w, r, ErrValidation(err, translateError(verrs, h.trans)))
		return false
	}
	return true
}

// rank
//
//	@Summary		ranking k rute alternatif loopless antara 2 node.
//	@Description	ranking k rute termurah (yen k shortest paths) dengan penjelasan kenapa tiap alternatif lebih buruk dari rute terbaik.
//	@Tags			routes
//	@Param			body	body	RankRequest	true	"request body ranking rute"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/routes/rank [post]
//	@Success		200	{object}	datastructure.RankedResult
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *RouteHandler) rank(w http.ResponseWriter, r *http.Request) {
	data := &RankRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !h.validateStruct(w, r, *data) {
		return
	}

	res, err := h.svc.Rank(r.Context(), data.toServiceRequest())
	h.promeMetrics.RankQueryCount.WithLabelValues(outcome(res, err)).Inc()
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	h.promeMetrics.RoutesReturned.Observe(float64(len(res.Routes)))

	render.Status(r, http.StatusOK)
	render.JSON(w, r, res)
}

// RankBatchRequest model info
//
//	@Description	request body untuk ranking banyak pasangan node sekaligus
type RankBatchRequest struct {
	Requests []RankRequest `json:"requests" validate:"required,min=1,max=100,dive"`
}

func (s *RankBatchRequest) Bind(r *http.Request) error {
	for _, req := range s.Requests {
		if req.SourceNode == nil || req.TargetNode == nil {
			return errors.New("invalid request")
		}
	}
	return nil
}

// RankBatchItem model info
//
//	@Description	hasil ranking untuk satu request di batch
type RankBatchItem struct {
	Status int                         `json:"status"`
	Result *datastructure.RankedResult `json:"result,omitempty"`
	Error  string                      `json:"error,omitempty"`
}

// RankBatchResponse model info
//
//	@Description	response body ranking batch, urutan sama dengan request
type RankBatchResponse struct {
	Results []RankBatchItem `json:"results"`
}

// rankBatch
//
//	@Summary		ranking rute untuk banyak pasangan node secara concurrent.
//	@Description	setiap request di batch di ranking terhadap snapshot yang sama, request yang gagal tidak menggagalkan request lain.
//	@Tags			routes
//	@Param			body	body	RankBatchRequest	true	"request body ranking batch"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/routes/rank-batch [post]
//	@Success		200	{object}	RankBatchResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *RouteHandler) rankBatch(w http.ResponseWriter, r *http.Request) {
	data := &RankBatchRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !h.validateStruct(w, r, *data) {
		return
	}

	reqs := make([]service.RankRequest, len(data.Requests))
	for i := range data.Requests {
		reqs[i] = data.Requests[i].toServiceRequest()
	}

	items, err := h.svc.RankBatch(r.Context(), reqs)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	resp := RankBatchResponse{Results: make([]RankBatchItem, len(items))}
	for i, item := range items {
		h.promeMetrics.RankQueryCount.WithLabelValues(outcome(item.Result, item.Err)).Inc()
		if item.Err != nil {
			resp.Results[i] = RankBatchItem{Status: getStatusCode(item.Err), Error: item.Err.Error()}
			continue
		}
		res := item.Result
		h.promeMetrics.RoutesReturned.Observe(float64(len(res.Routes)))
		resp.Results[i] = RankBatchItem{Status: http.StatusOK, Result: &res}
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

// NearestNodeRequest model info
//
//	@Description	query param untuk snap koordinat ke node terdekat
type NearestNodeRequest struct {
	Lat float64 `validate:"lt=90,gt=-90"`
	Lon float64 `validate:"lt=180,gt=-180"`
}

// NearestNodeResponse model info
//
//	@Description	node road network terdekat dari koordinat
type NearestNodeResponse struct {
	NodeID    int64   `json:"node_id"`
	Name      string  `json:"name"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	DistanceM float64 `json:"distance_m"`
}

// nearestNode
//
//	@Summary		snap koordinat ke node road network terdekat.
//	@Description	cari node terdekat pakai h3 index snapshot yang sedang dipakai.
//	@Tags			routes
//	@Param			lat	query	number	true	"latitude"
//	@Param			lon	query	number	true	"longitude"
//	@Produce		application/json
//	@Router			/routes/nearest-node [get]
//	@Success		200	{object}	NearestNodeResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
func (h *RouteHandler) nearestNode(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err := errors.Join(errLat, errLon); err != nil {
		render.Render(w, r, ErrInvalidRequest(fmt.Errorf("lat and lon query params must be numbers: %w", err)))
		return
	}
	data := NearestNodeRequest{Lat: lat, Lon: lon}
	if !h.validateStruct(w, r, data) {
		return
	}

	n, err := h.svc.NearestNode(r.Context(), data.Lat, data.Lon)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NearestNodeResponse{
		NodeID:    n.Node.ID,
		Name:      n.Node.Name,
		Lat:       n.Node.Lat,
		Lon:       n.Node.Lon,
		DistanceM: util.RoundFloat(n.DistanceM, 2),
	})
}

// nodeByName
//
//	@Summary		cari node berdasarkan nama.
//	@Description	exact match dulu, kalau tidak ada pakai substring case-insensitive dengan node id terkecil.
//	@Tags			routes
//	@Param			name	query	string	true	"nama node"
//	@Produce		application/json
//	@Router			/routes/node [get]
//	@Success		200	{object}	datastructure.Node
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
func (h *RouteHandler) nodeByName(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		render.Render(w, r, ErrInvalidRequest(errors.New("name query param is required")))
		return
	}

	n, err := h.svc.FindNodeByName(r.Context(), name)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, n)
}

// currentSnapshot
//
//	@Summary		info snapshot road network yang sedang dipakai.
//	@Tags			snapshots
//	@Produce		application/json
//	@Router			/snapshots/current [get]
//	@Success		200	{object}	service.SnapshotInfo
//	@Failure		503	{object}	ErrResponse
func (h *RouteHandler) currentSnapshot(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.CurrentSnapshot(r.Context())
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, info)
}

// applyUpdates
//
//	@Summary		apply update traffic/cuaca/blokir edge, menghasilkan snapshot baru.
//	@Description	body sama dengan format updates.json: object dengan key edge_id. Snapshot lama tidak berubah.
//	@Tags			snapshots
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/snapshots/updates [post]
//	@Success		200	{object}	service.SnapshotInfo
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
func (h *RouteHandler) applyUpdates(w http.ResponseWriter, r *http.Request) {
	updates, err := loader.ReadUpdates(r.Body, "request body")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	info, err := h.svc.ApplyUpdates(r.Context(), updates)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, info)
}

// ErrResponse model info
//
//	@Description	response body untuk error
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText    string   `json:"status"`          // user-level status message
	AppCode       int64    `json:"code,omitempty"`  // application-specific error code
	ErrorText     string   `json:"error,omitempty"` // application-level error message, for debugging
	ErrValidation []string `json:"validation,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func ErrValidation(err error, errV []error) render.Renderer {
	vv := []string{}
	for _, v := range errV {
		vv = append(vv, v.Error())
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
		ErrValidation:  vv,
	}
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

func ErrChi(err error) render.Renderer {
	statusText := ""
	switch getStatusCode(err) {
	case http.StatusNotFound:
		statusText = "Resource not found."
	case http.StatusInternalServerError:
		statusText = "Internal server error."
	case http.StatusBadRequest:
		statusText = "Bad request."
	case http.StatusServiceUnavailable:
		statusText = "Service unavailable."
	default:
		statusText = "Error."
	}

	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: getStatusCode(err),
		StatusText:     statusText,
		ErrorText:      err.Error(),
	}
}

func getStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var ierr *server.Error
	if !errors.As(err, &ierr) {
		return http.StatusInternalServerError
	}
	switch ierr.Code() {
	case server.ErrInternalServerError:
		return http.StatusInternalServerError
	case server.ErrNotFound:
		return http.StatusNotFound
	case server.ErrBadParamInput:
		return http.StatusBadRequest
	case server.ErrUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func translateError(verrs validator.ValidationErrors, trans ut.Translator) (errs []error) {
	for _, e := range verrs {
		errs = append(errs, errors.New(e.Translate(trans)))
	}
	return errs
}
