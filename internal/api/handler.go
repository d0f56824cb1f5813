// Package api serves the policy engine over HTTP for the dashboard front end.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/cxd309/tram-policy/internal/corridor"
	"github.com/cxd309/tram-policy/internal/engine"
	"github.com/cxd309/tram-policy/internal/judge"
	"github.com/cxd309/tram-policy/internal/mapview"
	"github.com/cxd309/tram-policy/internal/policy"
	"github.com/cxd309/tram-policy/internal/scenario"
	"github.com/cxd309/tram-policy/internal/search"
	"github.com/cxd309/tram-policy/internal/station"
)

// Handler holds the loaded dataset and the shared decision log.
type Handler struct {
	model     engine.Model
	stations  []station.Station
	corridor  *corridor.Corridor
	scenarios *scenario.Log
	search    search.Options
	logger    zerolog.Logger
}

// Options configures a Handler. Corridor may be nil, in which case route requests fail
// and the map carries station points only.
type Options struct {
	Model     engine.Model
	Stations  []station.Station
	Corridor  *corridor.Corridor
	Scenarios *scenario.Log
	Search    search.Options
	Logger    zerolog.Logger
}

// NewHandler returns a Handler for opts. A nil Scenarios gets a log of default capacity.
func NewHandler(opts Options) *Handler {
	if opts.Scenarios == nil {
		opts.Scenarios = scenario.NewLog(scenario.DefaultCapacity)
	}
	return &Handler{
		model:     opts.Model,
		stations:  opts.Stations,
		corridor:  opts.Corridor,
		scenarios: opts.Scenarios,
		search:    opts.Search,
		logger:    opts.Logger,
	}
}

// RegisterRoutes mounts every endpoint on r.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.health)

	api := r.Group("/api")
	api.GET("/stations", h.listStations)
	api.POST("/simulate", h.simulate)
	api.POST("/judge", h.judge)
	api.POST("/alternative", h.alternative)
	api.POST("/map", h.mapLayer)
	api.POST("/route", h.route)
	api.GET("/scenarios", h.listScenarios)
	api.POST("/scenarios", h.saveScenario)
	api.DELETE("/scenarios", h.clearScenarios)
}

// RequestLogger logs one line per request.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		ev := logger.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = logger.Error()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// SimulateResponse is the body returned by simulate and saved scenarios.
type SimulateResponse struct {
	Result   engine.Result   `json:"result"`
	Judgment *judge.Judgment `json:"judgment,omitempty"`
}

// JudgeRequest carries the three metrics the judge classifies.
type JudgeRequest struct {
	Congestion          float64 `json:"congestion"`
	ComplaintScore      float64 `json:"complaint_score"`
	BudgetChangePercent float64 `json:"budget_change_percent"`
}

// RouteRequest asks for the congestion between two stations under params.
type RouteRequest struct {
	Params policy.Params `json:"params"`
	From   int           `json:"from"`
	To     int           `json:"to"`
}

// RouteResponse is the route with each segment's load.
type RouteResponse struct {
	Route          corridor.Route         `json:"route"`
	Segments       []corridor.SegmentLoad `json:"segments"`
	MeanCongestion float64                `json:"mean_congestion"`
	Level          corridor.Level         `json:"level"`
}

// SaveRequest saves a scenario to the decision log.
type SaveRequest struct {
	Label  string        `json:"label"`
	Params policy.Params `json:"params"`
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "stations": len(h.stations)})
}

func (h *Handler) listStations(c *gin.Context) {
	c.JSON(http.StatusOK, h.stations)
}

// evaluate simulates and judges params. The judgment is nil while no data is loaded.
func (h *Handler) evaluate(params policy.Params) (SimulateResponse, error) {
	res, err := h.model.Simulate(params, h.stations)
	if err != nil {
		return SimulateResponse{}, err
	}
	out := SimulateResponse{Result: res}
	if res.Ready {
		j := judge.Judge(res.AverageCongestionPercent, res.ComplaintScore, res.BudgetChangePercent)
		out.Judgment = &j
	}
	return out, nil
}

func (h *Handler) simulate(c *gin.Context) {
	var params policy.Params
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp, err := h.evaluate(params)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) judge(c *gin.Context) {
	var req JudgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, judge.Judge(req.Congestion, req.ComplaintScore, req.BudgetChangePercent))
}

func (h *Handler) alternative(c *gin.Context) {
	var fixed policy.Partial
	if err := c.ShouldBindJSON(&fixed); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	alt, err := search.Search(h.model, h.stations, fixed, h.search)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, alt)
}

func (h *Handler) mapLayer(c *gin.Context) {
	var params policy.Params
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.model.Simulate(params, h.stations)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, mapview.FeatureCollection(h.stations, res, h.corridor))
}

func (h *Handler) route(c *gin.Context) {
	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if h.corridor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no corridor is loaded"})
		return
	}
	res, err := h.model.Simulate(req.Params, h.stations)
	if err != nil {
		h.fail(c, err)
		return
	}
	r, err := h.corridor.Route(req.From, req.To)
	if err != nil {
		h.fail(c, err)
		return
	}
	loads := corridor.LoadSegments(r.Segments, res.PerStation)
	mean := corridor.MeanCongestion(loads)
	c.JSON(http.StatusOK, RouteResponse{
		Route:          r,
		Segments:       loads,
		MeanCongestion: mean,
		Level:          corridor.LevelFor(mean),
	})
}

func (h *Handler) listScenarios(c *gin.Context) {
	c.JSON(http.StatusOK, h.scenarios.List())
}

func (h *Handler) saveScenario(c *gin.Context) {
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp, err := h.evaluate(req.Params)
	if err != nil {
		h.fail(c, err)
		return
	}
	if resp.Judgment == nil {
		c.JSON(http.StatusConflict, gin.H{"error": resp.Result.Message})
		return
	}
	entry := h.scenarios.Save(req.Label, req.Params, resp.Result, *resp.Judgment)
	h.logger.Info().
		Str("id", entry.ID).
		Str("tier", string(entry.Judgment.Tier)).
		Msg("scenario saved")
	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) clearScenarios(c *gin.Context) {
	h.scenarios.Clear()
	c.Status(http.StatusNoContent)
}

// fail maps errors to status codes: caller mistakes are 400, unknown stations and
// missing routes 404.
func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, policy.ErrInvalidParameter):
		status = http.StatusBadRequest
	case errors.Is(err, corridor.ErrUnknownStation), errors.Is(err, corridor.ErrNoRoute):
		status = http.StatusNotFound
	default:
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
