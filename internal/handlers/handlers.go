package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/XavierBriggs/fortuna/services/hedge-calculator/internal/calculator"
	"github.com/XavierBriggs/fortuna/services/hedge-calculator/internal/client"
	"github.com/XavierBriggs/fortuna/services/hedge-calculator/internal/hub"
	"github.com/XavierBriggs/fortuna/services/hedge-calculator/internal/opportunity"
	"github.com/XavierBriggs/fortuna/services/hedge-calculator/internal/presenter"
	"github.com/XavierBriggs/fortuna/services/hedge-calculator/pkg/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Maximum accepted request body
const maxBodyBytes = 1 << 20

// ScannerStats reports scanner activity
type ScannerStats interface {
	Metrics() models.ScannerMetrics
}

// Options holds the handler's collaborators
type Options struct {
	Engine    calculator.Engine
	Platforms *opportunity.Registry
	Finder    *opportunity.Finder
	Presenter *presenter.Presenter
	Defaults  opportunity.Criteria
	Hub       *hub.Hub
	Scanner   ScannerStats // nil when the scanner is disabled

	// Origins allowed to open the WebSocket feed. Empty allows any origin.
	AllowedOrigins []string

	Logger zerolog.Logger
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	engine    calculator.Engine
	platforms *opportunity.Registry
	finder    *opportunity.Finder
	presenter *presenter.Presenter
	defaults  opportunity.Criteria
	hub       *hub.Hub
	scanner   ScannerStats
	upgrader  websocket.Upgrader
	ctx       context.Context
	log       zerolog.Logger
}

// NewHandler creates a new handler. WebSocket clients live until ctx is
// cancelled, independent of the upgrade request.
func NewHandler(ctx context.Context, opts Options) *Handler {
	h := &Handler{
		engine:    opts.Engine,
		platforms: opts.Platforms,
		finder:    opts.Finder,
		presenter: opts.Presenter,
		defaults:  opts.Defaults,
		hub:       opts.Hub,
		scanner:   opts.Scanner,
		ctx:       ctx,
		log:       opts.Logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(opts.AllowedOrigins),
	}
	return h
}

// Routes registers every endpoint on r
func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.HealthCheck)
	r.Get("/metrics", h.Metrics)
	r.Get("/ws", h.HandleWebSocket)
	r.Route("/api/v1/hedge", h.APIRoutes)
}

// APIRoutes registers the calculation endpoints under /api/v1/hedge
func (h *Handler) APIRoutes(r chi.Router) {
	r.Post("/calculate", h.CalculateHedge)
	r.Post("/three-way", h.CalculateThreeWay)
	r.Post("/three-way/best", h.BestThreeWay)
	r.Post("/dutch", h.CalculateDutch)
	r.Get("/overround", h.Overround)
	r.Post("/opportunities", h.FindOpportunities)
	r.Post("/filter", h.FilterOpportunities)
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	scanner := "disabled"
	if h.scanner != nil {
		scanner = "enabled"
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "hedge-calculator",
		"policy":  h.engine.Policy(),
		"scanner": scanner,
		"clients": h.hub.GetClientCount(),
	})
}

// Metrics returns hub and scanner metrics
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	resp := models.MetricsResponse{Hub: h.hub.GetMetrics()}
	if h.scanner != nil {
		resp.Scanner = h.scanner.Metrics()
	}
	respondJSON(w, http.StatusOK, resp)
}

// HandleWebSocket upgrades HTTP connections to the opportunity feed
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade error")
		return
	}

	c := client.NewClient(uuid.New().String(), conn, h.hub, h.log)
	h.hub.Register(c)

	go c.WritePump(h.ctx)
	go c.ReadPump(h.ctx)
}

// CalculateHedge evaluates a two-way back/lay hedge
func (h *Handler) CalculateHedge(w http.ResponseWriter, r *http.Request) {
	var req models.HedgeRequest
	if !decode(w, r, &req) {
		return
	}

	engine := h.engine
	if req.Policy != "" {
		policy, err := calculator.ParsePolicy(req.Policy)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		engine = calculator.NewEngine(policy)
	}

	stake := h.defaults.Stake
	if req.Stake != nil {
		stake = *req.Stake
	}

	quote := calculator.OddsQuote{
		BackOdds:       req.BackOdds,
		LayOdds:        req.LayOdds,
		CommissionBack: req.BackCommission,
		CommissionLay:  req.LayCommission,
	}
	result, err := engine.Hedge(quote, stake)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.presenter.Hedge(quote, stake, result))
}

// CalculateThreeWay evaluates a three-way hedge for a chosen back selection
func (h *Handler) CalculateThreeWay(w http.ResponseWriter, r *http.Request) {
	var req models.ThreeWayRequest
	if !decode(w, r, &req) {
		return
	}

	stake := h.defaults.Stake
	if req.Stake != nil {
		stake = *req.Stake
	}

	result, err := calculator.CalculateThreeWayHedge(calculator.ThreeWayQuote{
		BackSelection: req.BackSelection,
		BackOdds:      req.BackOdds,
		LaySelection1: req.LaySelection1,
		LayOdds1:      req.LayOdds1,
		LaySelection2: req.LaySelection2,
		LayOdds2:      req.LayOdds2,
		Stake:         stake,
	}, calculator.ThreeWayCommission{Back: req.BackCommission, Lay: req.LayCommission})
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.presenter.ThreeWay(result))
}

// BestThreeWay finds the most profitable outcome to back in a three-way market
func (h *Handler) BestThreeWay(w http.ResponseWriter, r *http.Request) {
	var req models.BestThreeWayRequest
	if !decode(w, r, &req) {
		return
	}

	if len(req.Selections) != 3 {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("exactly 3 selections required (got %d)", len(req.Selections)))
		return
	}

	stake := h.defaults.Stake
	if req.Stake != nil {
		stake = *req.Stake
	}

	var names [3]string
	var backOdds, coverOdds [3]float64
	for i, s := range req.Selections {
		names[i] = s.Name
		backOdds[i] = s.BackOdds
		coverOdds[i] = s.CoverOdds
		if coverOdds[i] == 0 {
			coverOdds[i] = s.BackOdds
		}
	}

	result, err := calculator.BestThreeWayHedge(names, backOdds, coverOdds, stake,
		calculator.ThreeWayCommission{Back: req.BackCommission, Lay: req.LayCommission})
	if err != nil {
		respondEngineError(w, err)
		return
	}

	resp := h.presenter.ThreeWay(result)
	if req.MinProfit != nil || req.MinROI != nil {
		minProfit, minROI := 0.0, 0.0
		if req.MinProfit != nil {
			minProfit = *req.MinProfit
		}
		if req.MinROI != nil {
			minROI = *req.MinROI
		}
		meets := calculator.ThreeWayMeetsThreshold(result, minProfit, minROI)
		resp.MeetsThreshold = &meets
	}

	respondJSON(w, http.StatusOK, resp)
}

// CalculateDutch splits a stake across back bets on every outcome
func (h *Handler) CalculateDutch(w http.ResponseWriter, r *http.Request) {
	var req models.DutchRequest
	if !decode(w, r, &req) {
		return
	}

	total := h.defaults.Stake
	if req.TotalStake != nil {
		total = *req.TotalStake
	}

	result, err := calculator.CalculateDutch(req.Odds, total)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.presenter.Dutch(req.Odds, result))
}

// Overround classifies the margin of a market given as ?odds=2.0,3.2,4.5
func (h *Handler) Overround(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("odds")
	if raw == "" {
		respondError(w, http.StatusBadRequest, "odds query parameter is required")
		return
	}

	parts := strings.Split(raw, ",")
	odds := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid odds value %q", p))
			return
		}
		odds = append(odds, v)
	}

	sum, err := calculator.ImpliedProbabilitySum(odds...)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.presenter.Overround(odds, sum))
}

// FindOpportunities prices every hedge in the submitted snapshots
func (h *Handler) FindOpportunities(w http.ResponseWriter, r *http.Request) {
	var req models.OpportunitiesRequest
	if !decode(w, r, &req) {
		return
	}

	criteria, err := presenter.Criteria(req.Criteria, h.defaults)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshots := make([]opportunity.MarketSnapshot, len(req.Snapshots))
	for i, s := range req.Snapshots {
		snapshots[i] = presenter.Snapshot(s)
	}

	opps, err := h.finder.FindAll(snapshots, criteria)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.presenter.Opportunities(opps))
}

// FilterOpportunities classifies externally priced opportunities and keeps
// those meeting the profit threshold
func (h *Handler) FilterOpportunities(w http.ResponseWriter, r *http.Request) {
	var req models.FilterRequest
	if !decode(w, r, &req) {
		return
	}

	opps := make([]opportunity.Opportunity, len(req.Opportunities))
	for i, q := range req.Opportunities {
		legs := make([]opportunity.Leg, len(q.Platforms))
		for j, p := range q.Platforms {
			legs[j] = opportunity.Leg{Platform: p}
		}
		opps[i] = opportunity.Opportunity{
			ID:               q.ID,
			EventName:        q.EventName,
			RunnerName:       q.RunnerName,
			HedgeType:        h.platforms.ClassifyKeys(q.Platforms...),
			Legs:             legs,
			ProfitPercentage: q.ProfitPercentage,
		}
	}

	kept := opportunity.FilterByProfitPercentage(opps, req.MinProfitPercentage)

	resp := models.FilterResponse{
		Count:         len(kept),
		Excluded:      len(opps) - len(kept),
		Opportunities: make([]models.ClassifiedOpportunity, 0, len(kept)),
	}
	for _, o := range kept {
		platforms := make([]string, len(o.Legs))
		for i, leg := range o.Legs {
			platforms[i] = leg.Platform
		}
		resp.Opportunities = append(resp.Opportunities, models.ClassifiedOpportunity{
			QuotedOpportunity: models.QuotedOpportunity{
				ID:               o.ID,
				EventName:        o.EventName,
				RunnerName:       o.RunnerName,
				Platforms:        platforms,
				ProfitPercentage: o.ProfitPercentage,
			},
			HedgeType: string(o.HedgeType),
		})
	}

	respondJSON(w, http.StatusOK, resp)
}

// decode reads a single JSON document into v, answering 400 on failure.
// Numeric fields only accept JSON numbers.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return false
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request: body must contain a single JSON object")
		return false
	}
	return true
}

// originChecker allows browser origins from the list, and requests without
// an Origin header
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}

	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set["*"] || set[origin]
	}
}

// respondEngineError maps engine errors to HTTP responses
func respondEngineError(w http.ResponseWriter, err error) {
	if errors.Is(err, calculator.ErrInvalidInput) {
		respondJSON(w, http.StatusBadRequest, models.ErrorResponse{
			Error: err.Error(),
			Hint:  calculator.InvalidInputHint,
		})
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, models.ErrorResponse{Error: message})
}
