package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/huenthong/spacifychat/internal/analytics"
	"github.com/huenthong/spacifychat/internal/routing"
	"github.com/huenthong/spacifychat/internal/scoring"
	"github.com/huenthong/spacifychat/internal/seed"
	"github.com/huenthong/spacifychat/internal/store"
)

const (
	defaultTrendDays = 14
	maxTrendDays     = 90
	maxSeedCount     = 1000
)

type AdminHandler struct {
	store  store.Store
	router *routing.Router
	logger *slog.Logger
}

func NewAdminHandler(st store.Store, rt *routing.Router, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{store: st, router: rt, logger: logger}
}

// StatsResponse is the dashboard payload: lead totals, per-agent
// performance, the daily trend and the derived health metrics.
type StatsResponse struct {
	Totals           *store.LeadStats                `json:"totals"`
	Agents           []*store.AgentPerformance       `json:"agents"`
	Daily            []*store.DailyCount             `json:"daily"`
	FairnessScore    float64                         `json:"fairness_score"`
	RoutingAccuracy  float64                         `json:"routing_accuracy"`
	SLACompliance    float64                         `json:"sla_compliance"`
	ConversionRate   float64                         `json:"conversion_rate"`
	TemperatureShare map[scoring.Temperature]float64 `json:"temperature_share"`
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	days := defaultTrendDays
	if d := r.URL.Query().Get("days"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n < 1 || n > maxTrendDays {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid days"})
			return
		}
		days = n
	}

	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	perf, err := h.store.GetAgentPerformance(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	daily, err := h.store.GetDailyCounts(r.Context(), days)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if perf == nil {
		perf = []*store.AgentPerformance{}
	}
	if daily == nil {
		daily = []*store.DailyCount{}
	}

	resp := StatsResponse{
		Totals:           stats,
		Agents:           perf,
		Daily:            daily,
		FairnessScore:    analytics.FairnessScore(stats.HotByAgent),
		RoutingAccuracy:  analytics.RoutingAccuracy(perf, h.router.Roster().TopIDs()),
		SLACompliance:    analytics.SLACompliance(stats.SLAMetLeads, stats.RespondedLeads),
		ConversionRate:   analytics.ConversionRate(stats.StatusCounts[string(store.StatusClosedWon)], stats.TotalLeads),
		TemperatureShare: analytics.TemperatureShare(stats),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) Seed(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Count int   `json:"count"`
		Seed  int64 `json:"seed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if body.Count < 0 || body.Count > maxSeedCount {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "count out of range"})
		return
	}

	now := time.Now().UTC()
	generated, err := seed.Generate(seed.Options{
		Count: body.Count,
		Seed:  body.Seed,
		Now:   now,
	}, scoring.NewScorerAt(now), h.router)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	for _, lead := range generated {
		if err := h.store.CreateLead(r.Context(), lead); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
	}

	h.logger.Info("seeded demo leads", "count", len(generated), "seed", body.Seed)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"seeded": len(generated),
		"seed":   body.Seed,
	})
}
