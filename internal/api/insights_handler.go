package api

import (
	"net/http"
	"strconv"

	"github.com/vkarpenko/gitpulse/internal/insights"
)

// InsightsHandler serves the derived views. Every endpoint returns a
// well-formed renderable structure even under total upstream failure.
type InsightsHandler struct {
	service *insights.Service
}

// NewInsightsHandler creates a handler over the aggregator service.
func NewInsightsHandler(service *insights.Service) *InsightsHandler {
	return &InsightsHandler{service: service}
}

// Pulse handles GET /api/insights/pulse?limit=N
func (h *InsightsHandler) Pulse(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	respondJSON(w, http.StatusOK, h.service.PulseFeed(r.Context(), limit))
}

// Graph handles GET /api/insights/graph
func (h *InsightsHandler) Graph(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.ContributorGraph(r.Context()))
}

// Sunburst handles GET /api/insights/sunburst
func (h *InsightsHandler) Sunburst(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.DirectorySunburst(r.Context()))
}

// Reviewers handles GET /api/insights/reviewers
func (h *InsightsHandler) Reviewers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.ReviewerStats(r.Context()))
}

// Triage handles GET /api/insights/triage
func (h *InsightsHandler) Triage(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.SelectTriage(r.Context()))
}

// Board handles GET /api/insights/board
func (h *InsightsHandler) Board(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.MissionControl(r.Context()))
}

// Mix handles GET /api/insights/mix
func (h *InsightsHandler) Mix(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.ContributionMix(r.Context()))
}

// Milestones handles GET /api/insights/milestones
func (h *InsightsHandler) Milestones(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.Milestones(r.Context()))
}
