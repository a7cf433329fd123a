package api

import (
	"encoding/json"
	"net/http"
	"time"
)

// CacheInfo reports cache state for the health endpoint.
type CacheInfo interface {
	Len() int
	Path() string
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status       string `json:"status"`
	Timestamp    string `json:"timestamp"`
	CacheEntries int    `json:"cacheEntries"`
	CachePath    string `json:"cachePath"`
}

// NewHealthHandler creates the health handler. The engine is healthy as long
// as the process runs: upstream failures degrade views, they never take the
// service down.
func NewHealthHandler(cache CacheInfo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, HealthResponse{
			Status:       "ok",
			Timestamp:    time.Now().UTC().Format(time.RFC3339),
			CacheEntries: cache.Len(),
			CachePath:    cache.Path(),
		})
	}
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
