package rest

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus   `json:"status"`
	Message    string         `json:"message,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	CheckedAt  time.Time      `json:"checked_at"`
	DurationMs int64          `json:"duration_ms"`
}

type HealthHandler struct {
	db    *sql.DB
	redis *redis.Client
}

// NewHealthHandler reports readiness. redisClient is nil unless the
// rate limiter runs on the redis backend.
func NewHealthHandler(db *sql.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient}
}

// pingHandler just says the service is up.
func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "OK"}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// healthCheckHandler checks every backing store the service depends on.
func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := map[string]CheckEntry{
		"postgres": h.checkComponent(func() error { return h.db.PingContext(ctx) }),
	}
	if h.redis != nil {
		components["redis"] = h.checkComponent(func() error { return h.redis.Ping(ctx).Err() })
	}

	overall := HealthHealthy
	for _, entry := range components {
		if entry.Status == HealthUnhealthy {
			overall = HealthUnhealthy
		}
	}

	resp := HealthResponse{
		Status:     overall,
		CheckedAt:  time.Now(),
		Components: components,
	}

	statusCode := http.StatusOK
	if overall == HealthUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

func (h *HealthHandler) checkComponent(ping func() error) CheckEntry {
	start := time.Now()
	err := ping()

	entry := CheckEntry{
		Status:     HealthHealthy,
		CheckedAt:  time.Now(),
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		entry.Status = HealthUnhealthy
		entry.Message = err.Error()
	}
	return entry
}
