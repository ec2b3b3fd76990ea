package handlers

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"codeleague/internal/syncer"

	"github.com/gin-gonic/gin"
	"github.com/hako/durafmt"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SyncStatus is satisfied by *syncer.Orchestrator.
type SyncStatus interface {
	Running() bool
	LastSweep() (syncer.SweepReport, bool)
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db        Pinger
	sync      SyncStatus
	startTime time.Time
	version   string
}

// NewHealthHandler creates a new health handler. sync may be nil.
func NewHealthHandler(db Pinger, sync SyncStatus, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		sync:      sync,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version,omitempty"`
	Uptime    string            `json:"uptime,omitempty"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
	LastSweep *SweepStatus      `json:"last_sweep,omitempty"`
}

// SweepStatus is the readiness view of the most recent sync sweep.
type SweepStatus struct {
	RunID      string `json:"run_id"`
	Outcome    string `json:"outcome"`
	Users      int    `json:"users"`
	Failed     int    `json:"failed"`
	Settled    int    `json:"settled"`
	Took       string `json:"took"`
	FinishedAt string `json:"finished_at"`
	Age        string `json:"age"`
}

func sweepStatus(r syncer.SweepReport, now time.Time) *SweepStatus {
	outcome := r.Outcome
	if outcome == syncer.SweepCompleted && r.Failed > 0 {
		outcome = "partial"
	}
	return &SweepStatus{
		RunID:      r.RunID,
		Outcome:    outcome,
		Users:      r.Users,
		Failed:     r.Failed,
		Settled:    r.Settled,
		Took:       durafmt.Parse(r.Duration).LimitFirstN(2).String(),
		FinishedAt: r.FinishedAt.UTC().Format(time.RFC3339),
		Age:        now.Sub(r.FinishedAt).Round(time.Second).String(),
	}
}

// Liveness returns simple alive status (for k8s liveness probe)
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness returns detailed health status (for k8s readiness probe)
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allHealthy := true

	// Database check
	if err := h.db.Ping(ctx); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		allHealthy = false
	} else {
		checks["database"] = "healthy"
	}

	var last *SweepStatus
	if h.sync != nil {
		if h.sync.Running() {
			checks["sync"] = "sweeping"
		} else {
			checks["sync"] = "idle"
		}
		if r, ok := h.sync.LastSweep(); ok {
			last = sweepStatus(r, time.Now())
		} else {
			checks["sync"] += ", no sweep yet"
		}
	}

	// Memory check
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	checks["memory_alloc_mb"] = formatMB(m.Alloc)

	status := "healthy"
	statusCode := http.StatusOK
	if !allHealthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, HealthResponse{
		Status:    status,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		LastSweep: last,
	})
}

// Health is a combined endpoint for basic health checks
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	// Quick database ping
	if err := h.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
	})
}

func formatMB(bytes uint64) string {
	mb := float64(bytes) / 1024 / 1024
	return fmt.Sprintf("%.2f", mb)
}
