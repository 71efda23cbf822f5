package health

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eleven-am/live-coach/internal/analysis"
	"github.com/eleven-am/live-coach/internal/prediction"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

type ComponentStatus struct {
	Status    Status `json:"status"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type RuntimeStats struct {
	Goroutines         int    `json:"goroutines"`
	MemoryAllocMB      uint64 `json:"memory_alloc_mb"`
	MemoryTotalAllocMB uint64 `json:"memory_total_alloc_mb"`
	MemorySysMB        uint64 `json:"memory_sys_mb"`
	NumGC              uint32 `json:"num_gc"`
}

type LoopStats struct {
	State           string `json:"state"`
	Cycles          uint64 `json:"cycles"`
	AbandonedCycles uint64 `json:"abandoned_cycles"`
}

type HistoryStats struct {
	Length    int    `json:"length"`
	Capacity  int    `json:"capacity"`
	LatestSeq uint64 `json:"latest_seq"`
}

type RequestStats struct {
	TotalRequests     uint64 `json:"total_requests"`
	ActiveConnections int64  `json:"active_connections"`
}

type Stats struct {
	Loop     LoopStats    `json:"loop"`
	History  HistoryStats `json:"history"`
	Requests RequestStats `json:"requests"`
	Runtime  RuntimeStats `json:"runtime"`
}

type HealthResponse struct {
	Status        Status                     `json:"status"`
	Timestamp     time.Time                  `json:"timestamp"`
	Version       string                     `json:"version"`
	UptimeSeconds int64                      `json:"uptime_seconds"`
	Stats         Stats                      `json:"stats"`
	Components    map[string]ComponentStatus `json:"components"`
}

type LoopReporter interface {
	State() analysis.State
	Stats() analysis.Stats
}

// RemoteEngine is implemented by inference engines that live behind a
// network connection.
type RemoteEngine interface {
	Address() string
	IsConnected() bool
}

type Handler struct {
	redis   *redis.Client
	loop    LoopReporter
	history *prediction.History
	engine  RemoteEngine
	version string

	startTime time.Time

	totalRequests     uint64
	activeConnections int64
}

// NewHandler builds the health handler. redis and engine may be nil when
// the publisher or sidecar is disabled.
func NewHandler(redis *redis.Client, loop LoopReporter, history *prediction.History, engine RemoteEngine, version string) *Handler {
	return &Handler{
		redis:     redis,
		loop:      loop,
		history:   history,
		engine:    engine,
		version:   version,
		startTime: time.Now(),
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Liveness)
	e.GET("/health/ready", h.Readiness)
}

func (h *Handler) IncrementRequests() {
	atomic.AddUint64(&h.totalRequests, 1)
}

func (h *Handler) IncrementConnections() {
	atomic.AddInt64(&h.activeConnections, 1)
}

func (h *Handler) DecrementConnections() {
	atomic.AddInt64(&h.activeConnections, -1)
}

func (h *Handler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func (h *Handler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	components := make(map[string]ComponentStatus)
	var mu sync.Mutex
	var wg sync.WaitGroup

	type componentCheck struct {
		name  string
		check func(context.Context) ComponentStatus
	}
	checks := []componentCheck{
		{"analysis", h.checkLoop},
		{"inference", h.checkInference},
	}
	if h.redis != nil {
		checks = append(checks, componentCheck{"redis", h.checkRedis})
	}

	wg.Add(len(checks))
	for _, check := range checks {
		go func(name string, fn func(context.Context) ComponentStatus) {
			defer wg.Done()
			status := fn(ctx)
			mu.Lock()
			components[name] = status
			mu.Unlock()
		}(check.name, check.check)
	}
	wg.Wait()

	overallStatus := h.computeOverallStatus(components)

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	resp := HealthResponse{
		Status:        overallStatus,
		Timestamp:     time.Now().UTC(),
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Stats: Stats{
			Loop:    h.loopStats(),
			History: h.historyStats(),
			Requests: RequestStats{
				TotalRequests:     atomic.LoadUint64(&h.totalRequests),
				ActiveConnections: atomic.LoadInt64(&h.activeConnections),
			},
			Runtime: RuntimeStats{
				Goroutines:         runtime.NumGoroutine(),
				MemoryAllocMB:      memStats.Alloc / 1024 / 1024,
				MemoryTotalAllocMB: memStats.TotalAlloc / 1024 / 1024,
				MemorySysMB:        memStats.Sys / 1024 / 1024,
				NumGC:              memStats.NumGC,
			},
		},
		Components: components,
	}

	statusCode := http.StatusOK
	if overallStatus == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, resp)
}

func (h *Handler) loopStats() LoopStats {
	if h.loop == nil {
		return LoopStats{State: analysis.StateNotAttached.String()}
	}
	s := h.loop.Stats()
	return LoopStats{
		State:           s.State,
		Cycles:          s.Cycles,
		AbandonedCycles: s.AbandonedCycles,
	}
}

func (h *Handler) historyStats() HistoryStats {
	if h.history == nil {
		return HistoryStats{}
	}
	return HistoryStats{
		Length:    h.history.Len(),
		Capacity:  h.history.Cap(),
		LatestSeq: h.history.Seq(),
	}
}

func (h *Handler) checkLoop(ctx context.Context) ComponentStatus {
	start := time.Now()
	if h.loop == nil {
		return ComponentStatus{
			Status:    StatusUnhealthy,
			LatencyMs: time.Since(start).Milliseconds(),
			Error:     "analysis loop not configured",
		}
	}

	switch state := h.loop.State(); state {
	case analysis.StateRunning:
		return ComponentStatus{
			Status:    StatusHealthy,
			LatencyMs: time.Since(start).Milliseconds(),
		}
	case analysis.StateStopped:
		return ComponentStatus{
			Status:    StatusUnhealthy,
			LatencyMs: time.Since(start).Milliseconds(),
			Error:     "analysis loop stopped",
		}
	default:
		return ComponentStatus{
			Status:    StatusDegraded,
			LatencyMs: time.Since(start).Milliseconds(),
			Error:     "analysis loop " + state.String(),
		}
	}
}

func (h *Handler) checkInference(ctx context.Context) ComponentStatus {
	start := time.Now()
	if h.engine == nil {
		return ComponentStatus{
			Status:    StatusHealthy,
			LatencyMs: time.Since(start).Milliseconds(),
		}
	}

	if !h.engine.IsConnected() {
		return ComponentStatus{
			Status:    StatusDegraded,
			LatencyMs: time.Since(start).Milliseconds(),
			Error:     "sidecar not connected: " + h.engine.Address(),
		}
	}

	return ComponentStatus{
		Status:    StatusHealthy,
		LatencyMs: time.Since(start).Milliseconds(),
	}
}

func (h *Handler) checkRedis(ctx context.Context) ComponentStatus {
	start := time.Now()
	if err := h.redis.Ping(ctx).Err(); err != nil {
		return ComponentStatus{
			Status:    StatusUnhealthy,
			LatencyMs: time.Since(start).Milliseconds(),
			Error:     "ping failed",
		}
	}

	return ComponentStatus{
		Status:    StatusHealthy,
		LatencyMs: time.Since(start).Milliseconds(),
	}
}

func (h *Handler) computeOverallStatus(components map[string]ComponentStatus) Status {
	criticalComponents := []string{"analysis"}

	for _, name := range criticalComponents {
		if status, ok := components[name]; ok && status.Status == StatusUnhealthy {
			return StatusUnhealthy
		}
	}

	hasUnhealthy := false
	hasDegraded := false
	for _, status := range components {
		if status.Status == StatusUnhealthy {
			hasUnhealthy = true
		}
		if status.Status == StatusDegraded {
			hasDegraded = true
		}
	}

	if hasUnhealthy || hasDegraded {
		return StatusDegraded
	}

	return StatusHealthy
}
