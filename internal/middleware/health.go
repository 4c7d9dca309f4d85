package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// HealthChecker is one dependency the service needs to take traffic.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a plain function to HealthChecker
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

// PingDB checks the bounty/hunter store
func PingDB(db *sql.DB) HealthChecker {
	return CheckerFunc(func(ctx context.Context) error { return db.PingContext(ctx) })
}

// CheckResult is the outcome of one dependency check.
type CheckResult struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

// Report is the /health body.
type Report struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

// Readiness runs the registered dependency checks (database, storage and,
// with the redis driver, the screening queue) concurrently.
type Readiness struct {
	timeout time.Duration
	names   []string
	checks  map[string]HealthChecker
}

func NewReadiness(timeout time.Duration) *Readiness {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Readiness{timeout: timeout, checks: map[string]HealthChecker{}}
}

// Add registers a check; a nil checker is ignored.
func (h *Readiness) Add(name string, c HealthChecker) *Readiness {
	if c == nil {
		return h
	}
	if _, dup := h.checks[name]; !dup {
		h.names = append(h.names, name)
		sort.Strings(h.names)
	}
	h.checks[name] = c
	return h
}

// Run executes every check with its own timeout.
func (h *Readiness) Run(ctx context.Context) Report {
	rep := Report{Status: "healthy", Timestamp: time.Now(), Checks: make(map[string]CheckResult, len(h.names))}
	var mu sync.Mutex
	var g errgroup.Group
	for _, name := range h.names {
		c := h.checks[name]
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, h.timeout)
			defer cancel()
			start := time.Now()
			err := c.Check(cctx)
			res := CheckResult{Status: "healthy", LatencyMS: time.Since(start).Milliseconds()}
			if err != nil {
				res.Status, res.Message = "unhealthy", err.Error()
			}
			mu.Lock()
			rep.Checks[name] = res
			if err != nil {
				rep.Status = "unhealthy"
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return rep
}

// HealthHandler serves the full report, 503 when anything is down.
func (h *Readiness) HealthHandler(w http.ResponseWriter, r *http.Request) {
	rep := h.Run(r.Context())
	code := http.StatusOK
	if rep.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(rep)
}

// ReadyHandler is the orchestrator probe: only status, no per-check detail.
func (h *Readiness) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	rep := h.Run(r.Context())
	code, status := http.StatusOK, "ready"
	if rep.Status != "healthy" {
		code, status = http.StatusServiceUnavailable, "not_ready"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"status": status, "timestamp": rep.Timestamp})
}

// LivenessHandler answers as long as the process serves HTTP.
func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
