package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics stores application metrics
type Metrics struct {
	RequestsTotal      uint64
	RequestsInProgress uint64
	RequestsSuccess    uint64
	RequestsFailed     uint64

	AnalysesTotal           uint64
	AnalysisRateLimited     uint64
	AnalysisQuotaExhausted  uint64
	AnalysisMalformed       uint64
	AnalysisUpstreamFailure uint64

	PublishesTotal   uint64
	PublishesBlocked uint64

	ScreeningsTotal           uint64
	ScreeningFailures         uint64
	ScreeningFailuresTerminal uint64

	StartTime time.Time
}

var globalMetrics = &Metrics{
	StartTime: time.Now(),
}

// IncrementRequests increments total request counter
func IncrementRequests() {
	atomic.AddUint64(&globalMetrics.RequestsTotal, 1)
}

// IncrementInProgress increments in-progress request counter
func IncrementInProgress() {
	atomic.AddUint64(&globalMetrics.RequestsInProgress, 1)
}

// DecrementInProgress decrements in-progress request counter
func DecrementInProgress() {
	atomic.AddUint64(&globalMetrics.RequestsInProgress, ^uint64(0))
}

// IncrementSuccess increments successful request counter
func IncrementSuccess() {
	atomic.AddUint64(&globalMetrics.RequestsSuccess, 1)
}

// IncrementFailed increments failed request counter
func IncrementFailed() {
	atomic.AddUint64(&globalMetrics.RequestsFailed, 1)
}

// IncrementAnalyses counts a successful analysis
func IncrementAnalyses() {
	atomic.AddUint64(&globalMetrics.AnalysesTotal, 1)
}

// IncrementAnalysisFailure counts a failed analysis by reason code
// (rate_limited, quota_exhausted, malformed_response, upstream_failure).
func IncrementAnalysisFailure(reason string) {
	switch reason {
	case "rate_limited":
		atomic.AddUint64(&globalMetrics.AnalysisRateLimited, 1)
	case "quota_exhausted":
		atomic.AddUint64(&globalMetrics.AnalysisQuotaExhausted, 1)
	case "malformed_response":
		atomic.AddUint64(&globalMetrics.AnalysisMalformed, 1)
	default:
		atomic.AddUint64(&globalMetrics.AnalysisUpstreamFailure, 1)
	}
}

// IncrementPublishes counts a stored bounty
func IncrementPublishes() {
	atomic.AddUint64(&globalMetrics.PublishesTotal, 1)
}

// IncrementPublishesBlocked counts a publish refused by the gate
func IncrementPublishesBlocked() {
	atomic.AddUint64(&globalMetrics.PublishesBlocked, 1)
}

// ScreeningObserver feeds screening outcomes into the global metrics.
type ScreeningObserver struct{}

func (ScreeningObserver) Screened(int) {
	atomic.AddUint64(&globalMetrics.ScreeningsTotal, 1)
}

func (ScreeningObserver) ScreeningFailed(terminal bool) {
	atomic.AddUint64(&globalMetrics.ScreeningFailures, 1)
	if terminal {
		atomic.AddUint64(&globalMetrics.ScreeningFailuresTerminal, 1)
	}
}

// GetMetrics returns current metrics
func GetMetrics() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"requests_total":       atomic.LoadUint64(&globalMetrics.RequestsTotal),
		"requests_in_progress": atomic.LoadUint64(&globalMetrics.RequestsInProgress),
		"requests_success":     atomic.LoadUint64(&globalMetrics.RequestsSuccess),
		"requests_failed":      atomic.LoadUint64(&globalMetrics.RequestsFailed),
		"analyses_total":       atomic.LoadUint64(&globalMetrics.AnalysesTotal),
		"analysis_failures": map[string]uint64{
			"rate_limited":       atomic.LoadUint64(&globalMetrics.AnalysisRateLimited),
			"quota_exhausted":    atomic.LoadUint64(&globalMetrics.AnalysisQuotaExhausted),
			"malformed_response": atomic.LoadUint64(&globalMetrics.AnalysisMalformed),
			"upstream_failure":   atomic.LoadUint64(&globalMetrics.AnalysisUpstreamFailure),
		},
		"publishes_total":             atomic.LoadUint64(&globalMetrics.PublishesTotal),
		"publishes_blocked":           atomic.LoadUint64(&globalMetrics.PublishesBlocked),
		"screenings_total":            atomic.LoadUint64(&globalMetrics.ScreeningsTotal),
		"screening_failures":          atomic.LoadUint64(&globalMetrics.ScreeningFailures),
		"screening_failures_terminal": atomic.LoadUint64(&globalMetrics.ScreeningFailuresTerminal),
		"uptime_seconds":              time.Since(globalMetrics.StartTime).Seconds(),
		"memory": map[string]interface{}{
			"alloc_bytes":       m.Alloc,
			"total_alloc_bytes": m.TotalAlloc,
			"sys_bytes":         m.Sys,
			"num_gc":            m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		IncrementRequests()
		IncrementInProgress()
		defer DecrementInProgress()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			IncrementSuccess()
		} else {
			IncrementFailed()
		}
	})
}

// MetricsHandler returns metrics as JSON
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(GetMetrics())
}
