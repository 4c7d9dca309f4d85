package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	appanalysis "github.com/playground/bountyhub/internal/application/analysis"
	appbounties "github.com/playground/bountyhub/internal/application/bounties"
	apphunters "github.com/playground/bountyhub/internal/application/hunters"
	"github.com/playground/bountyhub/internal/domain/bounty"
	"github.com/playground/bountyhub/internal/domain/hunter"
	"github.com/playground/bountyhub/internal/domain/store"
	"github.com/playground/bountyhub/internal/middleware"
)

const (
	maxJSONBody       = 1 << 20
	defaultMaxUpload  = 10 << 20
	multipartInMemory = 2 << 20
)

// Deps wires the router. RateLimiter nil disables rate limiting; an empty
// APIKeys map disables auth.
type Deps struct {
	Analysis *appanalysis.Service
	Bounties *appbounties.Service
	Hunters  *apphunters.Service

	Logger         *zap.Logger
	APIKeys        map[string]string
	RateLimiter    *middleware.RateLimiter
	CORSOrigins    []string
	Readiness      *middleware.Readiness
	MaxUploadBytes int64
}

type Router struct {
	analysis  *appanalysis.Service
	bounties  *appbounties.Service
	hunters   *apphunters.Service
	log       *zap.Logger
	maxUpload int64
}

func NewRouter(d Deps) http.Handler {
	r := &Router{
		analysis:  d.Analysis,
		bounties:  d.Bounties,
		hunters:   d.Hunters,
		log:       d.Logger,
		maxUpload: d.MaxUploadBytes,
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	if r.maxUpload <= 0 {
		r.maxUpload = defaultMaxUpload
	}
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	mux := chi.NewRouter()
	mux.Use(chimw.RealIP)
	mux.Use(chimw.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Client-Info", "Apikey"},
		MaxAge:         300,
	}))
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.LoggingMiddleware(r.log))
	mux.Use(middleware.APIKeyAuth(d.APIKeys))
	if d.RateLimiter != nil {
		mux.Use(middleware.RateLimitMiddleware(d.RateLimiter))
	}

	ready := d.Readiness
	if ready == nil {
		ready = middleware.NewReadiness(0)
	}
	mux.Get("/health", ready.HealthHandler)
	mux.Get("/healthz/ready", ready.ReadyHandler)
	mux.Get("/healthz/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Post("/analyze-bounty", r.wrap(r.handleAnalyze))
	mux.Post("/screen-hunter", r.wrap(r.handleScreen))

	mux.Route("/bounties", func(rt chi.Router) {
		rt.Post("/", r.wrap(r.handlePublish))
		rt.Get("/", r.wrap(r.handleListBounties))
		rt.Get("/{id}", r.wrap(r.handleGetBounty))
	})
	mux.Route("/hunter-profiles", func(rt chi.Router) {
		rt.Post("/", r.wrap(r.handleApply))
		rt.Get("/{userId}", r.wrap(r.handleGetProfile))
		rt.Get("/{userId}/screening-failures", r.wrap(r.handleScreeningFailures))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// httpError carries an explicit status and optional extra body fields.
type httpError struct {
	status int
	msg    string
	extra  map[string]any
	cause  error
}

func (e *httpError) Error() string { return e.msg }
func (e *httpError) Unwrap() error { return e.cause }

func badRequest(format string, args ...any) error {
	return &httpError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		var he *httpError
		switch {
		case errors.As(err, &he):
			body := map[string]any{"error": he.msg}
			for k, v := range he.extra {
				body[k] = v
			}
			writeJSON(w, he.status, body)
		case errors.Is(err, bounty.ErrInvalidAnalysis),
			errors.Is(err, bounty.ErrInvalidDraft),
			errors.Is(err, hunter.ErrInvalidProfile):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, hunter.ErrProfileNotFound), errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "not found")
		default:
			r.log.Error("request failed", zap.String("path", req.URL.Path), zap.Error(err))
			writeError(w, http.StatusInternalServerError, err.Error())
		}
	}
}

// decodeJSON reads a bounded JSON body into v
func decodeJSON(w http.ResponseWriter, req *http.Request, v any) error {
	req.Body = http.MaxBytesReader(w, req.Body, maxJSONBody)
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("request body is empty")
		}
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return &httpError{status: http.StatusRequestEntityTooLarge, msg: "request body too large"}
		}
		return badRequest("invalid JSON body: %v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
