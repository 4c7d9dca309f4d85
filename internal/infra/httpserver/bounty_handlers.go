package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	appbounties "github.com/playground/bountyhub/internal/application/bounties"
	"github.com/playground/bountyhub/internal/domain/ai"
	"github.com/playground/bountyhub/internal/domain/bounty"
	"github.com/playground/bountyhub/internal/middleware"
)

// user-facing messages per analysis failure reason
var analysisMessages = map[string]string{
	"rate_limited":       "Rate limit exceeded. Please try again in a moment.",
	"quota_exhausted":    "AI credits exhausted. Please add credits.",
	"malformed_response": "The AI returned an unusable analysis. Please try again.",
	"upstream_failure":   "AI gateway error. Please try again.",
}

// POST /analyze-bounty
// Body: {"bountyData": {...}}
// Selain 429/402, semua gagal jadi 500 {error}, termasuk body yang rusak.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		BountyData *bounty.Draft `json:"bountyData"`
	}
	if err := decodeJSON(w, req, &body); err != nil {
		var he *httpError
		if errors.As(err, &he) {
			return &httpError{status: http.StatusInternalServerError, msg: he.msg, cause: err}
		}
		return err
	}
	if body.BountyData == nil {
		return &httpError{status: http.StatusInternalServerError, msg: "bountyData is required"}
	}

	result, err := r.analysis.Analyze(req.Context(), *body.BountyData)
	if err != nil {
		reason := ai.ReasonCode(err)
		middleware.IncrementAnalysisFailure(reason)
		r.log.Warn("bounty analysis failed", zap.String("reason", reason), zap.Error(err))

		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, ai.ErrRateLimited):
			status = http.StatusTooManyRequests
		case errors.Is(err, ai.ErrQuotaExhausted):
			status = http.StatusPaymentRequired
		}
		msg, ok := analysisMessages[reason]
		if !ok {
			msg = err.Error()
		}
		return &httpError{status: status, msg: msg, extra: map[string]any{"reason": reason}, cause: err}
	}

	middleware.IncrementAnalyses()
	writeJSON(w, http.StatusOK, map[string]any{"analysis": result})
	return nil
}

// POST /bounties
// Body: {"userId": "...", "bountyData": {...}, "analysis": {...}}
func (r *Router) handlePublish(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		UserID     string          `json:"userId"`
		BountyData *bounty.Draft   `json:"bountyData"`
		Analysis   json.RawMessage `json:"analysis"`
	}
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}
	if err := middleware.ValidateUserID(body.UserID); err != nil {
		return badRequest("%v", err)
	}
	if body.BountyData == nil {
		return badRequest("bountyData is required")
	}
	if len(body.Analysis) == 0 {
		return badRequest("analysis is required")
	}
	// strict parse: unknown fields, missing fields and out of range scores fail
	analysis, err := bounty.ParseAnalysis(body.Analysis)
	if err != nil {
		return err
	}

	b, err := r.bounties.Publish(req.Context(), appbounties.PublishCommand{
		OwnerID:  body.UserID,
		Draft:    *body.BountyData,
		Analysis: analysis,
	})
	if errors.Is(err, bounty.ErrPublishBlocked) {
		middleware.IncrementPublishesBlocked()
		critical := analysis.CriticalMissing()
		if critical == nil {
			critical = []bounty.MissingInfoItem{}
		}
		return &httpError{
			status: http.StatusUnprocessableEntity,
			msg:    "bounty is not ready to publish; revise the draft and analyze again",
			extra: map[string]any{
				"verdict":         analysis.Verdict,
				"criticalMissing": critical,
			},
			cause: err,
		}
	}
	if err != nil {
		return err
	}

	middleware.IncrementPublishes()
	writeJSON(w, http.StatusCreated, map[string]any{"bounty": b})
	return nil
}

// GET /bounties?limit=20
func (r *Router) handleListBounties(w http.ResponseWriter, req *http.Request) error {
	limit := middleware.ParseLimit(req.URL.Query().Get("limit"))
	list, err := r.bounties.ListOpen(req.Context(), limit)
	if err != nil {
		return err
	}
	if list == nil {
		list = []*bounty.Bounty{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"bounties": list})
	return nil
}

// GET /bounties/{id}
func (r *Router) handleGetBounty(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateBountyID(id); err != nil {
		return badRequest("%v", err)
	}
	b, err := r.bounties.Get(req.Context(), bounty.ID(id))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"bounty": b})
	return nil
}
