package ai

import (
	"errors"
	"net/http"
)

// Analysis failure reasons. Callers match them with errors.Is.
var (
	ErrRateLimited       = errors.New("ai rate limited")
	ErrQuotaExhausted    = errors.New("ai quota exhausted")
	ErrUpstreamFailure   = errors.New("ai upstream failure")
	ErrMalformedResponse = errors.New("ai malformed response")
)

// AnalysisError carries the classified reason plus the underlying cause.
type AnalysisError struct {
	Reason error
	Err    error
}

func (e *AnalysisError) Error() string {
	if e.Err == nil {
		return e.Reason.Error()
	}
	return e.Reason.Error() + ": " + e.Err.Error()
}

func (e *AnalysisError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Reason}
	}
	return []error{e.Reason, e.Err}
}

// Malformed wraps a parse/shape failure of the backend reply.
func Malformed(err error) error {
	return &AnalysisError{Reason: ErrMalformedResponse, Err: err}
}

// Classify maps an upstream HTTP status (0 when no response was received)
// to one of the reasons above. Timeouts and transport errors are upstream failures.
func Classify(status int, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &AnalysisError{Reason: ErrRateLimited, Err: err}
	case status == http.StatusPaymentRequired:
		return &AnalysisError{Reason: ErrQuotaExhausted, Err: err}
	default:
		return &AnalysisError{Reason: ErrUpstreamFailure, Err: err}
	}
}

// ReasonCode returns the wire name of the failure reason, or "" for
// errors that did not come out of the analyzer.
func ReasonCode(err error) string {
	switch {
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrQuotaExhausted):
		return "quota_exhausted"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, ErrUpstreamFailure):
		return "upstream_failure"
	}
	return ""
}
