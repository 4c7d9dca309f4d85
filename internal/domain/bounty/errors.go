package bounty

import "errors"

var (
	// ErrInvalidAnalysis means a result failed the AnalysisResult schema.
	ErrInvalidAnalysis = errors.New("invalid analysis result")
	// ErrPublishBlocked means the gate refused the result. The only way
	// forward is to revise the draft and analyze again.
	ErrPublishBlocked = errors.New("bounty cannot be published yet")
)

// ErrInvalidDraft means the draft lacks a field the store requires.
var ErrInvalidDraft = errors.New("invalid bounty draft")
