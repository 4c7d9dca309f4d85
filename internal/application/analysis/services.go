package analysis

import (
	"context"

	"github.com/playground/bountyhub/internal/domain/ai"
	"github.com/playground/bountyhub/internal/domain/bounty"
)

// Service runs the bounty analyzer. It holds no state and writes nothing,
// so callers may re-run it freely; each call is an independent opinion.
type Service struct {
	client ai.Client
}

func NewService(client ai.Client) *Service {
	return &Service{client: client}
}

// Analyze sends the draft to the backend and validates the reply. Backend
// failures pass through with their classified reason; a reply that does not
// match the AnalysisResult schema is ai.ErrMalformedResponse. No retry, no
// default verdict.
func (s *Service) Analyze(ctx context.Context, draft bounty.Draft) (bounty.AnalysisResult, error) {
	raw, err := s.client.AnalyzeBounty(ctx, draft)
	if err != nil {
		return bounty.AnalysisResult{}, err
	}
	result, err := bounty.ParseAnalysis(raw)
	if err != nil {
		return bounty.AnalysisResult{}, ai.Malformed(err)
	}
	return result, nil
}
