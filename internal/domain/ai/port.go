package ai

import (
	"context"

	"github.com/playground/bountyhub/internal/domain/bounty"
)

// Client sends one draft to the text-generation backend and returns the raw
// structured arguments it produced. Implementations classify failures with
// Classify/Malformed and never retry.
type Client interface {
	AnalyzeBounty(ctx context.Context, draft bounty.Draft) ([]byte, error)
}
