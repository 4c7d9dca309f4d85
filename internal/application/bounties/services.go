package bounties

import (
	"context"
	"fmt"
	"strings"

	"github.com/playground/bountyhub/internal/application"
	domain "github.com/playground/bountyhub/internal/domain/bounty"
	"github.com/playground/bountyhub/internal/domain/store"
)

// Service implements the publish gate and bounty reads.
type Service struct {
	Repo  domain.Repository
	Clock application.Clock
	IDs   application.IDGenerator
}

// PublishCommand is a draft plus the analysis the author is publishing with.
type PublishCommand struct {
	OwnerID  string
	Draft    domain.Draft
	Analysis domain.AnalysisResult
}

// Publish re-validates the analysis, applies the gate and performs a single
// insert. On any error nothing is persisted and the caller still holds the
// untouched draft.
func (s *Service) Publish(ctx context.Context, cmd PublishCommand) (*domain.Bounty, error) {
	if strings.TrimSpace(cmd.OwnerID) == "" {
		return nil, fmt.Errorf("%w: owner id is required", domain.ErrInvalidDraft)
	}
	if err := cmd.Draft.CheckPublishable(); err != nil {
		return nil, err
	}
	if err := cmd.Analysis.Validate(); err != nil {
		return nil, err
	}
	if !domain.CanPublish(cmd.Analysis) {
		return nil, fmt.Errorf("%w: verdict %q with %d critical gap(s)",
			domain.ErrPublishBlocked, cmd.Analysis.Verdict, len(cmd.Analysis.CriticalMissing()))
	}

	b := domain.New(domain.ID(s.IDs.NewID()), cmd.OwnerID, cmd.Draft, cmd.Analysis, s.Clock.Now())
	if err := s.Repo.Insert(ctx, b); err != nil {
		return nil, store.WriteFailed("insert bounty", err)
	}
	return b, nil
}

// ListOpen ambil bounty open terbaru
func (s *Service) ListOpen(ctx context.Context, limit int) ([]*domain.Bounty, error) {
	return s.Repo.ListOpen(ctx, limit)
}

// Get ambil 1 bounty by id
func (s *Service) Get(ctx context.Context, id domain.ID) (*domain.Bounty, error) {
	return s.Repo.Get(ctx, id)
}
