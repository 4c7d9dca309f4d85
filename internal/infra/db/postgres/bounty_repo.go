package postgres

import (
	"context"
	"database/sql"
	"errors"

	domain "github.com/playground/bountyhub/internal/domain/bounty"
	"github.com/playground/bountyhub/internal/domain/store"
)

type BountyRepository struct{ db *sql.DB }

func NewBountyRepository(db *sql.DB) *BountyRepository { return &BountyRepository{db: db} }

// Insert satu statement, tidak ada partial commit
func (r *BountyRepository) Insert(ctx context.Context, b *domain.Bounty) error {
	const q = `
INSERT INTO bounties
(id, user_id, status, title, industry, problem_description, current_process,
 pain_frequency, hours_wasted, annual_cost, pain_description, desired_outcome,
 acceptance_criteria, tool_preferences, bounty_amount, payment_structure,
 urgency, deadline, additional_notes,
 ai_summary, ai_completeness_score, ai_clarity_score, ai_scopability_score,
 created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,
        $8,$9,$10,$11,$12,
        $13,$14,$15,$16,
        $17,$18,$19,
        $20,$21,$22,$23,
        $24,$25);`

	_, err := r.db.ExecContext(ctx, q,
		b.ID, b.OwnerID, b.Status, b.Title, nullIfEmpty(b.Industry), b.ProblemDescription, nullIfEmpty(b.CurrentProcess),
		nullIfEmpty(b.PainFrequency), b.HoursWasted, b.AnnualCost, nullIfEmpty(b.PainDescription), nullIfEmpty(b.DesiredOutcome),
		nullIfEmpty(b.AcceptanceCriteria), nullIfEmpty(b.ToolPreferences), b.BountyAmount, nullIfEmpty(b.PaymentStructure),
		nullIfEmpty(b.Urgency), nullIfEmpty(b.Deadline), nullIfEmpty(b.AdditionalNotes),
		b.AISummary, b.AICompletenessScore, b.AIClarityScore, b.AIScopabilityScore,
		b.CreatedAt, b.UpdatedAt,
	)
	return err
}

const bountyColumns = `
id, user_id, status, title, COALESCE(industry,''), problem_description, COALESCE(current_process,''),
COALESCE(pain_frequency,''), hours_wasted, annual_cost, COALESCE(pain_description,''), COALESCE(desired_outcome,''),
COALESCE(acceptance_criteria,''), COALESCE(tool_preferences,''), bounty_amount, COALESCE(payment_structure,''),
COALESCE(urgency,''), COALESCE(deadline,''), COALESCE(additional_notes,''),
COALESCE(ai_summary,''), COALESCE(ai_completeness_score,0), COALESCE(ai_clarity_score,0), COALESCE(ai_scopability_score,0),
created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBounty(row rowScanner) (*domain.Bounty, error) {
	var b domain.Bounty
	err := row.Scan(
		&b.ID, &b.OwnerID, &b.Status, &b.Title, &b.Industry, &b.ProblemDescription, &b.CurrentProcess,
		&b.PainFrequency, &b.HoursWasted, &b.AnnualCost, &b.PainDescription, &b.DesiredOutcome,
		&b.AcceptanceCriteria, &b.ToolPreferences, &b.BountyAmount, &b.PaymentStructure,
		&b.Urgency, &b.Deadline, &b.AdditionalNotes,
		&b.AISummary, &b.AICompletenessScore, &b.AIClarityScore, &b.AIScopabilityScore,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Get by ID
func (r *BountyRepository) Get(ctx context.Context, id domain.ID) (*domain.Bounty, error) {
	q := `SELECT ` + bountyColumns + ` FROM bounties WHERE id=$1 LIMIT 1;`
	b, err := scanBounty(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return b, err
}

// ListOpen newest first
func (r *BountyRepository) ListOpen(ctx context.Context, limit int) ([]*domain.Bounty, error) {
	limit = clampLimit(limit, 20, 100)
	q := `SELECT ` + bountyColumns + ` FROM bounties WHERE status=$1 ORDER BY created_at DESC, id DESC LIMIT $2;`
	rows, err := r.db.QueryContext(ctx, q, domain.StatusOpen, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domain.Bounty, 0, limit)
	for rows.Next() {
		b, err := scanBounty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
