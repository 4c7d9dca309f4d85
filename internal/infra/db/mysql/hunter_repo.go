package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/playground/bountyhub/internal/domain/hunter"
	"github.com/playground/bountyhub/internal/domain/store"
)

type HunterRepository struct {
	db *sql.DB
}

func NewHunterRepository(db *sql.DB) *HunterRepository {
	return &HunterRepository{db: db}
}

func (r *HunterRepository) Insert(ctx context.Context, p *hunter.Profile) error {
	const q = `
INSERT INTO hunter_profiles
(id, user_id, full_name, title, bio, years_experience, expertise_areas,
 linkedin_url, github_url, portfolio_url, resume_path, past_projects, certifications,
 status, created_at, updated_at)
VALUES (?,?,?,?,?,?,?,
        ?,?,?,?,?,?,
        ?,?,?)`
	areas, err := encodeAreas(p.ExpertiseAreas)
	if err != nil {
		return fmt.Errorf("encode expertise areas: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q,
		p.ID, p.UserID, p.FullName, p.Title, p.Bio, p.YearsExperience, areas,
		nullIfEmpty(p.LinkedInURL), nullIfEmpty(p.GitHubURL), nullIfEmpty(p.PortfolioURL),
		nullIfEmpty(p.ResumePath), nullIfEmpty(p.PastProjects), nullIfEmpty(p.Certifications),
		p.Status, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

const hunterColumns = `
id, user_id, full_name, title, bio, years_experience, expertise_areas,
COALESCE(linkedin_url,''), COALESCE(github_url,''), COALESCE(portfolio_url,''),
COALESCE(resume_path,''), COALESCE(past_projects,''), COALESCE(certifications,''),
status, ai_score, ai_assessment, created_at, updated_at`

func scanProfile(row rowScanner) (*hunter.Profile, error) {
	var (
		p      hunter.Profile
		areas  []byte
		status string
	)
	err := row.Scan(
		&p.ID, &p.UserID, &p.FullName, &p.Title, &p.Bio, &p.YearsExperience, &areas,
		&p.LinkedInURL, &p.GitHubURL, &p.PortfolioURL,
		&p.ResumePath, &p.PastProjects, &p.Certifications,
		&status, &p.AIScore, &p.AIAssessment, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Status, err = hunter.ParseStatus(status); err != nil {
		return nil, err
	}
	if p.ExpertiseAreas, err = decodeAreas(areas); err != nil {
		return nil, fmt.Errorf("decode expertise areas: %w", err)
	}
	return &p, nil
}

func (r *HunterRepository) GetByUser(ctx context.Context, userID string) (*hunter.Profile, error) {
	q := `SELECT ` + hunterColumns + ` FROM hunter_profiles WHERE user_id = ? LIMIT 1`
	p, err := scanProfile(r.db.QueryRowContext(ctx, q, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return p, err
}

// UpdateScreening cuma nulis kolom ai_*, status tidak disentuh.
// MySQL reports 0 affected rows when values are unchanged, so existence
// is checked separately.
func (r *HunterRepository) UpdateScreening(ctx context.Context, userID string, score int, assessment string) error {
	const q = `UPDATE hunter_profiles SET ai_score = ?, ai_assessment = ?, updated_at = ? WHERE user_id = ?`
	res, err := r.db.ExecContext(ctx, q, score, assessment, time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	var one int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM hunter_profiles WHERE user_id = ? LIMIT 1`, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func (r *HunterRepository) ListUnscreened(ctx context.Context, olderThan time.Time, limit int) ([]*hunter.Profile, error) {
	limit = clampLimit(limit, 50, 500)
	q := `SELECT ` + hunterColumns + ` FROM hunter_profiles
WHERE status = ? AND ai_score IS NULL AND created_at < ?
ORDER BY created_at ASC
LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, hunter.StatusPending, olderThan, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*hunter.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
