package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/playground/bountyhub/internal/domain/hunter"
	"github.com/playground/bountyhub/internal/domain/store"
)

type HunterRepository struct{ db *sql.DB }

func NewHunterRepository(db *sql.DB) *HunterRepository { return &HunterRepository{db: db} }

func (r *HunterRepository) Insert(ctx context.Context, p *hunter.Profile) error {
	const q = `
INSERT INTO hunter_profiles
(id, user_id, full_name, title, bio, years_experience, expertise_areas,
 linkedin_url, github_url, portfolio_url, resume_path, past_projects, certifications,
 status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,
        $8,$9,$10,$11,$12,$13,
        $14,$15,$16);`
	_, err := r.db.ExecContext(ctx, q,
		p.ID, p.UserID, p.FullName, p.Title, p.Bio, p.YearsExperience, pq.Array(p.ExpertiseAreas),
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
		areas  pq.StringArray
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
	p.ExpertiseAreas = []string(areas)
	if p.ExpertiseAreas == nil {
		p.ExpertiseAreas = []string{}
	}
	return &p, nil
}

func (r *HunterRepository) GetByUser(ctx context.Context, userID string) (*hunter.Profile, error) {
	q := `SELECT ` + hunterColumns + ` FROM hunter_profiles WHERE user_id=$1 LIMIT 1;`
	p, err := scanProfile(r.db.QueryRowContext(ctx, q, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return p, err
}

// UpdateScreening cuma nulis kolom ai_*, status tidak disentuh
func (r *HunterRepository) UpdateScreening(ctx context.Context, userID string, score int, assessment string) error {
	const q = `UPDATE hunter_profiles SET ai_score=$1, ai_assessment=$2, updated_at=now() WHERE user_id=$3;`
	res, err := r.db.ExecContext(ctx, q, score, assessment, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *HunterRepository) ListUnscreened(ctx context.Context, olderThan time.Time, limit int) ([]*hunter.Profile, error) {
	limit = clampLimit(limit, 50, 500)
	q := `SELECT ` + hunterColumns + ` FROM hunter_profiles
WHERE status=$1 AND ai_score IS NULL AND created_at < $2
ORDER BY created_at ASC
LIMIT $3;`
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
