package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/playground/bountyhub/internal/domain/hunter"
)

type FailureRepository struct {
	db *sql.DB
}

func NewFailureRepository(db *sql.DB) *FailureRepository { return &FailureRepository{db: db} }

func (r *FailureRepository) Save(ctx context.Context, f *hunter.ScreeningFailure) error {
	const q = `
INSERT INTO screening_failures
  (user_id, attempt, phase, message, terminal, created_at)
VALUES (?,?,?,?,?,?)
`
	msg := f.Message
	if strings.TrimSpace(msg) == "" {
		msg = "-"
	}
	created := f.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, q, f.UserID, f.Attempt, f.Phase, msg, f.Terminal, created)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		f.ID = id
	}
	return nil
}

func (r *FailureRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*hunter.ScreeningFailure, error) {
	limit = clampLimit(limit, 20, 100)
	const q = `
SELECT id, user_id, attempt, phase, message, terminal, created_at
FROM screening_failures
WHERE user_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*hunter.ScreeningFailure{}
	for rows.Next() {
		var f hunter.ScreeningFailure
		if err := rows.Scan(&f.ID, &f.UserID, &f.Attempt, &f.Phase, &f.Message, &f.Terminal, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}
