package hunter

import (
	"context"
	"io"
	"time"
)

// Repository port for hunter profiles
type Repository interface {
	Insert(ctx context.Context, p *Profile) error
	GetByUser(ctx context.Context, userID string) (*Profile, error)
	// UpdateScreening sets ai_score and ai_assessment only.
	UpdateScreening(ctx context.Context, userID string, score int, assessment string) error
	// ListUnscreened returns pending profiles with no ai_score created before olderThan.
	ListUnscreened(ctx context.Context, olderThan time.Time, limit int) ([]*Profile, error)
}

// ResumeStore port for resume uploads
type ResumeStore interface {
	PutResume(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// FailureRepository persists failed screening attempts
type FailureRepository interface {
	Save(ctx context.Context, f *ScreeningFailure) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*ScreeningFailure, error)
}
