package hunter

import "time"

// ScreeningFailure is one failed screening attempt.
type ScreeningFailure struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Attempt   int       `json:"attempt"`
	Phase     string    `json:"phase"` // api | worker | sweep
	Message   string    `json:"message"`
	Terminal  bool      `json:"terminal"`
	CreatedAt time.Time `json:"created_at"`
}
