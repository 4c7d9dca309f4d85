package bounty

import "context"

// Repository port (persistence for published bounties)
type Repository interface {
	// Insert writes the row in a single statement; on error nothing is stored.
	Insert(ctx context.Context, b *Bounty) error
	Get(ctx context.Context, id ID) (*Bounty, error)
	ListOpen(ctx context.Context, limit int) ([]*Bounty, error)
}
