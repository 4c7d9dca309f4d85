// Package store holds the errors shared by every repository adapter.
package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a lookup by key matches no row.
	ErrNotFound = errors.New("store: not found")
	// ErrWriteFailed wraps any insert/update failure. The write is single-row,
	// so nothing was committed when it is returned.
	ErrWriteFailed = errors.New("store: write failed")
)

// WriteFailed tags err as a write failure for op, unless it already is one.
func WriteFailed(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrWriteFailed) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrWriteFailed, op, err)
}
