package store

import (
	"context"
	"errors"

	"bakeryledger/backend/internal/domain"
)

// ErrNotFound is returned by Load when nothing has been saved yet.
var ErrNotFound = errors.New("not found")

// Repository persists the ledger document as a whole. Save either stores the
// complete state or nothing.
type Repository interface {
	Load(ctx context.Context) (domain.State, error)
	Save(ctx context.Context, state domain.State) error
}
