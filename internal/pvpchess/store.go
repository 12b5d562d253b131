package pvpchess

import (
	"context"
	"errors"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
	// ErrStaleRecord rejects an Update based on an out-of-date read.
	ErrStaleRecord = errors.New("game record changed since read")
)

// GameStore persists game records. Update replaces the stored record only
// when it exists and its Version still equals r.Version; on success the
// stored and the caller's Version are both incremented.
type GameStore interface {
	Get(ctx context.Context, id string) (*Record, error)
	Update(ctx context.Context, r *Record) error
	Create(ctx context.Context, r *Record) error
}
