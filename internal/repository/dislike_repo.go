package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bericyb/dislinkedIn/internal/model"
)

var (
	// ErrConflict reports a uniqueness violation on post_urn.
	ErrConflict = errors.New("post_urn already exists")
	// ErrNotFound reports an absent row. Absence is a normal zero-count
	// state for callers, not a failure.
	ErrNotFound = errors.New("dislike record not found")
)

// RowStore is the persistence contract behind the counter table API. Backed
// by PostgreSQL in production and by an in-memory map when no database is
// configured.
type RowStore interface {
	// Get returns the row for a URN or ErrNotFound.
	Get(ctx context.Context, postURN string) (*model.DislikeRecord, error)

	// List returns every row ordered by URN.
	List(ctx context.Context) ([]model.DislikeRecord, error)

	// Insert creates a row. ErrConflict when the URN already has one.
	Insert(ctx context.Context, postURN string, count int) (*model.DislikeRecord, error)

	// UpdateCount overwrites the count and updated_at for a URN, returning
	// the number of rows affected (0 when the URN has no row).
	UpdateCount(ctx context.Context, postURN string, count int, updatedAt time.Time) (int64, error)

	// Delete removes the row for a URN. Deleting an absent row is a no-op.
	Delete(ctx context.Context, postURN string) error
}
