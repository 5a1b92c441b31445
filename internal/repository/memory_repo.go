package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bericyb/dislinkedIn/internal/model"
)

// MemoryDislikeRepo keeps counter rows in memory. It backs counterd when no
// DATABASE_URL is configured and the handler tests.
type MemoryDislikeRepo struct {
	mu   sync.Mutex
	rows map[string]model.DislikeRecord
}

func NewMemoryDislikeRepo() *MemoryDislikeRepo {
	return &MemoryDislikeRepo{rows: make(map[string]model.DislikeRecord)}
}

func (r *MemoryDislikeRepo) Get(ctx context.Context, postURN string) (*model.DislikeRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.rows[postURN]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (r *MemoryDislikeRepo) List(ctx context.Context) ([]model.DislikeRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	urns := make([]string, 0, len(r.rows))
	for urn := range r.rows {
		urns = append(urns, urn)
	}
	sort.Strings(urns)

	records := make([]model.DislikeRecord, 0, len(urns))
	for _, urn := range urns {
		records = append(records, r.rows[urn])
	}
	return records, nil
}

func (r *MemoryDislikeRepo) Insert(ctx context.Context, postURN string, count int) (*model.DislikeRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rows[postURN]; exists {
		return nil, ErrConflict
	}

	now := time.Now().UTC()
	rec := model.DislikeRecord{
		PostURN:      postURN,
		DislikeCount: count,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.rows[postURN] = rec
	return &rec, nil
}

func (r *MemoryDislikeRepo) UpdateCount(ctx context.Context, postURN string, count int, updatedAt time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.rows[postURN]
	if !ok {
		return 0, nil
	}
	rec.DislikeCount = count
	rec.UpdatedAt = updatedAt
	r.rows[postURN] = rec
	return 1, nil
}

func (r *MemoryDislikeRepo) Delete(ctx context.Context, postURN string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rows, postURN)
	return nil
}
