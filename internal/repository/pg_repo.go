package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bericyb/dislinkedIn/internal/model"
)

const uniqueViolation = "23505"

// PGDislikeRepo stores counter rows in PostgreSQL.
type PGDislikeRepo struct {
	pool *pgxpool.Pool
}

func NewPGDislikeRepo(pool *pgxpool.Pool) *PGDislikeRepo {
	return &PGDislikeRepo{pool: pool}
}

// EnsureSchema creates the post_dislikes table when it does not exist yet.
// Called once at startup so a fresh self-hosted database works immediately.
func (r *PGDislikeRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS post_dislikes (
			post_urn      VARCHAR(128) PRIMARY KEY,
			dislike_count INTEGER NOT NULL DEFAULT 1 CHECK (dislike_count >= 0),
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	return err
}

func (r *PGDislikeRepo) Get(ctx context.Context, postURN string) (*model.DislikeRecord, error) {
	var rec model.DislikeRecord
	err := r.pool.QueryRow(ctx, `
		SELECT post_urn, dislike_count, created_at, updated_at
		FROM post_dislikes WHERE post_urn = $1`,
		postURN).Scan(&rec.PostURN, &rec.DislikeCount, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *PGDislikeRepo) List(ctx context.Context) ([]model.DislikeRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT post_urn, dislike_count, created_at, updated_at
		FROM post_dislikes ORDER BY post_urn`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.DislikeRecord
	for rows.Next() {
		var rec model.DislikeRecord
		if err := rows.Scan(&rec.PostURN, &rec.DislikeCount, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *PGDislikeRepo) Insert(ctx context.Context, postURN string, count int) (*model.DislikeRecord, error) {
	var rec model.DislikeRecord
	err := r.pool.QueryRow(ctx, `
		INSERT INTO post_dislikes (post_urn, dislike_count)
		VALUES ($1, $2)
		RETURNING post_urn, dislike_count, created_at, updated_at`,
		postURN, count).Scan(&rec.PostURN, &rec.DislikeCount, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrConflict
		}
		return nil, err
	}
	return &rec, nil
}

func (r *PGDislikeRepo) UpdateCount(ctx context.Context, postURN string, count int, updatedAt time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE post_dislikes SET dislike_count = $2, updated_at = $3
		WHERE post_urn = $1`,
		postURN, count, updatedAt)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PGDislikeRepo) Delete(ctx context.Context, postURN string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM post_dislikes WHERE post_urn = $1`, postURN)
	return err
}
