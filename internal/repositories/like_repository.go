package repositories

import (
	"context"
	"fmt"
)

type LikeRepository interface {
	// Add records a like and reports whether a new row was written; a
	// repeated like by the same user is a no-op.
	Add(ctx context.Context, userID, feedID string) (bool, error)
	Count(ctx context.Context, feedID string) (int, error)
}

type likeRepository struct {
	db DBTX
}

func NewLikeRepository(db DBTX) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Add(ctx context.Context, userID, feedID string) (bool, error) {
	const q = `
		INSERT INTO likes (id, user_id, feed_id, created_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (user_id, feed_id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, q, newID(), userID, feedID, now())
	if err != nil {
		return false, fmt.Errorf("add like: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("add like: rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *likeRepository) Count(ctx context.Context, feedID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM likes WHERE feed_id = $1`, feedID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return n, nil
}
