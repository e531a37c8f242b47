package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrLinkExpired is returned for a link code that was already used or whose
// lifetime has passed.
var ErrLinkExpired = errors.New("link code used or expired")

type TelegramLink struct {
	ID        string
	UserID    string
	Code      string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

type TelegramLinkRepository interface {
	Create(ctx context.Context, userID, code string, ttl time.Duration) (*TelegramLink, error)
	UseByCode(ctx context.Context, code string) (*TelegramLink, error)
}

type telegramLinkRepository struct{ db *sql.DB }

func NewTelegramLinkRepository(db *sql.DB) TelegramLinkRepository {
	return &telegramLinkRepository{db: db}
}

func (r *telegramLinkRepository) Create(ctx context.Context, userID, code string, ttl time.Duration) (*TelegramLink, error) {
	l := &TelegramLink{
		ID:        newID(),
		UserID:    userID,
		Code:      code,
		CreatedAt: now(),
	}
	l.ExpiresAt = l.CreatedAt.Add(ttl)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO telegram_links (id, user_id, code, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, FALSE, $5)
	`, l.ID, l.UserID, l.Code, l.ExpiresAt, l.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create telegram link: %w", err)
	}
	return l, nil
}

// UseByCode marks the code as used. The row is locked so a code is consumed
// at most once.
func (r *telegramLinkRepository) UseByCode(ctx context.Context, code string) (*TelegramLink, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var l TelegramLink
	err = tx.QueryRowContext(ctx, `
		SELECT id, user_id, code, expires_at, used, created_at
		FROM telegram_links
		WHERE code=$1
		FOR UPDATE
	`, code).Scan(&l.ID, &l.UserID, &l.Code, &l.ExpiresAt, &l.Used, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("telegram link: %w", ErrNotFound)
		}
		return nil, err
	}

	if l.Used || now().After(l.ExpiresAt) {
		return nil, ErrLinkExpired
	}
	if _, err := tx.ExecContext(ctx, `UPDATE telegram_links SET used=TRUE WHERE id=$1`, l.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	l.Used = true
	return &l, nil
}
