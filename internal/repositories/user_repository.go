package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"crmmvp/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.UserRef, error)
	UpdateRole(ctx context.Context, id, role string) error

	// Telegram helpers
	UpdateTelegramLink(ctx context.Context, userID string, chatID int64) error
	GetByChatID(ctx context.Context, chatID int64) (*models.User, error)
}

type userRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `u.id, u.name, u.email, u.email_verified, u.image, u.role, u.password_hash,
       u.telegram_chat_id, u.created_at, u.updated_at`

func scanUser(s rowScanner) (*models.User, error) {
	u := &models.User{}
	err := s.Scan(
		&u.ID, &u.Name, &u.Email, &u.EmailVerified, &u.Image, &u.Role, &u.PasswordHash,
		&u.TelegramChatID, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = newID()
	}
	ts := now()
	user.CreatedAt, user.UpdatedAt = ts, ts
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	const q = `
		INSERT INTO users (id, name, email, email_verified, image, role, password_hash, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	if _, err := r.db.ExecContext(ctx, q,
		user.ID, user.Name, user.Email, user.EmailVerified, user.Image, user.Role, user.PasswordHash,
		user.CreatedAt, user.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1`
	return r.getOne(ctx, q, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users u WHERE u.email = $1`
	return r.getOne(ctx, q, strings.ToLower(strings.TrimSpace(email)))
}

func (r *userRepository) GetByChatID(ctx context.Context, chatID int64) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users u WHERE u.telegram_chat_id = $1`
	return r.getOne(ctx, q, chatID)
}

func (r *userRepository) getOne(ctx context.Context, q string, arg any) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *userRepository) List(ctx context.Context) ([]models.UserRef, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, image FROM users ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	res := []models.UserRef{}
	for rows.Next() {
		var u models.UserRef
		if err := rows.Scan(&u.ID, &u.Name, &u.Image); err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}

func (r *userRepository) UpdateRole(ctx context.Context, id, role string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET role=$1, updated_at=$2 WHERE id=$3`, role, now(), id)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	return expectAffected(res, "update role")
}

func (r *userRepository) UpdateTelegramLink(ctx context.Context, userID string, chatID int64) error {
	// a chat belongs to one account at a time
	if _, err := r.db.ExecContext(ctx,
		`UPDATE users SET telegram_chat_id=NULL WHERE telegram_chat_id=$1 AND id<>$2`, chatID, userID,
	); err != nil {
		return fmt.Errorf("unlink telegram chat: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET telegram_chat_id=$1, updated_at=$2 WHERE id=$3`, chatID, now(), userID,
	)
	if err != nil {
		return fmt.Errorf("link telegram chat: %w", err)
	}
	return expectAffected(res, "link telegram chat")
}

func findUserRefs(ctx context.Context, db DBTX, ids []string) (map[string]models.UserRef, error) {
	out := map[string]models.UserRef{}
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := db.QueryContext(ctx, `SELECT id, name, image FROM users WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var u models.UserRef
		if err := rows.Scan(&u.ID, &u.Name, &u.Image); err != nil {
			return nil, err
		}
		out[u.ID] = u
	}
	return out, rows.Err()
}
