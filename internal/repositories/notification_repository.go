package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"crmmvp/internal/models"
)

type NotificationRepository interface {
	Store(ctx context.Context, n *models.Notification) error
	FindByID(ctx context.Context, id string) (*models.Notification, error)
	// FindUnreadFor returns unread notifications addressed to the user or to
	// everyone, newest first, with the sender attached.
	FindUnreadFor(ctx context.Context, userID string) ([]models.Notification, error)
	Update(ctx context.Context, n *models.Notification) error
}

type notificationRepository struct {
	db DBTX
}

func NewNotificationRepository(db DBTX) NotificationRepository {
	return &notificationRepository{db: db}
}

const notificationColumns = `n.id, n.sender_id, n.recipient_id, n.message, n.type, n.read, n.created_at`

func scanNotification(s rowScanner) (*models.Notification, error) {
	n := &models.Notification{}
	if err := s.Scan(&n.ID, &n.SenderID, &n.RecipientID, &n.Message, &n.Type, &n.Read, &n.CreatedAt); err != nil {
		return nil, err
	}
	return n, nil
}

func (r *notificationRepository) Store(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = newID()
	}
	n.CreatedAt = now()
	const q = `
		INSERT INTO notifications (id, sender_id, recipient_id, message, type, read, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`
	if _, err := r.db.ExecContext(ctx, q, n.ID, n.SenderID, n.RecipientID, n.Message, n.Type, n.Read, n.CreatedAt); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	q := `SELECT ` + notificationColumns + ` FROM notifications n WHERE n.id = $1`
	n, err := scanNotification(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("notification %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("find notification: %w", err)
	}
	return n, nil
}

func (r *notificationRepository) FindUnreadFor(ctx context.Context, userID string) ([]models.Notification, error) {
	q := `SELECT ` + notificationColumns + `, u.id, u.name, u.image
		FROM notifications n
		LEFT JOIN users u ON u.id = n.sender_id
		WHERE n.read = FALSE
		  AND (n.recipient_id = $1 OR n.recipient_id IS NULL)
		ORDER BY n.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		var senderID, senderName, senderImage sql.NullString
		if err := rows.Scan(
			&n.ID, &n.SenderID, &n.RecipientID, &n.Message, &n.Type, &n.Read, &n.CreatedAt,
			&senderID, &senderName, &senderImage,
		); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		if senderID.Valid {
			ref := &models.UserRef{ID: senderID.String, Name: senderName.String}
			if senderImage.Valid {
				ref.Image = &senderImage.String
			}
			n.Sender = ref
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *notificationRepository) Update(ctx context.Context, n *models.Notification) error {
	const q = `UPDATE notifications SET message=$1, read=$2 WHERE id=$3`
	res, err := r.db.ExecContext(ctx, q, n.Message, n.Read, n.ID)
	if err != nil {
		return fmt.Errorf("update notification: %w", err)
	}
	return expectAffected(res, "update notification")
}
