package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"crmmvp/internal/models"
)

type FeedRepository interface {
	Create(ctx context.Context, feed *models.Feed) error
	Update(ctx context.Context, feed *models.Feed) error
	GetByID(ctx context.Context, id string) (*models.Feed, error)
	List(ctx context.Context, settings models.FeedListSettings) ([]models.Feed, error)
	FindByClient(ctx context.Context, clientID string) ([]models.Feed, error)
}

type feedRepository struct {
	db DBTX
}

func NewFeedRepository(db DBTX) FeedRepository {
	return &feedRepository{db: db}
}

const feedColumns = `f.id, f.type, f.status, f.action_call, f.action_email, f.action_booking, f.action_task,
       f.metadata, f.feedback, f.feedback_booking, f.client_id, f.task_id, f.created_at, f.updated_at,
       (SELECT COUNT(*) FROM likes l WHERE l.feed_id = f.id)`

func scanFeed(s rowScanner) (*models.Feed, error) {
	f := &models.Feed{}
	err := s.Scan(
		&f.ID, &f.Type, &f.Status, &f.ActionCall, &f.ActionEmail, &f.ActionBooking, &f.ActionTask,
		&f.Metadata, &f.Feedback, &f.FeedbackBooking, &f.ClientID, &f.TaskID, &f.CreatedAt, &f.UpdatedAt,
		&f.LikeCount,
	)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *feedRepository) Create(ctx context.Context, feed *models.Feed) error {
	if feed.ID == "" {
		feed.ID = newID()
	}
	ts := now()
	feed.CreatedAt, feed.UpdatedAt = ts, ts
	const q = `
		INSERT INTO feeds (
			id, type, status, action_call, action_email, action_booking, action_task,
			metadata, feedback, feedback_booking, client_id, task_id, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`
	if _, err := r.db.ExecContext(ctx, q,
		feed.ID, feed.Type, feed.Status, feed.ActionCall, feed.ActionEmail, feed.ActionBooking, feed.ActionTask,
		feed.Metadata, feed.Feedback, feed.FeedbackBooking, feed.ClientID, feed.TaskID, feed.CreatedAt, feed.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create feed: %w", err)
	}
	return nil
}

func (r *feedRepository) Update(ctx context.Context, feed *models.Feed) error {
	feed.UpdatedAt = now()
	const q = `
		UPDATE feeds SET
			type=$1, status=$2, action_call=$3, action_email=$4, action_booking=$5, action_task=$6,
			metadata=$7, feedback=$8, feedback_booking=$9, client_id=$10, task_id=$11, updated_at=$12
		WHERE id=$13`
	res, err := r.db.ExecContext(ctx, q,
		feed.Type, feed.Status, feed.ActionCall, feed.ActionEmail, feed.ActionBooking, feed.ActionTask,
		feed.Metadata, feed.Feedback, feed.FeedbackBooking, feed.ClientID, feed.TaskID, feed.UpdatedAt,
		feed.ID,
	)
	if err != nil {
		return fmt.Errorf("update feed: %w", err)
	}
	return expectAffected(res, "update feed")
}

func (r *feedRepository) GetByID(ctx context.Context, id string) (*models.Feed, error) {
	q := `SELECT ` + feedColumns + ` FROM feeds f WHERE f.id = $1`
	f, err := scanFeed(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("feed %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get feed: %w", err)
	}
	if err := r.attachClients(ctx, []*models.Feed{f}); err != nil {
		return nil, err
	}
	return f, nil
}

// List applies the feed page filters in SQL. An empty settings value lists
// everything newest first.
func (r *feedRepository) List(ctx context.Context, settings models.FeedListSettings) ([]models.Feed, error) {
	var (
		where []string
		args  []any
	)
	if settings.Type != "" {
		args = append(args, settings.Type)
		where = append(where, fmt.Sprintf("f.type = $%d", len(args)))
	}
	if settings.Status != "" {
		args = append(args, settings.Status)
		where = append(where, fmt.Sprintf("f.status = $%d", len(args)))
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + feedColumns + ` FROM feeds f`)
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	if settings.SortOrder == models.SortAsc {
		b.WriteString(" ORDER BY f.created_at ASC")
	} else {
		b.WriteString(" ORDER BY f.created_at DESC")
	}
	return r.list(ctx, b.String(), true, args...)
}

func (r *feedRepository) FindByClient(ctx context.Context, clientID string) ([]models.Feed, error) {
	q := `SELECT ` + feedColumns + ` FROM feeds f WHERE f.client_id = $1 ORDER BY f.created_at DESC`
	return r.list(ctx, q, false, clientID)
}

func (r *feedRepository) list(ctx context.Context, q string, withClient bool, args ...any) ([]models.Feed, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	defer rows.Close()

	res := []models.Feed{}
	for rows.Next() {
		f, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("scan feed: %w", err)
		}
		res = append(res, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if withClient && len(res) > 0 {
		ptrs := make([]*models.Feed, len(res))
		for i := range res {
			ptrs[i] = &res[i]
		}
		if err := r.attachClients(ctx, ptrs); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (r *feedRepository) attachClients(ctx context.Context, feeds []*models.Feed) error {
	var ids []string
	for _, f := range feeds {
		ids = appendIfSet(ids, f.ClientID)
	}
	clients, err := findClientsByIDs(ctx, r.db, ids)
	if err != nil {
		return err
	}
	for _, f := range feeds {
		if f.ClientID == nil {
			continue
		}
		if c, ok := clients[*f.ClientID]; ok {
			f.Client = &c
		}
	}
	return nil
}
