package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"crmmvp/internal/models"
)

type TaskRepository interface {
	Store(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id string) (*models.Task, error)
	FindVisibleTo(ctx context.Context, userID string) ([]models.Task, error)
	FindByClient(ctx context.Context, clientID string) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	ReplaceCollaborators(ctx context.Context, taskID string, userIDs []string) error

	// lifecycle writes
	UpdateTransfer(ctx context.Context, id, transferToID, transferFromID string, reason *string) error
	UpdateTransferStatus(ctx context.Context, id string, to models.TransferStatus, rejectionReason *string) error
	UpdateStatus(ctx context.Context, id string, to models.TaskStatus, reason *string) error
}

type taskRepository struct {
	db DBTX
}

func NewTaskRepository(db DBTX) TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = `t.id, t.type, t.priority, t.status, t.theme, t.date,
       t.contact_phone, t.contact_email, t.contact_person, t.address, t.url_link, t.status_change_reason,
       t.client_id, t.contact_id, t.parent_task_id, t.created_by_id, t.assigned_to_id,
       t.transfer_to_id, t.transfer_from_id, t.transfer_to_reason, t.transfer_status, t.rejection_reason,
       t.created_at, t.updated_at`

func scanTask(s rowScanner) (*models.Task, error) {
	t := &models.Task{}
	err := s.Scan(
		&t.ID, &t.Type, &t.Priority, &t.Status, &t.Theme, &t.Date,
		&t.ContactPhone, &t.ContactEmail, &t.ContactPerson, &t.Address, &t.URLLink, &t.StatusChangeReason,
		&t.ClientID, &t.ContactID, &t.ParentTaskID, &t.CreatedByID, &t.AssignedToID,
		&t.TransferToID, &t.TransferFromID, &t.TransferToReason, &t.TransferStatus, &t.RejectionReason,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *taskRepository) Store(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = newID()
	}
	ts := now()
	task.CreatedAt, task.UpdatedAt = ts, ts

	const q = `
		INSERT INTO tasks (
			id, type, priority, status, theme, date,
			contact_phone, contact_email, contact_person, address, url_link, status_change_reason,
			client_id, contact_id, parent_task_id, created_by_id, assigned_to_id,
			created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`
	_, err := r.db.ExecContext(ctx, q,
		task.ID, task.Type, task.Priority, task.Status, task.Theme, task.Date,
		task.ContactPhone, task.ContactEmail, task.ContactPerson, task.Address, task.URLLink, task.StatusChangeReason,
		task.ClientID, task.ContactID, task.ParentTaskID, task.CreatedByID, task.AssignedToID,
		task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("store task: %w", err)
	}
	return nil
}

func (r *taskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks t WHERE t.id = $1`
	task, err := scanTask(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	if err := r.attachRelations(ctx, []*models.Task{task}, true); err != nil {
		return nil, err
	}
	return task, nil
}

// FindVisibleTo returns the tasks the user created, is assigned to, is the
// transfer target of, or collaborates on; newest first.
func (r *taskRepository) FindVisibleTo(ctx context.Context, userID string) ([]models.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks t
		WHERE t.created_by_id = $1
		   OR t.assigned_to_id = $1
		   OR t.transfer_to_id = $1
		   OR EXISTS (SELECT 1 FROM task_collaborators tc WHERE tc.task_id = t.id AND tc.user_id = $1)
		ORDER BY t.created_at DESC`
	return r.list(ctx, q, true, userID)
}

func (r *taskRepository) FindByClient(ctx context.Context, clientID string) ([]models.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks t WHERE t.client_id = $1 ORDER BY t.created_at DESC`
	return r.list(ctx, q, false, clientID)
}

func (r *taskRepository) list(ctx context.Context, q string, withRelations bool, args ...any) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if withRelations && len(tasks) > 0 {
		ptrs := make([]*models.Task, len(tasks))
		for i := range tasks {
			ptrs[i] = &tasks[i]
		}
		if err := r.attachRelations(ctx, ptrs, true); err != nil {
			return nil, err
		}
	}
	return tasks, nil
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = now()
	const q = `
		UPDATE tasks SET
			type=$1, priority=$2, status=$3, theme=$4, date=$5,
			contact_phone=$6, contact_email=$7, contact_person=$8, address=$9, url_link=$10,
			status_change_reason=$11, client_id=$12, contact_id=$13, parent_task_id=$14, assigned_to_id=$15,
			transfer_to_id=$16, transfer_from_id=$17, transfer_to_reason=$18, transfer_status=$19, rejection_reason=$20,
			updated_at=$21
		WHERE id=$22`
	res, err := r.db.ExecContext(ctx, q,
		task.Type, task.Priority, task.Status, task.Theme, task.Date,
		task.ContactPhone, task.ContactEmail, task.ContactPerson, task.Address, task.URLLink,
		task.StatusChangeReason, task.ClientID, task.ContactID, task.ParentTaskID, task.AssignedToID,
		task.TransferToID, task.TransferFromID, task.TransferToReason, task.TransferStatus, task.RejectionReason,
		task.UpdatedAt, task.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return expectAffected(res, "update task")
}

func (r *taskRepository) ReplaceCollaborators(ctx context.Context, taskID string, userIDs []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM task_collaborators WHERE task_id = $1`, taskID); err != nil {
		return fmt.Errorf("clear collaborators: %w", err)
	}
	if len(userIDs) == 0 {
		return nil
	}
	const q = `
		INSERT INTO task_collaborators (task_id, user_id)
		SELECT $1, u FROM unnest($2::text[]) AS u
		ON CONFLICT DO NOTHING`
	if _, err := r.db.ExecContext(ctx, q, taskID, pq.Array(userIDs)); err != nil {
		return fmt.Errorf("insert collaborators: %w", err)
	}
	return nil
}

func (r *taskRepository) UpdateTransfer(ctx context.Context, id, transferToID, transferFromID string, reason *string) error {
	const q = `
		UPDATE tasks SET
			transfer_to_id=$1, transfer_from_id=$2, transfer_to_reason=$3,
			transfer_status=$4, rejection_reason=NULL, updated_at=$5
		WHERE id=$6`
	res, err := r.db.ExecContext(ctx, q, transferToID, transferFromID, reason, models.TransferUndefined, now(), id)
	if err != nil {
		return fmt.Errorf("update transfer: %w", err)
	}
	return expectAffected(res, "update transfer")
}

func (r *taskRepository) UpdateTransferStatus(ctx context.Context, id string, to models.TransferStatus, rejectionReason *string) error {
	const q = `
		UPDATE tasks SET
			transfer_status=$1, rejection_reason=COALESCE($2, rejection_reason), updated_at=$3
		WHERE id=$4`
	res, err := r.db.ExecContext(ctx, q, to, rejectionReason, now(), id)
	if err != nil {
		return fmt.Errorf("update transfer status: %w", err)
	}
	return expectAffected(res, "update transfer status")
}

func (r *taskRepository) UpdateStatus(ctx context.Context, id string, to models.TaskStatus, reason *string) error {
	const q = `UPDATE tasks SET status=$1, status_change_reason=$2, updated_at=$3 WHERE id=$4`
	res, err := r.db.ExecContext(ctx, q, to, reason, now(), id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return expectAffected(res, "update status")
}

// attachRelations loads client, contact, users, collaborators and (when
// withLinked is set) child tasks in one query per relation.
func (r *taskRepository) attachRelations(ctx context.Context, tasks []*models.Task, withLinked bool) error {
	var taskIDs, clientIDs, contactIDs, userIDs []string
	for _, t := range tasks {
		taskIDs = append(taskIDs, t.ID)
		clientIDs = appendIfSet(clientIDs, t.ClientID)
		contactIDs = appendIfSet(contactIDs, t.ContactID)
		userIDs = append(userIDs, t.CreatedByID)
		userIDs = appendIfSet(userIDs, t.AssignedToID)
		userIDs = appendIfSet(userIDs, t.TransferToID)
	}

	clients, err := findClientsByIDs(ctx, r.db, clientIDs)
	if err != nil {
		return err
	}
	contacts, err := findContactsByIDs(ctx, r.db, contactIDs)
	if err != nil {
		return err
	}
	users, err := findUserRefs(ctx, r.db, userIDs)
	if err != nil {
		return err
	}
	collaborators, err := r.findCollaborators(ctx, taskIDs)
	if err != nil {
		return err
	}
	var linked map[string][]models.Task
	if withLinked {
		if linked, err = r.findChildren(ctx, taskIDs); err != nil {
			return err
		}
	}

	for _, t := range tasks {
		if t.ClientID != nil {
			if c, ok := clients[*t.ClientID]; ok {
				t.Client = &c
			}
		}
		if t.ContactID != nil {
			if c, ok := contacts[*t.ContactID]; ok {
				t.Contact = &c
			}
		}
		if u, ok := users[t.CreatedByID]; ok {
			t.CreatedBy = &u
		}
		if t.AssignedToID != nil {
			if u, ok := users[*t.AssignedToID]; ok {
				t.AssignedTo = &u
			}
		}
		if t.TransferToID != nil {
			if u, ok := users[*t.TransferToID]; ok {
				t.TransferTo = &u
			}
		}
		t.Collaborators = collaborators[t.ID]
		t.LinkedTasks = linked[t.ID]
	}
	return nil
}

func (r *taskRepository) findCollaborators(ctx context.Context, taskIDs []string) (map[string][]models.UserRef, error) {
	out := map[string][]models.UserRef{}
	if len(taskIDs) == 0 {
		return out, nil
	}
	const q = `
		SELECT tc.task_id, u.id, u.name, u.image
		FROM task_collaborators tc
		JOIN users u ON u.id = tc.user_id
		WHERE tc.task_id = ANY($1)
		ORDER BY u.name`
	rows, err := r.db.QueryContext(ctx, q, pq.Array(taskIDs))
	if err != nil {
		return nil, fmt.Errorf("find collaborators: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var taskID string
		var u models.UserRef
		if err := rows.Scan(&taskID, &u.ID, &u.Name, &u.Image); err != nil {
			return nil, err
		}
		out[taskID] = append(out[taskID], u)
	}
	return out, rows.Err()
}

func (r *taskRepository) findChildren(ctx context.Context, parentIDs []string) (map[string][]models.Task, error) {
	out := map[string][]models.Task{}
	if len(parentIDs) == 0 {
		return out, nil
	}
	q := `SELECT ` + taskColumns + ` FROM tasks t WHERE t.parent_task_id = ANY($1) ORDER BY t.created_at`
	rows, err := r.db.QueryContext(ctx, q, pq.Array(parentIDs))
	if err != nil {
		return nil, fmt.Errorf("find linked tasks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out[*t.ParentTaskID] = append(out[*t.ParentTaskID], *t)
	}
	return out, rows.Err()
}

func appendIfSet(ids []string, id *string) []string {
	if id == nil || *id == "" {
		return ids
	}
	return append(ids, *id)
}
