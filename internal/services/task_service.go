package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"crmmvp/internal/models"
	"crmmvp/internal/repositories"
)

// TaskService covers plain task CRUD. Transfer and status workflows live in
// TaskLifecycle.
type TaskService interface {
	Create(ctx context.Context, callerID string, req models.TaskCreateRequest) (*models.Task, error)
	GetByID(ctx context.Context, id string) (*models.Task, error)
	ListVisible(ctx context.Context, userID string, settings models.TaskListSettings) ([]models.Task, error)
	Update(ctx context.Context, id string, req models.TaskUpdateRequest) (*models.Task, error)
}

type taskService struct {
	repo   repositories.TaskRepository
	uow    repositories.UnitOfWork
	policy TransitionPolicy
}

func NewTaskService(repo repositories.TaskRepository, uow repositories.UnitOfWork, policy TransitionPolicy) TaskService {
	return &taskService{repo: repo, uow: uow, policy: policy}
}

func (s *taskService) Create(ctx context.Context, callerID string, req models.TaskCreateRequest) (*models.Task, error) {
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown task type %q", ErrInvalidInput, req.Type)
	}
	task := &models.Task{
		Type:          req.Type,
		Priority:      req.Priority,
		Status:        req.Status,
		Theme:         req.Theme,
		ContactPhone:  req.ContactPhone,
		ContactEmail:  req.ContactEmail,
		ContactPerson: req.ContactPerson,
		Address:       req.Address,
		URLLink:       req.URLLink,
		ClientID:      req.ClientID,
		ContactID:     req.ContactID,
		ParentTaskID:  req.ParentTaskID,
		CreatedByID:   callerID,
		AssignedToID:  req.AssignedToID,
	}
	if req.CreatedByID != nil && *req.CreatedByID != "" {
		task.CreatedByID = *req.CreatedByID
	}
	if task.Status == "" {
		task.Status = models.StatusOpen
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if !task.Status.Valid() || !task.Priority.Valid() {
		return nil, fmt.Errorf("%w: bad status or priority", ErrInvalidInput)
	}
	if req.Date != nil {
		d, err := ParseTaskDate(*req.Date)
		if err != nil {
			return nil, err
		}
		task.Date = d
	}

	err := s.uow.Do(ctx, func(r repositories.TxRepos) error {
		if err := r.Tasks.Store(ctx, task); err != nil {
			return err
		}
		if len(req.CollaboratorIDs) == 0 {
			return nil
		}
		return r.Tasks.ReplaceCollaborators(ctx, task.ID, req.CollaboratorIDs)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) GetByID(ctx context.Context, id string) (*models.Task, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *taskService) ListVisible(ctx context.Context, userID string, settings models.TaskListSettings) ([]models.Task, error) {
	tasks, err := s.repo.FindVisibleTo(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ApplyTaskListSettings(tasks, settings), nil
}

// Update applies the non-nil fields of req. It is a plain partial update and
// emits no notification. The row and its collaborator set are written in one
// transaction.
func (s *taskService) Update(ctx context.Context, id string, req models.TaskUpdateRequest) (*models.Task, error) {
	if req.Type != nil && !req.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown task type %q", ErrInvalidInput, *req.Type)
	}
	if req.Priority != nil && !req.Priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, *req.Priority)
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *req.Status)
	}

	err := s.uow.Do(ctx, func(r repositories.TxRepos) error {
		task, err := r.Tasks.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if req.Status != nil && !s.policy.CheckStatus(task.Status, *req.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, task.Status, *req.Status)
		}
		if err := applyTaskUpdate(task, req); err != nil {
			return err
		}
		if err := r.Tasks.Update(ctx, task); err != nil {
			return err
		}
		if req.CollaboratorIDs == nil {
			return nil
		}
		return r.Tasks.ReplaceCollaborators(ctx, task.ID, *req.CollaboratorIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func applyTaskUpdate(t *models.Task, r models.TaskUpdateRequest) error {
	if r.Type != nil {
		t.Type = *r.Type
	}
	if r.Priority != nil {
		t.Priority = *r.Priority
	}
	if r.Status != nil {
		t.Status = *r.Status
	}
	if r.Date != nil {
		d, err := ParseTaskDate(*r.Date)
		if err != nil {
			return err
		}
		t.Date = d
	}
	setIf := func(dst **string, v *string) {
		if v != nil {
			*dst = v
		}
	}
	setIf(&t.Theme, r.Theme)
	setIf(&t.ContactPhone, r.ContactPhone)
	setIf(&t.ContactEmail, r.ContactEmail)
	setIf(&t.ContactPerson, r.ContactPerson)
	setIf(&t.Address, r.Address)
	setIf(&t.URLLink, r.URLLink)
	setIf(&t.StatusChangeReason, r.StatusChangeReason)
	setIf(&t.ClientID, r.ClientID)
	setIf(&t.ContactID, r.ContactID)
	setIf(&t.ParentTaskID, r.ParentTaskID)
	setIf(&t.AssignedToID, r.AssignedToID)
	return nil
}

var taskDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTaskDate normalizes a date string from a form into a UTC timestamp.
// An empty string clears the date.
func ParseTaskDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range taskDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: unparseable date %q", ErrInvalidInput, s)
}
