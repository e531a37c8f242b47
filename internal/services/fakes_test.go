package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"crmmvp/internal/models"
	"crmmvp/internal/repositories"
)

// memStore backs the in-memory repositories. A memUnitOfWork works on a copy
// and commits it on success, so a failed fn leaves the store untouched.
type memStore struct {
	tasks             map[string]models.Task
	collaborators     map[string][]string
	notifications     []models.Notification
	failStoreNote     error
	failCollaborators error
	nextID            int
}

func newMemStore(tasks ...models.Task) *memStore {
	s := &memStore{tasks: map[string]models.Task{}, collaborators: map[string][]string{}}
	for _, t := range tasks {
		s.tasks[t.ID] = t
	}
	return s
}

func (s *memStore) clone() *memStore {
	c := &memStore{
		tasks:             make(map[string]models.Task, len(s.tasks)),
		collaborators:     make(map[string][]string, len(s.collaborators)),
		notifications:     append([]models.Notification(nil), s.notifications...),
		failStoreNote:     s.failStoreNote,
		failCollaborators: s.failCollaborators,
		nextID:            s.nextID,
	}
	for k, v := range s.tasks {
		c.tasks[k] = v
	}
	for k, v := range s.collaborators {
		c.collaborators[k] = v
	}
	return c
}

type memUnitOfWork struct {
	mu    sync.Mutex
	store *memStore
}

func (u *memUnitOfWork) Do(ctx context.Context, fn func(r repositories.TxRepos) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	tx := u.store.clone()
	if err := fn(repositories.TxRepos{Tasks: &memTasks{s: tx}, Notifications: &memNotifications{s: tx}}); err != nil {
		return err
	}
	*u.store = *tx
	return nil
}

type memTasks struct{ s *memStore }

func (m *memTasks) Store(_ context.Context, t *models.Task) error {
	if t.ID == "" {
		m.s.nextID++
		t.ID = fmt.Sprintf("task-%d", m.s.nextID)
	}
	m.s.tasks[t.ID] = *t
	return nil
}

func (m *memTasks) FindByID(_ context.Context, id string) (*models.Task, error) {
	t, ok := m.s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, repositories.ErrNotFound)
	}
	return &t, nil
}

func (m *memTasks) FindVisibleTo(_ context.Context, userID string) ([]models.Task, error) {
	var out []models.Task
	for _, t := range m.s.tasks {
		if t.CreatedByID == userID || (t.AssignedToID != nil && *t.AssignedToID == userID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTasks) FindByClient(context.Context, string) ([]models.Task, error) { return nil, nil }

func (m *memTasks) Update(_ context.Context, t *models.Task) error {
	if _, ok := m.s.tasks[t.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.s.tasks[t.ID] = *t
	return nil
}

func (m *memTasks) ReplaceCollaborators(_ context.Context, taskID string, userIDs []string) error {
	if m.s.failCollaborators != nil {
		return m.s.failCollaborators
	}
	m.s.collaborators[taskID] = append([]string(nil), userIDs...)
	return nil
}

func (m *memTasks) UpdateTransfer(_ context.Context, id, to, from string, reason *string) error {
	t, ok := m.s.tasks[id]
	if !ok {
		return repositories.ErrNotFound
	}
	undefined := models.TransferUndefined
	t.TransferToID, t.TransferFromID, t.TransferToReason = &to, &from, reason
	t.TransferStatus = &undefined
	t.RejectionReason = nil
	m.s.tasks[id] = t
	return nil
}

func (m *memTasks) UpdateTransferStatus(_ context.Context, id string, to models.TransferStatus, rejection *string) error {
	t, ok := m.s.tasks[id]
	if !ok {
		return repositories.ErrNotFound
	}
	t.TransferStatus = &to
	if rejection != nil {
		t.RejectionReason = rejection
	}
	m.s.tasks[id] = t
	return nil
}

func (m *memTasks) UpdateStatus(_ context.Context, id string, to models.TaskStatus, reason *string) error {
	t, ok := m.s.tasks[id]
	if !ok {
		return repositories.ErrNotFound
	}
	t.Status = to
	t.StatusChangeReason = reason
	m.s.tasks[id] = t
	return nil
}

type memNotifications struct{ s *memStore }

func (m *memNotifications) Store(_ context.Context, n *models.Notification) error {
	if m.s.failStoreNote != nil {
		return m.s.failStoreNote
	}
	m.s.nextID++
	n.ID = fmt.Sprintf("note-%d", m.s.nextID)
	n.CreatedAt = time.Now()
	m.s.notifications = append(m.s.notifications, *n)
	return nil
}

func (m *memNotifications) FindByID(_ context.Context, id string) (*models.Notification, error) {
	for _, n := range m.s.notifications {
		if n.ID == id {
			return &n, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memNotifications) FindUnreadFor(_ context.Context, userID string) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range m.s.notifications {
		if !n.Read && (n.Broadcast() || *n.RecipientID == userID) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memNotifications) Update(_ context.Context, n *models.Notification) error {
	for i := range m.s.notifications {
		if m.s.notifications[i].ID == n.ID {
			m.s.notifications[i] = *n
			return nil
		}
	}
	return repositories.ErrNotFound
}

type memUsers struct {
	byID map[string]*models.User
}

func newMemUsers(ids ...string) *memUsers {
	u := &memUsers{byID: map[string]*models.User{}}
	for _, id := range ids {
		u.byID[id] = &models.User{ID: id, Name: "user " + id, Email: id + "@example.com", Role: "user"}
	}
	return u
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = fmt.Sprintf("u%d", len(m.byID)+1)
	}
	m.byID[u.ID] = u
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memUsers) List(context.Context) ([]models.UserRef, error) {
	out := make([]models.UserRef, 0, len(m.byID))
	for _, u := range m.byID {
		out = append(out, u.Ref())
	}
	return out, nil
}

func (m *memUsers) UpdateRole(_ context.Context, id, role string) error {
	u, ok := m.byID[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.Role = role
	return nil
}

func (m *memUsers) UpdateTelegramLink(_ context.Context, userID string, chatID int64) error {
	u, ok := m.byID[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	u.TelegramChatID = &chatID
	return nil
}

func (m *memUsers) GetByChatID(_ context.Context, chatID int64) (*models.User, error) {
	for _, u := range m.byID {
		if u.TelegramChatID != nil && *u.TelegramChatID == chatID {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

// recordingDeliverer captures delivered notifications and can be made to
// fail.
type recordingDeliverer struct {
	mu        sync.Mutex
	delivered []models.Notification
	err       error
}

func (d *recordingDeliverer) Deliver(_ context.Context, n *models.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.delivered = append(d.delivered, *n)
	return nil
}

var errBoom = errors.New("boom")
