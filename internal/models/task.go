// internal/models/task.go
package models

import "time"

type TaskType string

const (
	TaskTypeCall         TaskType = "CALL"
	TaskTypeMeet         TaskType = "MEET"
	TaskTypeEmail        TaskType = "EMAIL"
	TaskTypeOffer        TaskType = "OFFER"
	TaskTypePresentation TaskType = "PRESENTATION"
)

func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeCall, TaskTypeMeet, TaskTypeEmail, TaskTypeOffer, TaskTypePresentation:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// TaskStatus is the lifecycle status of a task. A task is only ever removed
// logically, by moving it to StatusDeleted.
type TaskStatus string

const (
	StatusOpen    TaskStatus = "OPEN"
	StatusClosed  TaskStatus = "CLOSED"
	StatusDeleted TaskStatus = "DELETED"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusClosed, StatusDeleted:
		return true
	}
	return false
}

// TransferStatus is the state of the current transfer. Undefined means the
// recipient has not decided yet.
type TransferStatus string

const (
	TransferUndefined TransferStatus = "UNDEFINED"
	TransferAccepted  TransferStatus = "ACCEPTED"
	TransferRejected  TransferStatus = "REJECTED"
)

func (s TransferStatus) Valid() bool {
	switch s {
	case TransferUndefined, TransferAccepted, TransferRejected:
		return true
	}
	return false
}

// Task represents a unit of follow-up work. Relation fields (Client, Contact,
// CreatedBy, ...) are only populated on reads.
type Task struct {
	ID                 string       `json:"id"`
	Type               TaskType     `json:"type"`
	Priority           TaskPriority `json:"priority"`
	Status             TaskStatus   `json:"status"`
	Theme              *string      `json:"theme"`
	Date               *time.Time   `json:"date"`
	ContactPhone       *string      `json:"contactPhone"`
	ContactEmail       *string      `json:"contactEmail"`
	ContactPerson      *string      `json:"contactPerson"`
	Address            *string      `json:"address"`
	URLLink            *string      `json:"urlLink"`
	StatusChangeReason *string      `json:"statusChangeReason"`

	ClientID     *string `json:"clientId"`
	ContactID    *string `json:"contactId"`
	ParentTaskID *string `json:"parentTaskId"`
	CreatedByID  string  `json:"createdById"`
	AssignedToID *string `json:"assignedToId"`

	TransferToID     *string         `json:"transferToId"`
	TransferFromID   *string         `json:"transferFromId"`
	TransferToReason *string         `json:"transferToReason"`
	TransferStatus   *TransferStatus `json:"transferStatus"`
	RejectionReason  *string         `json:"rejectionReason"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Client        *Client   `json:"client,omitempty"`
	Contact       *Contact  `json:"contact,omitempty"`
	CreatedBy     *UserRef  `json:"createdBy,omitempty"`
	AssignedTo    *UserRef  `json:"assignedTo,omitempty"`
	TransferTo    *UserRef  `json:"transferTo,omitempty"`
	LinkedTasks   []Task    `json:"linkedTasks,omitempty"`
	Collaborators []UserRef `json:"collaborators,omitempty"`
}

// InTransfer reports whether a transfer was ever initiated on the task.
func (t *Task) InTransfer() bool {
	return t.TransferToID != nil && *t.TransferToID != ""
}

// TransferPending reports whether the current transfer awaits a decision.
func (t *Task) TransferPending() bool {
	return t.InTransfer() && t.TransferStatus != nil && *t.TransferStatus == TransferUndefined
}

// TaskCreateRequest is the allow-list for POST /task.
type TaskCreateRequest struct {
	Type            TaskType     `json:"type" binding:"required"`
	Priority        TaskPriority `json:"priority"`
	Status          TaskStatus   `json:"status"`
	Theme           *string      `json:"theme"`
	Date            *string      `json:"date"`
	ContactPhone    *string      `json:"contactPhone"`
	ContactEmail    *string      `json:"contactEmail"`
	ContactPerson   *string      `json:"contactPerson"`
	Address         *string      `json:"address"`
	URLLink         *string      `json:"urlLink"`
	ClientID        *string      `json:"clientId"`
	ContactID       *string      `json:"contactId"`
	ParentTaskID    *string      `json:"parentTaskId"`
	CreatedByID     *string      `json:"createdById"`
	AssignedToID    *string      `json:"assignedToId"`
	CollaboratorIDs []string     `json:"collaboratorIds"`
}

// TaskUpdateRequest is the allow-list for PATCH /task/{id}. Nil fields are
// left untouched. Transfer fields only move through the transfer routes.
type TaskUpdateRequest struct {
	Type               *TaskType     `json:"type"`
	Priority           *TaskPriority `json:"priority"`
	Status             *TaskStatus   `json:"status"`
	Theme              *string       `json:"theme"`
	Date               *string       `json:"date"`
	ContactPhone       *string       `json:"contactPhone"`
	ContactEmail       *string       `json:"contactEmail"`
	ContactPerson      *string       `json:"contactPerson"`
	Address            *string       `json:"address"`
	URLLink            *string       `json:"urlLink"`
	StatusChangeReason *string       `json:"statusChangeReason"`
	ClientID           *string       `json:"clientId"`
	ContactID          *string       `json:"contactId"`
	ParentTaskID       *string       `json:"parentTaskId"`
	AssignedToID       *string       `json:"assignedToId"`
	CollaboratorIDs    *[]string     `json:"collaboratorIds"`
}

// TransferRequest starts (or restarts) a transfer.
type TransferRequest struct {
	TransferToID string `json:"transferToId" binding:"required"`
	Reason       string `json:"transferToReason"`
}

// ResolveTransferRequest carries the recipient's decision. RecipientID
// overrides who gets the resulting notification.
type ResolveTransferRequest struct {
	Decision        TransferStatus `json:"transferStatus" binding:"required"`
	RejectionReason *string        `json:"rejectionReason"`
	RecipientID     *string        `json:"recipientId"`
}

type StatusChangeRequest struct {
	Status             TaskStatus `json:"status" binding:"required"`
	StatusChangeReason *string    `json:"statusChangeReason"`
}

// LifecycleResult is returned by the transfer/status workflow endpoints.
type LifecycleResult struct {
	Task                  *Task         `json:"task"`
	Notification          *Notification `json:"notification,omitempty"`
	NotificationDelivered bool          `json:"notificationDelivered"`
}

// SortOrder orders listings by createdAt.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// TaskListSettings are the listing view options of the task page. The zero
// value keeps the store order and hides nothing.
type TaskListSettings struct {
	Type       TaskType
	Priority   TaskPriority
	ClientName string
	ShowClosed bool
	SortOrder  SortOrder
	// Active is set when any option was supplied by the caller.
	Active bool
}
