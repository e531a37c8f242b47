package models

import "time"

type NotificationType string

const (
	NotificationGeneral  NotificationType = "GENERAL"
	NotificationAccepted NotificationType = "ACCEPTED"
	NotificationRejected NotificationType = "REJECTED"
	NotificationTransfer NotificationType = "TRANSFER"
	NotificationFeed     NotificationType = "FEED"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationGeneral, NotificationAccepted, NotificationRejected, NotificationTransfer, NotificationFeed:
		return true
	}
	return false
}

// Notification is a side-effect record of a transfer or feed event. A nil
// RecipientID addresses every user.
type Notification struct {
	ID          string           `json:"id"`
	SenderID    *string          `json:"senderId"`
	RecipientID *string          `json:"recipientId"`
	Message     string           `json:"message"`
	Type        NotificationType `json:"type"`
	Read        bool             `json:"read"`
	CreatedAt   time.Time        `json:"createdAt"`

	Sender *UserRef `json:"sender,omitempty"`
}

func (n *Notification) Broadcast() bool {
	return n.RecipientID == nil || *n.RecipientID == ""
}

type NotificationCreateRequest struct {
	SenderID    *string          `json:"senderId"`
	RecipientID *string          `json:"recipientId"`
	Message     string           `json:"message"`
	Type        NotificationType `json:"type"`
	Read        bool             `json:"read"`
}

type NotificationUpdateRequest struct {
	Read    *bool   `json:"read"`
	Message *string `json:"message"`
}

func (r *NotificationUpdateRequest) Apply(n *Notification) {
	if r.Read != nil {
		n.Read = *r.Read
	}
	if r.Message != nil {
		n.Message = *r.Message
	}
}
