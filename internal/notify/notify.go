// Package notify delivers stored notifications over the realtime hub,
// e-mail and Telegram.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html"

	"crmmvp/internal/models"
)

// Pusher pushes a notification to connected websocket clients.
type Pusher interface {
	Push(n *models.Notification)
}

type Mailer interface {
	SendNotificationEmail(email, subject, message string) error
}

type TelegramSender interface {
	SendMessage(chatID int64, text string) error
}

type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Dispatcher fans a notification out to every configured channel. Broadcasts
// only go to the hub. Any nil channel is skipped.
type Dispatcher struct {
	hub   Pusher
	users UserLookup
	mail  Mailer
	tg    TelegramSender
}

func NewDispatcher(hub Pusher, users UserLookup, mail Mailer, tg TelegramSender) *Dispatcher {
	return &Dispatcher{hub: hub, users: users, mail: mail, tg: tg}
}

func (d *Dispatcher) Deliver(ctx context.Context, n *models.Notification) error {
	if d.hub != nil {
		d.hub.Push(n)
	}
	if n.Broadcast() || d.users == nil || (d.mail == nil && d.tg == nil) {
		return nil
	}

	user, err := d.users.GetByID(ctx, *n.RecipientID)
	if err != nil {
		return fmt.Errorf("notify: recipient %s: %w", *n.RecipientID, err)
	}

	var errs []error
	if d.mail != nil && user.Email != "" {
		if err := d.mail.SendNotificationEmail(user.Email, Subject(n.Type), n.Message); err != nil {
			errs = append(errs, fmt.Errorf("email: %w", err))
		}
	}
	if d.tg != nil && user.TelegramChatID != nil && *user.TelegramChatID != 0 {
		text := "<b>" + html.EscapeString(Subject(n.Type)) + "</b>\n" + html.EscapeString(n.Message)
		if err := d.tg.SendMessage(*user.TelegramChatID, text); err != nil {
			errs = append(errs, fmt.Errorf("telegram: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Subject is the human title of a notification type.
func Subject(t models.NotificationType) string {
	switch t {
	case models.NotificationTransfer:
		return "A task was transferred to you"
	case models.NotificationAccepted:
		return "Your task transfer was accepted"
	case models.NotificationRejected:
		return "Your task transfer was rejected"
	case models.NotificationFeed:
		return "New feed item"
	}
	return "Notification"
}
