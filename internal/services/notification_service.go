package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"crmmvp/internal/logging"
	"crmmvp/internal/models"
	"crmmvp/internal/repositories"
)

type NotificationService interface {
	// Create stores the notification and then delivers it best effort.
	Create(ctx context.Context, req models.NotificationCreateRequest) (*models.Notification, error)
	ListUnread(ctx context.Context, userID string) ([]models.Notification, error)
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	Update(ctx context.Context, id string, req models.NotificationUpdateRequest) (*models.Notification, error)
}

type notificationService struct {
	repo     repositories.NotificationRepository
	notifier NotificationDeliverer
}

func NewNotificationService(repo repositories.NotificationRepository, notifier NotificationDeliverer) NotificationService {
	return &notificationService{repo: repo, notifier: notifier}
}

func (s *notificationService) Create(ctx context.Context, req models.NotificationCreateRequest) (*models.Notification, error) {
	if req.Type == "" {
		req.Type = models.NotificationGeneral
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown notification type %q", ErrInvalidInput, req.Type)
	}
	n := &models.Notification{
		SenderID:    req.SenderID,
		RecipientID: req.RecipientID,
		Message:     req.Message,
		Type:        req.Type,
		Read:        req.Read,
	}
	if n.RecipientID != nil && *n.RecipientID == "" {
		n.RecipientID = nil
	}
	if err := s.repo.Store(ctx, n); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
		defer cancel()
		if err := s.notifier.Deliver(dctx, n); err != nil {
			logging.Logger.WithFields(logrus.Fields{"notification_id": n.ID}).
				WithError(err).Warn("[notification][deliver] delivery failed")
		}
	}
	return n, nil
}

func (s *notificationService) ListUnread(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.repo.FindUnreadFor(ctx, userID)
}

func (s *notificationService) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *notificationService) Update(ctx context.Context, id string, req models.NotificationUpdateRequest) (*models.Notification, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Apply(n)
	if err := s.repo.Update(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}
