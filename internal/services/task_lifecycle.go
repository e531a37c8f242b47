package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"crmmvp/internal/logging"
	"crmmvp/internal/models"
	"crmmvp/internal/repositories"
)

const (
	msgTransferAccepted = "Task transfer accepted"
	msgTransferRejected = "Task transfer rejected"

	deliveryTimeout = 10 * time.Second
)

// NotificationDeliverer pushes a stored notification to its recipient.
type NotificationDeliverer interface {
	Deliver(ctx context.Context, n *models.Notification) error
}

// TaskLifecycle runs the transfer and status workflows. Each operation writes
// the task change and its notification record in one transaction, then
// delivers the notification best effort.
type TaskLifecycle interface {
	InitiateTransfer(ctx context.Context, taskID, initiatorID string, req models.TransferRequest) (*models.LifecycleResult, error)
	ResolveTransfer(ctx context.Context, taskID, deciderID string, req models.ResolveTransferRequest) (*models.LifecycleResult, error)
	ChangeStatus(ctx context.Context, taskID string, req models.StatusChangeRequest) (*models.LifecycleResult, error)
}

type taskLifecycle struct {
	uow      repositories.UnitOfWork
	users    repositories.UserRepository
	notifier NotificationDeliverer
	policy   TransitionPolicy
}

func NewTaskLifecycle(
	uow repositories.UnitOfWork,
	users repositories.UserRepository,
	notifier NotificationDeliverer,
	policy TransitionPolicy,
) TaskLifecycle {
	return &taskLifecycle{uow: uow, users: users, notifier: notifier, policy: policy}
}

func (s *taskLifecycle) InitiateTransfer(ctx context.Context, taskID, initiatorID string, req models.TransferRequest) (*models.LifecycleResult, error) {
	to := strings.TrimSpace(req.TransferToID)
	if to == "" {
		return nil, fmt.Errorf("%w: transferToId is required", ErrInvalidInput)
	}
	if _, err := s.users.GetByID(ctx, to); err != nil {
		return nil, fmt.Errorf("transfer target: %w", err)
	}

	reason := req.Reason
	res := &models.LifecycleResult{}
	err := s.uow.Do(ctx, func(r repositories.TxRepos) error {
		task, err := r.Tasks.FindByID(ctx, taskID)
		if err != nil {
			return err
		}
		if s.policy.Strict && task.Status != models.StatusOpen {
			return fmt.Errorf("%w: cannot transfer a %s task", ErrIllegalTransition, task.Status)
		}
		if err := r.Tasks.UpdateTransfer(ctx, taskID, to, initiatorID, &reason); err != nil {
			return err
		}

		n := &models.Notification{
			SenderID:    &initiatorID,
			RecipientID: &to,
			Message:     reason,
			Type:        models.NotificationTransfer,
		}
		if err := r.Notifications.Store(ctx, n); err != nil {
			return err
		}
		res.Notification = n

		res.Task, err = r.Tasks.FindByID(ctx, taskID)
		return err
	})
	if err != nil {
		return nil, err
	}

	res.NotificationDelivered = s.deliver(ctx, res.Notification)
	return res, nil
}

func (s *taskLifecycle) ResolveTransfer(ctx context.Context, taskID, deciderID string, req models.ResolveTransferRequest) (*models.LifecycleResult, error) {
	if req.Decision != models.TransferAccepted && req.Decision != models.TransferRejected {
		return nil, fmt.Errorf("%w: decision must be ACCEPTED or REJECTED", ErrInvalidInput)
	}

	res := &models.LifecycleResult{}
	err := s.uow.Do(ctx, func(r repositories.TxRepos) error {
		task, err := r.Tasks.FindByID(ctx, taskID)
		if err != nil {
			return err
		}
		if err := s.policy.CheckResolve(task, deciderID, req.Decision); err != nil {
			return fmt.Errorf("resolve transfer: %w", err)
		}
		if err := r.Tasks.UpdateTransferStatus(ctx, taskID, req.Decision, req.RejectionReason); err != nil {
			return err
		}

		recipient := resolutionRecipient(task, req.RecipientID)
		n := &models.Notification{
			SenderID:    &deciderID,
			RecipientID: &recipient,
			Message:     resolutionMessage(req.Decision, req.RejectionReason),
			Type:        models.NotificationType(req.Decision),
		}
		if err := r.Notifications.Store(ctx, n); err != nil {
			return err
		}
		res.Notification = n

		res.Task, err = r.Tasks.FindByID(ctx, taskID)
		return err
	})
	if err != nil {
		return nil, err
	}

	res.NotificationDelivered = s.deliver(ctx, res.Notification)
	return res, nil
}

func (s *taskLifecycle) ChangeStatus(ctx context.Context, taskID string, req models.StatusChangeRequest) (*models.LifecycleResult, error) {
	if !req.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
	}

	res := &models.LifecycleResult{}
	err := s.uow.Do(ctx, func(r repositories.TxRepos) error {
		task, err := r.Tasks.FindByID(ctx, taskID)
		if err != nil {
			return err
		}
		if !s.policy.CheckStatus(task.Status, req.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, task.Status, req.Status)
		}
		if err := r.Tasks.UpdateStatus(ctx, taskID, req.Status, req.StatusChangeReason); err != nil {
			return err
		}
		res.Task, err = r.Tasks.FindByID(ctx, taskID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// resolutionRecipient picks who hears about a decision: an explicit
// recipient, else whoever started the transfer, else the task creator.
func resolutionRecipient(task *models.Task, explicit *string) string {
	if explicit != nil && *explicit != "" {
		return *explicit
	}
	if task.TransferFromID != nil && *task.TransferFromID != "" {
		return *task.TransferFromID
	}
	return task.CreatedByID
}

func resolutionMessage(decision models.TransferStatus, rejectionReason *string) string {
	if rejectionReason != nil && strings.TrimSpace(*rejectionReason) != "" {
		return *rejectionReason
	}
	if decision == models.TransferAccepted {
		return msgTransferAccepted
	}
	return msgTransferRejected
}

func (s *taskLifecycle) deliver(ctx context.Context, n *models.Notification) bool {
	if s.notifier == nil || n == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
	defer cancel()

	if err := s.notifier.Deliver(ctx, n); err != nil {
		logging.Logger.WithFields(logrus.Fields{
			"notification_id": n.ID,
			"type":            n.Type,
		}).WithError(err).Warn("[lifecycle][deliver] notification stored but not delivered")
		return false
	}
	return true
}
