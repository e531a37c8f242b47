package services

import "crmmvp/internal/models"

// TaskTransitions lists the allowed status moves when strict transitions are
// enabled. CLOSED and DELETED are terminal.
var TaskTransitions = map[models.TaskStatus]map[models.TaskStatus]bool{
	models.StatusOpen:    {models.StatusClosed: true, models.StatusDeleted: true},
	models.StatusClosed:  {},
	models.StatusDeleted: {},
}

// TransferTransitions: a pending transfer resolves once. A new transfer is
// started through InitiateTransfer, not through this table.
var TransferTransitions = map[models.TransferStatus]map[models.TransferStatus]bool{
	models.TransferUndefined: {models.TransferAccepted: true, models.TransferRejected: true},
	models.TransferAccepted:  {},
	models.TransferRejected:  {},
}

func canTransition[S comparable](current, to S, table map[S]map[S]bool) bool {
	var zero S
	if current == zero || current == to {
		// empty in DB or a same-state write
		return true
	}
	nexts, ok := table[current]
	if !ok {
		return false
	}
	return nexts[to]
}

// TransitionPolicy decides which lifecycle moves are legal. The permissive
// policy allows anything.
type TransitionPolicy struct {
	Strict bool
}

func (p TransitionPolicy) CheckStatus(from, to models.TaskStatus) bool {
	if !p.Strict {
		return true
	}
	return canTransition(from, to, TaskTransitions)
}

// CheckResolve validates a transfer decision by decider on task.
func (p TransitionPolicy) CheckResolve(task *models.Task, deciderID string, to models.TransferStatus) error {
	if !p.Strict {
		return nil
	}
	if !task.TransferPending() {
		return ErrIllegalTransition
	}
	if task.TransferToID == nil || *task.TransferToID != deciderID {
		return ErrForbidden
	}
	if !canTransition(*task.TransferStatus, to, TransferTransitions) {
		return ErrIllegalTransition
	}
	return nil
}
