package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/taskmanager-server/internal/logger"
	"github.com/dtroode/taskmanager-server/internal/model"
)

// Lifecycle reacts to identity events on behalf of the resources a user owns.
type Lifecycle struct {
	logger *logger.Logger
}

func NewLifecycle(logger *logger.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// OnIdentityDeleted removes every task owned by userID. tasks is expected to
// be bound to the transaction that deletes the user.
func (l *Lifecycle) OnIdentityDeleted(ctx context.Context, tasks model.TaskStore, userID uuid.UUID) (int64, error) {
	n, err := tasks.DeleteAllByOwner(ctx, userID)
	if err != nil {
		l.logger.Error("Lifecycle: failed to delete owned tasks",
			"user_id", userID,
			"error", err.Error())
		return 0, fmt.Errorf("failed to delete tasks of user %s: %w", userID, err)
	}

	l.logger.Info("Lifecycle: owned tasks deleted",
		"user_id", userID,
		"count", n)

	return n, nil
}
