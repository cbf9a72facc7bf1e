package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dtroode/taskmanager-server/internal/logger"
	"github.com/dtroode/taskmanager-server/internal/model"
)

const taskNotFoundMessage = "task not found"

// Tasks serves a principal's own tasks. Every store call is scoped by the
// principal's user id, so foreign tasks look exactly like missing ones.
type Tasks struct {
	store  model.TaskStore
	logger *logger.Logger
}

func NewTasks(store model.TaskStore, logger *logger.Logger) *Tasks {
	return &Tasks{store: store, logger: logger}
}

func (s *Tasks) Create(ctx context.Context, p model.Principal, draft model.TaskDraft) (model.Task, error) {
	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return model.Task{}, err
	}

	task, err := s.store.Create(ctx, model.Task{
		ID:          uuid.New(),
		OwnerID:     p.User.ID,
		Description: draft.Description,
		Completed:   draft.Completed,
	})
	if err != nil {
		return model.Task{}, s.storeError("create", p, uuid.Nil, err)
	}

	s.logger.Debug("Task service: task created",
		"user_id", p.User.ID,
		"task_id", task.ID)

	return task, nil
}

func (s *Tasks) Get(ctx context.Context, p model.Principal, id uuid.UUID) (model.Task, error) {
	task, err := s.store.GetByOwner(ctx, p.User.ID, id)
	if err != nil {
		return model.Task{}, s.storeError("get", p, id, err)
	}
	return task, nil
}

func (s *Tasks) List(ctx context.Context, p model.Principal, query model.TaskQuery) ([]model.Task, error) {
	if !query.SortBy.Valid() {
		query.SortBy = model.SortByCreatedAt
		query.SortDesc = false
	}

	tasks, err := s.store.ListByOwner(ctx, p.User.ID, query)
	if err != nil {
		return nil, s.storeError("list", p, uuid.Nil, err)
	}
	return tasks, nil
}

func (s *Tasks) Update(ctx context.Context, p model.Principal, id uuid.UUID, update model.TaskUpdate) (model.Task, error) {
	update.Normalize()
	if err := update.Validate(); err != nil {
		return model.Task{}, err
	}

	if update.IsEmpty() {
		return s.Get(ctx, p, id)
	}

	task, err := s.store.UpdateByOwner(ctx, p.User.ID, id, update)
	if err != nil {
		return model.Task{}, s.storeError("update", p, id, err)
	}
	return task, nil
}

// Delete removes the task and returns it as it was.
func (s *Tasks) Delete(ctx context.Context, p model.Principal, id uuid.UUID) (model.Task, error) {
	task, err := s.store.DeleteByOwner(ctx, p.User.ID, id)
	if err != nil {
		return model.Task{}, s.storeError("delete", p, id, err)
	}
	return task, nil
}

func (s *Tasks) storeError(op string, p model.Principal, id uuid.UUID, err error) error {
	if errors.Is(err, model.ErrNotFound) {
		return model.NewNotFoundError(taskNotFoundMessage)
	}
	s.logger.Error("Task service: store failure",
		"op", op,
		"user_id", p.User.ID,
		"task_id", id,
		"error", err.Error())
	return model.NewInternalError("failed to "+op+" task", err)
}
