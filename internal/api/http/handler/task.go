package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dtroode/taskmanager-server/internal/logger"
	"github.com/dtroode/taskmanager-server/internal/model"
)

// TaskService defines the owner-scoped task operations.
type TaskService interface {
	Create(ctx context.Context, p model.Principal, draft model.TaskDraft) (model.Task, error)
	Get(ctx context.Context, p model.Principal, id uuid.UUID) (model.Task, error)
	List(ctx context.Context, p model.Principal, query model.TaskQuery) ([]model.Task, error)
	Update(ctx context.Context, p model.Principal, id uuid.UUID, update model.TaskUpdate) (model.Task, error)
	Delete(ctx context.Context, p model.Principal, id uuid.UUID) (model.Task, error)
}

// Task handles the /tasks endpoints.
type Task struct {
	tasks          TaskService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewTask creates a new Task handler.
func NewTask(tasks TaskService, contextManager model.ContextManager, logger *logger.Logger) *Task {
	return &Task{tasks: tasks, contextManager: contextManager, logger: logger}
}

func (h *Task) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	var draft model.TaskDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	task, err := h.tasks.Create(r.Context(), p, draft)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

func (h *Task) List(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	tasks, err := h.tasks.List(r.Context(), p, model.ParseTaskQuery(r.URL.Query()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}

	writeJSON(w, http.StatusOK, tasks)
}

func (h *Task) Get(w http.ResponseWriter, r *http.Request) {
	p, id, ok := h.target(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.Get(r.Context(), p, id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// Update accepts only description and completed. Any other key rejects the
// whole request.
func (h *Task) Update(w http.ResponseWriter, r *http.Request) {
	p, id, ok := h.target(w, r)
	if !ok {
		return
	}

	update, err := model.DecodeTaskUpdate(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	task, err := h.tasks.Update(r.Context(), p, id, update)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (h *Task) Delete(w http.ResponseWriter, r *http.Request) {
	p, id, ok := h.target(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.Delete(r.Context(), p, id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (h *Task) principal(w http.ResponseWriter, r *http.Request) (model.Principal, bool) {
	p, ok := h.contextManager.GetPrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, model.NewUnauthorizedError("missing principal"))
	}
	return p, ok
}

// target resolves the principal and the task id from the URL. A malformed
// id is reported like a missing task.
func (h *Task) target(w http.ResponseWriter, r *http.Request) (model.Principal, uuid.UUID, bool) {
	p, ok := h.principal(w, r)
	if !ok {
		return model.Principal{}, uuid.Nil, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, model.NewNotFoundError("task not found"))
		return model.Principal{}, uuid.Nil, false
	}

	return p, id, true
}
