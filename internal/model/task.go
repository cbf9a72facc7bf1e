package model

import (
	"context"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStore defines owner-scoped persistence operations for tasks.
// Every lookup and mutation matches on both the task id and the owner id.
type TaskStore interface {
	Create(ctx context.Context, task Task) (Task, error)
	GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (Task, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, query TaskQuery) ([]Task, error)
	UpdateByOwner(ctx context.Context, ownerID, id uuid.UUID, update TaskUpdate) (Task, error)
	DeleteByOwner(ctx context.Context, ownerID, id uuid.UUID) (Task, error)
	DeleteAllByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

// Task is a unit of work owned by exactly one user.
type Task struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	OwnerID     uuid.UUID `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TaskDraft is the create input. The owner always comes from the caller's
// identity, so it has no field here.
type TaskDraft struct {
	Description string `json:"description" validate:"required"`
	Completed   bool   `json:"completed"`
}

// Normalize trims the description.
func (d *TaskDraft) Normalize() {
	d.Description = strings.TrimSpace(d.Description)
}

// Validate checks the draft.
func (d TaskDraft) Validate() error {
	return validateStruct(d)
}

// TaskUpdate is the only mutation accepted for a task: description and
// completion. Nil fields are left untouched.
type TaskUpdate struct {
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// DecodeTaskUpdate reads a TaskUpdate from JSON. Any other key, including
// owner, fails the whole update.
func DecodeTaskUpdate(r io.Reader) (TaskUpdate, error) {
	var u TaskUpdate
	if err := decodeStrict(r, &u, "description", "completed"); err != nil {
		return TaskUpdate{}, err
	}
	return u, nil
}

// Normalize trims the description when present.
func (u *TaskUpdate) Normalize() {
	if u.Description != nil {
		d := strings.TrimSpace(*u.Description)
		u.Description = &d
	}
}

// Validate rejects a blank description.
func (u TaskUpdate) Validate() error {
	if u.Description != nil {
		return validateVar("description", *u.Description, "required")
	}
	return nil
}

// IsEmpty reports whether the update changes nothing.
func (u TaskUpdate) IsEmpty() bool {
	return u.Description == nil && u.Completed == nil
}

// TaskSortField is a sortable task attribute as named by clients.
type TaskSortField string

const (
	SortByCreatedAt   TaskSortField = "createdAt"
	SortByUpdatedAt   TaskSortField = "updatedAt"
	SortByDescription TaskSortField = "description"
	SortByCompleted   TaskSortField = "completed"
)

// Valid reports whether f is one of the sortable fields.
func (f TaskSortField) Valid() bool {
	switch f {
	case SortByCreatedAt, SortByUpdatedAt, SortByDescription, SortByCompleted:
		return true
	}
	return false
}

// TaskQuery filters, orders and pages a task listing.
// Zero Limit and Skip mean no limit and no offset.
type TaskQuery struct {
	Completed *bool
	SortBy    TaskSortField
	SortDesc  bool
	Limit     int
	Skip      int
}

// ParseTaskQuery builds a TaskQuery from URL parameters. Parsing never fails:
// unusable values fall back to the defaults.
//
//	completed=true|false   empty means no filter, anything other than "true" is false
//	sortBy=<field>_<dir>   dir "asc" sorts ascending, anything else descending
//	limit=<n>, skip=<n>    non-numeric or negative values are ignored
func ParseTaskQuery(values url.Values) TaskQuery {
	q := TaskQuery{SortBy: SortByCreatedAt}

	if raw := values.Get("completed"); raw != "" {
		completed := raw == "true"
		q.Completed = &completed
	}

	if sortBy := values.Get("sortBy"); sortBy != "" {
		field, dir, _ := strings.Cut(sortBy, "_")
		if f := TaskSortField(field); f.Valid() {
			q.SortBy = f
			q.SortDesc = dir != "asc"
		}
	}

	q.Limit = parseCount(values.Get("limit"))
	q.Skip = parseCount(values.Get("skip"))

	return q
}

func parseCount(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
