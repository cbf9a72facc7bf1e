package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dtroode/taskmanager-server/internal/model"
)

var _ model.TaskStore = (*TaskRepository)(nil)

const taskColumns = `id, owner_id, description, completed, created_at, updated_at`

// sortColumns maps client sort fields onto columns. Nothing else reaches ORDER BY.
var sortColumns = map[model.TaskSortField]string{
	model.SortByCreatedAt:   "created_at",
	model.SortByUpdatedAt:   "updated_at",
	model.SortByDescription: "description",
	model.SortByCompleted:   "completed",
}

type TaskRepository struct {
	db DBTX
}

func NewTaskRepository(db DBTX) *TaskRepository {
	return &TaskRepository{
		db: db,
	}
}

func scanTask(row scanner) (model.Task, error) {
	var t model.Task
	err := row.Scan(&t.ID, &t.OwnerID, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *TaskRepository) Create(ctx context.Context, task model.Task) (model.Task, error) {
	query := `INSERT INTO tasks (id, owner_id, description, completed)
			  VALUES ($1, $2, $3, $4)
			  RETURNING ` + taskColumns

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}

	saved, err := scanTask(r.db.QueryRowContext(ctx, query, task.ID, task.OwnerID, task.Description, task.Completed))
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.Task{}, model.ErrNotFound
		}
		return model.Task{}, fmt.Errorf("failed to create task: %w", err)
	}

	return saved, nil
}

func (r *TaskRepository) GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND owner_id = $2`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, model.ErrNotFound
		}
		return model.Task{}, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, q model.TaskQuery) ([]model.Task, error) {
	query, args := buildListQuery(ownerID, q)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return tasks, nil
}

func buildListQuery(ownerID uuid.UUID, q model.TaskQuery) (string, []any) {
	var b strings.Builder
	args := []any{ownerID}

	b.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = $1`)

	if q.Completed != nil {
		args = append(args, *q.Completed)
		fmt.Fprintf(&b, ` AND completed = $%d`, len(args))
	}

	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = sortColumns[model.SortByCreatedAt]
	}
	dir := "ASC"
	if q.SortDesc {
		dir = "DESC"
	}
	fmt.Fprintf(&b, ` ORDER BY %s %s, id %s`, column, dir, dir)

	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&b, ` LIMIT $%d`, len(args))
	}
	if q.Skip > 0 {
		args = append(args, q.Skip)
		fmt.Fprintf(&b, ` OFFSET $%d`, len(args))
	}

	return b.String(), args
}

// UpdateByOwner applies update only if the task belongs to ownerID.
func (r *TaskRepository) UpdateByOwner(ctx context.Context, ownerID, id uuid.UUID, update model.TaskUpdate) (model.Task, error) {
	if update.IsEmpty() {
		return r.GetByOwner(ctx, ownerID, id)
	}

	var (
		sets []string
		args []any
	)
	if update.Description != nil {
		args = append(args, *update.Description)
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)))
	}
	if update.Completed != nil {
		args = append(args, *update.Completed)
		sets = append(sets, fmt.Sprintf("completed = $%d", len(args)))
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id, ownerID)

	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $%d AND owner_id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args)-1, len(args), taskColumns)

	task, err := scanTask(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, model.ErrNotFound
		}
		return model.Task{}, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// DeleteByOwner deletes and returns the task in one statement.
func (r *TaskRepository) DeleteByOwner(ctx context.Context, ownerID, id uuid.UUID) (model.Task, error) {
	query := `DELETE FROM tasks WHERE id = $1 AND owner_id = $2 RETURNING ` + taskColumns

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, model.ErrNotFound
		}
		return model.Task{}, fmt.Errorf("failed to delete task: %w", err)
	}

	return task, nil
}

func (r *TaskRepository) DeleteAllByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	const query = `DELETE FROM tasks WHERE owner_id = $1`

	res, err := r.db.ExecContext(ctx, query, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete tasks: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted tasks: %w", err)
	}
	return n, nil
}
