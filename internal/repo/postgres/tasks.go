package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taskhub/taskhub/internal/domain/task"
	"github.com/taskhub/taskhub/internal/observability"
	"github.com/taskhub/taskhub/internal/utils"
)

// TasksRepo scopes every statement to the owner. A task that exists but
// belongs to someone else is indistinguishable from one that does not exist.
type TasksRepo struct {
	pool    *pgxpool.Pool
	metrics *observability.Prom
}

func NewTasksRepo(pool *pgxpool.Pool, metrics *observability.Prom) *TasksRepo {
	return &TasksRepo{pool: pool, metrics: metrics}
}

func (r *TasksRepo) Create(ctx context.Context, ownerID, text string) (task.Task, error) {
	t := task.Task{
		ID:        uuid.NewString(),
		Text:      text,
		Completed: false,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}

	err := r.metrics.ObserveDB("tasks.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO tasks (id, owner_id, text, completed, completed_at, created_at)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			t.ID, t.OwnerID, t.Text, t.Completed, t.CompletedAt, t.CreatedAt,
		)
		return err
	})

	if err != nil {
		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) GetByID(ctx context.Context, ownerID, id string) (task.Task, error) {
	var t task.Task

	err := r.metrics.ObserveDB("tasks.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, owner_id, text, completed, completed_at, created_at
			 FROM tasks
			 WHERE id = $1 AND owner_id = $2`,
			id, ownerID,
		).Scan(&t.ID, &t.OwnerID, &t.Text, &t.Completed, &t.CompletedAt, &t.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}

		return task.Task{}, err
	}

	return t, nil
}

// List returns the owner's tasks in insertion order.
func (r *TasksRepo) List(ctx context.Context, ownerID string) ([]task.Task, error) {
	var out []task.Task

	err := r.metrics.ObserveDB("tasks.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, owner_id, text, completed, completed_at, created_at
			 FROM tasks
			 WHERE owner_id = $1
			 ORDER BY created_at ASC, id ASC`,
			ownerID,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]task.Task, 0)

		for rows.Next() {
			var t task.Task

			err = rows.Scan(&t.ID, &t.OwnerID, &t.Text, &t.Completed, &t.CompletedAt, &t.CreatedAt)

			if err != nil {
				return err
			}

			out = append(out, t)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// ListCursor pages through the owner's tasks in insertion order. The cursor
// is the (createdAt, id) of the last item of the previous page.
func (r *TasksRepo) ListCursor(ctx context.Context, ownerID string, limit int, after *utils.TaskCursor) ([]task.Task, *string, bool, error) {
	var out []task.Task

	err := r.metrics.ObserveDB("tasks.list_cursor", func() error {
		query := `SELECT id, owner_id, text, completed, completed_at, created_at
			 FROM tasks
			 WHERE owner_id = $1`
		args := []interface{}{ownerID}

		if after != nil {
			query += ` AND (created_at, id) > ($2, $3)`
			args = append(args, after.CreatedAt, after.ID)
		}

		// fetch one extra row to learn whether another page exists
		query += fmt.Sprintf(` ORDER BY created_at ASC, id ASC LIMIT $%d`, len(args)+1)
		args = append(args, limit+1)

		rows, err := r.pool.Query(ctx, query, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]task.Task, 0, limit+1)

		for rows.Next() {
			var t task.Task

			err = rows.Scan(&t.ID, &t.OwnerID, &t.Text, &t.Completed, &t.CompletedAt, &t.CreatedAt)

			if err != nil {
				return err
			}

			out = append(out, t)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, nil, false, err
	}

	hasMore := len(out) > limit

	if hasMore {
		out = out[:limit]
	}

	var next *string

	if hasMore && len(out) > 0 {
		last := out[len(out)-1]

		encoded, err := utils.EncodeTaskCursor(last.CreatedAt, last.ID)

		if err != nil {
			return nil, nil, false, err
		}

		next = &encoded
	}

	return out, next, hasMore, nil
}

// Update applies a partial edit. completedAt is derived on every call: set
// when completed is true, cleared when it is false or omitted.
func (r *TasksRepo) Update(ctx context.Context, ownerID, id string, req task.UpdateTaskRequest) (task.Task, error) {
	completed := req.Completed != nil && *req.Completed

	var completedAt *time.Time

	if completed {
		now := time.Now().UTC()
		completedAt = &now
	}

	var t task.Task

	err := r.metrics.ObserveDB("tasks.update", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE tasks
				SET text = COALESCE($3, text),
					completed = $4,
					completed_at = $5
			 WHERE id = $1 AND owner_id = $2
			 RETURNING id, owner_id, text, completed, completed_at, created_at`,
			id, ownerID, req.Text, completed, completedAt,
		).Scan(&t.ID, &t.OwnerID, &t.Text, &t.Completed, &t.CompletedAt, &t.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}

		return task.Task{}, err
	}

	return t, nil
}

// Delete removes the task and returns the deleted record.
func (r *TasksRepo) Delete(ctx context.Context, ownerID, id string) (task.Task, error) {
	var t task.Task

	err := r.metrics.ObserveDB("tasks.delete", func() error {
		return r.pool.QueryRow(ctx,
			`DELETE FROM tasks
			 WHERE id = $1 AND owner_id = $2
			 RETURNING id, owner_id, text, completed, completed_at, created_at`,
			id, ownerID,
		).Scan(&t.ID, &t.OwnerID, &t.Text, &t.Completed, &t.CompletedAt, &t.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}

		return task.Task{}, err
	}

	return t, nil
}
