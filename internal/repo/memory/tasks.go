package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub/internal/domain/task"
	"github.com/taskhub/taskhub/internal/utils"
)

type TasksRepo struct {
	mu    sync.RWMutex
	items map[string]task.Task
	order []string // ids in insertion order
}

func NewTasksRepo() *TasksRepo {
	return &TasksRepo{
		items: make(map[string]task.Task),
	}
}

func (r *TasksRepo) Create(ctx context.Context, ownerID, text string) (task.Task, error) {
	t := task.Task{
		ID:        uuid.NewString(),
		Text:      text,
		Completed: false,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}

	r.mu.Lock()
	r.items[t.ID] = t
	r.order = append(r.order, t.ID)
	r.mu.Unlock()

	return t, nil
}

func (r *TasksRepo) GetByID(ctx context.Context, ownerID, id string) (task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[id]

	// absent and foreign-owned look identical to the caller
	if !ok || t.OwnerID != ownerID {
		return task.Task{}, task.ErrNotFound
	}

	return t, nil
}

func (r *TasksRepo) List(ctx context.Context, ownerID string) ([]task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]task.Task, 0)

	for _, id := range r.order {
		t, ok := r.items[id]

		if ok && t.OwnerID == ownerID {
			out = append(out, t)
		}
	}

	return out, nil
}

func (r *TasksRepo) ListCursor(ctx context.Context, ownerID string, limit int, after *utils.TaskCursor) ([]task.Task, *string, bool, error) {
	all, err := r.List(ctx, ownerID)

	if err != nil {
		return nil, nil, false, err
	}

	start := 0

	if after != nil {
		for i, t := range all {
			if t.ID == after.ID {
				start = i + 1
				break
			}
		}
	}

	rest := all[start:]

	hasMore := len(rest) > limit

	if hasMore {
		rest = rest[:limit]
	}

	var next *string

	if hasMore && len(rest) > 0 {
		last := rest[len(rest)-1]

		encoded, err := utils.EncodeTaskCursor(last.CreatedAt, last.ID)

		if err != nil {
			return nil, nil, false, err
		}

		next = &encoded
	}

	return rest, next, hasMore, nil
}

func (r *TasksRepo) Update(ctx context.Context, ownerID, id string, req task.UpdateTaskRequest) (task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]

	if !ok || t.OwnerID != ownerID {
		return task.Task{}, task.ErrNotFound
	}

	if req.Text != nil {
		t.Text = *req.Text
	}

	// completedAt is derived, never client-supplied
	if req.Completed != nil && *req.Completed {
		now := time.Now().UTC()
		t.Completed = true
		t.CompletedAt = &now
	} else {
		t.Completed = false
		t.CompletedAt = nil
	}

	r.items[id] = t

	return t, nil
}

func (r *TasksRepo) Delete(ctx context.Context, ownerID, id string) (task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]

	if !ok || t.OwnerID != ownerID {
		return task.Task{}, task.ErrNotFound
	}

	delete(r.items, id)

	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return t, nil
}
