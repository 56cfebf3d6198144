package task

import (
	"errors"
	"time"
)

type Task struct {
	ID          string     `json:"_id"`
	Text        string     `json:"text"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
	OwnerID     string     `json:"_creator"`
	CreatedAt   time.Time  `json:"-"`
}

// Returned for both "does not exist" and "exists but owned by someone else"
// so callers cannot probe another user's task ids.
var ErrNotFound = errors.New("task not found")

type CreateTaskRequest struct {
	Text string `json:"text" binding:"required,min=1"`
}

// Partial update. A nil Text leaves the stored text untouched; completed
// defaults to false when omitted and completedAt is derived from it.
type UpdateTaskRequest struct {
	Text      *string `json:"text" binding:"omitempty,min=1"`
	Completed *bool   `json:"completed"`
}
