package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhub/taskhub/internal/config"
	"github.com/taskhub/taskhub/internal/domain/task"
	"github.com/taskhub/taskhub/internal/http/middlewares"
	"github.com/taskhub/taskhub/internal/utils"
)

type TaskStore interface {
	Create(ctx context.Context, ownerID, text string) (task.Task, error)
	GetByID(ctx context.Context, ownerID, id string) (task.Task, error)
	List(ctx context.Context, ownerID string) ([]task.Task, error)
	ListCursor(ctx context.Context, ownerID string, limit int, after *utils.TaskCursor) ([]task.Task, *string, bool, error)
	Update(ctx context.Context, ownerID, id string, req task.UpdateTaskRequest) (task.Task, error)
	Delete(ctx context.Context, ownerID, id string) (task.Task, error)
}

// TasksHandler serves /todos. The owner is always the authenticated user;
// nothing the client sends can widen the scope.
type TasksHandler struct {
	repo TaskStore
}

func NewTasksHandler(repo TaskStore) *TasksHandler {
	return &TasksHandler{repo: repo}
}

const maxListLimit = 100

func (h *TasksHandler) Create(ctx *gin.Context) {
	ownerID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthenticated(ctx, "Missing identity")
		return
	}

	var req task.CreateTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	t, err := h.repo.Create(cctx, ownerID, req.Text)

	if err != nil {
		RespondInternal(ctx, "Could not create todo")
		return
	}

	ctx.JSON(http.StatusOK, t)
}

func (h *TasksHandler) List(ctx *gin.Context) {
	ownerID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthenticated(ctx, "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	// without a limit the whole list comes back in insertion order
	rawLimit := ctx.Query("limit")

	if rawLimit == "" {
		todos, err := h.repo.List(cctx, ownerID)

		if err != nil {
			RespondInternal(ctx, "Could not list todos")
			return
		}

		RespondJSONWithETag(ctx, http.StatusOK, gin.H{"todos": todos})
		return
	}

	limit, err := strconv.Atoi(rawLimit)

	if err != nil || limit < 1 || limit > maxListLimit {
		RespondBadRequest(ctx, "invalid_limit", "limit must be between 1 and 100", nil)
		return
	}

	var after *utils.TaskCursor

	if raw := ctx.Query("cursor"); raw != "" {
		c, err := utils.DecodeTaskCursor(raw)

		if err != nil {
			RespondBadRequest(ctx, "invalid_cursor", "cursor is malformed", nil)
			return
		}

		after = &c
	}

	todos, next, hasMore, err := h.repo.ListCursor(cctx, ownerID, limit, after)

	if err != nil {
		RespondInternal(ctx, "Could not list todos")
		return
	}

	payload := gin.H{"todos": todos, "hasMore": hasMore}

	if next != nil {
		payload["nextCursor"] = *next
	}

	RespondJSONWithETag(ctx, http.StatusOK, payload)
}

func (h *TasksHandler) GetByID(ctx *gin.Context) {
	h.withOwnedTask(ctx, func(cctx context.Context, ownerID, id string) (task.Task, error) {
		return h.repo.GetByID(cctx, ownerID, id)
	}, true)
}

func (h *TasksHandler) Update(ctx *gin.Context) {
	ownerID, id, ok := h.ownedTaskParams(ctx)

	if !ok {
		return
	}

	var req task.UpdateTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	t, err := h.repo.Update(cctx, ownerID, id, req)

	if err != nil {
		h.respondTaskError(ctx, err, "Could not update todo")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"todo": t})
}

func (h *TasksHandler) Delete(ctx *gin.Context) {
	h.withOwnedTask(ctx, func(cctx context.Context, ownerID, id string) (task.Task, error) {
		return h.repo.Delete(cctx, ownerID, id)
	}, false)
}

// ownedTaskParams pulls the identity and validates the :id param. Malformed
// ids get the same 404 as missing ones, before any store call.
func (h *TasksHandler) ownedTaskParams(ctx *gin.Context) (ownerID, id string, ok bool) {
	ownerID, hasUser := middlewares.UserIDFromContext(ctx)

	if !hasUser {
		RespondUnauthenticated(ctx, "Missing identity")
		return "", "", false
	}

	id = ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondNotFound(ctx, "Todo not found")
		return "", "", false
	}

	return ownerID, id, true
}

func (h *TasksHandler) withOwnedTask(ctx *gin.Context, fn func(cctx context.Context, ownerID, id string) (task.Task, error), etag bool) {
	ownerID, id, ok := h.ownedTaskParams(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	t, err := fn(cctx, ownerID, id)

	if err != nil {
		h.respondTaskError(ctx, err, "Could not fetch todo")
		return
	}

	if etag {
		RespondJSONWithETag(ctx, http.StatusOK, gin.H{"todo": t})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"todo": t})
}

func (h *TasksHandler) respondTaskError(ctx *gin.Context, err error, fallback string) {
	if errors.Is(err, task.ErrNotFound) {
		RespondNotFound(ctx, "Todo not found")
		return
	}

	RespondInternal(ctx, fallback)
}
