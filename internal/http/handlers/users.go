package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhub/taskhub/internal/auth"
	"github.com/taskhub/taskhub/internal/config"
	"github.com/taskhub/taskhub/internal/domain/user"
	"github.com/taskhub/taskhub/internal/http/middlewares"
	"github.com/taskhub/taskhub/internal/security"
	"github.com/taskhub/taskhub/internal/session"
)

type UserStore interface {
	Create(ctx context.Context, email, passwordHash string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type UsersHandler struct {
	users    UserStore
	sessions *session.Store
	tokens   *auth.Manager
}

func NewUsersHandler(users UserStore, sessions *session.Store, tokens *auth.Manager) *UsersHandler {
	return &UsersHandler{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
	}
}

type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignUp handles POST /users: validate, hash, persist, issue a session.
// The fresh token is returned in the x-auth header, never in the body.
func (h *UsersHandler) SignUp(ctx *gin.Context) {
	var req SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u, err := h.users.Create(cctx, req.Email, hash)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondBadRequest(ctx, "email_taken", "Email is already in use.", nil)
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	if err := h.issueSession(cctx, ctx, u); err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	ctx.JSON(http.StatusOK, u.View())
}

// Login handles POST /users/login. Unknown email and wrong password produce
// the same answer on purpose.
func (h *UsersHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		RespondBadRequest(ctx, "invalid_credentials", "Email or password is incorrect.", nil)
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondBadRequest(ctx, "invalid_credentials", "Email or password is incorrect.", nil)
		return
	}

	if err := h.issueSession(cctx, ctx, foundUser); err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	ctx.JSON(http.StatusOK, foundUser.View())
}

// Me handles GET /users/me for the already-authenticated caller.
func (h *UsersHandler) Me(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnauthenticated(ctx, "Missing identity")
		return
	}

	ctx.JSON(http.StatusOK, u.View())
}

// Logout handles DELETE /users/me/token: the presented token is removed
// from the session list, which revokes it even though its signature stays
// valid until expiry.
func (h *UsersHandler) Logout(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)
	raw, okToken := middlewares.TokenFromContext(ctx)

	if !ok || !okToken {
		RespondUnauthenticated(ctx, "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if err := h.sessions.Remove(cctx, u.ID, h.tokens.HashSessionToken(raw)); err != nil {
		RespondInternal(ctx, "Could not log out")
		return
	}

	ctx.Status(http.StatusOK)
}

func (h *UsersHandler) issueSession(cctx context.Context, ctx *gin.Context, u user.User) error {
	raw, _, err := h.tokens.Issue(u.ID)

	if err != nil {
		return err
	}

	err = h.sessions.Add(cctx, u.ID, auth.KindAuth, h.tokens.HashSessionToken(raw))

	if err != nil {
		return err
	}

	ctx.Header(middlewares.AuthHeader, raw)

	return nil
}
