package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhub/taskhub/internal/auth"
	"github.com/taskhub/taskhub/internal/config"
	"github.com/taskhub/taskhub/internal/domain/user"
	"github.com/taskhub/taskhub/internal/observability"
)

// AuthHeader carries the session token on every authenticated request.
const AuthHeader = "x-auth"

// Small interfaces so tests can fake each collaborator easily.

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
	HashSessionToken(raw string) string
}

type SessionChecker interface {
	Find(ctx context.Context, userID, kind, tokenHash string) error
}

type UserGetter interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type AuthMiddleware struct {
	tokens   TokenVerifier
	sessions SessionChecker
	users    UserGetter
	metrics  *observability.Prom
}

func NewAuthMiddleware(tokens TokenVerifier, sessions SessionChecker, users UserGetter, metrics *observability.Prom) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:   tokens,
		sessions: sessions,
		users:    users,
		metrics:  metrics,
	}
}

// RequireAuth is the gate in front of every owner-scoped route: signature
// check, then session-membership check, then the user rides on the context.
// It has no side effects beyond context attachment.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(AuthHeader)

		if raw == "" {
			m.metrics.AuthFailure("missing")
			abortUnauthenticated(c, "Missing x-auth token")
			return
		}

		claims, err := m.tokens.Verify(raw)

		if err != nil {
			m.metrics.AuthFailure("invalid")
			abortUnauthenticated(c, "Invalid or expired token")
			return
		}

		cctx, cancel := config.WithTimeout(2 * time.Second)

		defer cancel()

		// a valid signature is not enough: the token must still be listed
		err = m.sessions.Find(cctx, claims.UserID, claims.Kind, m.tokens.HashSessionToken(raw))

		if err != nil {
			m.metrics.AuthFailure("revoked")
			abortUnauthenticated(c, "Invalid or expired token")
			return
		}

		u, err := m.users.GetByID(cctx, claims.UserID)

		if err != nil {
			m.metrics.AuthFailure("revoked")
			abortUnauthenticated(c, "Invalid or expired token")
			return
		}

		c.Set(ctxUserKey, u)
		c.Set(ctxTokenKey, raw)

		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "unauthenticated",
			"message": message,
		},
	})
}

// Helpers so handlers don't need to know the magic keys.

func UserFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}

func TokenFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxTokenKey)
	if !ok {
		return "", false
	}
	t, ok := v.(string)
	return t, ok && t != ""
}

func UserIDFromContext(c *gin.Context) (string, bool) {
	u, ok := UserFromContext(c)
	return u.ID, ok && u.ID != ""
}
