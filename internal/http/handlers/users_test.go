package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhub/taskhub/internal/auth"
	"github.com/taskhub/taskhub/internal/http/handlers"
	"github.com/taskhub/taskhub/internal/http/middlewares"
	"github.com/taskhub/taskhub/internal/repo/memory"
	"github.com/taskhub/taskhub/internal/session"
)

// Keep gin quiet during tests.

func init() {
	gin.SetMode(gin.TestMode)
}

// newUserRouter wires the user routes exactly as the real router does, on
// top of the in-memory stores.
func newUserRouter() *gin.Engine {
	users := memory.NewUsersRepo()
	sessions := session.NewStore(memory.NewSessionsRepo(), nil)
	tokens := auth.NewManager("test-secret-key", time.Hour)

	uh := handlers.NewUsersHandler(users, sessions, tokens)
	am := middlewares.NewAuthMiddleware(tokens, sessions, users, nil)

	r := gin.New()
	r.POST("/users", uh.SignUp)
	r.POST("/users/login", uh.Login)

	authed := r.Group("/")
	authed.Use(am.RequireAuth())
	authed.GET("/users/me", uh.Me)
	authed.DELETE("/users/me/token", uh.Logout)

	return r
}

func doJSON(r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("x-auth", token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestSignUp(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		wantStatusCode int
	}{
		{
			name:           "success",
			body:           `{"email":"a@x.com","password":"123456"}`,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "invalid_email",
			body:           `{"email":"not-an-email","password":"123456"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "short_password",
			body:           `{"email":"a@x.com","password":"12345"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "missing_body",
			body:           `{}`,
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			r := newUserRouter()

			w := doJSON(r, http.MethodPost, "/users", tt.body, "")

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestSignUpResponseShape(t *testing.T) {
	r := newUserRouter()

	w := doJSON(r, http.MethodPost, "/users", `{"email":"a@x.com","password":"123456"}`, "")

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	if w.Header().Get("x-auth") == "" {
		t.Fatal("signup response is missing the x-auth header")
	}

	var body map[string]interface{}

	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}

	if body["email"] != "a@x.com" {
		t.Errorf("email = %v", body["email"])
	}
	if id, _ := body["_id"].(string); id == "" {
		t.Error("body is missing _id")
	}

	// the sanitized view must not carry credentials
	for _, forbidden := range []string{"password", "passwordHash", "sessions", "tokens"} {
		if _, ok := body[forbidden]; ok {
			t.Errorf("body leaked field %q", forbidden)
		}
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	r := newUserRouter()

	if w := doJSON(r, http.MethodPost, "/users", `{"email":"a@x.com","password":"123456"}`, ""); w.Code != http.StatusOK {
		t.Fatalf("first signup got %d", w.Code)
	}

	w := doJSON(r, http.MethodPost, "/users", `{"email":"a@x.com","password":"other-password"}`, "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate signup got %d, want 400", w.Code)
	}
}

func TestLogin(t *testing.T) {
	r := newUserRouter()

	if w := doJSON(r, http.MethodPost, "/users", `{"email":"a@x.com","password":"123456"}`, ""); w.Code != http.StatusOK {
		t.Fatalf("signup got %d", w.Code)
	}

	good := doJSON(r, http.MethodPost, "/users/login", `{"email":"a@x.com","password":"123456"}`, "")

	if good.Code != http.StatusOK {
		t.Fatalf("login got %d, body=%s", good.Code, good.Body.String())
	}
	if good.Header().Get("x-auth") == "" {
		t.Fatal("login response is missing the x-auth header")
	}

	// wrong password and unknown email must be indistinguishable
	wrongPass := doJSON(r, http.MethodPost, "/users/login", `{"email":"a@x.com","password":"wrong-pass"}`, "")
	unknown := doJSON(r, http.MethodPost, "/users/login", `{"email":"nobody@x.com","password":"123456"}`, "")

	if wrongPass.Code != http.StatusBadRequest || unknown.Code != http.StatusBadRequest {
		t.Fatalf("bad logins got %d and %d, want 400 for both", wrongPass.Code, unknown.Code)
	}
	if wrongPass.Body.String() != unknown.Body.String() {
		t.Error("wrong-password and unknown-email responses differ")
	}
}

func TestMeRequiresValidSession(t *testing.T) {
	r := newUserRouter()

	signup := doJSON(r, http.MethodPost, "/users", `{"email":"a@x.com","password":"123456"}`, "")
	token := signup.Header().Get("x-auth")

	if w := doJSON(r, http.MethodGet, "/users/me", "", token); w.Code != http.StatusOK {
		t.Fatalf("me with valid token got %d", w.Code)
	}

	if w := doJSON(r, http.MethodGet, "/users/me", "", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("me without token got %d, want 401", w.Code)
	}

	if w := doJSON(r, http.MethodGet, "/users/me", "", "garbage-token"); w.Code != http.StatusUnauthorized {
		t.Fatalf("me with garbage token got %d, want 401", w.Code)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	r := newUserRouter()

	signup := doJSON(r, http.MethodPost, "/users", `{"email":"a@x.com","password":"123456"}`, "")
	token := signup.Header().Get("x-auth")

	if w := doJSON(r, http.MethodDelete, "/users/me/token", "", token); w.Code != http.StatusOK {
		t.Fatalf("logout got %d", w.Code)
	}

	// the signature is still valid, but the session is gone
	if w := doJSON(r, http.MethodGet, "/users/me", "", token); w.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout got %d, want 401", w.Code)
	}
}

func TestRevokedTokenRejectedWhileOtherSessionSurvives(t *testing.T) {
	r := newUserRouter()

	signup := doJSON(r, http.MethodPost, "/users", `{"email":"a@x.com","password":"123456"}`, "")
	first := signup.Header().Get("x-auth")

	login := doJSON(r, http.MethodPost, "/users/login", `{"email":"a@x.com","password":"123456"}`, "")
	second := login.Header().Get("x-auth")

	if w := doJSON(r, http.MethodDelete, "/users/me/token", "", first); w.Code != http.StatusOK {
		t.Fatalf("logout got %d", w.Code)
	}

	if w := doJSON(r, http.MethodGet, "/users/me", "", first); w.Code != http.StatusUnauthorized {
		t.Fatalf("revoked token got %d, want 401", w.Code)
	}
	if w := doJSON(r, http.MethodGet, "/users/me", "", second); w.Code != http.StatusOK {
		t.Fatalf("second session got %d, want 200", w.Code)
	}
}
