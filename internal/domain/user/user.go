package user

import (
	"errors"
	"time"
)

type User struct {
	ID           string    `json:"_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already in use")
)

// View is the sanitized shape returned to callers: id and email only.
// Password hashes and session entries never leave the store layer.
type View struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
}

func (u User) View() View {
	return View{ID: u.ID, Email: u.Email}
}
