package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/taskhub/taskhub/internal/domain/user"
)

func TestUsersCreateAndLookup(t *testing.T) {
	ctx := context.Background()
	r := NewUsersRepo()

	created, err := r.Create(ctx, "a@x.com", "hashed")
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if created.ID == "" {
		t.Fatal("Create() returned empty id")
	}

	byEmail, err := r.GetByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("GetByEmail() = %v", err)
	}
	if byEmail.ID != created.ID {
		t.Error("GetByEmail() returned a different user")
	}

	byID, err := r.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID() = %v", err)
	}
	if byID.Email != "a@x.com" {
		t.Errorf("GetByID().Email = %q", byID.Email)
	}
}

func TestUsersDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	r := NewUsersRepo()

	if _, err := r.Create(ctx, "a@x.com", "hash1"); err != nil {
		t.Fatalf("Create() = %v", err)
	}

	if _, err := r.Create(ctx, "a@x.com", "hash2"); !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("second Create() = %v, want ErrEmailTaken", err)
	}
}

func TestUsersUnknownLookups(t *testing.T) {
	ctx := context.Background()
	r := NewUsersRepo()

	if _, err := r.GetByEmail(ctx, "nobody@x.com"); !errors.Is(err, user.ErrNotFound) {
		t.Errorf("GetByEmail(unknown) = %v, want ErrNotFound", err)
	}
	if _, err := r.GetByID(ctx, "missing-id"); !errors.Is(err, user.ErrNotFound) {
		t.Errorf("GetByID(unknown) = %v, want ErrNotFound", err)
	}
}
