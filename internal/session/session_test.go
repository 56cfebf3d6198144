package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// fake repo tracking calls, so cache interplay can be asserted

type fakeRepo struct {
	sessions map[string]string // userID+tokenHash -> kind
	finds    int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{sessions: make(map[string]string)}
}

func (f *fakeRepo) Add(ctx context.Context, userID, kind, tokenHash string) error {
	f.sessions[userID+"/"+tokenHash] = kind
	return nil
}

func (f *fakeRepo) Remove(ctx context.Context, userID, tokenHash string) error {
	delete(f.sessions, userID+"/"+tokenHash)
	return nil
}

func (f *fakeRepo) Find(ctx context.Context, userID, kind, tokenHash string) error {
	f.finds++
	if f.sessions[userID+"/"+tokenHash] != kind {
		return ErrNotFound
	}
	return nil
}

func newStoreWithRedis(t *testing.T, repo Repo) *Store {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewStore(repo, NewCacheWithClient(rdb, time.Minute))
}

func TestStoreAddFindRemove(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	s := newStoreWithRedis(t, repo)

	if err := s.Find(ctx, "u1", "auth", "h1"); err != ErrNotFound {
		t.Fatalf("Find() before Add() = %v, want ErrNotFound", err)
	}

	if err := s.Add(ctx, "u1", "auth", "h1"); err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}

	if err := s.Find(ctx, "u1", "auth", "h1"); err != nil {
		t.Fatalf("Find() after Add() = %v", err)
	}

	if err := s.Remove(ctx, "u1", "h1"); err != nil {
		t.Fatalf("Remove() unexpected error: %v", err)
	}

	// revoked immediately, even though the cache was warm
	if err := s.Find(ctx, "u1", "auth", "h1"); err != ErrNotFound {
		t.Fatalf("Find() after Remove() = %v, want ErrNotFound", err)
	}

	// removing again stays idempotent
	if err := s.Remove(ctx, "u1", "h1"); err != nil {
		t.Fatalf("second Remove() = %v", err)
	}
}

func TestStoreServesWarmLookupsFromCache(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	s := newStoreWithRedis(t, repo)

	if err := s.Add(ctx, "u1", "auth", "h1"); err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := s.Find(ctx, "u1", "auth", "h1"); err != nil {
			t.Fatalf("Find() #%d = %v", i, err)
		}
	}

	if repo.finds != 0 {
		t.Errorf("repo.Find called %d times, want 0 (cache should absorb warm lookups)", repo.finds)
	}
}

func TestStoreWithoutCache(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	s := NewStore(repo, nil)

	if err := s.Add(ctx, "u1", "auth", "h1"); err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}
	if err := s.Find(ctx, "u1", "auth", "h1"); err != nil {
		t.Fatalf("Find() = %v", err)
	}
	if err := s.Remove(ctx, "u1", "h1"); err != nil {
		t.Fatalf("Remove() = %v", err)
	}
	if err := s.Find(ctx, "u1", "auth", "h1"); err != ErrNotFound {
		t.Fatalf("Find() after Remove() = %v, want ErrNotFound", err)
	}
}
