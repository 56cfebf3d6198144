// Package session tracks which issued tokens are still valid. A token is a
// live session only while its hash is present in the backing store; removal
// is the revocation mechanism, independent of the token's signature.
package session

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("session not found")

// Repo is the persistent membership list (postgres or memory).
type Repo interface {
	Add(ctx context.Context, userID, kind, tokenHash string) error
	Remove(ctx context.Context, userID, tokenHash string) error
	Find(ctx context.Context, userID, kind, tokenHash string) error
}

// Store fronts a Repo with an optional positive cache. Reads hit the cache
// first; revocation deletes the cache entry before touching the repo so a
// logged-out token cannot be served from a stale entry.
type Store struct {
	repo  Repo
	cache *Cache
}

func NewStore(repo Repo, cache *Cache) *Store {
	return &Store{repo: repo, cache: cache}
}

func (s *Store) Add(ctx context.Context, userID, kind, tokenHash string) error {
	err := s.repo.Add(ctx, userID, kind, tokenHash)

	if err != nil {
		return err
	}

	s.cache.Put(ctx, userID, kind, tokenHash)

	return nil
}

// Remove revokes a session. Idempotent when the token is absent.
func (s *Store) Remove(ctx context.Context, userID, tokenHash string) error {
	s.cache.Del(ctx, userID, tokenHash)

	return s.repo.Remove(ctx, userID, tokenHash)
}

// Find reports whether (userID, kind, tokenHash) is an active session.
func (s *Store) Find(ctx context.Context, userID, kind, tokenHash string) error {
	if s.cache.Has(ctx, userID, kind, tokenHash) {
		return nil
	}

	err := s.repo.Find(ctx, userID, kind, tokenHash)

	if err != nil {
		return err
	}

	s.cache.Put(ctx, userID, kind, tokenHash)

	return nil
}
