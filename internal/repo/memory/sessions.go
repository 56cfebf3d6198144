package memory

import (
	"context"
	"sync"

	"github.com/taskhub/taskhub/internal/session"
)

type sessionEntry struct {
	userID    string
	kind      string
	tokenHash string
}

type SessionsRepo struct {
	mu      sync.RWMutex
	entries []sessionEntry
}

func NewSessionsRepo() *SessionsRepo {
	return &SessionsRepo{}
}

func (r *SessionsRepo) Add(ctx context.Context, userID, kind, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, sessionEntry{userID: userID, kind: kind, tokenHash: tokenHash})

	return nil
}

func (r *SessionsRepo) Remove(ctx context.Context, userID, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.entries[:0]

	for _, e := range r.entries {
		if e.userID == userID && e.tokenHash == tokenHash {
			continue
		}
		kept = append(kept, e)
	}

	r.entries = kept

	return nil
}

func (r *SessionsRepo) Find(ctx context.Context, userID, kind, tokenHash string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries {
		if e.userID == userID && e.kind == kind && e.tokenHash == tokenHash {
			return nil
		}
	}

	return session.ErrNotFound
}
