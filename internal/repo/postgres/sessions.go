package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taskhub/taskhub/internal/observability"
	"github.com/taskhub/taskhub/internal/session"
)

// SessionsRepo persists the per-user list of active token hashes. A token is
// revoked by deleting its row; signature validity alone is never enough.
type SessionsRepo struct {
	pool    *pgxpool.Pool
	metrics *observability.Prom
}

func NewSessionsRepo(pool *pgxpool.Pool, metrics *observability.Prom) *SessionsRepo {
	return &SessionsRepo{pool: pool, metrics: metrics}
}

func (r *SessionsRepo) Add(ctx context.Context, userID, kind, tokenHash string) error {
	return r.metrics.ObserveDB("sessions.add", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO sessions (id, user_id, kind, token_hash, created_at)
			VALUES ($1,$2,$3,$4,$5)`,
			uuid.NewString(), userID, kind, tokenHash, time.Now().UTC(),
		)
		return err
	})
}

// Remove deletes by token value; deleting an absent token is not an error.
func (r *SessionsRepo) Remove(ctx context.Context, userID, tokenHash string) error {
	return r.metrics.ObserveDB("sessions.remove", func() error {
		_, err := r.pool.Exec(ctx,
			`DELETE FROM sessions WHERE user_id = $1 AND token_hash = $2`,
			userID, tokenHash,
		)
		return err
	})
}

func (r *SessionsRepo) Find(ctx context.Context, userID, kind, tokenHash string) error {
	var dummy string

	err := r.metrics.ObserveDB("sessions.find", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id FROM sessions
			 WHERE user_id = $1 AND kind = $2 AND token_hash = $3`,
			userID, kind, tokenHash,
		).Scan(&dummy)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.ErrNotFound
		}

		return err
	}

	return nil
}
