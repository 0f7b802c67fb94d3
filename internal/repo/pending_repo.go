package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/signalix/otplogin/internal/model"
	"github.com/signalix/otplogin/internal/pending"
)

// PendingRepo defines the interface for pending login repository operations
type PendingRepo interface {
	pending.Backend
	pending.Purger
}

type pendingRepo struct {
	db *sql.DB
}

// NewPendingRepo creates a new PendingRepo instance
func NewPendingRepo(db *sql.DB) PendingRepo {
	return &pendingRepo{db: db}
}

// Put inserts the pending login. Ids are random, so a conflict means a bug upstream.
func (r *pendingRepo) Put(ctx context.Context, p model.PendingLogin) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pending_logins (id, email, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`, p.ID.String(), p.Email, p.CreatedAt, p.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert pending login: %w", err)
	}
	return nil
}

// Get returns the unexpired pending login with the given id.
func (r *pendingRepo) Get(ctx context.Context, id uuid.UUID) (model.PendingLogin, error) {
	query := `
		SELECT id, email, created_at, expires_at
		FROM pending_logins
		WHERE id = $1
		  AND expires_at > now()
	`
	var p model.PendingLogin
	var idStr string
	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(
		&idStr,
		&p.Email,
		&p.CreatedAt,
		&p.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PendingLogin{}, pending.ErrNotFound
		}
		return model.PendingLogin{}, fmt.Errorf("query pending login: %w", err)
	}

	p.ID, err = uuid.Parse(idStr)
	if err != nil {
		return model.PendingLogin{}, fmt.Errorf("parse pending login ID: %w", err)
	}
	return p, nil
}

// Delete removes the pending login; deleting a missing row is not an error.
func (r *pendingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pending_logins WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("delete pending login: %w", err)
	}
	return nil
}

// PurgeExpired deletes every expired row and returns how many were removed.
func (r *pendingRepo) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM pending_logins WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("purge pending logins: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}
