package storage

import (
	"context"
	"errors"
	"time"

	"fleetreport/internal/domain/session"
	"fleetreport/internal/domain/store"

	"golang.org/x/exp/slog"
)

type SessionRepository struct {
	db  *DB
	log *slog.Logger
	now func() time.Time
}

func NewSessionRepository(db *DB, log *slog.Logger) *SessionRepository {
	return &SessionRepository{
		db:  db,
		log: log,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *SessionRepository) Create(ctx context.Context, userID int, tokenHash string, expiresAt time.Time) error {
	_, err := r.db.exec(ctx, r.db,
		`INSERT INTO sessions (user_id, token_hash, expires_at) VALUES (?, ?, ?)`,
		userID, tokenHash, expiresAt.UTC())
	return classify("create session", err)
}

func (r *SessionRepository) Validate(ctx context.Context, tokenHash string) (int, error) {
	var userID int
	err := r.db.queryRow(ctx, r.db,
		`SELECT user_id FROM sessions WHERE token_hash = ? AND expires_at > ?`,
		tokenHash, r.now()).Scan(&userID)
	if err != nil {
		err = classify("validate session", err)
		if errors.Is(err, store.ErrNotFound) {
			return 0, session.ErrInvalid
		}
		return 0, err
	}
	return userID, nil
}
