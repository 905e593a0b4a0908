package session

import (
	"context"
	"time"
)

// Repository хранит хеши токенов сессий; открытые токены не сохраняются.
type Repository interface {
	Create(ctx context.Context, userID int, tokenHash string, expiresAt time.Time) error
	Validate(ctx context.Context, tokenHash string) (int, error)
}
