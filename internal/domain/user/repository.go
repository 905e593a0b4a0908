package user

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, login, passwordHash string, admin bool) (int, error)
	FindByLogin(ctx context.Context, login string) (User, error)
	FindByID(ctx context.Context, id int) (User, error)
}

// ProfileRepository хранит привязку пользователя к клиенту один к одному.
type ProfileRepository interface {
	SetCustomer(ctx context.Context, userID int, customerID string) error
	Customer(ctx context.Context, userID int) (string, error)
}
