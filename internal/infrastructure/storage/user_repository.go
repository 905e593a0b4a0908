package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fleetreport/internal/domain/store"
	"fleetreport/internal/domain/user"

	"golang.org/x/exp/slog"
)

type UserRepository struct {
	db  *DB
	log *slog.Logger
}

func NewUserRepository(db *DB, log *slog.Logger) *UserRepository {
	return &UserRepository{
		db:  db,
		log: log,
	}
}

func (r *UserRepository) Create(ctx context.Context, login, passwordHash string, admin bool) (int, error) {
	var userID int
	err := r.db.queryRow(ctx, r.db,
		`INSERT INTO users (login, password_hash, is_admin, created_at) VALUES (?, ?, ?, ?) RETURNING id`,
		login, passwordHash, admin, time.Now().UTC()).Scan(&userID)
	if err != nil {
		err = classify("create user", err)
		if errors.Is(err, store.ErrConflict) {
			return 0, fmt.Errorf("%w: %s", user.ErrExists, login)
		}
		return 0, err
	}
	return userID, nil
}

func (r *UserRepository) FindByLogin(ctx context.Context, login string) (user.User, error) {
	return r.find(ctx, `WHERE login = ?`, login)
}

func (r *UserRepository) FindByID(ctx context.Context, id int) (user.User, error) {
	return r.find(ctx, `WHERE id = ?`, id)
}

func (r *UserRepository) find(ctx context.Context, where string, arg any) (user.User, error) {
	var u user.User
	err := r.db.queryRow(ctx, r.db,
		`SELECT id, login, password_hash, is_admin, created_at FROM users `+where, arg).
		Scan(&u.ID, &u.Login, &u.Password, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		err = classify("find user", err)
		if errors.Is(err, store.ErrNotFound) {
			return u, user.ErrNotFound
		}
		return u, err
	}
	return u, nil
}

// ProfileRepository хранит привязку принципала к клиенту один к одному.
type ProfileRepository struct {
	db  *DB
	log *slog.Logger
}

func NewProfileRepository(db *DB, log *slog.Logger) *ProfileRepository {
	return &ProfileRepository{
		db:  db,
		log: log,
	}
}

func (r *ProfileRepository) SetCustomer(ctx context.Context, userID int, customerID string) error {
	_, err := r.db.exec(ctx, r.db, `
		INSERT INTO user_profiles (user_id, customer_id) VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE SET customer_id = excluded.customer_id`,
		userID, customerID)
	return classify("bind customer", err)
}

// Customer возвращает id привязанного клиента или "", если привязки нет.
func (r *ProfileRepository) Customer(ctx context.Context, userID int) (string, error) {
	var customerID string
	err := r.db.queryRow(ctx, r.db,
		`SELECT customer_id FROM user_profiles WHERE user_id = ?`, userID).Scan(&customerID)
	if err != nil {
		err = classify("load profile", err)
		if errors.Is(err, store.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return customerID, nil
}
