package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

type Servicer interface {
	Register(ctx context.Context, login, password string, admin bool) (int, error)
	Authenticate(ctx context.Context, login, password string) (User, error)
	Principal(ctx context.Context, userID int) (Principal, error)
	BindCustomer(ctx context.Context, userID int, customerID string) error
}

type Service struct {
	repo      Repository
	profiles  ProfileRepository
	validator Validator
	log       *slog.Logger
}

func NewService(repo Repository, profiles ProfileRepository, validator Validator, log *slog.Logger) *Service {
	if validator == nil {
		validator = NewPasswordValidator()
	}
	return &Service{
		repo:      repo,
		profiles:  profiles,
		validator: validator,
		log:       log,
	}
}

func (s *Service) Register(ctx context.Context, login, password string, admin bool) (int, error) {
	if err := s.validator.ValidateRegister(login, password); err != nil {
		s.log.Debug("validation failed", "login", login, "error", err)
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := s.repo.Create(ctx, login, string(hash), admin)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

func (s *Service) Authenticate(ctx context.Context, login, password string) (User, error) {
	if err := s.validator.ValidateLogin(login); err != nil {
		return User{}, ErrInvalidCredentials
	}

	u, err := s.repo.FindByLogin(ctx, login)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn("failed to load user", "login", login, "error", err)
		}
		return User{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	return u, nil
}

// Principal по id пользователя возвращает логин, флаг администратора и привязку
// к клиенту.
func (s *Service) Principal(ctx context.Context, userID int) (Principal, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return Principal{}, fmt.Errorf("failed to load user %d: %w", userID, err)
	}

	customerID, err := s.profiles.Customer(ctx, userID)
	if err != nil {
		return Principal{}, fmt.Errorf("failed to load profile of user %d: %w", userID, err)
	}

	return Principal{
		UserID:     u.ID,
		Login:      u.Login,
		Admin:      u.IsAdmin,
		CustomerID: customerID,
	}, nil
}

func (s *Service) BindCustomer(ctx context.Context, userID int, customerID string) error {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return fmt.Errorf("%w: empty customer id", ErrInvalidInput)
	}
	if err := s.profiles.SetCustomer(ctx, userID, customerID); err != nil {
		return fmt.Errorf("failed to bind customer: %w", err)
	}
	return nil
}
