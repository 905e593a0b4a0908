package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, login, passwordHash string, admin bool) (int, error) {
	args := m.Called(ctx, login, passwordHash, admin)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) FindByLogin(ctx context.Context, login string) (User, error) {
	args := m.Called(ctx, login)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id int) (User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(User), args.Error(1)
}

type MockProfiles struct {
	mock.Mock
}

func (m *MockProfiles) SetCustomer(ctx context.Context, userID int, customerID string) error {
	return m.Called(ctx, userID, customerID).Error(0)
}

func (m *MockProfiles) Customer(ctx context.Context, userID int) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

const testStrongPassword = "Passw0rd!"

func newService(repo *MockRepository, profiles *MockProfiles) *Service {
	return NewService(repo, profiles, nil, slog.Default())
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestService_Register(t *testing.T) {
	repo := new(MockRepository)
	service := newService(repo, new(MockProfiles))

	repo.On("Create", mock.Anything, "operator", mock.MatchedBy(func(hash string) bool {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(testStrongPassword)) == nil
	}), true).Return(7, nil)

	id, err := service.Register(context.Background(), "operator", testStrongPassword, true)
	require.NoError(t, err)
	assert.Equal(t, 7, id)
	repo.AssertExpectations(t)
}

func TestService_Register_Errors(t *testing.T) {
	tests := []struct {
		name     string
		login    string
		password string
		repoErr  error
		wantErr  error
	}{
		{name: "invalid login", login: "a", password: testStrongPassword, wantErr: ErrInvalidInput},
		{name: "weak password", login: "operator", password: "password", wantErr: ErrInvalidInput},
		{name: "duplicate", login: "operator", password: testStrongPassword, repoErr: ErrExists, wantErr: ErrExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			service := newService(repo, new(MockProfiles))
			if tt.repoErr != nil {
				repo.On("Create", mock.Anything, tt.login, mock.AnythingOfType("string"), false).Return(0, tt.repoErr)
			}

			_, err := service.Register(context.Background(), tt.login, tt.password, false)
			assert.ErrorIs(t, err, tt.wantErr)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Authenticate(t *testing.T) {
	stored := User{ID: 3, Login: "operator", Password: hashOf(t, testStrongPassword)}

	tests := []struct {
		name     string
		login    string
		password string
		found    User
		findErr  error
		wantErr  error
	}{
		{name: "success", login: "operator", password: testStrongPassword, found: stored},
		{name: "wrong password", login: "operator", password: "Wr0ng!pass", found: stored, wantErr: ErrInvalidCredentials},
		{name: "unknown user", login: "ghost", password: testStrongPassword, findErr: ErrNotFound, wantErr: ErrInvalidCredentials},
		{name: "repository failure", login: "operator", password: testStrongPassword, findErr: errors.New("db down"), wantErr: ErrInvalidCredentials},
		{name: "malformed login", login: "x", password: testStrongPassword, wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			service := newService(repo, new(MockProfiles))
			if tt.login != "x" {
				repo.On("FindByLogin", mock.Anything, tt.login).Return(tt.found, tt.findErr)
			}

			u, err := service.Authenticate(context.Background(), tt.login, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, stored.ID, u.ID)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Principal(t *testing.T) {
	repo := new(MockRepository)
	profiles := new(MockProfiles)
	service := newService(repo, profiles)

	repo.On("FindByID", mock.Anything, 3).Return(User{ID: 3, Login: "viewer"}, nil)
	profiles.On("Customer", mock.Anything, 3).Return("cust-9", nil)

	p, err := service.Principal(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, Principal{UserID: 3, Login: "viewer", CustomerID: "cust-9"}, p)

	repo.On("FindByID", mock.Anything, 4).Return(User{}, ErrNotFound)
	_, err = service.Principal(context.Background(), 4)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_BindCustomer(t *testing.T) {
	profiles := new(MockProfiles)
	service := newService(new(MockRepository), profiles)

	profiles.On("SetCustomer", mock.Anything, 3, "cust-9").Return(nil)
	require.NoError(t, service.BindCustomer(context.Background(), 3, " cust-9 "))

	assert.ErrorIs(t, service.BindCustomer(context.Background(), 3, "  "), ErrInvalidInput)
	profiles.AssertExpectations(t)
}
