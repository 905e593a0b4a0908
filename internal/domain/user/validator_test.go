package user

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordValidator_ValidateLogin(t *testing.T) {
	validator := NewPasswordValidator()

	tests := []struct {
		name        string
		login       string
		expectedErr string
	}{
		{name: "valid login", login: "user123"},
		{name: "valid with punctuation", login: "ops.team-1_a"},
		{name: "empty", login: "", expectedErr: "login must be at least 3 characters"},
		{name: "too short", login: "ab", expectedErr: "login must be at least 3 characters"},
		{name: "too long", login: strings.Repeat("a", 33), expectedErr: "login must be at most 32 characters"},
		{name: "invalid characters", login: "user name", expectedErr: "login can only contain letters, digits, '_', '-', '.'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateLogin(tt.login)
			if tt.expectedErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.expectedErr, err.Error())
		})
	}
}

func TestPasswordValidator_ValidatePassword(t *testing.T) {
	validator := NewPasswordValidator()

	tests := []struct {
		name        string
		password    string
		expectedErr string
	}{
		{name: "strong", password: "Passw0rd!"},
		{name: "too short", password: "Pa0!", expectedErr: "password must be at least 8 characters"},
		{name: "too long", password: "Aa1!" + strings.Repeat("x", 69), expectedErr: "password must be at most 72 characters"},
		{name: "no upper", password: "passw0rd!", expectedErr: "password must mix lower and upper case letters, digits and symbols"},
		{name: "no digit", password: "Password!", expectedErr: "password must mix lower and upper case letters, digits and symbols"},
		{name: "no symbol", password: "Passw0rd1", expectedErr: "password must mix lower and upper case letters, digits and symbols"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidatePassword(tt.password)
			if tt.expectedErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.expectedErr, err.Error())
		})
	}
}

func TestPasswordValidator_ValidateRegister(t *testing.T) {
	validator := NewPasswordValidator()

	assert.NoError(t, validator.ValidateRegister("admin", "Passw0rd!"))

	err := validator.ValidateRegister("a", "Passw0rd!")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login validation failed")

	err = validator.ValidateRegister("admin", "weak")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password validation failed")
}
