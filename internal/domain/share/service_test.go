package share

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var issuedAt = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

func newService(now time.Time) *Service {
	return NewService("test-secret", "https://reports.example.com/").WithClock(func() time.Time { return now })
}

func TestService_Issue(t *testing.T) {
	link, err := newService(issuedAt).Issue("42", 1)
	require.NoError(t, err)

	assert.Equal(t, 1, link.ExpiresInDays)
	assert.Equal(t, issuedAt.AddDate(0, 0, 1), link.Expires)
	assert.True(t, strings.HasPrefix(link.URL, "https://reports.example.com/s/"))
	assert.True(t, strings.HasSuffix(link.URL, "/"))
	assert.Contains(t, link.URL, url.PathEscape(link.Token))
}

func TestService_Issue_Validation(t *testing.T) {
	tests := []struct {
		name     string
		customer string
		days     int
		wantErr  error
	}{
		{name: "zero days", customer: "42", days: 0, wantErr: ErrInvalidExpiry},
		{name: "too many days", customer: "42", days: 366, wantErr: ErrInvalidExpiry},
		{name: "negative", customer: "42", days: -1, wantErr: ErrInvalidExpiry},
		{name: "missing customer", customer: "  ", days: 7, wantErr: ErrNoCustomer},
		{name: "upper bound", customer: "42", days: 365},
		{name: "lower bound", customer: "42", days: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newService(issuedAt).Issue(tt.customer, tt.days)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestService_Verify(t *testing.T) {
	link, err := newService(issuedAt).Issue("42", 1)
	require.NoError(t, err)

	tests := []struct {
		name    string
		at      time.Time
		token   string
		wantErr error
	}{
		{name: "fresh", at: issuedAt.Add(time.Minute), token: link.Token},
		{name: "just before expiry", at: issuedAt.Add(24*time.Hour - time.Second), token: link.Token},
		{name: "at expiry instant", at: issuedAt.Add(24 * time.Hour), token: link.Token, wantErr: ErrExpired},
		{name: "after expiry", at: issuedAt.Add(48 * time.Hour), token: link.Token, wantErr: ErrExpired},
		{name: "tampered", at: issuedAt, token: link.Token + "x", wantErr: ErrInvalidToken},
		{name: "empty", at: issuedAt, token: "", wantErr: ErrInvalidToken},
		{name: "garbage", at: issuedAt, token: "not-a-token", wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := newService(tt.at).Verify(tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "42", claims.CustomerID)
			assert.Equal(t, "2024-03-11T09:30:00Z", claims.Expires)
		})
	}
}

func TestService_Verify_WrongSecret(t *testing.T) {
	link, err := newService(issuedAt).Issue("42", 7)
	require.NoError(t, err)

	other := NewService("other-secret", "").WithClock(func() time.Time { return issuedAt })
	_, err = other.Verify(link.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_Verify_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{
		CustomerID: "42",
		Expires:    issuedAt.Add(time.Hour).Format(time.RFC3339),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = newService(issuedAt).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_Verify_ExpiresFieldWins(t *testing.T) {
	// exp еще в будущем, но подписанное поле expires уже прошло.
	claims := Claims{
		CustomerID: "42",
		Expires:    issuedAt.Add(-time.Minute).Format(time.RFC3339),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = newService(issuedAt).Verify(token)
	assert.ErrorIs(t, err, ErrExpired)
}
