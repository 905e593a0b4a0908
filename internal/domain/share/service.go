// Package share выпускает и проверяет подписанные ссылки с истечением, которые
// ограничивают читателя одним клиентом без учетной записи.
package share

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	MinDays     = 1
	MaxDays     = 365
	DefaultDays = 7
)

// Claims - подписанное содержимое share-токена.
type Claims struct {
	CustomerID string `json:"customer_id"`
	Expires    string `json:"expires"`
	jwt.RegisteredClaims
}

// ExpiresAt разбирает срок действия в RFC3339.
func (c Claims) ExpiresAt() (time.Time, error) {
	return time.Parse(time.RFC3339, c.Expires)
}

type Link struct {
	URL           string    `json:"url"`
	Token         string    `json:"token"`
	ExpiresInDays int       `json:"expires_in_days"`
	Expires       time.Time `json:"expires"`
}

type Issuer interface {
	Issue(customerID string, days int) (Link, error)
}

type Verifier interface {
	Verify(token string) (Claims, error)
}

type Service struct {
	secret  []byte
	baseURL string
	now     func() time.Time
}

func NewService(secret, baseURL string) *Service {
	return &Service{
		secret:  []byte(secret),
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// WithClock подменяет источник времени.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Issue(customerID string, days int) (Link, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return Link{}, ErrNoCustomer
	}
	if days < MinDays || days > MaxDays {
		return Link{}, ErrInvalidExpiry
	}

	issued := s.now().UTC().Truncate(time.Second)
	expires := issued.AddDate(0, 0, days)
	claims := Claims{
		CustomerID: customerID,
		Expires:    expires.Format(time.RFC3339),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Link{}, fmt.Errorf("failed to sign share token: %w", err)
	}

	return Link{
		URL:           s.baseURL + "/s/" + url.PathEscape(token) + "/",
		Token:         token,
		ExpiresInDays: days,
		Expires:       expires,
	}, nil
}

func (s *Service) Verify(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, ErrInvalidToken
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpired
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if strings.TrimSpace(claims.CustomerID) == "" {
		return Claims{}, ErrInvalidToken
	}
	expires, err := claims.ExpiresAt()
	if err != nil {
		return Claims{}, fmt.Errorf("%w: bad expires: %v", ErrInvalidToken, err)
	}
	if !s.now().Before(expires) {
		return Claims{}, ErrExpired
	}

	return claims, nil
}
