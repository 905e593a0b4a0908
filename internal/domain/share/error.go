package share

import "errors"

var (
	ErrInvalidExpiry = errors.New("expires_in_days must be between 1 and 365")
	ErrInvalidToken  = errors.New("invalid share token")
	ErrExpired       = errors.New("share token expired")
	ErrNoCustomer    = errors.New("customer id is required")
)
