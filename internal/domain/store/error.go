package store

import "errors"

var (
	// ErrConflict - нарушение уникальности, о котором сообщило хранилище.
	ErrConflict = errors.New("unique key conflict")
	ErrNotFound = errors.New("not found")
)
