package session

import "errors"

var ErrInvalid = errors.New("invalid session")
