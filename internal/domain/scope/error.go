package scope

import (
	"errors"
	"fmt"
)

var (
	ErrRejected = errors.New("scope rejected")
	// ErrAnonymous - отказ вызывающему без учетных данных.
	ErrAnonymous = fmt.Errorf("%w: authentication required", ErrRejected)
)
