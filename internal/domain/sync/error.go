package sync

import (
	"errors"
	"fmt"
)

// ErrInProgress возвращается, когда блокировку держит другой запуск.
var ErrInProgress = errors.New("sync already in progress")

const (
	ReasonUpstream = "no provider returned its client listing"
	ReasonStorage  = "storage unavailable"
	ReasonLock     = "run lock unavailable"
)

// FatalRunError прерывает запуск до сохранения и публикации.
type FatalRunError struct {
	Reason string
	Err    error
}

func (e *FatalRunError) Error() string {
	if e.Err == nil {
		return "sync run failed: " + e.Reason
	}
	return fmt.Sprintf("sync run failed: %s: %v", e.Reason, e.Err)
}

func (e *FatalRunError) Unwrap() error {
	return e.Err
}
