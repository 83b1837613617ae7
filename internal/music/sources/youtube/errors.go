package youtube

import (
	"errors"
	"fmt"
)

var ErrQuotaExceeded = errors.New("YouTube quota exceeded")

// StatusError carries the HTTP status of a failed search request.
type StatusError struct {
	Code  int
	Quota bool
	Err   error
}

func (e *StatusError) Error() string {
	if e.Quota {
		return fmt.Sprintf("youtube: quota exhausted (status %d): %v", e.Code, e.Err)
	}
	return fmt.Sprintf("youtube: status %d: %v", e.Code, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

func (e *StatusError) StatusCode() int { return e.Code }

func (e *StatusError) Is(target error) bool {
	return target == ErrQuotaExceeded && e.Quota
}
