package auth

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated means there is no usable access or refresh token; the
// user has to sign in again.
var ErrUnauthenticated = errors.New("not signed in with Google")

// ErrRefreshFailed marks errors from a renewal attempt that Google rejected.
// Match with errors.Is; the concrete error is a *RefreshError.
var ErrRefreshFailed = errors.New("access token refresh failed")

// RefreshError carries the detail of a rejected renewal attempt.
type RefreshError struct {
	Message string
	Err     error
}

func NewRefreshError(message string) *RefreshError {
	return &RefreshError{Message: message}
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("token refresh failed: %s", e.Message)
}

func (e *RefreshError) Unwrap() error {
	return e.Err
}

func (e *RefreshError) Is(target error) bool {
	return target == ErrRefreshFailed
}

func (e *RefreshError) WithCause(err error) *RefreshError {
	e.Err = err
	return e
}
