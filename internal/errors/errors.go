package errors

import (
	"errors"
	"fmt"
)

// Login
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserBlocked        = errors.New("user is blocked")
	ErrUserNotFound       = errors.New("user not found")
)

// Session. None of these reach an HTTP caller; a request carrying a bad
// token is served as anonymous.
var (
	ErrInvalidSession = errors.New("invalid session")
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
)

var (
	// ErrAccessDenied rejects a page whose program requires a grant the user
	// does not hold.
	ErrAccessDenied = errors.New("access is denied")

	// ErrNotFound is returned by catalog lookups that miss.
	ErrNotFound = errors.New("not found")
)

// Wrapf annotates err and keeps it matchable with Is.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}
