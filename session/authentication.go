package session

import (
	"context"

	"github.com/jrsteele09/go-admin-console/users"
)

// Authentication is the outcome of resolving a request: either Anonymous or
// an authenticated SessionUser.
type Authentication struct {
	user *users.SessionUser
}

// Anonymous is the outcome for requests without a usable session.
var Anonymous = Authentication{}

// Authenticated wraps a resolved user.
func Authenticated(user users.SessionUser) Authentication {
	return Authentication{user: &user}
}

func (a Authentication) IsAuthenticated() bool {
	return a.user != nil
}

// User returns the authenticated user, or false for Anonymous.
func (a Authentication) User() (users.SessionUser, bool) {
	if a.user == nil {
		return users.SessionUser{}, false
	}
	return *a.user, true
}

// Name is the principal name, empty for Anonymous.
func (a Authentication) Name() string {
	if a.user == nil {
		return ""
	}
	return a.user.UserCd
}

type contextKey int

const (
	authenticationKey contextKey = iota
	attributesKey
)

// WithAuthentication installs a as the current principal of ctx. Each request
// carries its own principal; nothing is shared between requests.
func WithAuthentication(ctx context.Context, a Authentication) context.Context {
	return context.WithValue(ctx, authenticationKey, a)
}

// FromContext returns the principal installed on ctx, or Anonymous.
func FromContext(ctx context.Context) Authentication {
	a, ok := ctx.Value(authenticationKey).(Authentication)
	if !ok {
		return Anonymous
	}
	return a
}
