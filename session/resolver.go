package session

import (
	"net/http"

	"github.com/jrsteele09/go-admin-console/users"
	"github.com/rs/zerolog/log"
)

// TokenParser verifies a session token. A false result means the token is
// malformed, forged or expired.
type TokenParser interface {
	Parse(rawToken string) (users.SessionUser, bool)
}

// Resolver turns the session cookie of a request into a SessionUser.
type Resolver struct {
	parser TokenParser
	cookie Cookie
}

func NewResolver(parser TokenParser, cookie Cookie) *Resolver {
	return &Resolver{
		parser: parser,
		cookie: cookie,
	}
}

// Cookie returns the session cookie description.
func (r *Resolver) Cookie() Cookie {
	return r.cookie
}

// Resolve returns the user carried by the request's session cookie. When there
// is no cookie or it fails verification, the cookie is deleted from the
// response, the no-login script session is stamped onto attrs and false is
// returned. Resolution never touches the user store.
func (r *Resolver) Resolve(w http.ResponseWriter, req *http.Request, attrs Attributes) (users.SessionUser, bool) {
	raw, ok := r.cookie.Value(req)
	if !ok {
		log.Debug().Str("path", req.URL.Path).Msg("no session cookie")
		r.noSession(w, req, attrs)
		return users.SessionUser{}, false
	}

	user, ok := r.parser.Parse(raw)
	if !ok {
		log.Debug().Str("path", req.URL.Path).Msg("session token rejected")
		r.noSession(w, req, attrs)
		return users.SessionUser{}, false
	}
	return user, true
}

func (r *Resolver) noSession(w http.ResponseWriter, req *http.Request, attrs Attributes) {
	r.cookie.Delete(w, req)
	if attrs == nil {
		return
	}
	if err := attrs.SetJSON(AttrScriptSession, NoLoginSession()); err != nil {
		log.Err(err).Msg("failed to encode no-login session")
	}
}
