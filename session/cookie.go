package session

import (
	"net/http"
)

// Cookie describes the session cookie.
type Cookie struct {
	Name   string
	Secure bool // force the Secure flag even on plain HTTP
}

// Value returns the session token carried by r, if any.
func (c Cookie) Value(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(c.Name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// Set writes the session token with the given max-age in seconds.
func (c Cookie) Set(w http.ResponseWriter, r *http.Request, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// Delete expires the session cookie on the client.
func (c Cookie) Delete(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func (c Cookie) secure(r *http.Request) bool {
	if c.Secure {
		return true
	}
	if r == nil {
		return false
	}
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
