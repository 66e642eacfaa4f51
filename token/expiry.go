package token

import (
	"time"

	"github.com/jrsteele09/go-admin-console/phase"
)

const (
	alphaExpirySeconds      = 60 * 3
	productionExpirySeconds = 60 * 50
	// Local development sessions last long enough not to interrupt a working day.
	localExpirySeconds = 60 * 10 * 10 * 10 * 10
)

// Expiry returns the session token lifetime in seconds for phase p. It is also
// the max-age of the session cookie.
func Expiry(p phase.Phase) int {
	switch p {
	case phase.Alpha:
		return alphaExpirySeconds
	case phase.Production:
		return productionExpirySeconds
	default:
		return localExpirySeconds
	}
}

// Lifetime is Expiry as a time.Duration.
func Lifetime(p phase.Phase) time.Duration {
	return time.Duration(Expiry(p)) * time.Second
}
