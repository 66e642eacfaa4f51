// Package phase models the deployment phase the console runs in. The phase
// only drives the session token lifetime.
package phase

import "strings"

// Phase is the deployment phase.
type Phase int

const (
	// Local covers developer machines and any unrecognised environment.
	Local Phase = iota
	// Alpha is the shared alpha/staging environment.
	Alpha
	// Production is the live environment.
	Production
)

func (p Phase) String() string {
	switch p {
	case Alpha:
		return "alpha"
	case Production:
		return "production"
	default:
		return "local"
	}
}

// Parse maps an ENV value onto a Phase. Matching is case-insensitive and
// anything unrecognised is Local.
func Parse(env string) Phase {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "alpha", "staging", "stage":
		return Alpha
	case "production", "prod":
		return Production
	default:
		return Local
	}
}
