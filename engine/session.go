package engine

import (
	"errors"
	"strings"
)

var (
	// ErrNotAuthenticated means no plant is active for the session.
	ErrNotAuthenticated = errors.New("no active plant")
	// ErrMissingCredentials means the login form was incomplete.
	ErrMissingCredentials = errors.New("please enter both plant and password")
	// ErrUnknownScreen means the requested screen is not configured.
	ErrUnknownScreen = errors.New("unknown screen")
)

// Session is the explicit login context handed to screen activations.
// The zero value is an anonymous session.
type Session struct {
	plant string
}

// NewSession returns a session for the given plant. A blank plant yields
// an anonymous session.
func NewSession(plant string) Session {
	return Session{plant: strings.TrimSpace(plant)}
}

// ActivePlant returns the logged-in plant, if any.
func (s Session) ActivePlant() (string, bool) {
	return s.plant, s.plant != ""
}
