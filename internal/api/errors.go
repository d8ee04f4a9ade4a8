package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when a call is rejected and no session was
	// active — the user simply has to log in.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSessionExpired is returned when a call carrying a token is rejected
	// with 401. The gateway has already cleared the session by the time the
	// caller sees this.
	ErrSessionExpired = errors.New("session expired")
)

// Error is a rejected backend response: a non-2xx status or an envelope with
// success=false. Message is the server-provided text, suitable to show to the
// user attributed to their action.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("api: request failed (status %d)", e.Status)
}
