package pages

import (
	"errors"
	"fmt"
	"regexp"
)

// Field validation stays local to the pages: a value that fails here never
// reaches the network layer.

const (
	minUsernameLen = 3
	maxUsernameLen = 30
	minPasswordLen = 6
)

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

func validateUsername(v string) error {
	if v == "" {
		return errors.New("username is required")
	}
	if !usernameRe.MatchString(v) {
		return errors.New("username can only contain letters, numbers, and underscores")
	}
	if len(v) < minUsernameLen {
		return fmt.Errorf("username must be at least %d characters", minUsernameLen)
	}
	if len(v) > maxUsernameLen {
		return fmt.Errorf("username must be no more than %d characters", maxUsernameLen)
	}
	return nil
}

func validateEmail(v string) error {
	if v == "" {
		return errors.New("email is required")
	}
	if !emailRe.MatchString(v) {
		return errors.New("please enter a valid email address")
	}
	return nil
}

func validatePassword(v []byte) error {
	if len(v) == 0 {
		return errors.New("password is required")
	}
	if len(v) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	return nil
}
