// Package session keeps the signed-in username and tells the task manager
// when it changes.
package session

import (
	"errors"
	"fmt"
	"time"

	"dashtodo/model"
	"dashtodo/store"
)

const (
	MinNameLength = 2
	MaxNameLength = 20

	HelpDefault      = "Use 2-20 characters."
	helpTooShort     = "Name must be at least 2 characters."
	helpTooLong      = "Name must be 20 characters or less."
	helpSaveFailed   = "Unable to save username. Check the data directory permissions."
	helpRemoveFailed = "Unable to clear username from storage."
)

var (
	// ErrNameTooShort is returned when a normalized username is under two characters.
	ErrNameTooShort = errors.New(helpTooShort)
	// ErrNameTooLong is returned when a normalized username exceeds twenty characters.
	ErrNameTooLong = errors.New(helpTooLong)
	// ErrPersistence is returned when the username could not be written or removed.
	ErrPersistence = errors.New("username storage failed")
)

// ChangeFunc receives every session change.
type ChangeFunc func(loggedIn bool, username string)

// Auth owns the persisted username.
type Auth struct {
	backend  store.Backend
	onChange ChangeFunc
	username string
	helper   model.Helper
}

// New returns a signed-out Auth. Call Restore to pick up a persisted name.
func New(b store.Backend, onChange ChangeFunc) *Auth {
	return &Auth{
		backend:  b,
		onChange: onChange,
		helper:   model.Helper{Text: HelpDefault},
	}
}

// Restore reads the persisted username and announces it.
func (a *Auth) Restore() string {
	a.apply(model.NormalizeUsername(store.GetText(a.backend, store.UsernameKey, "")))
	return a.username
}

// Validate normalizes raw and checks its length.
func Validate(raw string) (string, error) {
	name := model.NormalizeUsername(raw)
	switch n := model.TextLength(name); {
	case n < MinNameLength:
		return "", ErrNameTooShort
	case n > MaxNameLength:
		return "", ErrNameTooLong
	}
	return name, nil
}

// Login validates and persists a username, then signs it in.
func (a *Auth) Login(raw string) (string, error) {
	name, err := Validate(raw)
	if err != nil {
		a.helper = model.Helper{Text: err.Error(), IsError: true}
		return "", err
	}
	if !store.SetText(a.backend, store.UsernameKey, name) {
		a.helper = model.Helper{Text: helpSaveFailed, IsError: true}
		return "", fmt.Errorf("%w: %s", ErrPersistence, helpSaveFailed)
	}
	a.apply(name)
	return name, nil
}

// Logout removes the persisted username. On failure the session stays
// signed in.
func (a *Auth) Logout() error {
	if !store.Remove(a.backend, store.UsernameKey) {
		a.helper = model.Helper{Text: helpRemoveFailed, IsError: true}
		return fmt.Errorf("%w: %s", ErrPersistence, helpRemoveFailed)
	}
	a.apply("")
	return nil
}

// Username returns the signed-in name, or "".
func (a *Auth) Username() string {
	return a.username
}

// LoggedIn reports whether a user is signed in.
func (a *Auth) LoggedIn() bool {
	return a.username != ""
}

// Helper returns the login form message.
func (a *Auth) Helper() model.Helper {
	return a.helper
}

// Greeting returns e.g. "Good morning, alice", or "" when signed out.
func (a *Auth) Greeting(now time.Time) string {
	if a.username == "" {
		return ""
	}
	return GreetingPrefix(now.Hour()) + ", " + a.username
}

// GreetingPrefix picks the salutation for an hour of the day.
func GreetingPrefix(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return "Good morning"
	case hour >= 12 && hour < 18:
		return "Good afternoon"
	case hour >= 18 && hour < 22:
		return "Good evening"
	default:
		return "Good night"
	}
}

func (a *Auth) apply(username string) {
	a.username = username
	if username != "" {
		a.helper = model.Helper{Text: "Signed in as " + username + "."}
	} else {
		a.helper = model.Helper{Text: HelpDefault}
	}
	if a.onChange != nil {
		a.onChange(username != "", username)
	}
}
