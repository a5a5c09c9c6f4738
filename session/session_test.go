package session

import (
	"errors"
	"strings"
	"testing"
	"time"

	"dashtodo/store"
)

type change struct {
	loggedIn bool
	username string
}

func newRecordingAuth(b store.Backend) (*Auth, *[]change) {
	var changes []change
	a := New(b, func(loggedIn bool, username string) {
		changes = append(changes, change{loggedIn, username})
	})
	return a, &changes
}

func TestRestoreWithoutUsernameSignsOut(t *testing.T) {
	a, changes := newRecordingAuth(store.NewMemory())
	if got := a.Restore(); got != "" {
		t.Fatalf("expected no user, got %q", got)
	}
	if len(*changes) != 1 || (*changes)[0].loggedIn {
		t.Fatalf("expected one signed-out notification, got %+v", *changes)
	}
	if a.Helper().Text != HelpDefault {
		t.Fatalf("unexpected helper %+v", a.Helper())
	}
}

func TestRestoreNormalizesPersistedUsername(t *testing.T) {
	mem := store.NewMemory()
	store.SetText(mem, store.UsernameKey, "  Ada   Lovelace ")
	a, changes := newRecordingAuth(mem)

	if got := a.Restore(); got != "Ada Lovelace" {
		t.Fatalf("expected normalized name, got %q", got)
	}
	if c := (*changes)[0]; !c.loggedIn || c.username != "Ada Lovelace" {
		t.Fatalf("unexpected notification %+v", c)
	}
}

func TestLoginValidatesLength(t *testing.T) {
	a, changes := newRecordingAuth(store.NewMemory())

	if _, err := a.Login(" a "); !errors.Is(err, ErrNameTooShort) {
		t.Fatalf("expected ErrNameTooShort, got %v", err)
	}
	if h := a.Helper(); !h.IsError || h.Text != "Name must be at least 2 characters." {
		t.Fatalf("unexpected helper %+v", h)
	}
	if _, err := a.Login(strings.Repeat("x", 21)); !errors.Is(err, ErrNameTooLong) {
		t.Fatalf("expected ErrNameTooLong, got %v", err)
	}
	if len(*changes) != 0 {
		t.Fatalf("expected no notifications for rejected logins")
	}
	if _, err := a.Login(strings.Repeat("x", 20)); err != nil {
		t.Fatalf("expected 20 characters to be accepted, got %v", err)
	}
}

func TestLoginPersistsAndNotifies(t *testing.T) {
	mem := store.NewMemory()
	a, changes := newRecordingAuth(mem)

	name, err := a.Login("  alice  ")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if name != "alice" || a.Username() != "alice" || !a.LoggedIn() {
		t.Fatalf("unexpected session state name=%q user=%q", name, a.Username())
	}
	if got := store.GetText(mem, store.UsernameKey, ""); got != "alice" {
		t.Fatalf("expected persisted username, got %q", got)
	}
	if c := (*changes)[0]; !c.loggedIn || c.username != "alice" {
		t.Fatalf("unexpected notification %+v", c)
	}
	if a.Helper().Text != "Signed in as alice." {
		t.Fatalf("unexpected helper %q", a.Helper().Text)
	}
}

func TestLoginStorageFailure(t *testing.T) {
	mem := store.NewMemory()
	mem.FailWrites(true)
	a, changes := newRecordingAuth(mem)

	if _, err := a.Login("alice"); !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if a.LoggedIn() || len(*changes) != 0 {
		t.Fatalf("expected session to stay signed out")
	}
	if h := a.Helper(); !h.IsError || h.Text != "Unable to save username. Check the data directory permissions." {
		t.Fatalf("unexpected helper %+v", h)
	}
}

func TestLogout(t *testing.T) {
	mem := store.NewMemory()
	a, changes := newRecordingAuth(mem)
	if _, err := a.Login("alice"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	mem.FailWrites(true)
	if err := a.Logout(); !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if !a.LoggedIn() {
		t.Fatalf("expected failed logout to keep the session")
	}

	mem.FailWrites(false)
	if err := a.Logout(); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if a.LoggedIn() || store.Has(mem, store.UsernameKey) {
		t.Fatalf("expected username cleared")
	}
	last := (*changes)[len(*changes)-1]
	if last.loggedIn || last.username != "" {
		t.Fatalf("unexpected final notification %+v", last)
	}
}

func TestGreetingPrefix(t *testing.T) {
	cases := map[int]string{
		0:  "Good night",
		4:  "Good night",
		5:  "Good morning",
		11: "Good morning",
		12: "Good afternoon",
		17: "Good afternoon",
		18: "Good evening",
		21: "Good evening",
		22: "Good night",
		23: "Good night",
	}
	for hour, want := range cases {
		if got := GreetingPrefix(hour); got != want {
			t.Fatalf("hour %d: want %q got %q", hour, want, got)
		}
	}
}

func TestGreeting(t *testing.T) {
	a, _ := newRecordingAuth(store.NewMemory())
	at := time.Date(2026, 2, 19, 9, 30, 0, 0, time.Local)
	if got := a.Greeting(at); got != "" {
		t.Fatalf("expected no greeting while signed out, got %q", got)
	}
	if _, err := a.Login("bob"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if got := a.Greeting(at); got != "Good morning, bob" {
		t.Fatalf("unexpected greeting %q", got)
	}
}
