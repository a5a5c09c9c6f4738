// Package store persists opaque string values under plain string keys.
//
// A Backend behaves like browser local storage: one global map, values are
// strings, and any read or write may fail. The helpers in this file swallow
// those failures and report them as a fallback value or a false return.
package store

import (
	"encoding/json"
	"errors"
	"log"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"dashtodo/model"
)

const (
	// UsernameKey holds the signed-in username.
	UsernameKey = "todo.username"
	// TodosKey is the unscoped collection key used before per-user storage.
	TodosKey = "todo.items"
)

// ErrQuotaExceeded is returned by backends that refuse a write.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Backend is a string key-value store.
type Backend interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}

// TodoKey derives the collection key for a username. An empty username
// maps to the legacy unscoped key.
func TodoKey(username string) string {
	normalized := cases.Lower(language.Und).String(model.NormalizeUsername(username))
	if normalized == "" {
		return TodosKey
	}
	return TodosKey + ":" + normalized
}

// Has reports whether key holds a value. Read errors count as absent.
func Has(b Backend, key string) bool {
	_, ok, err := b.Get(key)
	if err != nil {
		log.Printf("store: read %q: %v", key, err)
		return false
	}
	return ok
}

// GetText returns the value at key or fallback when missing or unreadable.
func GetText(b Backend, key, fallback string) string {
	v, ok, err := b.Get(key)
	if err != nil {
		log.Printf("store: read %q: %v", key, err)
		return fallback
	}
	if !ok {
		return fallback
	}
	return v
}

// SetText stores value and reports whether the write succeeded.
func SetText(b Backend, key, value string) bool {
	if err := b.Set(key, value); err != nil {
		log.Printf("store: write %q: %v", key, err)
		return false
	}
	return true
}

// Remove deletes key and reports whether the delete succeeded.
func Remove(b Backend, key string) bool {
	if err := b.Delete(key); err != nil {
		log.Printf("store: delete %q: %v", key, err)
		return false
	}
	return true
}

// GetRaw returns the bytes stored at key, or nil when missing or unreadable.
func GetRaw(b Backend, key string) []byte {
	v := GetText(b, key, "")
	if v == "" {
		return nil
	}
	return []byte(v)
}

// SetJSON encodes v and stores it at key.
func SetJSON(b Backend, key string, v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("store: encode %q: %v", key, err)
		return false
	}
	return SetText(b, key, string(data))
}
