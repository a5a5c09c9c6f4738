package model

import "time"

// Timestamp formats t the way createdAt values are stored.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
