package model

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

var folder = cases.Fold()

// NormalizeText trims s and collapses every internal whitespace run to a single space.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeUsername applies the same whitespace rules as NormalizeText.
func NormalizeUsername(s string) string {
	return NormalizeText(s)
}

// Fold returns the case-folded form of s, used for case-insensitive equality.
func Fold(s string) string {
	return folder.String(s)
}

// SameText reports whether two task texts are equal ignoring case.
func SameText(a, b string) bool {
	return Fold(a) == Fold(b)
}

// TextLength counts runes, not bytes.
func TextLength(s string) int {
	return utf8.RuneCountInString(s)
}
