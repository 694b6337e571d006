// Package wordlist provides word list filtering helpers.
package wordlist

import (
	"unicode"
)

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// SingleToken keeps words made of printable, non-space characters. Passages
// are joined with single spaces, so a bank word must never contain one.
func SingleToken(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
