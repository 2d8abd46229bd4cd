package domain

import (
	"strings"
	"unicode"
)

// PostcodeKey returns the canonical lookup key: all whitespace removed, upper-cased.
// Keys are used for geocode lookups and de-duplication.
func PostcodeKey(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// PostcodeDisplay returns the human form of a postcode, with a single space
// before the inward code (the final 3 characters). Keys of 3 characters or
// fewer are returned unchanged.
func PostcodeDisplay(raw string) string {
	key := []rune(PostcodeKey(raw))
	if len(key) <= 3 {
		return string(key)
	}
	split := len(key) - 3
	return string(key[:split]) + " " + string(key[split:])
}
