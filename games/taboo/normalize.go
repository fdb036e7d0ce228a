/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package taboo

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds s for comparison: accents are decomposed and their
// combining marks dropped, then the result is lowercased and trimmed.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	return strings.TrimSpace(strings.ToLower(folded))
}

// Matches reports whether guess names target once both are normalized.
func Matches(guess, target string) bool {
	g := Normalize(guess)

	return g != "" && g == Normalize(target)
}
