// SPDX-License-Identifier: MIT
package attr

import (
	"strings"
	"unicode"
)

// Canonical folds an attribute-name-like key into its canonical lower_snake
// form. Case, dashes, spaces and camelCase humps all collapse to the same
// representation, so "FirstName", "first-name" and "first_name" are one key.
func Canonical(name string) string {
	name = strings.TrimSpace(name)

	var b strings.Builder
	b.Grow(len(name) + 4)

	prevLowerOrDigit := false
	for _, r := range name {
		switch {
		case r == '-' || r == ' ' || r == '.':
			b.WriteRune('_')
			prevLowerOrDigit = false
		case unicode.IsUpper(r):
			if prevLowerOrDigit {
				b.WriteRune('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLowerOrDigit = false
		default:
			b.WriteRune(r)
			prevLowerOrDigit = unicode.IsLower(r) || unicode.IsDigit(r)
		}
	}

	return b.String()
}
