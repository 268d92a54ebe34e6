// Package phone canonicalizes raw phone-number strings into comparable keys.
package phone

import "strings"

// Key is a normalized phone number of the form +<countrycode><digits>
type Key string

// String returns the key as a plain string
func (k Key) String() string {
	return string(k)
}

// Normalize converts any raw phone-number string into a Key.
// Everything except digits and a leading '+' is stripped. Ten digit numbers
// are assumed to be North American and get +1; eleven digit numbers starting
// with 1 get +; anything else is prefixed with + as-is.
// Normalize is total and idempotent.
func Normalize(raw string) Key {
	var b strings.Builder
	b.Grow(len(raw) + 2)

	leadingPlus := false
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0 && !leadingPlus:
			leadingPlus = true
		}
	}
	digits := b.String()

	if leadingPlus {
		return Key("+" + digits)
	}
	switch {
	case len(digits) == 10:
		return Key("+1" + digits)
	case len(digits) == 11 && digits[0] == '1':
		return Key("+" + digits)
	default:
		return Key("+" + digits)
	}
}
