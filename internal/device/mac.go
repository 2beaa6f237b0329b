package device

import (
	"fmt"
	"strings"
)

// MAC address format constants.
const (
	macGroups       = 6  // Byte pairs in a 48-bit address
	macGroupLen     = 2  // Hex digits per pair
	macSeparatedLen = 17 // "AA:BB:CC:DD:EE:FF"
	macBareLen      = 12 // "AABBCCDDEEFF"
)

// NormalizeMAC converts user-supplied MAC address text into the canonical
// form: uppercase hex digits in six pairs separated by colons.
//
// Accepted inputs:
//   - six pairs separated by colons ("aa:bb:cc:dd:ee:ff")
//   - six pairs separated uniformly by dashes ("aa-bb-cc-dd-ee-ff")
//   - twelve contiguous hex digits ("aabbccddeeff")
//
// Any other shape (wrong length, non-hex characters, mixed separators)
// returns ErrInvalidMAC. An invalid MAC is expected user input, not a
// system fault; callers should branch on the error rather than propagate
// it as fatal.
func NormalizeMAC(raw string) (string, error) {
	s := strings.TrimSpace(raw)

	var groups []string
	switch {
	case len(s) == macSeparatedLen && strings.Count(s, ":") == macGroups-1:
		groups = strings.Split(s, ":")
	case len(s) == macSeparatedLen && strings.Count(s, "-") == macGroups-1:
		groups = strings.Split(s, "-")
	case len(s) == macBareLen:
		groups = make([]string, 0, macGroups)
		for i := 0; i < macBareLen; i += macGroupLen {
			groups = append(groups, s[i:i+macGroupLen])
		}
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMAC, raw)
	}

	for _, g := range groups {
		if len(g) != macGroupLen || !isHexPair(g) {
			return "", fmt.Errorf("%w: %q", ErrInvalidMAC, raw)
		}
	}

	return strings.ToUpper(strings.Join(groups, ":")), nil
}

// isHexPair reports whether a two-character group is all hex digits.
func isHexPair(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
