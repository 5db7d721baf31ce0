// Package card holds small PAN helpers shared by adapters: normalization for
// wire formats and masking for logs and raw params. Card validation (Luhn,
// brand detection) deliberately lives outside the core contract.
package card

import "strings"

// Normalize strips spaces and dashes from a PAN.
func Normalize(pan string) string {
	var sb strings.Builder
	sb.Grow(len(pan))
	for i := 0; i < len(pan); i++ {
		switch pan[i] {
		case ' ', '-':
		default:
			sb.WriteByte(pan[i])
		}
	}
	return sb.String()
}

// LastN returns the last n characters of a normalized PAN, or the whole
// string when shorter.
func LastN(pan string, n int) string {
	pan = Normalize(pan)
	if len(pan) <= n {
		return pan
	}
	return pan[len(pan)-n:]
}

// Mask renders a PAN safe for logs: all but the last four digits replaced.
func Mask(pan string) string {
	pan = Normalize(pan)
	if len(pan) <= 4 {
		return pan
	}
	return strings.Repeat("*", len(pan)-4) + pan[len(pan)-4:]
}

// IsDigits reports whether s is non-empty and contains only ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
