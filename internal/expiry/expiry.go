// Package expiry formats card expiration dates for the two conventions
// processors disagree on: MMYY on the card face and in most form protocols,
// YYMM in ISO 8583 DE14.
package expiry

import "fmt"

// Validate checks a month/year pair. Year is a full four-digit year.
func Validate(month, year int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("expiry month must be 01..12 (got %d)", month)
	}
	if year < 2000 || year > 2099 {
		return fmt.Errorf("expiry year must be four digits 2000..2099 (got %d)", year)
	}
	return nil
}

// MMYY formats the pair as four digits, month first.
func MMYY(month, year int) string {
	return fmt.Sprintf("%02d%02d", month, year%100)
}

// YYMM formats the pair as four digits, year first.
func YYMM(month, year int) string {
	return fmt.Sprintf("%02d%02d", year%100, month)
}

// CardFace formats the pair as MM/YY for display.
func CardFace(month, year int) string {
	return fmt.Sprintf("%02d/%02d", month, year%100)
}
