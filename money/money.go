// Package money normalizes transaction amounts between the caller's canonical
// minor-unit integers and the representations individual processors expect.
//
// The canonical unit everywhere in this library is an integer amount of minor
// units (cents for USD, yen for JPY, fils for BHD). Adapters never receive
// floats or decimal strings from callers; they convert the canonical amount
// into their wire format with MajorUnits or MinorUnitsString at request-build
// time.
package money

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when an amount is not an integer number of
// minor units: floats, strings containing a decimal point, negative values
// and non-numeric types are all rejected.
var ErrInvalidAmount = fmt.Errorf("invalid amount")

// exponents lists currencies whose minor unit is not two decimal digits.
// Everything absent defaults to 2 (the ISO 4217 common case).
var exponents = map[string]int32{
	// zero-decimal currencies
	"BIF": 0, "CLP": 0, "DJF": 0, "GNF": 0, "ISK": 0, "JPY": 0,
	"KMF": 0, "KRW": 0, "PYG": 0, "RWF": 0, "UGX": 0, "VND": 0,
	"VUV": 0, "XAF": 0, "XOF": 0, "XPF": 0,
	// three-decimal currencies
	"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "LYD": 3, "OMR": 3, "TND": 3,
}

// Exponent returns the number of minor-unit digits for an ISO 4217 currency
// code. Unknown or empty codes get the standard two digits.
func Exponent(currency string) int32 {
	if e, ok := exponents[strings.ToUpper(currency)]; ok {
		return e
	}
	return 2
}

// MajorUnits formats a minor-unit amount as a major-unit decimal string with
// exactly two fractional digits: 1034 becomes "10.34".
//
// For currencies with a non-standard exponent use MajorUnitsFor.
func MajorUnits(amountMinor int64) string {
	return decimal.New(amountMinor, -2).StringFixed(2)
}

// MajorUnitsFor formats a minor-unit amount in the given currency's
// convention: 1034 JPY becomes "1034", 1034 BHD becomes "1.034".
func MajorUnitsFor(amountMinor int64, currency string) string {
	exp := Exponent(currency)
	return decimal.New(amountMinor, -exp).StringFixed(exp)
}

// MinorUnitsString returns the amount unchanged as a decimal string, for
// processors that take minor units directly: 1034 becomes "1034".
func MinorUnitsString(amountMinor int64) string {
	return strconv.FormatInt(amountMinor, 10)
}

// Normalize converts a caller-supplied value into canonical minor units.
// Accepted inputs are the built-in integer types and strings of decimal
// digits. Strings containing a decimal point are rejected rather than
// guessed at: "10.34" could mean 1034 cents or 10 cents depending on what
// the caller believed the unit was, and silently picking one would send a
// wrong amount to a processor.
func Normalize(v any) (int64, error) {
	var amount int64

	switch n := v.(type) {
	case int:
		amount = int64(n)
	case int8:
		amount = int64(n)
	case int16:
		amount = int64(n)
	case int32:
		amount = int64(n)
	case int64:
		amount = n
	case uint:
		amount = int64(n)
	case uint8:
		amount = int64(n)
	case uint16:
		amount = int64(n)
	case uint32:
		amount = int64(n)
	case uint64:
		if n > 1<<63-1 {
			return 0, fmt.Errorf("amount %d overflows: %w", n, ErrInvalidAmount)
		}
		amount = int64(n)
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, fmt.Errorf("amount is empty: %w", ErrInvalidAmount)
		}
		if strings.ContainsAny(s, ".,") {
			return 0, fmt.Errorf("amount %q contains a decimal separator, expected integer minor units: %w", s, ErrInvalidAmount)
		}
		parsed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("amount %q is not an integer: %w", s, ErrInvalidAmount)
		}
		amount = parsed
	case float32, float64:
		return 0, fmt.Errorf("amount %v is a float, expected integer minor units: %w", v, ErrInvalidAmount)
	default:
		return 0, fmt.Errorf("amount type %T is not supported: %w", v, ErrInvalidAmount)
	}

	if amount < 0 {
		return 0, fmt.Errorf("amount %d is negative: %w", amount, ErrInvalidAmount)
	}
	return amount, nil
}
