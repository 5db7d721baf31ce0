// Package avs decodes Address Verification Service result codes into a
// canonical form.
//
// Processors report AVS outcomes as single letters taken from the
// card-network standard set. Decoding is total: any input, including empty
// strings and codes this package has never seen, produces a usable Result.
// Callers branch on the street/postal match classification instead of
// memorizing per-processor letter meanings.
package avs

import "strings"

// Match classifies one dimension (street or postal code) of an AVS check.
type Match string

const (
	Matched     Match = "Y"
	NotMatched  Match = "N"
	Unavailable Match = "X"
)

// Result is the decoded form of a raw AVS code. Results are immutable;
// decode a new one per response.
type Result struct {
	Code        string
	Message     string
	StreetMatch Match
	PostalMatch Match
}

type entry struct {
	message string
	street  Match
	postal  Match
}

// codes follows the card-network standard single-letter vocabulary.
var codes = map[string]entry{
	"A": {"Street address matches, but postal code does not match.", Matched, NotMatched},
	"B": {"Street address matches, but postal code was not verified.", Matched, Unavailable},
	"C": {"Street address and postal code do not match.", NotMatched, NotMatched},
	"D": {"Street address and postal code match.", Matched, Matched},
	"E": {"AVS data is invalid or AVS is not allowed for this card type.", Unavailable, Unavailable},
	"F": {"Cardholder name does not match, but billing postal code matches.", Unavailable, Matched},
	"G": {"Non-U.S. issuing bank does not support AVS.", Unavailable, Unavailable},
	"H": {"Cardholder name does not match. Street address and postal code match.", Matched, Matched},
	"I": {"Address not verified.", Unavailable, Unavailable},
	"J": {"Cardholder name, billing address, and postal code match.", Matched, Matched},
	"K": {"Cardholder name matches, but billing address and postal code do not match.", NotMatched, NotMatched},
	"L": {"Cardholder name and billing postal code match, but billing address does not match.", NotMatched, Matched},
	"M": {"Street address and postal code match.", Matched, Matched},
	"N": {"Street address and postal code do not match.", NotMatched, NotMatched},
	"O": {"Cardholder name and billing address match, but billing postal code does not match.", Matched, NotMatched},
	"P": {"Postal code matches, but street address was not verified.", Unavailable, Matched},
	"Q": {"Cardholder name, billing address, and postal code match.", Matched, Matched},
	"R": {"System unavailable, retry.", Unavailable, Unavailable},
	"S": {"Issuing bank does not support AVS.", Unavailable, Unavailable},
	"T": {"Cardholder name does not match, but street address matches.", Matched, Unavailable},
	"U": {"Address information unavailable.", Unavailable, Unavailable},
	"V": {"Cardholder name, billing address, and billing postal code match.", Matched, Matched},
	"W": {"Street address does not match, but 9-digit postal code matches.", NotMatched, Matched},
	"X": {"Street address and 9-digit postal code match.", Matched, Matched},
	"Y": {"Street address and 5-digit postal code match.", Matched, Matched},
	"Z": {"Street address does not match, but 5-digit postal code matches.", NotMatched, Matched},
}

var (
	noData  = entry{"No AVS data.", Unavailable, Unavailable}
	unknown = entry{"Unknown AVS response.", Unavailable, Unavailable}
)

// Decode maps a raw AVS code to its canonical Result. Input is
// case-insensitive. Empty input yields the no-data entry and unrecognized
// codes yield the unknown entry; Decode never fails.
func Decode(code string) Result {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Result{Code: "", Message: noData.message, StreetMatch: noData.street, PostalMatch: noData.postal}
	}
	e, ok := codes[code]
	if !ok {
		e = unknown
	}
	return Result{Code: code, Message: e.message, StreetMatch: e.street, PostalMatch: e.postal}
}

// Known reports whether a code is part of the standard vocabulary.
func Known(code string) bool {
	_, ok := codes[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// ToMap flattens the result for inclusion in raw response params or logs.
func (r Result) ToMap() map[string]string {
	return map[string]string{
		"code":         r.Code,
		"message":      r.Message,
		"street_match": string(r.StreetMatch),
		"postal_match": string(r.PostalMatch),
	}
}
