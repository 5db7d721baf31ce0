// Package cvv decodes card verification value check codes into a canonical
// form. Like package avs, decoding is total over any input string.
package cvv

import "strings"

// Result is the decoded form of a raw CVV check code.
type Result struct {
	Code    string
	Message string
}

var messages = map[string]string{
	"D": "CVV check flagged transaction as suspicious.",
	"I": "CVV failed the issuer's data validation check.",
	"M": "CVV matches.",
	"N": "CVV does not match.",
	"P": "CVV not processed.",
	"S": "CVV should have been present but was not provided.",
	"U": "Issuer was unable to process the CVV check.",
	"X": "CVV check not supported for this card.",
}

const (
	noDataMessage  = "No CVV data."
	unknownMessage = "Unknown CVV response."
)

// Decode maps a raw CVV check code to its canonical Result. Input is
// case-insensitive; empty and unrecognized inputs yield defined entries
// rather than failing.
func Decode(code string) Result {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Result{Code: "", Message: noDataMessage}
	}
	msg, ok := messages[code]
	if !ok {
		msg = unknownMessage
	}
	return Result{Code: code, Message: msg}
}

// Known reports whether a code is part of the standard vocabulary.
func Known(code string) bool {
	_, ok := messages[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// Matched reports whether the check confirmed the verification value.
func (r Result) Matched() bool {
	return r.Code == "M"
}

// ToMap flattens the result for inclusion in raw response params or logs.
func (r Result) ToMap() map[string]string {
	return map[string]string{
		"code":    r.Code,
		"message": r.Message,
	}
}
