package gateway

import (
	"fmt"

	intcard "github.com/alovak/paygate/internal/card"
	"github.com/alovak/paygate/internal/expiry"
)

// PaymentMethod is what an operation charges: either card data collected
// from the customer or a reference previously returned by Store. The core
// does not validate card numbers (Luhn, brand detection); that is adapter or
// caller territory.
type PaymentMethod interface {
	// Display is a log-safe description of the method; it never contains a
	// full card number.
	Display() string
}

// CreditCard is tokenizable card data. ExpYear is the full four-digit year.
type CreditCard struct {
	Number            string
	ExpMonth          int
	ExpYear           int
	VerificationValue string
	HolderName        string
}

func (c CreditCard) Display() string {
	return fmt.Sprintf("card %s exp %s", intcard.Mask(c.Number), expiry.CardFace(c.ExpMonth, c.ExpYear))
}

// ValidateExpiry checks the expiration pair is well-formed. It says nothing
// about whether the card has expired; that is the issuer's call.
func (c CreditCard) ValidateExpiry() error {
	if err := expiry.Validate(c.ExpMonth, c.ExpYear); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidExpiry, err)
	}
	return nil
}

// ExpiryMMYY formats the expiration as MMYY, the common form-protocol shape.
func (c CreditCard) ExpiryMMYY() string {
	return expiry.MMYY(c.ExpMonth, c.ExpYear)
}

// ExpiryYYMM formats the expiration as YYMM, the ISO 8583 DE14 shape.
func (c CreditCard) ExpiryYYMM() string {
	return expiry.YYMM(c.ExpMonth, c.ExpYear)
}

// NormalizedNumber returns the PAN with spaces and dashes stripped.
func (c CreditCard) NormalizedNumber() string {
	return intcard.Normalize(c.Number)
}

// Last4 returns the last four digits of the PAN.
func (c CreditCard) Last4() string {
	return intcard.LastN(c.Number, 4)
}

// StoredReference is an opaque token returned by a gateway's Store
// operation, usable in place of card data on the same gateway.
type StoredReference string

func (s StoredReference) Display() string {
	return fmt.Sprintf("stored reference %s", string(s))
}
