package gateway

import (
	"github.com/alovak/paygate/avs"
	"github.com/alovak/paygate/cvv"
)

// Response is the canonical result of any gateway operation, regardless of
// the provider's wire format. Success is the single source of truth for
// call-site branching: a declined transaction is a Response with Success
// false, never an error.
//
// A Response is constructed exactly once per operation, immediately after
// the adapter parses the provider's reply, and is not mutated afterwards.
type Response struct {
	// Success reports whether the provider accepted the operation.
	Success bool
	// Message is the provider's human-readable explanation, or a synthesized
	// one; it is never empty.
	Message string
	// Authorization is the provider-issued transaction reference, passed to
	// follow-up capture/void/refund calls exactly as received. Empty when the
	// operation defines none.
	Authorization string
	// Test reports whether the operation ran against a test endpoint.
	Test bool
	// AVS and CVV are the decoded verification results, when the provider
	// reported any.
	AVS *avs.Result
	CVV *cvv.Result

	params *Params
}

// ResponseOption configures optional Response fields at construction.
type ResponseOption func(*Response)

// WithAuthorization sets the provider transaction reference.
func WithAuthorization(auth string) ResponseOption {
	return func(r *Response) { r.Authorization = auth }
}

// WithParams attaches the raw provider fields. The Params must not be
// modified after construction.
func WithParams(p *Params) ResponseOption {
	return func(r *Response) { r.params = p }
}

// WithTest sets the test flag. Adapters pass their gateway's configured mode
// here; when the provider payload itself asserts test or live, pass that
// instead, since some providers route to a sandbox dynamically.
func WithTest(test bool) ResponseOption {
	return func(r *Response) { r.Test = test }
}

// WithAVS decodes and attaches a raw AVS code. An empty code still attaches
// the defined no-data result, so pass it only when the provider reported the
// field at all.
func WithAVS(code string) ResponseOption {
	return func(r *Response) {
		result := avs.Decode(code)
		r.AVS = &result
	}
}

// WithCVV decodes and attaches a raw CVV check code.
func WithCVV(code string) ResponseOption {
	return func(r *Response) {
		result := cvv.Decode(code)
		r.CVV = &result
	}
}

// NewResponse builds a Response. When message is empty a generic one is
// synthesized so Success never lacks an explanation.
func NewResponse(success bool, message string, opts ...ResponseOption) *Response {
	if message == "" {
		if success {
			message = "Transaction approved."
		} else {
			message = "Transaction declined."
		}
	}
	r := &Response{Success: success, Message: message}
	for _, opt := range opts {
		opt(r)
	}
	if r.params == nil {
		r.params = NewParams()
	}
	return r
}

// Params returns the raw provider fields in provider order. Callers must
// treat the returned set as read-only.
func (r *Response) Params() *Params {
	return r.params
}
