package gateway

import (
	"errors"
	"fmt"
)

// The error taxonomy separates protocol and infrastructure failures, which
// surface as errors, from provider declines, which are always a Response
// with Success false. Adapters must never turn a decline into an error.

// Argument sentinels report bad per-operation input, the counterparts of
// money.ErrInvalidAmount for the other operation arguments. Adapters wrap
// them with provider context.
var (
	ErrInvalidExpiry   = fmt.Errorf("invalid card expiry")
	ErrUnknownCurrency = fmt.Errorf("unknown currency")
)

// ConfigurationError reports a missing or malformed credential or option at
// gateway construction time. It is never retried.
type ConfigurationError struct {
	Provider string
	Option   string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	if e.Option != "" {
		return fmt.Sprintf("%s: configuration option %q %s", e.Provider, e.Option, e.Reason)
	}
	return fmt.Sprintf("%s: configuration %s", e.Provider, e.Reason)
}

// UnsupportedOperationError reports an operation the configured adapter does
// not implement. It is distinct from a Response so a caller cannot mistake a
// capability gap for a declined transaction.
type UnsupportedOperationError struct {
	Provider string
	Op       Operation
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s does not support %s", e.Provider, e.Op)
}

// TransportError reports a network failure before any provider response was
// received. No Response exists; retrying is at the caller's discretion.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Retryable marks the error as safe to retry; the core itself never does.
func (e *TransportError) Retryable() bool { return true }

// MalformedResponseError reports provider bytes the adapter could not parse
// into its expected shape. The same request would likely fail the same way,
// so it is not retryable.
type MalformedResponseError struct {
	Provider string
	Raw      []byte
	Err      error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Provider, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

func (e *MalformedResponseError) Retryable() bool { return false }

// IsRetryable reports whether an error from a gateway operation is worth
// retrying. Only transport failures qualify.
func IsRetryable(err error) bool {
	var r interface{ Retryable() bool }
	return errors.As(err, &r) && r.Retryable()
}
