// Package gateway defines the contract every payment processor adapter
// implements and the canonical result model every operation returns.
//
// A Gateway is a configured connection to one processor. Callers invoke the
// uniform operation vocabulary (purchase, authorize, capture, refund, void,
// store) and branch on the returned Response; which processor sits behind
// the interface never leaks into call sites. The core performs no I/O and
// keeps no per-transaction state, so a single instance is safe for
// concurrent use as long as the adapter's transport is.
package gateway

import "context"

// Operation names one verb of the uniform vocabulary.
type Operation string

const (
	OpPurchase  Operation = "purchase"
	OpAuthorize Operation = "authorize"
	OpCapture   Operation = "capture"
	OpVoid      Operation = "void"
	OpRefund    Operation = "refund"
	OpStore     Operation = "store"
)

// allOperations fixes the presentation order of capability listings.
var allOperations = []Operation{OpPurchase, OpAuthorize, OpCapture, OpVoid, OpRefund, OpStore}

// Profile describes a processor's static capability surface.
type Profile struct {
	DisplayName        string
	SupportedBrands    []string
	SupportedCountries []string
	// DefaultCurrency is the ISO 4217 code used when neither the gateway
	// config nor the operation options specify one.
	DefaultCurrency string
}

// Gateway is the contract every processor adapter satisfies.
//
// Amounts are positive integers in minor units; adapters format them with
// package money and never convert currencies. Authorization strings round
// trip exactly as the provider issued them.
//
// Every operation either returns a Response (including declines, which are
// Responses with Success false) or an error from the taxonomy in errors.go;
// never both, and never a partial Response. Invoking an operation the
// adapter does not support returns an UnsupportedOperationError; callers
// can check Supports up front instead.
type Gateway interface {
	// Name is the registry name of the provider adapter.
	Name() string
	// Profile reports supported brands, countries and the default currency.
	Profile() Profile
	// Supports is the capability query for one operation; it never performs
	// I/O.
	Supports(op Operation) bool
	// Capabilities lists the supported operations in stable order.
	Capabilities() []Operation
	// TestMode reports the mode fixed at construction.
	TestMode() bool

	// Purchase authorizes and settles in one step.
	Purchase(ctx context.Context, amount int64, method PaymentMethod, opts Options) (*Response, error)
	// Authorize reserves funds without settling.
	Authorize(ctx context.Context, amount int64, method PaymentMethod, opts Options) (*Response, error)
	// Capture settles a previously authorized amount.
	Capture(ctx context.Context, amount int64, authorization string, opts Options) (*Response, error)
	// Void cancels a not-yet-settled authorization.
	Void(ctx context.Context, authorization string, opts Options) (*Response, error)
	// Refund returns funds for a settled transaction.
	Refund(ctx context.Context, amount int64, authorization string, opts Options) (*Response, error)
	// Store persists a payment method at the provider and returns a
	// reference usable in place of card data.
	Store(ctx context.Context, method PaymentMethod, opts Options) (*Response, error)
}

// Base carries the immutable per-instance state shared by adapters and
// supplies the capability plumbing plus fail-fast defaults for operations
// an adapter leaves unimplemented. Embed it and override the supported
// subset.
type Base struct {
	name    string
	profile Profile
	config  Config
	ops     map[Operation]bool
}

// NewBase builds the embedded core of an adapter. ops declares the
// operations the adapter actually implements.
func NewBase(name string, profile Profile, config Config, ops ...Operation) Base {
	set := make(map[Operation]bool, len(ops))
	for _, op := range ops {
		set[op] = true
	}
	if config.DefaultCurrency != "" {
		profile.DefaultCurrency = config.DefaultCurrency
	}
	return Base{name: name, profile: profile, config: config, ops: set}
}

func (b Base) Name() string { return b.name }

func (b Base) Profile() Profile { return b.profile }

func (b Base) TestMode() bool { return b.config.TestMode }

// Config returns the construction-time configuration.
func (b Base) Config() Config { return b.config }

func (b Base) Supports(op Operation) bool { return b.ops[op] }

func (b Base) Capabilities() []Operation {
	out := make([]Operation, 0, len(b.ops))
	for _, op := range allOperations {
		if b.ops[op] {
			out = append(out, op)
		}
	}
	return out
}

// Currency resolves the currency for one operation: the per-operation
// option wins, then the configured override, then the adapter default.
func (b Base) Currency(opts Options) string {
	return opts.Currency(b.profile.DefaultCurrency)
}

// Unsupported builds the error for an operation this adapter does not
// implement.
func (b Base) Unsupported(op Operation) error {
	return &UnsupportedOperationError{Provider: b.name, Op: op}
}

// Default operation implementations fail fast; adapters override the ones
// they support.

func (b Base) Purchase(ctx context.Context, amount int64, method PaymentMethod, opts Options) (*Response, error) {
	return nil, b.Unsupported(OpPurchase)
}

func (b Base) Authorize(ctx context.Context, amount int64, method PaymentMethod, opts Options) (*Response, error) {
	return nil, b.Unsupported(OpAuthorize)
}

func (b Base) Capture(ctx context.Context, amount int64, authorization string, opts Options) (*Response, error) {
	return nil, b.Unsupported(OpCapture)
}

func (b Base) Void(ctx context.Context, authorization string, opts Options) (*Response, error) {
	return nil, b.Unsupported(OpVoid)
}

func (b Base) Refund(ctx context.Context, amount int64, authorization string, opts Options) (*Response, error) {
	return nil, b.Unsupported(OpRefund)
}

func (b Base) Store(ctx context.Context, method PaymentMethod, opts Options) (*Response, error) {
	return nil, b.Unsupported(OpStore)
}
