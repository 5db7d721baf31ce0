package gateway

// Options carries per-operation settings. Recognized keys have typed
// accessors below; unrecognized keys are ignored by the core and passed to
// adapters, which may understand provider-specific extras (an idempotency
// key, a statement descriptor). Options is never required: a nil map
// behaves like an empty one.
type Options map[string]string

// Recognized option keys.
const (
	OptOrderID        = "order_id"
	OptDescription    = "description"
	OptCurrency       = "currency"
	OptIdempotencyKey = "idempotency_key"
	OptBillingStreet  = "billing_street"
	OptBillingCity    = "billing_city"
	OptBillingState   = "billing_state"
	OptBillingZip     = "billing_zip"
	OptBillingCountry = "billing_country"
)

// Get returns the value for key, or "".
func (o Options) Get(key string) string {
	return o[key]
}

// OrderID returns the caller's order identifier, if any.
func (o Options) OrderID() string { return o[OptOrderID] }

// Description returns the free-text transaction description, if any.
func (o Options) Description() string { return o[OptDescription] }

// Currency returns the per-operation currency override, or fallback when
// the option is absent.
func (o Options) Currency(fallback string) string {
	if c := o[OptCurrency]; c != "" {
		return c
	}
	return fallback
}

// IdempotencyKey returns the provider-specific idempotency key, if any. The
// contract itself guarantees no idempotency.
func (o Options) IdempotencyKey() string { return o[OptIdempotencyKey] }
