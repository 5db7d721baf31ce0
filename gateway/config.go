package gateway

// Config is the construction-time configuration of a gateway instance.
// Credentials are opaque to the core; each adapter names the keys it
// requires and validates them with Require. Mode is fixed per instance:
// there is no process-wide test/live switch.
type Config struct {
	// Credentials holds provider-defined keys such as "login", "password",
	// "api_key" or "merchant_id".
	Credentials map[string]string
	// TestMode routes operations to the provider's test endpoint and marks
	// every Response accordingly.
	TestMode bool
	// DefaultCurrency overrides the adapter's default ISO 4217 code when
	// non-empty.
	DefaultCurrency string
}

// Credential returns a credential value, or "".
func (c Config) Credential(key string) string {
	return c.Credentials[key]
}

// Require validates that every named credential is present and non-empty,
// returning a ConfigurationError for the first one missing.
func (c Config) Require(provider string, keys ...string) error {
	for _, key := range keys {
		if c.Credentials[key] == "" {
			return &ConfigurationError{Provider: provider, Option: key, Reason: "is required"}
		}
	}
	return nil
}
