package gateway_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/alovak/paygate/gateway"
	"github.com/stretchr/testify/require"
)

// captureless implements only purchase and authorize, the shape of a
// settlement-only processor.
type captureless struct {
	gateway.Base
}

func newCaptureless(config gateway.Config) *captureless {
	profile := gateway.Profile{
		DisplayName:     "Captureless",
		DefaultCurrency: "USD",
	}
	return &captureless{
		Base: gateway.NewBase("captureless", profile, config, gateway.OpPurchase, gateway.OpAuthorize),
	}
}

func (g *captureless) Purchase(ctx context.Context, amount int64, method gateway.PaymentMethod, opts gateway.Options) (*gateway.Response, error) {
	return gateway.NewResponse(true, "Approved",
		gateway.WithAuthorization("auth-1"),
		gateway.WithTest(g.TestMode()),
	), nil
}

func TestBase_Capabilities(t *testing.T) {
	g := newCaptureless(gateway.Config{})

	require.True(t, g.Supports(gateway.OpPurchase))
	require.True(t, g.Supports(gateway.OpAuthorize))
	require.False(t, g.Supports(gateway.OpCapture))
	require.False(t, g.Supports(gateway.OpStore))

	require.Equal(t, []gateway.Operation{gateway.OpPurchase, gateway.OpAuthorize}, g.Capabilities())
}

func TestBase_UnsupportedOperationFailsFast(t *testing.T) {
	g := newCaptureless(gateway.Config{})

	resp, err := g.Capture(context.Background(), 1000, "auth-1", nil)
	require.Nil(t, resp)

	var unsupported *gateway.UnsupportedOperationError
	require.ErrorAs(t, err, &unsupported)
	require.Equal(t, gateway.OpCapture, unsupported.Op)
	require.Equal(t, "captureless", unsupported.Provider)
	require.False(t, gateway.IsRetryable(err))
}

func TestBase_TestModePerInstance(t *testing.T) {
	test := newCaptureless(gateway.Config{TestMode: true})
	live := newCaptureless(gateway.Config{})

	require.True(t, test.TestMode())
	require.False(t, live.TestMode())

	resp, err := test.Purchase(context.Background(), 1000, gateway.StoredReference("tok"), nil)
	require.NoError(t, err)
	require.True(t, resp.Test)

	resp, err = live.Purchase(context.Background(), 1000, gateway.StoredReference("tok"), nil)
	require.NoError(t, err)
	require.False(t, resp.Test)
}

func TestBase_CurrencyResolution(t *testing.T) {
	adapterDefault := newCaptureless(gateway.Config{})
	require.Equal(t, "USD", adapterDefault.Currency(nil))

	configured := newCaptureless(gateway.Config{DefaultCurrency: "EUR"})
	require.Equal(t, "EUR", configured.Currency(nil))
	require.Equal(t, "EUR", configured.Profile().DefaultCurrency)

	require.Equal(t, "GBP", configured.Currency(gateway.Options{gateway.OptCurrency: "GBP"}))
}

func TestConfig_Require(t *testing.T) {
	cfg := gateway.Config{Credentials: map[string]string{"login": "merchant-1"}}

	require.NoError(t, cfg.Require("demo", "login"))

	err := cfg.Require("demo", "login", "password")
	var confErr *gateway.ConfigurationError
	require.ErrorAs(t, err, &confErr)
	require.Equal(t, "password", confErr.Option)
	require.Contains(t, err.Error(), "password")
}

func TestErrorTaxonomy_Retryability(t *testing.T) {
	transport := &gateway.TransportError{Provider: "demo", Err: fmt.Errorf("connection refused")}
	malformed := &gateway.MalformedResponseError{Provider: "demo", Raw: []byte("<html>"), Err: fmt.Errorf("no status field")}

	require.True(t, gateway.IsRetryable(transport))
	require.False(t, gateway.IsRetryable(malformed))
	require.False(t, gateway.IsRetryable(errors.New("plain")))
	require.False(t, gateway.IsRetryable(nil))

	// wrapping keeps the classification
	wrapped := fmt.Errorf("purchase: %w", transport)
	require.True(t, gateway.IsRetryable(wrapped))

	var te *gateway.TransportError
	require.ErrorAs(t, wrapped, &te)
	require.Equal(t, "demo", te.Provider)
}

func TestOptions(t *testing.T) {
	var none gateway.Options
	require.Empty(t, none.OrderID())
	require.Equal(t, "USD", none.Currency("USD"))

	opts := gateway.Options{
		gateway.OptOrderID:  "order-42",
		gateway.OptCurrency: "JPY",
		"x_custom_field":    "ignored by the core",
	}
	require.Equal(t, "order-42", opts.OrderID())
	require.Equal(t, "JPY", opts.Currency("USD"))
	require.Equal(t, "ignored by the core", opts.Get("x_custom_field"))
}

func TestCreditCard_ValidateExpiry(t *testing.T) {
	card := gateway.CreditCard{Number: "4111111111111111", ExpMonth: 9, ExpYear: 2027}
	require.NoError(t, card.ValidateExpiry())

	card.ExpMonth = 13
	require.ErrorIs(t, card.ValidateExpiry(), gateway.ErrInvalidExpiry)
}
