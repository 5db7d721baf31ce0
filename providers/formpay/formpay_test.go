package formpay_test

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/alovak/paygate/avs"
	"github.com/alovak/paygate/gateway"
	"github.com/alovak/paygate/internal/sandbox"
	"github.com/alovak/paygate/providers/formpay"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func newTestGateway(t *testing.T, testMode bool) *formpay.Gateway {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard))
	srv := httptest.NewServer(sandbox.New(logger).Handler())
	t.Cleanup(srv.Close)

	g, err := formpay.New(gateway.Config{
		Credentials: map[string]string{
			"login":    "merchant-1",
			"password": "secret",
			"endpoint": srv.URL,
		},
		TestMode: testMode,
	})
	require.NoError(t, err)
	return g
}

func goodCard() gateway.CreditCard {
	return gateway.CreditCard{
		Number:            "4242424242424242",
		ExpMonth:          9,
		ExpYear:           2027,
		VerificationValue: "123",
		HolderName:        "JOHN DOE",
	}
}

func TestNew_RequiresCredentials(t *testing.T) {
	_, err := formpay.New(gateway.Config{})
	var confErr *gateway.ConfigurationError
	require.ErrorAs(t, err, &confErr)
	require.Equal(t, "login", confErr.Option)

	_, err = formpay.New(gateway.Config{
		Credentials: map[string]string{"login": "a", "password": "b"},
	})
	require.ErrorAs(t, err, &confErr)
	require.Equal(t, "endpoint", confErr.Option)
}

func TestPurchase_Approved(t *testing.T) {
	g := newTestGateway(t, true)

	resp, err := g.Purchase(context.Background(), 1034, goodCard(), gateway.Options{
		gateway.OptOrderID: "order-1",
	})
	require.NoError(t, err)

	require.True(t, resp.Success)
	require.Equal(t, "19779424", resp.Authorization)
	require.True(t, resp.Test)
	require.NotEmpty(t, resp.Message)

	require.Equal(t, "APPROVED", resp.Params().Get("status"))
	require.Equal(t, []string{"status", "txid", "avscode", "cvvcode", "test"}, resp.Params().Keys())

	require.NotNil(t, resp.AVS)
	require.Equal(t, avs.Matched, resp.AVS.StreetMatch)
	require.NotNil(t, resp.CVV)
	require.True(t, resp.CVV.Matched())
}

func TestPurchase_Declined(t *testing.T) {
	g := newTestGateway(t, true)

	card := goodCard()
	card.Number = sandbox.CardDeclined
	resp, err := g.Purchase(context.Background(), 1034, card, nil)
	require.NoError(t, err, "a decline is a response, not an error")

	require.False(t, resp.Success)
	require.Equal(t, "Card declined", resp.Message)
	require.Equal(t, avs.NotMatched, resp.AVS.StreetMatch)
}

func TestPurchase_BadVerificationValue(t *testing.T) {
	g := newTestGateway(t, true)

	card := goodCard()
	card.Number = sandbox.CardBadCVV
	resp, err := g.Purchase(context.Background(), 1034, card, nil)
	require.NoError(t, err)
	require.False(t, resp.Success)
	require.False(t, resp.CVV.Matched())
}

func TestCapture_MissingAuthorizationIsProviderError(t *testing.T) {
	g := newTestGateway(t, true)

	resp, err := g.Capture(context.Background(), 1034, "", nil)
	require.NoError(t, err, "provider-reported errors are failed responses")
	require.False(t, resp.Success)
	require.Contains(t, resp.Message, "Parameter")
	require.Equal(t, "1300", resp.Params().Get("errorcode"))
}

func TestPurchase_MalformedReply(t *testing.T) {
	g := newTestGateway(t, true)

	card := goodCard()
	card.Number = sandbox.CardGarbled
	resp, err := g.Purchase(context.Background(), 1034, card, nil)
	require.Nil(t, resp)

	var malformed *gateway.MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	require.Contains(t, string(malformed.Raw), "<html>")
	require.False(t, gateway.IsRetryable(err))
}

func TestPurchase_TransportError(t *testing.T) {
	g, err := formpay.New(gateway.Config{
		Credentials: map[string]string{
			"login":    "merchant-1",
			"password": "secret",
			"endpoint": "http://127.0.0.1:1", // nothing listens here
		},
	})
	require.NoError(t, err)

	resp, err := g.Purchase(context.Background(), 1034, goodCard(), nil)
	require.Nil(t, resp)
	require.True(t, gateway.IsRetryable(err))
}

func TestTestFlag(t *testing.T) {
	t.Run("follows gateway mode", func(t *testing.T) {
		live := newTestGateway(t, false)
		resp, err := live.Purchase(context.Background(), 1034, goodCard(), nil)
		require.NoError(t, err)
		require.False(t, resp.Test)
	})

	t.Run("provider assertion wins", func(t *testing.T) {
		live := newTestGateway(t, false)
		card := goodCard()
		card.Number = sandbox.CardForcesTest
		resp, err := live.Purchase(context.Background(), 1034, card, nil)
		require.NoError(t, err)
		require.True(t, resp.Test, "reply asserted test routing")
	})
}

func TestAuthorizeCaptureVoidRefund(t *testing.T) {
	g := newTestGateway(t, true)
	ctx := context.Background()

	auth, err := g.Authorize(ctx, 5000, goodCard(), nil)
	require.NoError(t, err)
	require.True(t, auth.Success)
	require.NotEmpty(t, auth.Authorization)

	captured, err := g.Capture(ctx, 5000, auth.Authorization, nil)
	require.NoError(t, err)
	require.True(t, captured.Success)

	refunded, err := g.Refund(ctx, 5000, captured.Authorization, nil)
	require.NoError(t, err)
	require.True(t, refunded.Success)

	voided, err := g.Void(ctx, auth.Authorization, nil)
	require.NoError(t, err)
	require.True(t, voided.Success)
}

func TestStore(t *testing.T) {
	g := newTestGateway(t, true)

	resp, err := g.Store(context.Background(), goodCard(), nil)
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Contains(t, resp.Authorization, "tok_")

	// the stored reference is usable as a payment method
	paid, err := g.Purchase(context.Background(), 1034, gateway.StoredReference(resp.Authorization), nil)
	require.NoError(t, err)
	require.True(t, paid.Success)
}

func TestRegisteredInRegistry(t *testing.T) {
	require.Contains(t, gateway.Providers(), "formpay")
}

func TestPurchase_InvalidExpiry(t *testing.T) {
	g := newTestGateway(t, true)

	card := goodCard()
	card.ExpMonth = 13
	resp, err := g.Purchase(context.Background(), 1034, card, nil)
	require.Nil(t, resp)
	require.ErrorIs(t, err, gateway.ErrInvalidExpiry)
}
