// Package formpay is the adapter for processors speaking the delimited
// key-value form protocol: requests are form-encoded POSTs, replies are
// plaintext "status=APPROVED, txid=..., avscode=Y" lines.
//
// It is also the reference adapter: it exercises the full contract surface
// (all six operations, AVS/CVV decoding, test-mode override, every error
// class) and doubles as the template for writing new form-based adapters.
package formpay

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/alovak/paygate/gateway"
	"github.com/alovak/paygate/internal/transport"
	"github.com/alovak/paygate/money"
)

const providerName = "formpay"

func init() {
	gateway.Register(providerName, func(config gateway.Config) (gateway.Gateway, error) {
		return New(config)
	})
}

// Gateway talks to one formpay-protocol account.
type Gateway struct {
	gateway.Base
	client *transport.Client
}

// New builds the adapter. Credentials: "login" and "password" are required;
// "endpoint" overrides the wire endpoint, which tests point at an
// in-process sandbox.
func New(config gateway.Config, opts ...transport.Option) (*Gateway, error) {
	if err := config.Require(providerName, "login", "password"); err != nil {
		return nil, err
	}
	endpoint := config.Credential("endpoint")
	if endpoint == "" {
		return nil, &gateway.ConfigurationError{Provider: providerName, Option: "endpoint", Reason: "is required"}
	}

	profile := gateway.Profile{
		DisplayName:        "FormPay",
		SupportedBrands:    []string{"visa", "mastercard", "amex", "discover"},
		SupportedCountries: []string{"US", "CA", "GB"},
		DefaultCurrency:    "USD",
	}

	return &Gateway{
		Base: gateway.NewBase(providerName, profile, config,
			gateway.OpPurchase, gateway.OpAuthorize, gateway.OpCapture,
			gateway.OpVoid, gateway.OpRefund, gateway.OpStore),
		client: transport.New(providerName, endpoint, opts...),
	}, nil
}

func (g *Gateway) Purchase(ctx context.Context, amount int64, method gateway.PaymentMethod, opts gateway.Options) (*gateway.Response, error) {
	return g.payment(ctx, "purchase", amount, method, opts)
}

func (g *Gateway) Authorize(ctx context.Context, amount int64, method gateway.PaymentMethod, opts gateway.Options) (*gateway.Response, error) {
	return g.payment(ctx, "authorize", amount, method, opts)
}

func (g *Gateway) payment(ctx context.Context, action string, amount int64, method gateway.PaymentMethod, opts gateway.Options) (*gateway.Response, error) {
	form, err := g.baseForm(action, opts)
	if err != nil {
		return nil, err
	}
	if err := setAmount(form, amount, g.Currency(opts)); err != nil {
		return nil, err
	}
	if err := setPaymentMethod(form, method); err != nil {
		return nil, err
	}
	return g.commit(ctx, form)
}

func (g *Gateway) Capture(ctx context.Context, amount int64, authorization string, opts gateway.Options) (*gateway.Response, error) {
	return g.followUp(ctx, "capture", amount, authorization, opts)
}

func (g *Gateway) Void(ctx context.Context, authorization string, opts gateway.Options) (*gateway.Response, error) {
	form, err := g.baseForm("void", opts)
	if err != nil {
		return nil, err
	}
	form.Set("authorization", authorization)
	return g.commit(ctx, form)
}

func (g *Gateway) Refund(ctx context.Context, amount int64, authorization string, opts gateway.Options) (*gateway.Response, error) {
	return g.followUp(ctx, "refund", amount, authorization, opts)
}

func (g *Gateway) Store(ctx context.Context, method gateway.PaymentMethod, opts gateway.Options) (*gateway.Response, error) {
	form, err := g.baseForm("store", opts)
	if err != nil {
		return nil, err
	}
	if err := setPaymentMethod(form, method); err != nil {
		return nil, err
	}
	return g.commit(ctx, form)
}

func (g *Gateway) followUp(ctx context.Context, action string, amount int64, authorization string, opts gateway.Options) (*gateway.Response, error) {
	form, err := g.baseForm(action, opts)
	if err != nil {
		return nil, err
	}
	if err := setAmount(form, amount, g.Currency(opts)); err != nil {
		return nil, err
	}
	// the reference goes over the wire exactly as the provider issued it
	form.Set("authorization", authorization)
	return g.commit(ctx, form)
}

// baseForm starts a request with credentials, mode and the recognized
// options every action shares.
func (g *Gateway) baseForm(action string, opts gateway.Options) (url.Values, error) {
	form := url.Values{}
	form.Set("action", action)
	form.Set("login", g.Config().Credential("login"))
	form.Set("password", g.Config().Credential("password"))
	if g.TestMode() {
		form.Set("test", "1")
	}
	if id := opts.OrderID(); id != "" {
		form.Set("order_id", id)
	}
	if d := opts.Description(); d != "" {
		form.Set("description", d)
	}
	if key := opts.IdempotencyKey(); key != "" {
		form.Set("idempotency_key", key)
	}
	setBillingAddress(form, opts)
	return form, nil
}

func setAmount(form url.Values, amount int64, currency string) error {
	normalized, err := money.Normalize(amount)
	if err != nil {
		return err
	}
	form.Set("amount", money.MajorUnitsFor(normalized, currency))
	form.Set("currency", strings.ToUpper(currency))
	return nil
}

func setPaymentMethod(form url.Values, method gateway.PaymentMethod) error {
	switch m := method.(type) {
	case gateway.CreditCard:
		if err := m.ValidateExpiry(); err != nil {
			return fmt.Errorf("%s: %w", providerName, err)
		}
		form.Set("card_number", m.NormalizedNumber())
		form.Set("card_expiry", m.ExpiryMMYY())
		form.Set("card_cvv", m.VerificationValue)
		form.Set("cardholder", m.HolderName)
	case gateway.StoredReference:
		form.Set("token", string(m))
	default:
		return fmt.Errorf("%s: unsupported payment method %T", providerName, method)
	}
	return nil
}

func setBillingAddress(form url.Values, opts gateway.Options) {
	pairs := map[string]string{
		"billing_street":  opts.Get(gateway.OptBillingStreet),
		"billing_city":    opts.Get(gateway.OptBillingCity),
		"billing_state":   opts.Get(gateway.OptBillingState),
		"billing_zip":     opts.Get(gateway.OptBillingZip),
		"billing_country": opts.Get(gateway.OptBillingCountry),
	}
	for key, value := range pairs {
		if value != "" {
			form.Set(key, value)
		}
	}
}

// commit performs the wire call and folds the reply into a Response.
func (g *Gateway) commit(ctx context.Context, form url.Values) (*gateway.Response, error) {
	reply, err := g.client.PostForm(ctx, "/gateway", form)
	if err != nil {
		return nil, err
	}
	params, err := parseReply(reply.Body)
	if err != nil {
		return nil, err
	}
	return g.buildResponse(params), nil
}

// parseReply splits "k=v, k=v" plaintext into ordered params. A body
// without a status field is not this protocol, whatever it is.
func parseReply(body []byte) (*gateway.Params, error) {
	params := gateway.NewParams()
	for _, pair := range strings.Split(string(body), ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		params.Set(key, strings.TrimSpace(value))
	}
	if !params.Has("status") {
		return nil, &gateway.MalformedResponseError{
			Provider: providerName,
			Raw:      body,
			Err:      fmt.Errorf("reply has no status field"),
		}
	}
	return params, nil
}

// buildResponse is the single place success is determined: APPROVED and
// nothing else. DECLINED and ERROR are both failed Responses, not errors;
// the provider did answer, it just said no.
func (g *Gateway) buildResponse(params *gateway.Params) *gateway.Response {
	success := params.Get("status") == "APPROVED"

	message := params.Get("errormessage")
	if message == "" && success {
		message = "Approved"
	}

	authorization := params.Get("txid")
	if authorization == "" {
		authorization = params.Get("token")
	}

	// the gateway's configured mode, unless the reply asserts routing itself
	test := g.TestMode()
	if params.Has("test") {
		test = params.Get("test") == "1"
	}

	responseOpts := []gateway.ResponseOption{
		gateway.WithAuthorization(authorization),
		gateway.WithParams(params),
		gateway.WithTest(test),
	}
	if params.Has("avscode") {
		responseOpts = append(responseOpts, gateway.WithAVS(params.Get("avscode")))
	}
	if params.Has("cvvcode") {
		responseOpts = append(responseOpts, gateway.WithCVV(params.Get("cvvcode")))
	}
	return gateway.NewResponse(success, message, responseOpts...)
}
