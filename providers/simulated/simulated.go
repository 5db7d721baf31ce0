// Package simulated is an in-process provider adapter with deterministic
// outcomes selected by magic card numbers. It supports every operation of
// the contract and enforces provider-side business rules (capture needs a
// live authorization, refund needs a settled one), which makes it the
// executable example of the Gateway semantics and the default target for
// integration-style tests in applications built on this library.
package simulated

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/alovak/paygate/gateway"
	"github.com/alovak/paygate/money"
	"github.com/google/uuid"
)

const providerName = "simulated"

// Magic card numbers. Anything else approves.
const (
	CardDeclined     = "4000000000000002"
	CardInsufficient = "4000000000009995"
	CardUnreachable  = "4000000000000101" // simulates a provider that never answers
)

func init() {
	gateway.Register(providerName, func(config gateway.Config) (gateway.Gateway, error) {
		return New(config)
	})
}

type txStatus string

const (
	statusAuthorized txStatus = "AUTHORIZED"
	statusCaptured   txStatus = "CAPTURED"
	statusVoided     txStatus = "VOIDED"
	statusRefunded   txStatus = "REFUNDED"
)

type transaction struct {
	amount   int64
	currency string
	status   txStatus
}

// Gateway is the simulated adapter. It requires no credentials; the
// optional "vault_dsn" credential switches token storage to Postgres.
type Gateway struct {
	gateway.Base
	vault *Vault

	mu  sync.Mutex
	txs map[string]*transaction
}

func New(config gateway.Config) (*Gateway, error) {
	vault, err := NewVault(config.Credential("vault_dsn"))
	if err != nil {
		return nil, err
	}

	profile := gateway.Profile{
		DisplayName:        "Simulated",
		SupportedBrands:    []string{"visa", "mastercard", "amex", "discover", "jcb"},
		SupportedCountries: []string{"US"},
		DefaultCurrency:    "USD",
	}

	return &Gateway{
		Base: gateway.NewBase(providerName, profile, config,
			gateway.OpPurchase, gateway.OpAuthorize, gateway.OpCapture,
			gateway.OpVoid, gateway.OpRefund, gateway.OpStore),
		vault: vault,
		txs:   make(map[string]*transaction),
	}, nil
}

func (g *Gateway) Purchase(ctx context.Context, amount int64, method gateway.PaymentMethod, opts gateway.Options) (*gateway.Response, error) {
	return g.payment(ctx, amount, method, opts, statusCaptured)
}

func (g *Gateway) Authorize(ctx context.Context, amount int64, method gateway.PaymentMethod, opts gateway.Options) (*gateway.Response, error) {
	return g.payment(ctx, amount, method, opts, statusAuthorized)
}

func (g *Gateway) payment(ctx context.Context, amount int64, method gateway.PaymentMethod, opts gateway.Options, settle txStatus) (*gateway.Response, error) {
	normalized, err := money.Normalize(amount)
	if err != nil {
		return nil, err
	}

	number, err := g.resolveNumber(ctx, method)
	if err != nil {
		return nil, err
	}
	if number == "" {
		return g.declined("Unknown stored reference"), nil
	}

	switch number {
	case CardUnreachable:
		return nil, &gateway.TransportError{Provider: providerName, Err: fmt.Errorf("simulated connection timeout")}
	case CardDeclined:
		return g.declinedWithChecks("Card declined", "N", "N"), nil
	case CardInsufficient:
		return g.declinedWithChecks("Insufficient funds", "Y", "M"), nil
	}

	authorization := uuid.New().String()
	g.mu.Lock()
	g.txs[authorization] = &transaction{
		amount:   normalized,
		currency: g.Currency(opts),
		status:   settle,
	}
	g.mu.Unlock()

	return g.approved(authorization, "Y", "M"), nil
}

func (g *Gateway) Capture(ctx context.Context, amount int64, authorization string, opts gateway.Options) (*gateway.Response, error) {
	normalized, err := money.Normalize(amount)
	if err != nil {
		return nil, err
	}
	return g.transition(authorization, statusAuthorized, statusCaptured, func(tx *transaction) string {
		if normalized > tx.amount {
			return "Capture amount exceeds authorization"
		}
		return ""
	}), nil
}

func (g *Gateway) Void(ctx context.Context, authorization string, opts gateway.Options) (*gateway.Response, error) {
	return g.transition(authorization, statusAuthorized, statusVoided, nil), nil
}

func (g *Gateway) Refund(ctx context.Context, amount int64, authorization string, opts gateway.Options) (*gateway.Response, error) {
	normalized, err := money.Normalize(amount)
	if err != nil {
		return nil, err
	}
	return g.transition(authorization, statusCaptured, statusRefunded, func(tx *transaction) string {
		if normalized > tx.amount {
			return "Refund amount exceeds settled amount"
		}
		return ""
	}), nil
}

func (g *Gateway) Store(ctx context.Context, method gateway.PaymentMethod, opts gateway.Options) (*gateway.Response, error) {
	card, ok := method.(gateway.CreditCard)
	if !ok {
		return g.declined("Only card data can be stored"), nil
	}
	token, err := g.vault.Put(ctx, card)
	if err != nil {
		return nil, err
	}
	params := gateway.NewParams()
	params.Set("status", "APPROVED")
	params.Set("token", token)
	return gateway.NewResponse(true, "Card stored",
		gateway.WithAuthorization(token),
		gateway.WithParams(params),
		gateway.WithTest(g.TestMode()),
	), nil
}

// resolveNumber turns a payment method into the card number to simulate
// with; an empty result means the stored reference is unknown.
func (g *Gateway) resolveNumber(ctx context.Context, method gateway.PaymentMethod) (string, error) {
	switch m := method.(type) {
	case gateway.CreditCard:
		return m.NormalizedNumber(), nil
	case gateway.StoredReference:
		return g.vault.Number(ctx, string(m))
	default:
		return "", fmt.Errorf("%s: unsupported payment method %T", providerName, method)
	}
}

// transition applies a provider business rule: the referenced transaction
// must exist in the required state. Violations are declines, because a real
// provider reports them, it does not crash.
func (g *Gateway) transition(authorization string, from, to txStatus, check func(*transaction) string) *gateway.Response {
	g.mu.Lock()
	defer g.mu.Unlock()

	tx, ok := g.txs[authorization]
	if !ok {
		return g.declined("Unknown authorization")
	}
	if tx.status != from {
		return g.declined(fmt.Sprintf("Authorization is %s", tx.status))
	}
	if check != nil {
		if msg := check(tx); msg != "" {
			return g.declined(msg)
		}
	}
	tx.status = to
	return g.approved(authorization, "", "")
}

func (g *Gateway) approved(authorization, avsCode, cvvCode string) *gateway.Response {
	params := gateway.NewParams()
	params.Set("status", "APPROVED")
	params.Set("authorization", authorization)
	params.Set("approval_code", approvalCode())

	responseOpts := []gateway.ResponseOption{
		gateway.WithAuthorization(authorization),
		gateway.WithParams(params),
		gateway.WithTest(g.TestMode()),
	}
	if avsCode != "" {
		params.Set("avs", avsCode)
		responseOpts = append(responseOpts, gateway.WithAVS(avsCode))
	}
	if cvvCode != "" {
		params.Set("cvv", cvvCode)
		responseOpts = append(responseOpts, gateway.WithCVV(cvvCode))
	}
	return gateway.NewResponse(true, "Approved", responseOpts...)
}

func (g *Gateway) declined(message string) *gateway.Response {
	params := gateway.NewParams()
	params.Set("status", "DECLINED")
	params.Set("message", message)
	return gateway.NewResponse(false, message,
		gateway.WithParams(params),
		gateway.WithTest(g.TestMode()),
	)
}

func (g *Gateway) declinedWithChecks(message, avsCode, cvvCode string) *gateway.Response {
	params := gateway.NewParams()
	params.Set("status", "DECLINED")
	params.Set("message", message)
	params.Set("avs", avsCode)
	params.Set("cvv", cvvCode)
	return gateway.NewResponse(false, message,
		gateway.WithParams(params),
		gateway.WithTest(g.TestMode()),
		gateway.WithAVS(avsCode),
		gateway.WithCVV(cvvCode),
	)
}

func approvalCode() string {
	digits := make([]byte, 6)
	for i := range digits {
		digits[i] = byte('0' + rand.Intn(10))
	}
	return string(digits)
}
