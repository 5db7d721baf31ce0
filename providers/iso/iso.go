// Package iso is the adapter for processors that front an ISO 8583
// authorization host: requests and replies are 8583 messages over a
// length-prefixed TCP connection rather than HTTP.
//
// The wire concerns (packing, the 2-byte length header, matching replies
// to requests by STAN) live in the moov-io libraries; this package maps
// the uniform operation vocabulary onto message types and data elements
// and folds DE39 back into the canonical Response.
package iso

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/moov-io/iso8583"
	connection "github.com/moov-io/iso8583-connection"
	"github.com/moov-io/iso8583/network"

	"github.com/alovak/paygate/gateway"
	"github.com/alovak/paygate/money"
)

const providerName = "iso"

func init() {
	gateway.Register(providerName, func(config gateway.Config) (gateway.Gateway, error) {
		return New(config)
	})
}

// sender is the slice of the 8583 connection the adapter uses. Tests plug
// in a stub host here instead of a TCP peer.
type sender interface {
	Send(msg *iso8583.Message) (*iso8583.Message, error)
	Close() error
}

// Gateway talks to one ISO 8583 authorization host.
type Gateway struct {
	gateway.Base
	address    string
	terminalID string
	merchantID string

	mu   sync.Mutex
	conn sender
	stan int
}

// New builds the adapter. Credentials: "address" (host:port of the
// authorization host) is required; "terminal_id" and "merchant_id" fill
// DE41 and DE42 when present.
func New(config gateway.Config) (*Gateway, error) {
	if err := config.Require(providerName, "address"); err != nil {
		return nil, err
	}

	profile := gateway.Profile{
		DisplayName:        "ISO 8583 host",
		SupportedBrands:    []string{"visa", "mastercard"},
		SupportedCountries: []string{"US", "GB", "DE", "AU"},
		DefaultCurrency:    "USD",
	}

	return &Gateway{
		Base: gateway.NewBase(providerName, profile, config,
			gateway.OpPurchase, gateway.OpAuthorize, gateway.OpCapture,
			gateway.OpVoid, gateway.OpRefund),
		address:    config.Credential("address"),
		terminalID: config.Credential("terminal_id"),
		merchantID: config.Credential("merchant_id"),
	}, nil
}

// connect dials the host on first use and keeps the connection for the
// lifetime of the gateway. The caller holds g.mu.
func (g *Gateway) connect() (sender, error) {
	if g.conn != nil {
		return g.conn, nil
	}
	conn, err := connection.New(g.address, spec87, readMessageLength, writeMessageLength,
		connection.SendTimeout(10*time.Second),
		connection.IdleTime(30*time.Second),
	)
	if err != nil {
		return nil, &gateway.TransportError{Provider: providerName, Err: fmt.Errorf("creating connection: %w", err)}
	}
	if err := conn.Connect(); err != nil {
		return nil, &gateway.TransportError{Provider: providerName, Err: fmt.Errorf("connecting to %s: %w", g.address, err)}
	}
	g.conn = conn
	return g.conn, nil
}

// Close tears down the host connection. Safe to call without one.
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.conn == nil {
		return nil
	}
	err := g.conn.Close()
	g.conn = nil
	return err
}

func (g *Gateway) Purchase(ctx context.Context, amount int64, method gateway.PaymentMethod, opts gateway.Options) (*gateway.Response, error) {
	return g.payment(ctx, "0200", procPurchase, amount, method, opts)
}

func (g *Gateway) Authorize(ctx context.Context, amount int64, method gateway.PaymentMethod, opts gateway.Options) (*gateway.Response, error) {
	return g.payment(ctx, "0100", procPurchase, amount, method, opts)
}

func (g *Gateway) Capture(ctx context.Context, amount int64, authorization string, opts gateway.Options) (*gateway.Response, error) {
	return g.followUp(ctx, "0220", amount, authorization, opts)
}

func (g *Gateway) Void(ctx context.Context, authorization string, opts gateway.Options) (*gateway.Response, error) {
	msg, err := g.baseMessage("0400", opts)
	if err != nil {
		return nil, err
	}
	if err := msg.Field(37, authorization); err != nil {
		return nil, fmt.Errorf("%s: setting reference: %w", providerName, err)
	}
	return g.commit(ctx, msg)
}

func (g *Gateway) Refund(ctx context.Context, amount int64, authorization string, opts gateway.Options) (*gateway.Response, error) {
	msg, err := g.baseMessage("0200", opts)
	if err != nil {
		return nil, err
	}
	if err := setAmount(msg, amount, g.Currency(opts)); err != nil {
		return nil, err
	}
	if err := msg.Field(3, procRefund); err != nil {
		return nil, fmt.Errorf("%s: setting processing code: %w", providerName, err)
	}
	if err := msg.Field(37, authorization); err != nil {
		return nil, fmt.Errorf("%s: setting reference: %w", providerName, err)
	}
	return g.commit(ctx, msg)
}

const (
	procPurchase = "000000"
	procRefund   = "200000"
)

func (g *Gateway) payment(ctx context.Context, mti, proc string, amount int64, method gateway.PaymentMethod, opts gateway.Options) (*gateway.Response, error) {
	msg, err := g.baseMessage(mti, opts)
	if err != nil {
		return nil, err
	}
	if err := msg.Field(3, proc); err != nil {
		return nil, fmt.Errorf("%s: setting processing code: %w", providerName, err)
	}
	if err := setAmount(msg, amount, g.Currency(opts)); err != nil {
		return nil, err
	}
	if err := setPaymentMethod(msg, method); err != nil {
		return nil, err
	}
	return g.commit(ctx, msg)
}

func (g *Gateway) followUp(ctx context.Context, mti string, amount int64, authorization string, opts gateway.Options) (*gateway.Response, error) {
	msg, err := g.baseMessage(mti, opts)
	if err != nil {
		return nil, err
	}
	if err := setAmount(msg, amount, g.Currency(opts)); err != nil {
		return nil, err
	}
	if err := msg.Field(37, authorization); err != nil {
		return nil, fmt.Errorf("%s: setting reference: %w", providerName, err)
	}
	return g.commit(ctx, msg)
}

// baseMessage starts a message with the MTI, a fresh STAN and the terminal
// identification every request carries.
func (g *Gateway) baseMessage(mti string, opts gateway.Options) (*iso8583.Message, error) {
	msg := iso8583.NewMessage(spec87)
	msg.MTI(mti)
	if err := msg.Field(11, g.nextSTAN()); err != nil {
		return nil, fmt.Errorf("%s: setting STAN: %w", providerName, err)
	}
	if g.terminalID != "" {
		if err := msg.Field(41, g.terminalID); err != nil {
			return nil, fmt.Errorf("%s: setting terminal id: %w", providerName, err)
		}
	}
	if g.merchantID != "" {
		if err := msg.Field(42, g.merchantID); err != nil {
			return nil, fmt.Errorf("%s: setting merchant id: %w", providerName, err)
		}
	}
	return msg, nil
}

// nextSTAN hands out trace numbers 000001..999999 and wraps.
func (g *Gateway) nextSTAN() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stan = g.stan%999999 + 1
	return fmt.Sprintf("%06d", g.stan)
}

func setAmount(msg *iso8583.Message, amount int64, currency string) error {
	normalized, err := money.Normalize(amount)
	if err != nil {
		return err
	}
	numeric, ok := currencyNumeric[strings.ToUpper(currency)]
	if !ok {
		return fmt.Errorf("%s: %w %q", providerName, gateway.ErrUnknownCurrency, currency)
	}
	if err := msg.Field(4, money.MinorUnitsString(normalized)); err != nil {
		return fmt.Errorf("%s: setting amount: %w", providerName, err)
	}
	if err := msg.Field(49, numeric); err != nil {
		return fmt.Errorf("%s: setting currency: %w", providerName, err)
	}
	return nil
}

func setPaymentMethod(msg *iso8583.Message, method gateway.PaymentMethod) error {
	card, ok := method.(gateway.CreditCard)
	if !ok {
		return fmt.Errorf("%s: unsupported payment method %T", providerName, method)
	}
	if err := card.ValidateExpiry(); err != nil {
		return fmt.Errorf("%s: %w", providerName, err)
	}
	if err := msg.Field(2, card.NormalizedNumber()); err != nil {
		return fmt.Errorf("%s: setting PAN: %w", providerName, err)
	}
	if err := msg.Field(14, card.ExpiryYYMM()); err != nil {
		return fmt.Errorf("%s: setting expiration: %w", providerName, err)
	}
	return nil
}

// commit sends the message and folds the reply into a Response.
func (g *Gateway) commit(ctx context.Context, msg *iso8583.Message) (*gateway.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, &gateway.TransportError{Provider: providerName, Err: err}
	}

	g.mu.Lock()
	conn, err := g.connect()
	g.mu.Unlock()
	if err != nil {
		return nil, err
	}

	reply, err := conn.Send(msg)
	if err != nil {
		return nil, &gateway.TransportError{Provider: providerName, Err: fmt.Errorf("sending message: %w", err)}
	}
	return g.buildResponse(reply)
}

// buildResponse is the single place success is determined: DE39 "00" and
// nothing else. Any other code the host answered with is a failed
// Response, not an error.
func (g *Gateway) buildResponse(reply *iso8583.Message) (*gateway.Response, error) {
	code, err := reply.GetString(39)
	if err != nil {
		return nil, &gateway.MalformedResponseError{
			Provider: providerName,
			Err:      fmt.Errorf("reading response code: %w", err),
		}
	}
	if code == "" {
		return nil, &gateway.MalformedResponseError{
			Provider: providerName,
			Err:      fmt.Errorf("reply has no response code"),
		}
	}

	params := gateway.NewParams()
	if mti, err := reply.GetMTI(); err == nil && mti != "" {
		params.Set("mti", mti)
	}
	params.Set("response_code", code)
	rrn, _ := reply.GetString(37)
	if rrn != "" {
		params.Set("rrn", rrn)
	}
	approval, _ := reply.GetString(38)
	if approval != "" {
		params.Set("approval_code", approval)
	}

	success := code == approvedCode
	message, known := responseMessages[code]
	if !known {
		message = fmt.Sprintf("Declined (response code %s)", code)
	}

	// the RRN is what follow-up messages reference; the approval code is
	// informational
	authorization := rrn
	if authorization == "" {
		authorization = approval
	}

	return gateway.NewResponse(success, message,
		gateway.WithAuthorization(authorization),
		gateway.WithParams(params),
		gateway.WithTest(g.TestMode()),
	), nil
}

// readMessageLength and writeMessageLength frame messages with a 2-byte
// big-endian length header, the framing the moov test servers speak.

func readMessageLength(r io.Reader) (int, error) {
	header := network.NewBinary2BytesHeader()
	if _, err := header.ReadFrom(r); err != nil {
		return 0, err
	}
	return header.Length(), nil
}

func writeMessageLength(w io.Writer, length int) (int, error) {
	header := network.NewBinary2BytesHeader()
	if err := header.SetLength(length); err != nil {
		return 0, err
	}
	return header.WriteTo(w)
}
