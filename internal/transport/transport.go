// Package transport is the HTTP leg shared by form-post adapters. It maps
// connection-level failures to gateway.TransportError and leaves everything
// the provider actually said, including non-2xx statuses with a body, for
// the adapter to interpret. It performs no retries; an optional circuit
// breaker only stops hammering a provider that is already down.
package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/alovak/paygate/gateway"
	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"golang.org/x/exp/slog"
)

const defaultTimeout = 30 * time.Second

// Reply is what the provider sent back, verbatim.
type Reply struct {
	Status int
	Body   []byte
}

// Client posts form-encoded requests to one provider endpoint.
type Client struct {
	provider string
	baseURL  string
	rest     *resty.Client
	breaker  *gobreaker.CircuitBreaker
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the default per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.rest.SetTimeout(d) }
}

// WithLogger attaches a logger; without one the client is silent.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger.With(slog.String("provider", c.provider)) }
}

// WithBreaker adds a circuit breaker so a dead provider fails fast instead
// of eating a full timeout per call. An open breaker surfaces as a
// TransportError like any other connection failure.
func WithBreaker() Option {
	return func(c *Client) {
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        c.provider,
			MaxRequests: 3,
			Interval:    15 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
		})
	}
}

// New builds a client for one provider endpoint.
func New(provider, baseURL string, opts ...Option) *Client {
	c := &Client{
		provider: provider,
		baseURL:  baseURL,
		rest: resty.New().
			SetTimeout(defaultTimeout).
			SetRetryCount(0), // retrying is the caller's decision, never ours
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PostForm sends a form-encoded POST and returns the provider's reply.
// Connection failures, timeouts, an open breaker and 5xx statuses without a
// provider payload all come back as gateway.TransportError.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values) (*Reply, error) {
	do := func() (interface{}, error) {
		resp, err := c.rest.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/x-www-form-urlencoded").
			SetFormDataFromValues(form).
			Post(c.baseURL + path)
		if err != nil {
			return nil, err
		}
		// Gateway-level 5xx means the provider never processed the request;
		// treat it like a connection failure so the caller may retry.
		if resp.StatusCode() >= http.StatusInternalServerError {
			return nil, fmt.Errorf("provider returned status %d", resp.StatusCode())
		}
		return &Reply{Status: resp.StatusCode(), Body: resp.Body()}, nil
	}

	var (
		result interface{}
		err    error
	)
	if c.breaker != nil {
		result, err = c.breaker.Execute(do)
	} else {
		result, err = do()
	}
	if err != nil {
		if c.logger != nil {
			c.logger.Error("post failed", slog.String("path", path), slog.Any("err", err))
		}
		return nil, &gateway.TransportError{Provider: c.provider, Err: err}
	}
	return result.(*Reply), nil
}
