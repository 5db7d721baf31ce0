package gateway

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WithMetrics wraps a gateway with prometheus instrumentation. Operations
// are counted by outcome (approved, declined, error) and timed; the
// provider is a label, so one set of collectors serves many gateways
// sharing a Registerer.
func WithMetrics(g Gateway, reg prometheus.Registerer) Gateway {
	m := &metricsGateway{
		Gateway: g,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paygate_operations_total",
			Help: "Gateway operations by provider, operation and outcome.",
		}, []string{"provider", "operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "paygate_operation_duration_seconds",
			Help:    "Gateway operation latency by provider and operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider", "operation"}),
	}
	reg.MustRegister(m.operations, m.duration)
	return m
}

type metricsGateway struct {
	Gateway
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func (m *metricsGateway) observe(op Operation, started time.Time, resp *Response, err error) {
	outcome := "approved"
	switch {
	case err != nil:
		outcome = "error"
	case !resp.Success:
		outcome = "declined"
	}
	m.operations.WithLabelValues(m.Name(), string(op), outcome).Inc()
	m.duration.WithLabelValues(m.Name(), string(op)).Observe(time.Since(started).Seconds())
}

func (m *metricsGateway) Purchase(ctx context.Context, amount int64, method PaymentMethod, opts Options) (*Response, error) {
	started := time.Now()
	resp, err := m.Gateway.Purchase(ctx, amount, method, opts)
	m.observe(OpPurchase, started, resp, err)
	return resp, err
}

func (m *metricsGateway) Authorize(ctx context.Context, amount int64, method PaymentMethod, opts Options) (*Response, error) {
	started := time.Now()
	resp, err := m.Gateway.Authorize(ctx, amount, method, opts)
	m.observe(OpAuthorize, started, resp, err)
	return resp, err
}

func (m *metricsGateway) Capture(ctx context.Context, amount int64, authorization string, opts Options) (*Response, error) {
	started := time.Now()
	resp, err := m.Gateway.Capture(ctx, amount, authorization, opts)
	m.observe(OpCapture, started, resp, err)
	return resp, err
}

func (m *metricsGateway) Void(ctx context.Context, authorization string, opts Options) (*Response, error) {
	started := time.Now()
	resp, err := m.Gateway.Void(ctx, authorization, opts)
	m.observe(OpVoid, started, resp, err)
	return resp, err
}

func (m *metricsGateway) Refund(ctx context.Context, amount int64, authorization string, opts Options) (*Response, error) {
	started := time.Now()
	resp, err := m.Gateway.Refund(ctx, amount, authorization, opts)
	m.observe(OpRefund, started, resp, err)
	return resp, err
}

func (m *metricsGateway) Store(ctx context.Context, method PaymentMethod, opts Options) (*Response, error) {
	started := time.Now()
	resp, err := m.Gateway.Store(ctx, method, opts)
	m.observe(OpStore, started, resp, err)
	return resp, err
}
