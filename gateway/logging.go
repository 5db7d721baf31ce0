package gateway

import (
	"context"

	"golang.org/x/exp/slog"
)

// WithLogging wraps a gateway so every operation is logged with its
// provider, amount and outcome. Card data never reaches the log: payment
// methods are logged through their Display form.
func WithLogging(g Gateway, logger *slog.Logger) Gateway {
	return &loggingGateway{Gateway: g, logger: logger.With(slog.String("provider", g.Name()))}
}

type loggingGateway struct {
	Gateway
	logger *slog.Logger
}

func (l *loggingGateway) log(op Operation, resp *Response, err error, attrs ...slog.Attr) {
	args := make([]any, 0, len(attrs)+3)
	args = append(args, slog.String("operation", string(op)))
	for _, a := range attrs {
		args = append(args, a)
	}
	switch {
	case err != nil:
		args = append(args, slog.Any("err", err))
		l.logger.Error("gateway operation failed", args...)
	case resp.Success:
		args = append(args, slog.String("authorization", resp.Authorization))
		l.logger.Info("gateway operation approved", args...)
	default:
		args = append(args, slog.String("message", resp.Message))
		l.logger.Info("gateway operation declined", args...)
	}
}

func (l *loggingGateway) Purchase(ctx context.Context, amount int64, method PaymentMethod, opts Options) (*Response, error) {
	resp, err := l.Gateway.Purchase(ctx, amount, method, opts)
	l.log(OpPurchase, resp, err, slog.Int64("amount", amount), slog.String("method", method.Display()))
	return resp, err
}

func (l *loggingGateway) Authorize(ctx context.Context, amount int64, method PaymentMethod, opts Options) (*Response, error) {
	resp, err := l.Gateway.Authorize(ctx, amount, method, opts)
	l.log(OpAuthorize, resp, err, slog.Int64("amount", amount), slog.String("method", method.Display()))
	return resp, err
}

func (l *loggingGateway) Capture(ctx context.Context, amount int64, authorization string, opts Options) (*Response, error) {
	resp, err := l.Gateway.Capture(ctx, amount, authorization, opts)
	l.log(OpCapture, resp, err, slog.Int64("amount", amount))
	return resp, err
}

func (l *loggingGateway) Void(ctx context.Context, authorization string, opts Options) (*Response, error) {
	resp, err := l.Gateway.Void(ctx, authorization, opts)
	l.log(OpVoid, resp, err)
	return resp, err
}

func (l *loggingGateway) Refund(ctx context.Context, amount int64, authorization string, opts Options) (*Response, error) {
	resp, err := l.Gateway.Refund(ctx, amount, authorization, opts)
	l.log(OpRefund, resp, err, slog.Int64("amount", amount))
	return resp, err
}

func (l *loggingGateway) Store(ctx context.Context, method PaymentMethod, opts Options) (*Response, error) {
	resp, err := l.Gateway.Store(ctx, method, opts)
	l.log(OpStore, resp, err, slog.String("method", method.Display()))
	return resp, err
}
