package gateway_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/alovak/paygate/gateway"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestWithLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf))

	g := gateway.WithLogging(newCaptureless(gateway.Config{TestMode: true}), logger)

	card := gateway.CreditCard{Number: "4111111111111111", ExpMonth: 9, ExpYear: 2027}
	resp, err := g.Purchase(context.Background(), 1034, card, nil)
	require.NoError(t, err)
	require.True(t, resp.Success)

	out := buf.String()
	require.Contains(t, out, "provider=captureless")
	require.Contains(t, out, "operation=purchase")
	require.Contains(t, out, "1111") // masked card keeps the last four
	require.NotContains(t, out, "4111111111111111")

	buf.Reset()
	_, err = g.Capture(context.Background(), 1034, "auth-1", nil)
	require.Error(t, err)
	require.Contains(t, buf.String(), "operation=capture")
	require.Contains(t, buf.String(), "does not support")
}

func TestWithMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	g := gateway.WithMetrics(newCaptureless(gateway.Config{}), reg)

	_, err := g.Purchase(context.Background(), 1034, gateway.StoredReference("tok"), nil)
	require.NoError(t, err)
	_, err = g.Capture(context.Background(), 1034, "auth-1", nil)
	require.Error(t, err)

	require.Equal(t, 1.0, counterValue(t, reg, "paygate_operations_total", map[string]string{
		"provider": "captureless", "operation": "purchase", "outcome": "approved",
	}))
	require.Equal(t, 1.0, counterValue(t, reg, "paygate_operations_total", map[string]string{
		"provider": "captureless", "operation": "capture", "outcome": "error",
	}))
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, m := range fam.GetMetric() {
			got := map[string]string{}
			for _, lp := range m.GetLabel() {
				got[lp.GetName()] = lp.GetValue()
			}
			match := true
			for k, v := range labels {
				if got[k] != v {
					match = false
					break
				}
			}
			if match {
				return m.GetCounter().GetValue()
			}
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return 0
}
