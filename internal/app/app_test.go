package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/xenking/commercial-invoice/pkg/health"
)

type noopTelemetry struct{}

func (noopTelemetry) TracerProvider() trace.TracerProvider { return tracenoop.NewTracerProvider() }
func (noopTelemetry) MeterProvider() metric.MeterProvider  { return metricnoop.NewMeterProvider() }

func fixtureConfig() *Config {
	return &Config{
		Gateway: GatewayConfig{
			Driver:      DriverFixture,
			FixturePath: "../storage/fixture/testdata/sample.yaml",
		},
		Invoice: InvoiceConfig{
			AppDomain:  "acme.example.com",
			DateLayout: "1/2/2006",
			Timezone:   "UTC",
			Locale:     "en",
			BaseURL:    "https://print.example.com",
		},
	}
}

func TestOpenGateway_Fixture(t *testing.T) {
	ctx := context.Background()
	hc := health.New()

	records, closeFn, err := OpenGateway(ctx, fixtureConfig(), hc)
	require.NoError(t, err)
	defer closeFn()

	order, err := records.Order(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "SO-1001", order.TranID)
}

func TestOpenGateway_Errors(t *testing.T) {
	cfg := fixtureConfig()
	cfg.Gateway.FixturePath = "testdata/missing.yaml"
	_, _, err := OpenGateway(context.Background(), cfg, nil)
	require.Error(t, err)

	cfg.Gateway.Driver = "mysql"
	_, _, err = OpenGateway(context.Background(), cfg, nil)
	require.Error(t, err)
}

func TestNewService(t *testing.T) {
	ctx := context.Background()
	cfg := fixtureConfig()

	records, closeFn, err := OpenGateway(ctx, cfg, nil)
	require.NoError(t, err)
	defer closeFn()

	svc, err := NewService(cfg, records, noopTelemetry{})
	require.NoError(t, err)

	vm, err := svc.ViewModel(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "SO-1001", vm.SalesOrderNr)
	assert.Equal(t, "3/5/2024", vm.IFDate)
	assert.Equal(t, "https://acme.example.com/core/media/media.nl?id=5&amp;c=123&amp;h=abc", vm.FooterInfo.LogoURL)

	action, err := svc.PrintAction(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "https://print.example.com/api/commercial-invoice?fulfillId=2&orderId=1", action.URL)
}

func TestNewService_BadLocale(t *testing.T) {
	cfg := fixtureConfig()
	cfg.Invoice.Locale = "not a locale!"

	_, err := NewService(cfg, nil, noopTelemetry{})
	require.Error(t, err)
}
