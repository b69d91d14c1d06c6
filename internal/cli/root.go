// Package cli implements invoicectl, which assembles and prints commercial
// invoices without running the HTTP server.
package cli

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/xenking/commercial-invoice/internal/app"
	"github.com/xenking/commercial-invoice/internal/domain/invoice"
)

const defaultImagesTimeout = 10 * time.Second

// RootOptions holds the global flags shared by all commands.
type RootOptions struct {
	Verbose bool
	Config  app.Config
}

// NewRootCommand creates the invoicectl root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	cfg := &opts.Config

	cmd := &cobra.Command{
		Use:           "invoicectl",
		Short:         "Assemble and print commercial invoices",
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			// Fields the CLI never uses still have to pass validation.
			if cfg.RateLimit.RPS == 0 {
				cfg.RateLimit = app.RateLimitConfig{RPS: 1, Burst: 1}
			}
			return cfg.Validate()
		},
	}

	f := cmd.PersistentFlags()
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "log to stderr")
	f.StringVar(&cfg.Gateway.Driver, "gateway", app.DriverFixture, "record gateway (postgres|fixture)")
	f.StringVar(&cfg.Gateway.FixturePath, "fixture", "db/seed/records.yaml", "record fixture for the fixture gateway")
	f.StringVar(&cfg.DatabaseURL, "database-url", "", "PostgreSQL connection URL for the postgres gateway")
	f.StringVar(&cfg.Invoice.AppDomain, "app-domain", "system.netsuite.com", "host logo URLs are resolved against")
	f.StringVar(&cfg.Invoice.DateLayout, "date-layout", invoice.DefaultDateFormat.Layout, "Go time layout for printed dates")
	f.StringVar(&cfg.Invoice.Timezone, "timezone", "UTC", "IANA zone today's date is taken in")
	f.StringVar(&cfg.Invoice.Locale, "locale", "en", "number formatting locale")
	f.StringVar(&cfg.Invoice.TemplatePath, "template", "", "layout template overriding the embedded one")
	f.DurationVar(&cfg.Images.Timeout, "images-timeout", defaultImagesTimeout, "logo download timeout")

	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewDataCommand(opts))

	return cmd
}

type noopTelemetry struct{}

func (noopTelemetry) TracerProvider() trace.TracerProvider { return tracenoop.NewTracerProvider() }
func (noopTelemetry) MeterProvider() metric.MeterProvider  { return metricnoop.NewMeterProvider() }

// withService opens the gateway, builds the invoice service and calls fn.
func withService(ctx context.Context, opts *RootOptions, fn func(ctx context.Context, svc *invoice.Service) error) error {
	lg := zap.NewNop()
	if opts.Verbose {
		var err error
		if lg, err = zap.NewDevelopment(); err != nil {
			return errors.Wrap(err, "create logger")
		}
		defer func() { _ = lg.Sync() }()
	}
	ctx = zctx.Base(ctx, lg)

	records, closeGateway, err := app.OpenGateway(ctx, &opts.Config, nil)
	if err != nil {
		return err
	}
	defer closeGateway()

	svc, err := app.NewService(&opts.Config, records, noopTelemetry{})
	if err != nil {
		return err
	}
	return fn(ctx, svc)
}

// pairFlags registers the required --order and --fulfill flags.
func pairFlags(cmd *cobra.Command, orderID, fulfillID *int64) {
	cmd.Flags().Int64Var(orderID, "order", 0, "sales order internal id")
	cmd.Flags().Int64Var(fulfillID, "fulfill", 0, "item fulfillment internal id")
	_ = cmd.MarkFlagRequired("order")
	_ = cmd.MarkFlagRequired("fulfill")
}
