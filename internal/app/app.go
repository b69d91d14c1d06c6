package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/commercial-invoice/internal/domain/invoice"
	"github.com/xenking/commercial-invoice/internal/domain/record"
	"github.com/xenking/commercial-invoice/internal/handler"
	"github.com/xenking/commercial-invoice/internal/render"
	"github.com/xenking/commercial-invoice/internal/storage/fixture"
	"github.com/xenking/commercial-invoice/internal/storage/memory"
	"github.com/xenking/commercial-invoice/internal/storage/postgres"
	"github.com/xenking/commercial-invoice/pkg/health"
	"github.com/xenking/commercial-invoice/pkg/httpmiddleware"
)

// OpenGateway opens the record gateway selected by cfg. Readiness checks for
// the backing store are registered on hc when it is not nil. The returned
// close function must be called once the gateway is no longer used.
func OpenGateway(ctx context.Context, cfg *Config, hc *health.Health) (record.Gateway, func(), error) {
	switch cfg.Gateway.Driver {
	case DriverFixture:
		set, err := fixture.Load(cfg.Gateway.FixturePath)
		if err != nil {
			return nil, nil, errors.Wrap(err, "load fixture")
		}
		return memory.New(set), func() {}, nil
	case DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, errors.Wrap(err, "run migrations")
		}
		if hc != nil {
			hc.Add(health.Readiness, "postgres", 5*time.Second, health.PingCheck(pool))
		}
		return postgres.NewGateway(pool), pool.Close, nil
	default:
		return nil, nil, errors.Errorf("unknown gateway driver %q", cfg.Gateway.Driver)
	}
}

// NewService wires the assembler and renderer around records.
func NewService(cfg *Config, records record.Gateway, m httpmiddleware.Telemetry) (*invoice.Service, error) {
	loc, err := time.LoadLocation(cfg.Invoice.Timezone)
	if err != nil {
		return nil, errors.Wrap(err, "load timezone")
	}

	renderer, err := render.New(render.Config{
		Locale:       cfg.Invoice.Locale,
		TemplatePath: cfg.Invoice.TemplatePath,
		Images:       render.NewHTTPImages(cfg.Images.Timeout, m.TracerProvider(), m.MeterProvider()),
	})
	if err != nil {
		return nil, errors.Wrap(err, "create renderer")
	}

	assembler := invoice.NewAssembler(records, invoice.AssemblerConfig{
		Domain: cfg.Invoice.AppDomain,
		Dates:  invoice.DateFormat{Layout: cfg.Invoice.DateLayout, Location: loc},
	})

	svc, err := invoice.NewService(invoice.ServiceConfig{
		BaseURL:        cfg.Invoice.BaseURL,
		TracerProvider: m.TracerProvider(),
		MeterProvider:  m.MeterProvider(),
	}, records, assembler, renderer)
	if err != nil {
		return nil, errors.Wrap(err, "create invoice service")
	}
	return svc, nil
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("gateway", cfg.Gateway.Driver),
	)

	healthSvc := health.New()
	healthSvc.Add(health.Liveness, "goroutines", time.Second, health.GoroutineCountCheck(10000))

	records, closeGateway, err := OpenGateway(ctx, cfg, healthSvc)
	if err != nil {
		return err
	}
	defer closeGateway()

	invoices, err := NewService(cfg, records, m)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	handler.NewHandler(invoices).Register(mux)
	routeFinder := httpmiddleware.MakeRouteFinder(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				Origins: cfg.CORS.Origins,
				Expose:  []string{"Content-Disposition", httpmiddleware.HeaderRequestID},
				MaxAge:  cfg.CORS.MaxAge,
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				RPS:   cfg.RateLimit.RPS,
				Burst: cfg.RateLimit.Burst,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.Instrument("commercial-invoice", routeFinder, m),
			httpmiddleware.LogRequests(routeFinder),
			httpmiddleware.Labeler(routeFinder),
		),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return healthSvc.Run(gctx, 10*time.Second)
	})
	g.Go(func() error {
		// Graceful shutdown: wait for cancellation, drain, then stop.
		<-gctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	})
	g.Go(func() error {
		healthSvc.SetReady(true)
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})

	return g.Wait()
}
