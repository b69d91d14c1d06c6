package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"

	"github.com/xenking/commercial-invoice/internal/storage/fixture"
	"github.com/xenking/commercial-invoice/internal/storage/postgres"
)

func main() {
	var (
		databaseURL string
		recordsFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&recordsFile, "records-file", "db/seed/records.yaml", "path to the YAML (or .yaml.gz) record fixture")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, recordsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, recordsFile string) error {
	set, err := fixture.Load(recordsFile)
	if err != nil {
		return errors.Wrap(err, "load records")
	}
	slog.Info("records loaded",
		slog.String("file", recordsFile),
		slog.Int("orders", len(set.Orders)),
		slog.Int("fulfillments", len(set.Fulfillments)),
	)

	slog.Info("connecting to database")
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "migrate")
	}

	if err := postgres.NewGateway(pool).Import(ctx, set); err != nil {
		return errors.Wrap(err, "import records")
	}
	return nil
}
