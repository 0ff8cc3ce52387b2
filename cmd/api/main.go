package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/fastprodman/casino/internal/api"
	"github.com/fastprodman/casino/internal/games/slots"
	"github.com/fastprodman/casino/internal/infra/logging"
	"github.com/fastprodman/casino/internal/infra/pgutils"
	"github.com/fastprodman/casino/internal/metrics"
	"github.com/fastprodman/casino/internal/rng"
	"github.com/fastprodman/casino/internal/services/wager"
	"github.com/fastprodman/casino/pkg/shutdownqueue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v\n", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	cfg, err := readConfig()
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	log := logging.SetupJSON(cfg.LogLevel, serviceName)

	queue := shutdownqueue.New()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := queue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	db, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	queue.Add("postgres", func(context.Context) error {
		log.Info("Close database")
		return db.Close()
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, "casino"),
	)

	// --- Games ---
	machine, err := slots.Default()
	if err != nil {
		return fmt.Errorf("load slot machine: %w", err)
	}

	wagerSrv := wager.New(db, rng.Default(), machine, metrics.NewWager(reg), log)

	// --- HTTP server ---
	srv := api.NewServer(cfg.Port, api.Deps{
		Service:        wagerSrv,
		Log:            log,
		Metrics:        metrics.NewHTTP(reg),
		Gatherer:       reg,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	// Register HTTP server graceful shutdown; runs before the database closes
	queue.Add("http server", func(c context.Context) error {
		log.Info("Shut down server")

		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	log.Info("API started", slog.Int("port", int(cfg.Port)), slog.Int("paylines", machine.LineCount()))

	select {
	case <-ctx.Done():
		// graceful path; deferred queue.Shutdown will run
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}
