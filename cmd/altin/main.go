package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/OzanA78/doviz-hesaplama/internal/amqp"
	"github.com/OzanA78/doviz-hesaplama/internal/cli"
	apphttp "github.com/OzanA78/doviz-hesaplama/internal/http"
	"github.com/OzanA78/doviz-hesaplama/internal/provider"
	gsheet "github.com/OzanA78/doviz-hesaplama/internal/provider/google"
	mem "github.com/OzanA78/doviz-hesaplama/internal/provider/memory"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("altin")
	cfg := cli.LoadAndValidateConfig(logger)

	// SQLite always opens: it backs the named plans regardless of
	// which price backend serves the API.
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var source provider.PriceSource
	switch cfg.DataBackend {
	case "sheets":
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		source = client
		logger.Info("Initialized Google Sheets backend", "sheet", cfg.GoogleSheetName)
	case "sqlite":
		source = repo
		logger.Info("Initialized SQLite snapshot backend", "path", cfg.SQLiteDBPath)
	default:
		source = mem.NewFromFiles(cfg.SeedDataDir)
		logger.Info("Initialized memory backend", "seed_dir", cfg.SeedDataDir)
	}

	srv := apphttp.NewServer(":"+cfg.Port, source, repo, cfg.CacheTTL)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Optional: listen for prices-updated events from the refresh
	// worker and drop the cached price responses.
	var events *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		events, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP", "error", err)
			os.Exit(1)
		}
		defer events.Close()
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	if events != nil {
		go func() {
			err := events.ConsumePricesUpdated(ctx, func(msg *amqp.PricesUpdatedMessage) error {
				logger.Info("Prices updated, invalidating caches", "count", msg.Count, "latest", msg.Latest)
				srv.InvalidatePriceCaches()
				return nil
			})
			if err != nil && ctx.Err() == nil {
				logger.Error("AMQP consumer stopped", "error", err)
			}
		}()
	}

	logger.Info("Starting altin server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
