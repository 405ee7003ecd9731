package main

import (
	"context"
	"os"
	"time"

	"github.com/OzanA78/doviz-hesaplama/internal/amqp"
	"github.com/OzanA78/doviz-hesaplama/internal/cli"
	gsheet "github.com/OzanA78/doviz-hesaplama/internal/provider/google"
	"github.com/OzanA78/doviz-hesaplama/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("altin-worker")
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID is required for the refresh worker")
		os.Exit(1)
	}

	sheetsClient, err := gsheet.NewFromEnv(context.Background())
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var events worker.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		events = client
	} else {
		logger.Info("AMQP disabled, refresh events will not be published")
	}

	refresher := worker.NewRefreshWorker(sheetsClient, repo, events)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	logger.Info("Starting altin-worker", "interval", cfg.RefreshInterval.String())
	refresher.Run(ctx, cfg.RefreshInterval)

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
