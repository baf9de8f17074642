package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/amqp"
	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/config"
	applog "github.com/agustinEspinozaTech/gestor-de-gastos/internal/log"
	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/records"
	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/records/airtable"
	recmem "github.com/agustinEspinozaTech/gestor-de-gastos/internal/records/memory"
	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/store"
	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     applog.LevelFromEnv(),
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	logger.Info("Starting rollover-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	var recordStore records.Store
	switch cfg.DataBackend {
	case "airtable":
		client, err := airtable.New(airtable.Config{
			BaseURL: cfg.AirtableAPIURL,
			BaseID:  cfg.AirtableBaseID,
			Token:   cfg.AirtableToken,
		})
		if err != nil {
			logger.Error("Failed to initialize Airtable client", "error", err)
			os.Exit(1)
		}
		recordStore = client
	default:
		recordStore = recmem.New()
	}

	var amqpClient *amqp.Client
	var events store.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			defer client.Close()
			amqpClient = client
			events = client
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	w := worker.NewRolloverWorker(recordStore, events, cfg.RolloverInterval)
	logger.Info("Rollover worker configured",
		"interval", cfg.RolloverInterval,
		"backend", cfg.DataBackend)

	// Household mutations published by app instances wake the worker so a
	// month boundary crossed mid-interval is swept promptly. Rollover events
	// are its own output and are skipped to avoid a feedback loop.
	if amqpClient != nil {
		go func() {
			err := amqpClient.ConsumeHouseholdEvents(ctx, func(msg *amqp.HouseholdEventMessage) error {
				if msg.Kind == store.EventRollover {
					return nil
				}
				w.Wake()
				return nil
			})
			if err != nil && err != context.Canceled {
				logger.Warn("Event consumer stopped", "error", err)
			}
		}()
	}

	if err := w.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("Worker error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
