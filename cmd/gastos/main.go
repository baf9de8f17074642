package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/amqp"
	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/config"
	apphttp "github.com/agustinEspinozaTech/gestor-de-gastos/internal/http"
	applog "github.com/agustinEspinozaTech/gestor-de-gastos/internal/log"
	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/records"
	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/records/airtable"
	recmem "github.com/agustinEspinozaTech/gestor-de-gastos/internal/records/memory"
	sessqlite "github.com/agustinEspinozaTech/gestor-de-gastos/internal/session/sqlite"
	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	logger.Info("Starting gastos server")

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
		logger.Info("Initialized Airtable backend", "base_id", cfg.AirtableBaseID)
	default:
		recordStore = recmem.New()
		logger.Info("Initialized memory backend")
	}

	sessionStore, err := sessqlite.New(cfg.SessionDBPath)
	if err != nil {
		logger.Error("Failed to initialize session store", "error", err, "path", cfg.SessionDBPath)
		os.Exit(1)
	}
	defer sessionStore.Close()

	// Household events are optional; without AMQP the app runs standalone.
	var events store.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			defer amqpClient.Close()
			events = amqpClient
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := store.New(ctx, store.Config{
		Records:     recordStore,
		Sessions:    sessionStore,
		Events:      events,
		DailyTarget: cfg.DailyTargetARS,
	})
	if sess := st.Session(); sess != nil {
		logger.Info("Restored persisted session",
			applog.FieldUserID, sess.UserID,
			applog.FieldHouseholdCode, sess.HouseholdCode)
	}

	srv := apphttp.NewServer(":"+cfg.Port, st)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Listening", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-gctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
