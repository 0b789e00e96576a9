package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zoo-keeper/internal/adapters/auth/odin"
	"zoo-keeper/internal/adapters/capabilities/plansfeatures"
	pg "zoo-keeper/internal/adapters/storage/postgres"
	"zoo-keeper/internal/platform/config"
	"zoo-keeper/internal/platform/logger"
	"zoo-keeper/internal/ports/auth"
	"zoo-keeper/internal/ports/capabilities"
	"zoo-keeper/internal/router"

	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.FromEnv()
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    appName(cfg.AppName),
	})
	if err != nil {
		log.Error("invalid config", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

func run(cfg config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if cfg.DBDSN != "" {
		var err error
		db, err = pg.Open(cfg.DBDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		log.Info("using postgres storage", nil)
	} else {
		log.Warn("DB_DSN empty, using in-memory storage", nil)
	}

	// Sin Odin => modo dev (X-Debug-User-ID / X-Debug-Staff)
	var verifier auth.AuthVerifier
	if cfg.OdinConfigured() {
		client, err := odin.NewClient(odin.Config{BaseURL: cfg.OdinBaseURL, APIKey: cfg.OdinAPIKey})
		if err != nil {
			return err
		}
		verifier = odin.NewVerifier(client)
	} else {
		log.Warn("odin not configured, accepting debug headers", nil)
	}

	var caps capabilities.CapabilitiesResolver
	if cfg.PlansConfigured() || cfg.AllowAllCapabilities {
		var client *plansfeatures.Client
		if cfg.PlansConfigured() {
			c, err := plansfeatures.NewClient(plansfeatures.Config{BaseURL: cfg.PlansBaseURL, APIKey: cfg.PlansAPIKey})
			if err != nil {
				return err
			}
			client = c
		}
		caps = plansfeatures.NewResolver(client, cfg.AllowAllCapabilities)
	}

	h, err := router.NewRouter(router.Options{
		AuthVerifier:   verifier,
		Capabilities:   caps,
		DB:             db,
		Logger:         log,
		PersistTimeout: cfg.PersistTimeout,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      h,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down", nil)
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func appName(s string) string {
	if s == "" {
		return logger.DefaultApp
	}
	return s
}
