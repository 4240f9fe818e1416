// Civika - Barangay Civic Records Management
// Copyright 2026 M. Lagrosa (mlagrosa)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlagrosa/civika

// Package main is the entry point for the Civika server.
//
// Civika is a self-hosted civic records system for barangay and municipal
// offices: resident, household, business, permit and incident registries
// behind a role-guarded dashboard, with a citizen-facing posts area.
//
// Startup order:
//
//  1. Configuration (koanf: defaults, YAML file, environment)
//  2. Logging (zerolog)
//  3. Record store (BadgerDB) and audit trail
//  4. Session guard (JWT cookies + route access rules)
//  5. Supervisor tree (suture): store GC, audit recorder, HTTP server
//
// The server shuts down gracefully on SIGINT and SIGTERM.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mlagrosa/civika/internal/access"
	"github.com/mlagrosa/civika/internal/api"
	"github.com/mlagrosa/civika/internal/audit"
	"github.com/mlagrosa/civika/internal/auth"
	"github.com/mlagrosa/civika/internal/config"
	"github.com/mlagrosa/civika/internal/logging"
	"github.com/mlagrosa/civika/internal/records"
	"github.com/mlagrosa/civika/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("db_path", cfg.Database.Path).
		Str("environment", cfg.Server.Environment).
		Msg("starting civika")

	// Record store and audit trail share one badger database.
	store, err := records.OpenBadger(cfg.Database.Path)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open record store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing record store")
		}
	}()

	bus := audit.NewBus()
	defer bus.Close()
	trail := audit.NewTrail(store.DB())
	svc := records.NewService(store, bus)

	// Seed the initial admin account on an empty install.
	if cfg.Security.AdminPassword != "" {
		if err := svc.EnsureAdmin(context.Background(), cfg.Security.AdminUsername, cfg.Security.AdminPassword); err != nil {
			logging.Fatal().Err(err).Msg("failed to seed admin account")
		}
	}

	// Route access rules: compiled-in defaults, or a YAML override.
	rules := access.DefaultRuleset()
	if cfg.Access.RulesFile != "" {
		rules, err = access.LoadRuleset(cfg.Access.RulesFile)
		if err != nil {
			logging.Fatal().Err(err).Str("file", cfg.Access.RulesFile).Msg("failed to load access rules")
		}
		logging.Info().Str("file", cfg.Access.RulesFile).Msg("loaded access rules")
	}

	tokens, err := auth.NewTokenManager(cfg.Security.JWTSecret, cfg.Security.SessionTTL)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize token manager")
	}
	cookies := auth.CookieConfig{
		TokenName: cfg.Security.TokenCookie,
		RoleName:  cfg.Security.RoleCookie,
		Path:      "/",
		Secure:    cfg.Security.CookieSecure,
		SameSite:  cfg.Security.SameSite(),
	}
	guard := auth.NewGuard(tokens, cookies, rules)

	limiter := auth.NewLoginLimiter(cfg.Security.LoginRateLimit, cfg.Security.LoginRateWindow)
	defer limiter.Stop()

	handlers := api.NewHandlers(cfg, svc, trail, bus, tokens, cookies, limiter)
	router := api.NewRouter(handlers, guard, cfg.Server.CORSOrigins, nil)

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddDataService(records.NewGCService(store, cfg.Database.GCInterval))
	tree.AddDataService(audit.NewRecorder(bus, trail))
	tree.AddAPIService(supervisor.NewHTTPService(cfg.Server, router.Setup()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := tree.ServeBackground(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
		<-done
	case err := <-done:
		if err != nil && err != context.Canceled {
			logging.Error().Err(err).Msg("supervisor stopped unexpectedly")
		}
	}

	logging.Info().Msg("civika stopped")
}
