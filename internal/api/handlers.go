// Civika - Barangay Civic Records Management
// Copyright 2026 M. Lagrosa (mlagrosa)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlagrosa/civika

// Package api exposes the HTTP surface: the login endpoints, the record
// CRUD API, insights, search, the audit feed and the guarded page routes.
package api

import (
	"net/http"

	"github.com/mlagrosa/civika/internal/audit"
	"github.com/mlagrosa/civika/internal/auth"
	"github.com/mlagrosa/civika/internal/config"
	"github.com/mlagrosa/civika/internal/logging"
	"github.com/mlagrosa/civika/internal/records"
)

// Handlers carries the dependencies the HTTP handlers need.
type Handlers struct {
	cfg     *config.Config
	svc     *records.Service
	trail   *audit.Trail
	events  audit.Publisher
	tokens  *auth.TokenManager
	cookies auth.CookieConfig
	limiter *auth.LoginLimiter
}

// NewHandlers wires the handler set.
func NewHandlers(
	cfg *config.Config,
	svc *records.Service,
	trail *audit.Trail,
	events audit.Publisher,
	tokens *auth.TokenManager,
	cookies auth.CookieConfig,
	limiter *auth.LoginLimiter,
) *Handlers {
	return &Handlers{
		cfg:     cfg,
		svc:     svc,
		trail:   trail,
		events:  events,
		tokens:  tokens,
		cookies: cookies,
		limiter: limiter,
	}
}

// audit publishes one trail event; failures are logged, not surfaced.
func (h *Handlers) audit(r *http.Request, actor, action, collection, id string) {
	if h.events == nil {
		return
	}
	err := h.events.Publish(r.Context(), audit.Event{
		Actor:      actor,
		Action:     action,
		Collection: collection,
		RecordID:   id,
	})
	if err != nil {
		logging.Warn().Err(err).Str("action", action).Msg("audit publish failed")
	}
}

// actor returns the authenticated username, or "anonymous" when the
// claims are absent.
func actor(r *http.Request) string {
	if claims := auth.GetClaims(r.Context()); claims != nil {
		return claims.Username
	}
	return "anonymous"
}
