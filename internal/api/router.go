// Civika - Barangay Civic Records Management
// Copyright 2026 M. Lagrosa (mlagrosa)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlagrosa/civika

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mlagrosa/civika/internal/access"
	"github.com/mlagrosa/civika/internal/auth"
	"github.com/mlagrosa/civika/internal/middleware"
)

// Router assembles the HTTP surface.
type Router struct {
	handlers *Handlers
	guard    *auth.Guard
	origins  []string
	pages    http.Handler
}

// NewRouter wires routes to handlers. pages serves the dashboard shell
// behind the session guard; pass nil to use the built-in placeholder.
func NewRouter(handlers *Handlers, guard *auth.Guard, origins []string, pages http.Handler) *Router {
	if pages == nil {
		pages = placeholderPages()
	}
	return &Router{
		handlers: handlers,
		guard:    guard,
		origins:  origins,
		pages:    pages,
	}
}

// Setup builds the full route tree.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/v1/health", rt.handlers.Health)

	// Session endpoints. Login carries its own per-IP limiter on top of
	// the shared rate limit.
	r.Route("/auth", func(r chi.Router) {
		r.Use(httprate.LimitByIP(30, time.Minute))
		r.Post("/login", rt.handlers.Login)
		r.Post("/logout", rt.handlers.Logout)

		// GET on the login path is the page itself.
		r.Get("/login", rt.pages.ServeHTTP)
	})

	// JSON API. Everything here needs a valid session token.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Prometheus)
		r.Use(httprate.LimitByIP(300, time.Minute))
		r.Use(rt.guard.RequireAPI)

		r.Get("/auth/me", rt.handlers.Me)
		r.Get("/collections", rt.handlers.Collections)
		r.Get("/search", rt.handlers.SearchGlobal)

		r.Route("/records/{collection}", func(r chi.Router) {
			r.Get("/", rt.handlers.ListRecords)
			r.Post("/", rt.handlers.CreateRecord)
			r.Get("/{id}", rt.handlers.GetRecord)
			r.Put("/{id}", rt.handlers.UpdateRecord)
			r.Delete("/{id}", rt.handlers.DeleteRecord)
			r.Post("/{id}/documents", rt.handlers.UploadDocument)
			r.Get("/{id}/documents/{docID}", rt.handlers.GetDocument)
			r.Delete("/{id}/documents/{docID}", rt.handlers.DeleteDocument)
		})

		r.With(rt.guard.RequireRole(access.RoleAdmin, access.RoleStaff)).
			Get("/insights/demographics", rt.handlers.Demographics)

		r.Group(func(r chi.Router) {
			r.Use(rt.guard.RequireRole(access.RoleAdmin))
			r.Get("/audit", rt.handlers.AuditRecent)
			r.Post("/staff-accounts", rt.handlers.CreateStaffAccount)
		})
	})

	// Every remaining path is a page navigation and goes through the
	// route access guard.
	r.Group(func(r chi.Router) {
		r.Use(rt.guard.Middleware)
		r.Handle("/*", rt.pages)
	})

	return r
}
