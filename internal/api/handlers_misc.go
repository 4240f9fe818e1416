// Civika - Barangay Civic Records Management
// Copyright 2026 M. Lagrosa (mlagrosa)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlagrosa/civika

package api

import (
	"net/http"

	"github.com/mlagrosa/civika/internal/records"
)

// Health answers liveness checks. It sits outside the guard so load
// balancers can poll it without a session.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "civika",
	})
}

// Demographics answers the insights aggregate.
func (h *Handlers) Demographics(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.Demographics(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternal, "aggregate failed", err)
		return
	}
	respondData(w, http.StatusOK, sum)
}

// SearchGlobal answers the cross-collection search box.
func (h *Handlers) SearchGlobal(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		respondError(w, http.StatusBadRequest, codeBadRequest, "query parameter q is required", nil)
		return
	}

	limit := intParam(r, "limit", h.cfg.API.DefaultPageSize)
	if limit > h.cfg.API.MaxPageSize {
		limit = h.cfg.API.MaxPageSize
	}

	hits, err := h.svc.Search(r.Context(), term, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternal, "search failed", err)
		return
	}
	respondData(w, http.StatusOK, hits)
}

// AuditRecent answers the latest trail entries, newest first.
func (h *Handlers) AuditRecent(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r, "limit", 50)
	if limit > 500 {
		limit = 500
	}

	events, err := h.trail.Recent(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternal, "read audit trail failed", err)
		return
	}
	respondData(w, http.StatusOK, events)
}

// Collections lists the record collections the API serves.
func (h *Handlers) Collections(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, records.Collections)
}
