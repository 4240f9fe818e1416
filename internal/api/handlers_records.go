// Civika - Barangay Civic Records Management
// Copyright 2026 M. Lagrosa (mlagrosa)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlagrosa/civika

package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/mlagrosa/civika/internal/access"
	"github.com/mlagrosa/civika/internal/auth"
	"github.com/mlagrosa/civika/internal/records"
)

// reservedListParams are query parameters with fixed meaning; everything
// else becomes a payload field filter.
var reservedListParams = map[string]bool{
	"page":     true,
	"per_page": true,
	"q":        true,
}

// collectionAllowed enforces per-collection API access. The staff
// collection is admin-only; citizens may only read posts; everything else
// needs a staff or admin session.
func collectionAllowed(role access.Role, collection string, write bool) bool {
	switch collection {
	case records.CollectionStaff:
		return role == access.RoleAdmin
	case records.CollectionPosts:
		if write {
			return role == access.RoleAdmin || role == access.RoleStaff
		}
		return role.Valid()
	default:
		return role == access.RoleAdmin || role == access.RoleStaff
	}
}

// checkCollection validates the URL collection and the session's right to
// touch it. A false return means the response was already written.
func (h *Handlers) checkCollection(w http.ResponseWriter, r *http.Request, write bool) (string, bool) {
	collection := chi.URLParam(r, "collection")
	if !records.KnownCollection(collection) {
		respondError(w, http.StatusNotFound, codeNotFound, "unknown collection", nil)
		return "", false
	}

	claims := auth.GetClaims(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required", nil)
		return "", false
	}
	if !collectionAllowed(access.Role(claims.Role), collection, write) {
		respondError(w, http.StatusForbidden, codeForbidden, "insufficient role for this collection", nil)
		return "", false
	}
	return collection, true
}

// ListRecords answers one page of a collection. Unreserved query
// parameters filter payload fields by exact value, e.g. ?status=pending.
func (h *Handlers) ListRecords(w http.ResponseWriter, r *http.Request) {
	collection, ok := h.checkCollection(w, r, false)
	if !ok {
		return
	}

	q := records.Query{
		Page:    intParam(r, "page", 1),
		PerPage: intParam(r, "per_page", h.cfg.API.DefaultPageSize),
		Search:  r.URL.Query().Get("q"),
	}
	if q.PerPage > h.cfg.API.MaxPageSize {
		q.PerPage = h.cfg.API.MaxPageSize
	}
	for key, vals := range r.URL.Query() {
		if reservedListParams[key] || len(vals) == 0 {
			continue
		}
		if q.Filter == nil {
			q.Filter = map[string]string{}
		}
		q.Filter[key] = vals[0]
	}

	res, err := h.svc.List(r.Context(), collection, q)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternal, "list failed", err)
		return
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "ok",
		Data:   res.Items,
		Metadata: Metadata{
			Page:    res.Page,
			PerPage: res.PerPage,
			Total:   res.Total,
		},
	})
}

// GetRecord answers a single record.
func (h *Handlers) GetRecord(w http.ResponseWriter, r *http.Request) {
	collection, ok := h.checkCollection(w, r, false)
	if !ok {
		return
	}

	env, err := h.svc.Get(r.Context(), collection, chi.URLParam(r, "id"))
	if errors.Is(err, records.ErrNotFound) {
		respondError(w, http.StatusNotFound, codeNotFound, "record not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternal, "fetch failed", err)
		return
	}
	respondData(w, http.StatusOK, env)
}

// CreateRecord validates and stores a new record. The body is the raw
// collection payload.
func (h *Handlers) CreateRecord(w http.ResponseWriter, r *http.Request) {
	collection, ok := h.checkCollection(w, r, true)
	if !ok {
		return
	}

	var payload json.RawMessage
	if err := decodeBody(w, r, int64(h.cfg.API.MaxUploadBytes), &payload); err != nil {
		respondError(w, http.StatusBadRequest, codeBadRequest, "malformed JSON body", err)
		return
	}

	env, err := h.svc.Create(r.Context(), actor(r), collection, payload, nil)
	if errors.Is(err, records.ErrValidation) {
		respondError(w, http.StatusUnprocessableEntity, codeValidation, err.Error(), nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternal, "create failed", err)
		return
	}
	respondData(w, http.StatusCreated, env)
}

// UpdateRecord validates and replaces a record's payload.
func (h *Handlers) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	collection, ok := h.checkCollection(w, r, true)
	if !ok {
		return
	}

	var payload json.RawMessage
	if err := decodeBody(w, r, int64(h.cfg.API.MaxUploadBytes), &payload); err != nil {
		respondError(w, http.StatusBadRequest, codeBadRequest, "malformed JSON body", err)
		return
	}

	env, err := h.svc.Update(r.Context(), actor(r), collection, chi.URLParam(r, "id"), payload, nil)
	switch {
	case errors.Is(err, records.ErrValidation):
		respondError(w, http.StatusUnprocessableEntity, codeValidation, err.Error(), nil)
	case errors.Is(err, records.ErrNotFound):
		respondError(w, http.StatusNotFound, codeNotFound, "record not found", nil)
	case err != nil:
		respondError(w, http.StatusInternalServerError, codeInternal, "update failed", err)
	default:
		respondData(w, http.StatusOK, env)
	}
}

// DeleteRecord removes a record and its documents.
func (h *Handlers) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	collection, ok := h.checkCollection(w, r, true)
	if !ok {
		return
	}

	err := h.svc.Delete(r.Context(), actor(r), collection, chi.URLParam(r, "id"))
	if errors.Is(err, records.ErrNotFound) {
		respondError(w, http.StatusNotFound, codeNotFound, "record not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternal, "delete failed", err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"deleted": chi.URLParam(r, "id")})
}

// CreateStaffAccount is the dedicated staff-creation endpoint: it takes a
// plaintext password and stores only the bcrypt hash.
func (h *Handlers) CreateStaffAccount(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())
	if claims == nil || access.Role(claims.Role) != access.RoleAdmin {
		respondError(w, http.StatusForbidden, codeForbidden, "admin role required", nil)
		return
	}

	var req struct {
		records.Staff
		Password string `json:"password"`
	}
	if err := decodeBody(w, r, 16<<10, &req); err != nil {
		respondError(w, http.StatusBadRequest, codeBadRequest, "malformed JSON body", err)
		return
	}

	req.Staff.PasswordHash = ""
	env, err := h.svc.CreateStaff(r.Context(), actor(r), req.Staff, req.Password)
	if errors.Is(err, records.ErrValidation) {
		respondError(w, http.StatusUnprocessableEntity, codeValidation, err.Error(), nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternal, "create staff failed", err)
		return
	}
	respondData(w, http.StatusCreated, env)
}

// UploadDocument attaches one supporting file to a record via multipart
// form field "file".
func (h *Handlers) UploadDocument(w http.ResponseWriter, r *http.Request) {
	collection, ok := h.checkCollection(w, r, true)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(int64(h.cfg.API.MaxUploadBytes)); err != nil {
		respondError(w, http.StatusBadRequest, codeBadRequest, "malformed multipart body", err)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, codeBadRequest, "missing file field", err)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, int64(h.cfg.API.MaxUploadBytes)+1))
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternal, "read upload failed", err)
		return
	}
	if len(content) > h.cfg.API.MaxUploadBytes {
		respondError(w, http.StatusRequestEntityTooLarge, codeBadRequest, "file too large", nil)
		return
	}

	id := chi.URLParam(r, "id")

	// The record payload stays as it is; only the document list grows.
	existing, err := h.svc.Get(r.Context(), collection, id)
	if errors.Is(err, records.ErrNotFound) {
		respondError(w, http.StatusNotFound, codeNotFound, "record not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternal, "fetch record failed", err)
		return
	}

	env, err := h.svc.Update(r.Context(), actor(r), collection, id, existing.Data, []records.DocumentUpload{{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	}})
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternal, "attach document failed", err)
		return
	}
	respondData(w, http.StatusCreated, env)
}

// GetDocument streams supporting-file content back.
func (h *Handlers) GetDocument(w http.ResponseWriter, r *http.Request) {
	collection, ok := h.checkCollection(w, r, false)
	if !ok {
		return
	}

	doc, content, err := h.svc.Document(r.Context(), collection, chi.URLParam(r, "id"), chi.URLParam(r, "docID"))
	if errors.Is(err, records.ErrNotFound) {
		respondError(w, http.StatusNotFound, codeNotFound, "document not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternal, "fetch document failed", err)
		return
	}

	ct := doc.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Name+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}

// DeleteDocument detaches and removes one supporting file.
func (h *Handlers) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	collection, ok := h.checkCollection(w, r, true)
	if !ok {
		return
	}

	err := h.svc.RemoveDocument(r.Context(), actor(r), collection, chi.URLParam(r, "id"), chi.URLParam(r, "docID"))
	if errors.Is(err, records.ErrNotFound) {
		respondError(w, http.StatusNotFound, codeNotFound, "document not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternal, "delete document failed", err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"deleted": chi.URLParam(r, "docID")})
}

// intParam reads a positive integer query parameter with a fallback.
func intParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
