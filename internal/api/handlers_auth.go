// Civika - Barangay Civic Records Management
// Copyright 2026 M. Lagrosa (mlagrosa)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlagrosa/civika

package api

import (
	"errors"
	"net"
	"net/http"

	"github.com/mlagrosa/civika/internal/access"
	"github.com/mlagrosa/civika/internal/audit"
	"github.com/mlagrosa/civika/internal/auth"
	"github.com/mlagrosa/civika/internal/records"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Redirect string `json:"redirect"`
}

// Login checks credentials, issues the session cookies and answers with
// the role's landing page.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	if !h.limiter.Allow(ip) {
		auth.RecordLoginAttempt("throttled")
		respondError(w, http.StatusTooManyRequests, codeRateLimited, "too many login attempts, try again later", nil)
		return
	}

	var req loginRequest
	if err := decodeBody(w, r, 4<<10, &req); err != nil {
		respondError(w, http.StatusBadRequest, codeBadRequest, "malformed login request", err)
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, codeBadRequest, "username and password are required", nil)
		return
	}

	account, err := h.svc.Authenticate(r.Context(), req.Username, req.Password)
	if errors.Is(err, records.ErrInvalidCredentials) {
		auth.RecordLoginAttempt("failure")
		respondError(w, http.StatusUnauthorized, codeUnauthorized, "invalid username or password", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternal, "login failed", err)
		return
	}

	role := access.Role(account.Role)
	token, err := h.tokens.Issue(account.Username, role)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternal, "login failed", err)
		return
	}
	h.cookies.SetSession(w, token, role, h.tokens.TTL())

	auth.RecordLoginAttempt("success")
	h.audit(r, account.Username, audit.ActionLogin, records.CollectionStaff, "")

	respondData(w, http.StatusOK, loginResponse{
		Username: account.Username,
		Role:     account.Role,
		Redirect: role.DefaultPage(),
	})
}

// Logout clears the session cookies.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.ClearSession(w)
	respondData(w, http.StatusOK, map[string]string{"redirect": access.LoginPath})
}

// Me answers with the authenticated session's identity.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, codeUnauthorized, "no active session", nil)
		return
	}
	respondData(w, http.StatusOK, loginResponse{
		Username: claims.Username,
		Role:     claims.Role,
		Redirect: access.Role(claims.Role).DefaultPage(),
	})
}

// clientIP trusts RealIP middleware to have rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
