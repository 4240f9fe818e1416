// Civika - Barangay Civic Records Management
// Copyright 2026 M. Lagrosa (mlagrosa)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlagrosa/civika

package auth

import (
	"net/http"
	"time"

	"github.com/mlagrosa/civika/internal/access"
)

// CookieConfig names the two session cookies and their attributes. The
// token cookie carries the signed credential; the role cookie is a plain
// tag read by the guard for route-access decisions.
type CookieConfig struct {
	TokenName string
	RoleName  string
	Path      string
	Secure    bool
	SameSite  http.SameSite
}

// DefaultCookieConfig returns the standard cookie settings.
func DefaultCookieConfig() CookieConfig {
	return CookieConfig{
		TokenName: "civika_token",
		RoleName:  "civika_role",
		Path:      "/",
		Secure:    true,
		SameSite:  http.SameSiteLaxMode,
	}
}

// SetSession sets the token and role cookies on the response.
func (c CookieConfig) SetSession(w http.ResponseWriter, token string, role access.Role, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.TokenName,
		Value:    token,
		Path:     c.Path,
		MaxAge:   int(ttl.Seconds()),
		Secure:   c.Secure,
		HttpOnly: true,
		SameSite: c.SameSite,
	})
	// Role cookie is readable by the frontend for nav rendering, so it is
	// deliberately not HttpOnly. It grants nothing by itself: every
	// decision re-checks the signed token.
	http.SetCookie(w, &http.Cookie{
		Name:     c.RoleName,
		Value:    string(role),
		Path:     c.Path,
		MaxAge:   int(ttl.Seconds()),
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}

// ClearSession clears both session cookies.
func (c CookieConfig) ClearSession(w http.ResponseWriter) {
	for _, name := range []string{c.TokenName, c.RoleName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     c.Path,
			MaxAge:   -1,
			Secure:   c.Secure,
			HttpOnly: name == c.TokenName,
			SameSite: c.SameSite,
		})
	}
}

// token reads the raw token cookie value, empty when absent.
func (c CookieConfig) token(r *http.Request) string {
	cookie, err := r.Cookie(c.TokenName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// role reads the role cookie value, empty when absent.
func (c CookieConfig) role(r *http.Request) access.Role {
	cookie, err := r.Cookie(c.RoleName)
	if err != nil {
		return ""
	}
	return access.Role(cookie.Value)
}
