// Civika - Barangay Civic Records Management
// Copyright 2026 M. Lagrosa (mlagrosa)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlagrosa/civika

package access

import "testing"

func testRuleset(t *testing.T) *Ruleset {
	t.Helper()
	rs, err := NewRuleset(DefaultRulesetConfig())
	if err != nil {
		t.Fatalf("NewRuleset: %v", err)
	}
	return rs
}

func TestEvaluate_DefaultAllow(t *testing.T) {
	rs := testRuleset(t)

	// Paths absent from every rule set are open for any non-citizen role,
	// including roles nobody has heard of.
	paths := []string{
		"/dashboard/unlisted",
		"/totally/unknown/path",
		"/dashboard",
	}
	for _, p := range paths {
		for _, role := range []Role{RoleAdmin, RoleStaff, Role("auditor")} {
			if !rs.Evaluate(p, role) {
				t.Errorf("Evaluate(%q, %q) = false, want default allow", p, role)
			}
		}
	}
}

func TestEvaluate_CitizenAllowlist(t *testing.T) {
	rs := testRuleset(t)

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"allowlisted exact", "/dashboard/posts", true},
		{"allowlisted subpath", "/dashboard/posts/welcome-post", true},
		{"allowlisted profile", "/dashboard/profile", true},
		{"deep subpath", "/dashboard/profile/documents/42", true},
		{"protected page", "/dashboard/staff", false},
		{"edit suffix not allowlisted", "/dashboard/posts-archive", false},
		// The allowlist is closed: even a path no rule protects is denied
		// for citizens.
		{"unprotected path still denied", "/dashboard/unlisted", false},
		{"outside dashboard", "/anything", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rs.Evaluate(tt.path, RoleCitizen); got != tt.want {
				t.Errorf("Evaluate(%q, citizen) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestEvaluate_ExactAndPrefixRules(t *testing.T) {
	rs := testRuleset(t)

	tests := []struct {
		name string
		path string
		role Role
		want bool
	}{
		{"admin page for admin", "/dashboard/site-settings", RoleAdmin, true},
		{"admin page for staff", "/dashboard/site-settings", RoleStaff, false},
		{"staff roster admin only", "/dashboard/staff", RoleStaff, false},
		{"residents for staff", "/dashboard/residents", RoleStaff, true},
		{"residents subpage via prefix", "/dashboard/residents/abc-123", RoleStaff, true},
		{"residents subpage denied role", "/dashboard/site-settings/email", RoleStaff, false},
		{"unknown role denied", "/dashboard/residents", Role("superuser"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rs.Evaluate(tt.path, tt.role); got != tt.want {
				t.Errorf("Evaluate(%q, %q) = %v, want %v", tt.path, tt.role, got, tt.want)
			}
		})
	}
}

func TestEvaluate_DynamicSegments(t *testing.T) {
	rs := testRuleset(t)

	tests := []struct {
		name string
		path string
		role Role
		want bool
	}{
		{"edit page for staff", "/dashboard/posts/welcome-post/edit", RoleStaff, true},
		{"edit page for admin", "/dashboard/posts/welcome-post/edit", RoleAdmin, true},
		{"edit page for citizen", "/dashboard/posts/welcome-post/edit", RoleCitizen, false},
		{"edit page trailing slash", "/dashboard/posts/welcome-post/edit/", RoleStaff, true},
		{"slug with dashes", "/dashboard/posts/2026-fiesta-schedule/edit", RoleStaff, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rs.Evaluate(tt.path, tt.role); got != tt.want {
				t.Errorf("Evaluate(%q, %q) = %v, want %v", tt.path, tt.role, got, tt.want)
			}
		})
	}

	// The post view (no /edit suffix) is governed by the citizen allowlist
	// alone for citizens.
	if !rs.Evaluate("/dashboard/posts/welcome-post", RoleCitizen) {
		t.Error("citizen should read post view via allowlist")
	}
}

func TestEvaluate_TrailingSlashIdempotent(t *testing.T) {
	rs := testRuleset(t)

	paths := []string{
		"/dashboard/site-settings",
		"/dashboard/staff",
		"/dashboard/residents",
		"/dashboard/posts/welcome-post/edit",
		"/dashboard/posts",
		"/dashboard/unlisted",
	}
	roles := []Role{RoleAdmin, RoleStaff, RoleCitizen}

	for _, p := range paths {
		for _, role := range roles {
			plain := rs.Evaluate(p, role)
			slashed := rs.Evaluate(p+"/", role)
			if plain != slashed {
				t.Errorf("Evaluate(%q, %s) = %v but Evaluate(%q, %s) = %v",
					p, role, plain, p+"/", role, slashed)
			}
		}
	}
}

func TestEvaluate_FirstMatchWins(t *testing.T) {
	// Overlapping prefixes resolve to the first-declared rule.
	rs, err := NewRuleset(RulesetConfig{
		Rules: []Rule{
			{Pattern: "/dashboard/reports/annual", Roles: []Role{RoleAdmin}},
			{Pattern: "/dashboard/reports", Roles: []Role{RoleAdmin, RoleStaff}},
		},
	})
	if err != nil {
		t.Fatalf("NewRuleset: %v", err)
	}

	if rs.Evaluate("/dashboard/reports/annual", RoleStaff) {
		t.Error("first-declared exact rule should govern /dashboard/reports/annual")
	}
	if !rs.Evaluate("/dashboard/reports/monthly", RoleStaff) {
		t.Error("broader rule should govern other report pages")
	}
}

func TestDecide_RedirectTargets(t *testing.T) {
	rs := testRuleset(t)

	tests := []struct {
		name         string
		path         string
		role         Role
		wantAllowed  bool
		wantRedirect string
	}{
		{"admin allowed", "/dashboard/site-settings", RoleAdmin, true, ""},
		{"staff denied to admin page", "/dashboard/site-settings", RoleStaff, false, DashboardRoot},
		{"citizen allowed profile", "/dashboard/profile", RoleCitizen, true, ""},
		{"citizen denied staff page", "/dashboard/staff", RoleCitizen, false, CitizenHome},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := rs.Decide(tt.path, tt.role)
			if d.Allowed != tt.wantAllowed {
				t.Fatalf("Decide(%q, %s).Allowed = %v, want %v", tt.path, tt.role, d.Allowed, tt.wantAllowed)
			}
			if d.Redirect != tt.wantRedirect {
				t.Errorf("Decide(%q, %s).Redirect = %q, want %q", tt.path, tt.role, d.Redirect, tt.wantRedirect)
			}
		})
	}
}

func TestIsPublic(t *testing.T) {
	rs := testRuleset(t)

	tests := []struct {
		path string
		want bool
	}{
		{"/", true},
		{"/auth/login", true},
		{"/auth/register", true},
		{"/posts/announcement", true},
		{"/dashboard", false},
		{"/authx", false},
	}
	for _, tt := range tests {
		if got := rs.IsPublic(tt.path); got != tt.want {
			t.Errorf("IsPublic(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestIsAsset(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/_next/static/chunk.js", true},
		{"/api/v1/residents", true},
		{"/favicon.ico", true},
		{"/metrics", true},
		{"/assets/logo.png", true},
		{"/seal.svg", true},
		{"/dashboard/residents", false},
		{"/auth/login", false},
	}
	for _, tt := range tests {
		if got := IsAsset(tt.path); got != tt.want {
			t.Errorf("IsAsset(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestHideSidebar(t *testing.T) {
	rs := testRuleset(t)

	if !rs.HideSidebar("/dashboard/permits/print") {
		t.Error("print view should hide the sidebar")
	}
	if rs.HideSidebar("/dashboard/permits") {
		t.Error("permit list should keep the sidebar")
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/dashboard/", "/dashboard"},
		{"/dashboard", "/dashboard"},
		// Exactly one slash is stripped.
		{"/dashboard//", "/dashboard/"},
		{"/", "/"},
	}
	for _, tt := range tests {
		if got := NormalizePath(tt.in); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
