// Civika - Barangay Civic Records Management
// Copyright 2026 M. Lagrosa (mlagrosa)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlagrosa/civika

package access

// Role classifies a session's privilege tier. Roles are fixed for the
// lifetime of a session and change only through re-authentication.
type Role string

// Known roles.
const (
	RoleAdmin   Role = "admin"
	RoleStaff   Role = "staff"
	RoleCitizen Role = "citizen"
)

// Valid reports whether r is one of the known roles. An unknown role is not
// an error anywhere in this package: it simply fails every membership test,
// which yields deny on protected paths.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleCitizen:
		return true
	}
	return false
}

// DefaultPage returns the landing page a denied request is redirected to.
func (r Role) DefaultPage() string {
	if r == RoleCitizen {
		return CitizenHome
	}
	return DashboardRoot
}

// Well-known paths used by the guard and the evaluator.
const (
	// DashboardRoot is the authenticated-area prefix and the admin/staff
	// default landing page.
	DashboardRoot = "/dashboard"

	// CitizenHome is the citizen default landing page.
	CitizenHome = "/dashboard/posts"

	// LoginPath receives unauthenticated and expired sessions.
	LoginPath = "/auth/login"
)
