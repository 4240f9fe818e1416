// Civika - Barangay Civic Records Management
// Copyright 2026 M. Lagrosa (mlagrosa)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlagrosa/civika

package access

import "strings"

// Decision is the outcome of evaluating a path for a role: either allowed,
// or denied with the role-appropriate redirect target. Computed fresh per
// request, never cached.
type Decision struct {
	Allowed  bool
	Redirect string
}

// NormalizePath strips exactly one trailing slash if present. No other
// normalization happens here: no case folding, no percent decoding. The
// bare root is left intact.
func NormalizePath(path string) string {
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		return path[:len(path)-1]
	}
	return path
}

// Evaluate reports whether role may access path. The rule sets are consulted
// in fixed order and the first structurally matching rule governs; rule
// iteration follows declaration order. Paths matching no rule are allowed.
//
// An unrecognized role fails every membership test and is denied on any
// protected path.
func (rs *Ruleset) Evaluate(path string, role Role) bool {
	path = NormalizePath(path)

	// Citizens are confined to a closed allowlist. Nothing else is
	// consulted for them, including the protected-path table.
	if role == RoleCitizen {
		for _, entry := range rs.citizenAllow {
			if path == entry || strings.HasPrefix(path, entry+"/") {
				return true
			}
		}
		return false
	}

	// Exact protected-path match.
	for _, rule := range rs.rules {
		if rule.pattern.literal && rule.pattern.raw == path {
			return rule.allows(role)
		}
	}

	// Dynamic-segment match. Normalization strips only one trailing slash,
	// so a path may still carry one; try both forms.
	trimmed := strings.TrimSuffix(path, "/")
	for _, rule := range rs.rules {
		if rule.pattern.literal {
			continue
		}
		if rule.pattern.match(path) || (trimmed != path && rule.pattern.match(trimmed)) {
			return rule.allows(role)
		}
	}

	// Static prefix match.
	for _, rule := range rs.rules {
		if !rule.pattern.literal {
			continue
		}
		if path == rule.pattern.raw || strings.HasPrefix(path, rule.pattern.raw+"/") {
			return rule.allows(role)
		}
	}

	// No rule claimed the path: open by default.
	return true
}

// Decide evaluates path for role and, on denial, names the redirect target.
func (rs *Ruleset) Decide(path string, role Role) Decision {
	if rs.Evaluate(path, role) {
		return Decision{Allowed: true}
	}
	return Decision{Redirect: role.DefaultPage()}
}

func (r compiledRule) allows(role Role) bool {
	_, ok := r.roles[role]
	return ok
}

// IsPublic reports whether path needs no authentication at all.
func (rs *Ruleset) IsPublic(path string) bool {
	for _, entry := range rs.public {
		if path == entry || strings.HasPrefix(path, entry+"/") {
			return true
		}
	}
	return false
}

// HideSidebar reports whether the surrounding chrome should be hidden for
// path, per the static excluded-route list.
func (rs *Ruleset) HideSidebar(path string) bool {
	path = NormalizePath(path)
	for _, entry := range rs.hideSidebar {
		if path == entry || strings.HasPrefix(path, entry+"/") {
			return true
		}
	}
	return false
}

// assetPrefixes and assetSuffixes identify framework internals, static
// assets and API routes that the guard never intercepts.
var assetPrefixes = []string{
	"/_next/",
	"/static/",
	"/assets/",
	"/api/",
}

var assetSuffixes = []string{
	".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".ico", ".css", ".js",
}

// IsAsset reports whether path is excluded from guard interception.
func IsAsset(path string) bool {
	if path == "/favicon.ico" || path == "/metrics" {
		return true
	}
	for _, prefix := range assetPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	for _, suffix := range assetSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}
