// Civika - Barangay Civic Records Management
// Copyright 2026 M. Lagrosa (mlagrosa)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlagrosa/civika

// Package access decides whether a role may reach a route.
//
// The evaluator works from three static rule sets built once at startup:
// public paths (no authentication), the citizen allowlist (a closed list
// evaluated before anything else for the citizen role), and the protected
// path table mapping route patterns to permitted roles. Patterns may contain
// dynamic segments ([slug] matches one path component, [[...rest]] matches
// zero or more trailing components) and are compiled into matchers at
// construction time, never re-parsed per request.
//
// Evaluation order, first structural match wins:
//
//  1. Citizen allowlist short-circuit (citizens consult nothing else)
//  2. Exact protected-path match
//  3. Dynamic-segment pattern match, declaration order
//  4. Static prefix match, declaration order
//  5. Default allow
//
// Paths absent from every rule set are allowed for any role. That is the
// deliberate deny-list model of the system: new routes are open until a
// rule is declared for them.
package access
