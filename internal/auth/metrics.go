// Civika - Barangay Civic Records Management
// Copyright 2026 M. Lagrosa (mlagrosa)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlagrosa/civika

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mlagrosa/civika/internal/access"
)

// Guard outcome labels.
const (
	outcomePass          = "pass"
	outcomeLoginRedirect = "login_redirect"
	outcomeRoleRedirect  = "role_redirect"
)

var (
	// GuardDecisionsTotal counts guard outcomes for every intercepted
	// request.
	GuardDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guard_decisions_total",
			Help: "Total number of session guard decisions",
		},
		[]string{"outcome"},
	)

	// AccessDeniedTotal counts evaluator denials by role, for alerting on
	// misconfigured rules or probing.
	AccessDeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_denied_total",
			Help: "Total number of route access denials",
		},
		[]string{"role"},
	)

	// LoginAttemptsTotal counts login attempts by result.
	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"},
	)
)

func recordGuardDecision(outcome string) {
	GuardDecisionsTotal.WithLabelValues(outcome).Inc()
}

func recordGuardDenial(role access.Role) {
	GuardDecisionsTotal.WithLabelValues("denied").Inc()
	AccessDeniedTotal.WithLabelValues(string(role)).Inc()
}

// RecordLoginAttempt records a login attempt outcome: "success", "failure"
// or "throttled".
func RecordLoginAttempt(result string) {
	LoginAttemptsTotal.WithLabelValues(result).Inc()
}
