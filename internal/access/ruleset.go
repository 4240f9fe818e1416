// Civika - Barangay Civic Records Management
// Copyright 2026 M. Lagrosa (mlagrosa)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlagrosa/civika

package access

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Rule maps a route pattern to the roles permitted to access it. Patterns
// are literal paths or paths with dynamic segments, e.g.
// "/dashboard/posts/[slug]/edit".
type Rule struct {
	Pattern string `koanf:"pattern"`
	Roles   []Role `koanf:"roles"`
}

// Ruleset holds the compiled, immutable access configuration. Construct it
// once at process start and inject it wherever decisions are made; it is
// never mutated afterwards and is safe for concurrent use.
type Ruleset struct {
	rules        []compiledRule
	citizenAllow []string
	public       []string
	hideSidebar  []string
}

type compiledRule struct {
	pattern compiledPattern
	roles   map[Role]struct{}
}

// RulesetConfig is the raw, declarative form of a Ruleset. Rule order is
// significant: the first structurally matching rule governs.
type RulesetConfig struct {
	Rules            []Rule   `koanf:"rules"`
	CitizenAllowlist []string `koanf:"citizen_allowlist"`
	PublicPaths      []string `koanf:"public_paths"`
	HideSidebar      []string `koanf:"hide_sidebar"`
}

// NewRuleset compiles a RulesetConfig. Patterns are compiled here once;
// evaluation never parses strings.
func NewRuleset(cfg RulesetConfig) (*Ruleset, error) {
	rs := &Ruleset{
		rules:        make([]compiledRule, 0, len(cfg.Rules)),
		citizenAllow: cfg.CitizenAllowlist,
		public:       cfg.PublicPaths,
		hideSidebar:  cfg.HideSidebar,
	}

	for _, rule := range cfg.Rules {
		if rule.Pattern == "" {
			return nil, fmt.Errorf("access rule with empty pattern")
		}
		roles := make(map[Role]struct{}, len(rule.Roles))
		for _, role := range rule.Roles {
			roles[role] = struct{}{}
		}
		rs.rules = append(rs.rules, compiledRule{
			pattern: compilePattern(rule.Pattern),
			roles:   roles,
		})
	}
	return rs, nil
}

// LoadRuleset reads a RulesetConfig from a YAML file and compiles it.
// Used when the deployment overrides the built-in rule table.
func LoadRuleset(path string) (*Ruleset, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load access rules %s: %w", path, err)
	}

	var cfg RulesetConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal access rules: %w", err)
	}
	return NewRuleset(cfg)
}

// DefaultRulesetConfig returns the built-in rule table. Order matters: more
// specific dashboard rules are declared before broader prefixes so that the
// first-match policy resolves overlaps deterministically.
func DefaultRulesetConfig() RulesetConfig {
	return RulesetConfig{
		Rules: []Rule{
			{Pattern: "/dashboard/site-settings", Roles: []Role{RoleAdmin}},
			{Pattern: "/dashboard/staff", Roles: []Role{RoleAdmin}},
			{Pattern: "/dashboard/audit", Roles: []Role{RoleAdmin}},
			{Pattern: "/dashboard/posts/[slug]/edit", Roles: []Role{RoleAdmin, RoleStaff}},
			{Pattern: "/dashboard/residents", Roles: []Role{RoleAdmin, RoleStaff}},
			{Pattern: "/dashboard/households", Roles: []Role{RoleAdmin, RoleStaff}},
			{Pattern: "/dashboard/businesses", Roles: []Role{RoleAdmin, RoleStaff}},
			{Pattern: "/dashboard/permits", Roles: []Role{RoleAdmin, RoleStaff}},
			{Pattern: "/dashboard/incidents", Roles: []Role{RoleAdmin, RoleStaff}},
			{Pattern: "/dashboard/insights", Roles: []Role{RoleAdmin, RoleStaff}},
		},
		CitizenAllowlist: []string{
			"/dashboard/posts",
			"/dashboard/profile",
			"/dashboard/requests",
		},
		PublicPaths: []string{
			"/",
			"/auth",
			"/posts",
		},
		HideSidebar: []string{
			"/dashboard/permits/print",
			"/dashboard/incidents/print",
		},
	}
}

// DefaultRuleset compiles the built-in rule table. It cannot fail: the
// defaults contain no empty patterns.
func DefaultRuleset() *Ruleset {
	rs, err := NewRuleset(DefaultRulesetConfig())
	if err != nil {
		panic(err)
	}
	return rs
}
