// Civika - Barangay Civic Records Management
// Copyright 2026 M. Lagrosa (mlagrosa)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlagrosa/civika

// Package config loads and validates application configuration from
// layered sources: built-in defaults, an optional YAML file and
// environment variables, in that order of precedence.
package config

import (
	"fmt"
	"net/http"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Security SecurityConfig `koanf:"security"`
	Access   AccessConfig   `koanf:"access"`
	API      APIConfig      `koanf:"api"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig configures the embedded record store.
type DatabaseConfig struct {
	Path       string        `koanf:"path"`
	GCInterval time.Duration `koanf:"gc_interval"`
}

// SecurityConfig configures sessions and login throttling.
type SecurityConfig struct {
	JWTSecret       string        `koanf:"jwt_secret"`
	SessionTTL      time.Duration `koanf:"session_ttl"`
	TokenCookie     string        `koanf:"token_cookie"`
	RoleCookie      string        `koanf:"role_cookie"`
	CookieSecure    bool          `koanf:"cookie_secure"`
	CookieSameSite  string        `koanf:"cookie_same_site"`
	AdminUsername   string        `koanf:"admin_username"`
	AdminPassword   string        `koanf:"admin_password"`
	LoginRateLimit  int           `koanf:"login_rate_limit"`
	LoginRateWindow time.Duration `koanf:"login_rate_window"`
}

// SameSite maps the configured name onto the http constant.
func (s SecurityConfig) SameSite() http.SameSite {
	switch s.CookieSameSite {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// AccessConfig points at the route access ruleset.
type AccessConfig struct {
	// RulesFile overrides the compiled-in ruleset when set.
	RulesFile string `koanf:"rules_file"`
}

// APIConfig bounds list endpoints.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
	MaxUploadBytes  int `koanf:"max_upload_bytes"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the loaded configuration before the server starts.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("security.jwt_secret must be at least 32 characters")
	}
	if c.Security.SessionTTL <= 0 {
		return fmt.Errorf("security.session_ttl must be positive")
	}
	if c.Security.TokenCookie == "" || c.Security.RoleCookie == "" {
		return fmt.Errorf("security cookie names must not be empty")
	}
	switch c.Security.CookieSameSite {
	case "lax", "strict", "none":
	default:
		return fmt.Errorf("security.cookie_same_site %q: want lax, strict or none", c.Security.CookieSameSite)
	}
	if c.API.DefaultPageSize < 1 || c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("api page sizes invalid: default %d max %d", c.API.DefaultPageSize, c.API.MaxPageSize)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format %q: want json or console", c.Logging.Format)
	}
	if c.Server.Environment == "production" && !c.Security.CookieSecure {
		return fmt.Errorf("security.cookie_secure must be true in production")
	}
	return nil
}
