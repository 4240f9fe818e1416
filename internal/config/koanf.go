// Civika - Barangay Civic Records Management
// Copyright 2026 M. Lagrosa (mlagrosa)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlagrosa/civika

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, first hit wins.
var DefaultConfigPaths = []string{
	"civika.yaml",
	"civika.yml",
	"/etc/civika/config.yaml",
	"/etc/civika/config.yml",
}

// ConfigPathEnvVar overrides the config file search.
const ConfigPathEnvVar = "CIVIKA_CONFIG"

// defaultConfig returns the built-in defaults. File and env layers
// override these.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8480,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
			CORSOrigins:     []string{"*"},
		},
		Database: DatabaseConfig{
			Path:       "/data/civika",
			GCInterval: 10 * time.Minute,
		},
		Security: SecurityConfig{
			JWTSecret:       "",
			SessionTTL:      12 * time.Hour,
			TokenCookie:     "civika_token",
			RoleCookie:      "civika_role",
			CookieSecure:    true,
			CookieSameSite:  "lax",
			AdminUsername:   "admin",
			AdminPassword:   "",
			LoginRateLimit:  5,
			LoginRateWindow: time.Minute,
		},
		Access: AccessConfig{
			RulesFile: "",
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
			MaxUploadBytes:  10 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds the configuration from layered sources:
//  1. Built-in defaults
//  2. Optional YAML config file
//  3. Environment variables, highest priority
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration invalid: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed as comma-separated lists when they arrive
// as env strings.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names onto config paths.
// Unknown variables are skipped so unrelated env vars cannot pollute the
// configuration.
func envTransformFunc(key string) string {
	mappings := map[string]string{
		"HTTP_HOST":             "server.host",
		"HTTP_PORT":             "server.port",
		"HTTP_READ_TIMEOUT":     "server.read_timeout",
		"HTTP_WRITE_TIMEOUT":    "server.write_timeout",
		"HTTP_SHUTDOWN_TIMEOUT": "server.shutdown_timeout",
		"ENVIRONMENT":           "server.environment",
		"CORS_ORIGINS":          "server.cors_origins",

		"DATA_PATH":      "database.path",
		"DB_GC_INTERVAL": "database.gc_interval",

		"JWT_SECRET":        "security.jwt_secret",
		"SESSION_TTL":       "security.session_ttl",
		"TOKEN_COOKIE":      "security.token_cookie",
		"ROLE_COOKIE":       "security.role_cookie",
		"COOKIE_SECURE":     "security.cookie_secure",
		"COOKIE_SAME_SITE":  "security.cookie_same_site",
		"ADMIN_USERNAME":    "security.admin_username",
		"ADMIN_PASSWORD":    "security.admin_password",
		"LOGIN_RATE_LIMIT":  "security.login_rate_limit",
		"LOGIN_RATE_WINDOW": "security.login_rate_window",

		"ACCESS_RULES_FILE": "access.rules_file",

		"API_DEFAULT_PAGE_SIZE": "api.default_page_size",
		"API_MAX_PAGE_SIZE":     "api.max_page_size",
		"API_MAX_UPLOAD_BYTES":  "api.max_upload_bytes",

		"LOG_LEVEL":  "logging.level",
		"LOG_FORMAT": "logging.format",
		"LOG_CALLER": "logging.caller",
	}

	if mapped, ok := mappings[strings.ToUpper(key)]; ok {
		return mapped
	}
	return ""
}
