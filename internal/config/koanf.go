// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/farescope/farescope/internal/logging"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config/config.yaml",
	"/etc/farescope/config.yaml",
}

// Load resolves configuration from three layers:
//
//  1. struct defaults (Defaults)
//  2. a YAML file, located via CONFIG_PATH or DefaultConfigPaths
//  3. environment variables, mapped through envKeyMap
//
// Later layers win. The merged result is validated before being returned.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		logging.Info().Str("path", path).Msg("Loaded configuration file")
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	normalizeSliceFields(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// envKeyMap is the explicit environment surface. Unlisted variables are
// ignored so unrelated process environment never leaks into the config.
var envKeyMap = map[string]string{
	"FARESCOPE_HOST":            "server.host",
	"FARESCOPE_PORT":            "server.port",
	"FARESCOPE_ALLOWED_ORIGINS": "server.allowed_origins",
	"DATABASE_PATH":             "database.path",
	"DATABASE_THREADS":          "database.threads",
	"DATABASE_MAX_MEMORY":       "database.max_memory",
	"JWT_SECRET":                "auth.jwt_secret",
	"SESSION_TIMEOUT":           "auth.session_timeout",
	"ADMIN_USERNAME":            "auth.admin_username",
	"ADMIN_PASSWORD":            "auth.admin_password",
	"COOKIE_SECURE":             "auth.cookie_secure",
	"AMADEUS_BASE_URL":          "flights.base_url",
	"AMADEUS_CLIENT_ID":         "flights.client_id",
	"AMADEUS_CLIENT_SECRET":     "flights.client_secret",
	"GEOIP_BASE_URL":            "geoip.base_url",
	"GEOIP_API_KEY":             "geoip.api_key",
	"OXR_APP_ID":                "currency.app_id",
	"OXR_BASE_CURRENCY":         "currency.base_currency",
	"SMTP_HOST":                 "smtp.host",
	"SMTP_PORT":                 "smtp.port",
	"SMTP_USERNAME":             "smtp.username",
	"SMTP_PASSWORD":             "smtp.password",
	"SMTP_FROM":                 "smtp.from",
	"NATS_EMBEDDED":             "nats.embedded",
	"NATS_URL":                  "nats.url",
	"NATS_STORE_DIR":            "nats.store_dir",
	"WAL_ENABLED":               "wal.enabled",
	"WAL_DIR":                   "wal.dir",
	"LOG_LEVEL":                 "logging.level",
	"LOG_FORMAT":                "logging.format",
	"WS_ALLOWED_ORIGINS":        "websocket.allowed_origins",
}

func envTransform(key string) string {
	return envKeyMap[key]
}

// normalizeSliceFields splits comma-separated env values into slices.
// koanf delivers env-sourced lists as a single string.
func normalizeSliceFields(cfg *Config) {
	cfg.Server.AllowedOrigins = splitIfJoined(cfg.Server.AllowedOrigins)
	cfg.WebSocket.AllowedOrigins = splitIfJoined(cfg.WebSocket.AllowedOrigins)
}

func splitIfJoined(values []string) []string {
	if len(values) != 1 || !strings.Contains(values[0], ",") {
		return values
	}
	parts := strings.Split(values[0], ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func findConfigFile() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
