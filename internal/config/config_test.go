// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "0.0.0.0:8087", cfg.Server.Addr())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
		{"empty db path", func(c *Config) { c.Database.Path = "" }},
		{"zero db threads", func(c *Config) { c.Database.Threads = 0 }},
		{"negative session timeout", func(c *Config) { c.Auth.SessionTimeout = -1 }},
		{"zero flight rate limit", func(c *Config) { c.Flights.RateLimit = 0 }},
		{"wal enabled without dir", func(c *Config) { c.WAL.Dir = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("FARESCOPE_PORT", "9099")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("FARESCOPE_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("UNRELATED_VAR", "ignored")

	tmp := t.TempDir() + "/config.yaml"
	require.NoError(t, os.WriteFile(tmp, []byte("server:\n  host: 127.0.0.1\n"), 0o600))
	t.Setenv("CONFIG_PATH", tmp)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9099, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestSplitIfJoined(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitIfJoined([]string{"a,b"}))
	assert.Equal(t, []string{"a", "b"}, splitIfJoined([]string{"a", "b"}))
	assert.Equal(t, []string{"a"}, splitIfJoined([]string{"a"}))
	assert.Empty(t, splitIfJoined(nil))
}
