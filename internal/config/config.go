// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package config

import (
	"fmt"
	"time"
)

// Config is the root configuration tree. Values are resolved in three
// layers: struct defaults, then an optional YAML file, then environment
// variables. See LoadWithKoanf.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Auth      AuthConfig      `koanf:"auth"`
	Flights   FlightsConfig   `koanf:"flights"`
	GeoIP     GeoIPConfig     `koanf:"geoip"`
	Currency  CurrencyConfig  `koanf:"currency"`
	SMTP      SMTPConfig      `koanf:"smtp"`
	NATS      NATSConfig      `koanf:"nats"`
	WAL       WALConfig       `koanf:"wal"`
	Logging   LoggingConfig   `koanf:"logging"`
	WebSocket WebSocketConfig `koanf:"websocket"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host           string        `koanf:"host"`
	Port           int           `koanf:"port"`
	ReadTimeout    time.Duration `koanf:"read_timeout"`
	WriteTimeout   time.Duration `koanf:"write_timeout"`
	IdleTimeout    time.Duration `koanf:"idle_timeout"`
	AllowedOrigins []string      `koanf:"allowed_origins"`
}

// DatabaseConfig controls the embedded DuckDB instance.
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	Threads                int    `koanf:"threads"`
	MaxMemory              string `koanf:"max_memory"`
	MaxOpenConns           int    `koanf:"max_open_conns"`
	MaxIdleConns           int    `koanf:"max_idle_conns"`
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"`
}

// AuthConfig controls first-party JWT authentication.
type AuthConfig struct {
	JWTSecret      string        `koanf:"jwt_secret"`
	SessionTimeout time.Duration `koanf:"session_timeout"`
	CookieSecure   bool          `koanf:"cookie_secure"`
	AdminUsername  string        `koanf:"admin_username"`
	AdminPassword  string        `koanf:"admin_password"`
}

// FlightsConfig holds the flight-offer search API credentials.
type FlightsConfig struct {
	BaseURL      string        `koanf:"base_url"`
	ClientID     string        `koanf:"client_id"`
	ClientSecret string        `koanf:"client_secret"`
	Timeout      time.Duration `koanf:"timeout"`
	RateLimit    float64       `koanf:"rate_limit"`
	RateBurst    int           `koanf:"rate_burst"`
}

// GeoIPConfig holds the IP geolocation API settings.
type GeoIPConfig struct {
	BaseURL  string        `koanf:"base_url"`
	APIKey   string        `koanf:"api_key"`
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

// CurrencyConfig holds the exchange-rate API settings.
type CurrencyConfig struct {
	BaseURL      string        `koanf:"base_url"`
	AppID        string        `koanf:"app_id"`
	BaseCurrency string        `koanf:"base_currency"`
	CacheTTL     time.Duration `koanf:"cache_ttl"`
}

// SMTPConfig holds outbound mail relay settings.
type SMTPConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
	StartTLS bool   `koanf:"starttls"`
}

// NATSConfig controls the embedded JetStream server used for event ingestion.
type NATSConfig struct {
	Embedded bool   `koanf:"embedded"`
	URL      string `koanf:"url"`
	StoreDir string `koanf:"store_dir"`
}

// WALConfig controls the failed-insert write-ahead buffer.
type WALConfig struct {
	Enabled       bool          `koanf:"enabled"`
	Dir           string        `koanf:"dir"`
	RetryInterval time.Duration `koanf:"retry_interval"`
	MaxRetries    int           `koanf:"max_retries"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// WebSocketConfig controls the realtime notification channel.
type WebSocketConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
	MaxMessageSize int64    `koanf:"max_message_size"`
}

// Defaults returns the layer-1 configuration.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8087,
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   30 * time.Second,
			IdleTimeout:    60 * time.Second,
			AllowedOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Path:                   "data/farescope.db",
			Threads:                4,
			MaxMemory:              "1GB",
			MaxOpenConns:           8,
			MaxIdleConns:           2,
			PreserveInsertionOrder: true,
		},
		Auth: AuthConfig{
			SessionTimeout: 24 * time.Hour,
			CookieSecure:   true,
			AdminUsername:  "admin",
		},
		Flights: FlightsConfig{
			BaseURL:   "https://test.api.amadeus.com",
			Timeout:   10 * time.Second,
			RateLimit: 10,
			RateBurst: 20,
		},
		GeoIP: GeoIPConfig{
			BaseURL:  "https://ipapi.co",
			CacheTTL: 24 * time.Hour,
		},
		Currency: CurrencyConfig{
			BaseURL:      "https://openexchangerates.org/api",
			BaseCurrency: "USD",
			CacheTTL:     time.Hour,
		},
		SMTP: SMTPConfig{
			Port:     587,
			StartTLS: true,
		},
		NATS: NATSConfig{
			Embedded: true,
			StoreDir: "data/nats",
		},
		WAL: WALConfig{
			Enabled:       true,
			Dir:           "data/wal",
			RetryInterval: 30 * time.Second,
			MaxRetries:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		WebSocket: WebSocketConfig{
			MaxMessageSize: 512 * 1024,
		},
	}
}

// Validate rejects configurations that cannot produce a working process.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Database.Threads < 1 {
		return fmt.Errorf("database.threads must be >= 1")
	}
	if c.Auth.SessionTimeout <= 0 {
		return fmt.Errorf("auth.session_timeout must be positive")
	}
	if c.Flights.RateLimit <= 0 {
		return fmt.Errorf("flights.rate_limit must be positive")
	}
	if c.WAL.Enabled && c.WAL.Dir == "" {
		return fmt.Errorf("wal.dir is required when wal.enabled")
	}
	return nil
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
