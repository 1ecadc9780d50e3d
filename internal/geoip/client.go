// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

// Package geoip resolves client IPs to coarse location through an
// ipapi-style HTTP service, with a TTL cache in front so repeat lookups
// for the same masked IP never leave the process.
package geoip

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/farescope/farescope/internal/cache"
	"github.com/farescope/farescope/internal/config"
	"github.com/farescope/farescope/internal/metrics"
)

// ErrUpstream marks geolocation provider failures.
var ErrUpstream = errors.New("geolocation provider unavailable")

// Location is the subset of the provider response Farescope keeps.
type Location struct {
	IP          string  `json:"ip"`
	CountryCode string  `json:"country_code"`
	CountryName string  `json:"country_name"`
	Region      string  `json:"region"`
	City        string  `json:"city"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// Client looks up IP geolocation with caching and a circuit breaker.
type Client struct {
	cfg     *config.GeoIPConfig
	http    *http.Client
	cache   *cache.Cache
	breaker *gobreaker.CircuitBreaker[*Location]
}

// NewClient builds a client; lookups are cached for cfg.CacheTTL.
func NewClient(cfg *config.GeoIPConfig) *Client {
	return &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: 5 * time.Second},
		cache: cache.New(cfg.CacheTTL),
		breaker: gobreaker.NewCircuitBreaker[*Location](gobreaker.Settings{
			Name:        "geoip",
			MaxRequests: 2,
			Interval:    time.Minute,
			Timeout:     time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.Requests >= 5 &&
					float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
			},
		}),
	}
}

// Lookup resolves ip, serving from cache when possible.
func (c *Client) Lookup(ctx context.Context, ip string) (*Location, error) {
	if cached, ok := c.cache.Get(ip); ok {
		return cached.(*Location), nil
	}

	loc, err := c.breaker.Execute(func() (*Location, error) {
		return c.fetch(ctx, ip)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit open", ErrUpstream)
		}
		return nil, err
	}

	c.cache.Set(ip, loc)
	return loc, nil
}

func (c *Client) fetch(ctx context.Context, ip string) (*Location, error) {
	url := fmt.Sprintf("%s/%s/json/", c.cfg.BaseURL, ip)
	if c.cfg.APIKey != "" {
		url += "?key=" + c.cfg.APIKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building geoip request: %w", err)
	}

	resp, err := c.http.Do(req)
	metrics.RecordUpstream("geoip", err)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: provider returned %d", ErrUpstream, resp.StatusCode)
	}

	var loc Location
	if err := json.NewDecoder(resp.Body).Decode(&loc); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrUpstream, err)
	}
	loc.IP = ip
	return &loc, nil
}

// CacheStats exposes cache counters for the health endpoint.
func (c *Client) CacheStats() cache.Stats {
	return c.cache.GetStats()
}

// Close releases the cache cleanup goroutine.
func (c *Client) Close() {
	c.cache.Stop()
}
