// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

// Package currency fetches exchange rates from an
// openexchangerates-style API and converts fare amounts between
// currencies. Rates are cached for the configured TTL so a single
// upstream fetch serves all conversions in the window.
package currency

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

// ErrUpstream marks exchange-rate provider failures.
var ErrUpstream = errors.New("exchange rate provider unavailable")

// ErrUnknownCurrency is returned for codes absent from the rate table.
var ErrUnknownCurrency = errors.New("unknown currency code")

const ratesCacheKey = "latest"

// Rates is one snapshot of exchange rates against the base currency.
type Rates struct {
	Base      string             `json:"base"`
	Timestamp int64              `json:"timestamp"`
	Rates     map[string]float64 `json:"rates"`
}

// Client fetches and caches exchange rates.
type Client struct {
	cfg     *config.CurrencyConfig
	http    *http.Client
	cache   *cache.Cache
	breaker *gobreaker.CircuitBreaker[*Rates]
}

// NewClient builds a client; the rate table is cached for cfg.CacheTTL.
func NewClient(cfg *config.CurrencyConfig) *Client {
	return &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: 5 * time.Second},
		cache: cache.New(cfg.CacheTTL),
		breaker: gobreaker.NewCircuitBreaker[*Rates](gobreaker.Settings{
			Name:        "currency",
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

// LatestRates returns the current rate table, fetching on cache miss.
func (c *Client) LatestRates(ctx context.Context) (*Rates, error) {
	if cached, ok := c.cache.Get(ratesCacheKey); ok {
		return cached.(*Rates), nil
	}

	rates, err := c.breaker.Execute(func() (*Rates, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit open", ErrUpstream)
		}
		return nil, err
	}

	c.cache.Set(ratesCacheKey, rates)
	return rates, nil
}

// Convert converts amount from one currency code to another using the
// cached rate table. Both codes must appear in the table; the base
// currency itself always rates 1.
func (c *Client) Convert(ctx context.Context, amount float64, from, to string) (float64, error) {
	rates, err := c.LatestRates(ctx)
	if err != nil {
		return 0, err
	}

	fromRate, err := rates.rateFor(from)
	if err != nil {
		return 0, err
	}
	toRate, err := rates.rateFor(to)
	if err != nil {
		return 0, err
	}

	return amount * toRate / fromRate, nil
}

func (r *Rates) rateFor(code string) (float64, error) {
	if code == r.Base {
		return 1, nil
	}
	rate, ok := r.Rates[code]
	if !ok || rate == 0 {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCurrency, code)
	}
	return rate, nil
}

func (c *Client) fetch(ctx context.Context) (*Rates, error) {
	url := fmt.Sprintf("%s/latest.json?app_id=%s&base=%s",
		c.cfg.BaseURL, c.cfg.AppID, c.cfg.BaseCurrency)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building rates request: %w", err)
	}

	resp, err := c.http.Do(req)
	metrics.RecordUpstream("currency", err)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: provider returned %d", ErrUpstream, resp.StatusCode)
	}

	var rates Rates
	if err := json.NewDecoder(resp.Body).Decode(&rates); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrUpstream, err)
	}
	if rates.Base == "" {
		rates.Base = c.cfg.BaseCurrency
	}
	return &rates, nil
}

// Close releases the cache cleanup goroutine.
func (c *Client) Close() {
	c.cache.Stop()
}
