// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/farescope/farescope/internal/models"
)

// window is a half-open interval [From, To).
type window struct {
	From time.Time
	To   time.Time
}

// rangeWindow resolves a range keyword against now. Unknown keywords
// fall back to last24h.
func rangeWindow(rangeKey string, now time.Time) (window, time.Duration, int) {
	now = now.UTC()
	switch rangeKey {
	case models.Range7d:
		return window{From: now.Add(-7 * 24 * time.Hour), To: now}, 24 * time.Hour, 7
	case models.Range30d:
		return window{From: now.Add(-30 * 24 * time.Hour), To: now}, 24 * time.Hour, 30
	default:
		return window{From: now.Add(-24 * time.Hour), To: now}, time.Hour, 24
	}
}

// rate returns numerator/denominator, defined as 0 when the denominator
// is 0 so empty windows never produce NaN or a division error.
func rate(numerator, denominator int64) float64 {
	if denominator == 0 {
		return 0
	}
	return float64(numerator) / float64(denominator)
}

// GetDashboardMetrics computes the last-24h window and the preceding
// 24h window relative to now.
func (db *DB) GetDashboardMetrics(ctx context.Context, now time.Time) (*models.DashboardMetrics, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	now = now.UTC()
	last := window{From: now.Add(-24 * time.Hour), To: now}
	prev := window{From: now.Add(-48 * time.Hour), To: now.Add(-24 * time.Hour)}

	lastMetrics, err := db.windowMetrics(ctx, last)
	if err != nil {
		return nil, err
	}
	prevMetrics, err := db.windowMetrics(ctx, prev)
	if err != nil {
		return nil, err
	}
	return &models.DashboardMetrics{Last24h: *lastMetrics, Prev24h: *prevMetrics}, nil
}

func (db *DB) windowMetrics(ctx context.Context, w window) (*models.WindowMetrics, error) {
	var m models.WindowMetrics

	err := db.conn.QueryRowContext(ctx, `SELECT
			COUNT(*),
			COUNT(DISTINCT session_id)
		FROM search_events WHERE timestamp >= ? AND timestamp < ?`, w.From, w.To).
		Scan(&m.TotalSearches, &m.UniqueSessions)
	if err != nil {
		return nil, fmt.Errorf("querying search window: %w", err)
	}

	err = db.conn.QueryRowContext(ctx, `SELECT
			COUNT(*),
			COALESCE(AVG(price), 0)
		FROM clickout_events WHERE timestamp >= ? AND timestamp < ?`, w.From, w.To).
		Scan(&m.TotalClickouts, &m.AvgClickoutUSD)
	if err != nil {
		return nil, fmt.Errorf("querying clickout window: %w", err)
	}

	m.ClickoutRate = rate(m.TotalClickouts, m.TotalSearches)

	// Busiest route of the window, if any.
	err = db.conn.QueryRowContext(ctx, `SELECT origin, destination
		FROM search_events WHERE timestamp >= ? AND timestamp < ?
		GROUP BY origin, destination
		ORDER BY COUNT(*) DESC, origin, destination LIMIT 1`, w.From, w.To).
		Scan(&m.TopOrigin, &m.TopDestination)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("querying top route: %w", err)
	}
	return &m, nil
}

// GetHourlySeries partitions the 24 hours before now into 24 half-open
// one-hour buckets anchored to now. Every event in the window lands in
// exactly one bucket.
func (db *DB) GetHourlySeries(ctx context.Context, now time.Time) ([]models.HourlyBucket, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	now = now.UTC()
	start := now.Add(-24 * time.Hour)

	buckets := make([]models.HourlyBucket, 24)
	for i := range buckets {
		buckets[i].Start = start.Add(time.Duration(i) * time.Hour)
	}

	fill := func(table string, assign func(i int, count int64)) error {
		rows, err := db.conn.QueryContext(ctx, fmt.Sprintf(`SELECT
				CAST(FLOOR(date_diff('second', ?, timestamp) / 3600.0) AS INTEGER) AS bucket,
				COUNT(*)
			FROM %s WHERE timestamp >= ? AND timestamp < ?
			GROUP BY bucket`, table), start, start, now)
		if err != nil {
			return fmt.Errorf("querying %s buckets: %w", table, err)
		}
		defer rows.Close()

		for rows.Next() {
			var idx int
			var count int64
			if err := rows.Scan(&idx, &count); err != nil {
				return fmt.Errorf("scanning bucket: %w", err)
			}
			if idx >= 0 && idx < len(buckets) {
				assign(idx, count)
			}
		}
		return rows.Err()
	}

	if err := fill("search_events", func(i int, c int64) { buckets[i].Searches = c }); err != nil {
		return nil, err
	}
	if err := fill("clickout_events", func(i int, c int64) { buckets[i].Clickouts = c }); err != nil {
		return nil, err
	}
	return buckets, nil
}

// breakdownColumns whitelists the dimensions exposed by the breakdown
// endpoint. Keys are the API-facing names.
var breakdownColumns = map[string]string{
	"device":  "device_type",
	"browser": "browser",
	"os":      "os",
	"country": "country_code",
	"class":   "travel_class",
}

// breakdownTopN caps every dimension breakdown.
const breakdownTopN = 8

// GetBreakdown groups search events in the range by one categorical
// dimension and returns the top 8 values by count.
func (db *DB) GetBreakdown(ctx context.Context, dimension, rangeKey string, now time.Time) ([]models.BreakdownEntry, error) {
	column, ok := breakdownColumns[dimension]
	if !ok {
		return nil, fmt.Errorf("unknown breakdown dimension %q", dimension)
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	w, _, _ := rangeWindow(rangeKey, now)
	rows, err := db.conn.QueryContext(ctx, fmt.Sprintf(`SELECT %s, COUNT(*)
		FROM search_events WHERE timestamp >= ? AND timestamp < ? AND %s <> ''
		GROUP BY %s ORDER BY COUNT(*) DESC, %s LIMIT %d`,
		column, column, column, column, breakdownTopN), w.From, w.To)
	if err != nil {
		return nil, fmt.Errorf("querying %s breakdown: %w", dimension, err)
	}
	defer rows.Close()

	entries := make([]models.BreakdownEntry, 0, breakdownTopN)
	for rows.Next() {
		var e models.BreakdownEntry
		if err := rows.Scan(&e.Value, &e.Count); err != nil {
			return nil, fmt.Errorf("scanning breakdown: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
