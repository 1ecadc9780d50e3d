// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/farescope/farescope/internal/models"
)

// GetEngagementSeries buckets the range into hourly (24h) or daily
// (7d/30d) slots, reporting searches, distinct sessions, click-outs and
// CTR per slot. CTR is clickouts/searches*100, 0 when searches is 0.
func (db *DB) GetEngagementSeries(ctx context.Context, rangeKey string, now time.Time) ([]models.EngagementPoint, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	w, bucketSize, bucketCount := rangeWindow(rangeKey, now)
	bucketSeconds := int64(bucketSize / time.Second)

	points := make([]models.EngagementPoint, bucketCount)
	for i := range points {
		points[i].Start = w.From.Add(time.Duration(i) * bucketSize)
	}

	rows, err := db.conn.QueryContext(ctx, `SELECT
			CAST(FLOOR(date_diff('second', ?, timestamp) / ?) AS INTEGER) AS bucket,
			COUNT(*),
			COUNT(DISTINCT session_id)
		FROM search_events WHERE timestamp >= ? AND timestamp < ?
		GROUP BY bucket`, w.From, float64(bucketSeconds), w.From, w.To)
	if err != nil {
		return nil, fmt.Errorf("querying engagement searches: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var idx int
		var searches, sessions int64
		if err := rows.Scan(&idx, &searches, &sessions); err != nil {
			return nil, fmt.Errorf("scanning engagement bucket: %w", err)
		}
		if idx >= 0 && idx < bucketCount {
			points[idx].Searches = searches
			points[idx].Sessions = sessions
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	clickRows, err := db.conn.QueryContext(ctx, `SELECT
			CAST(FLOOR(date_diff('second', ?, timestamp) / ?) AS INTEGER) AS bucket,
			COUNT(*)
		FROM clickout_events WHERE timestamp >= ? AND timestamp < ?
		GROUP BY bucket`, w.From, float64(bucketSeconds), w.From, w.To)
	if err != nil {
		return nil, fmt.Errorf("querying engagement clickouts: %w", err)
	}
	defer clickRows.Close()

	for clickRows.Next() {
		var idx int
		var clickouts int64
		if err := clickRows.Scan(&idx, &clickouts); err != nil {
			return nil, fmt.Errorf("scanning engagement bucket: %w", err)
		}
		if idx >= 0 && idx < bucketCount {
			points[idx].Clickouts = clickouts
		}
	}
	if err := clickRows.Err(); err != nil {
		return nil, err
	}

	for i := range points {
		points[i].CTR = rate(points[i].Clickouts, points[i].Searches) * 100
	}
	return points, nil
}

// GetMonthlyTrend returns a fixed-length series of the last months
// calendar months including the current one. months is clamped to
// [1, 24] with a default of 12. Events map to slots via calendar month,
// not 30-day windows.
func (db *DB) GetMonthlyTrend(ctx context.Context, months int, now time.Time) ([]models.MonthlyPoint, error) {
	if months < 1 || months > 24 {
		months = 12
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	now = now.UTC()
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	first := anchor.AddDate(0, -(months - 1), 0)

	points := make([]models.MonthlyPoint, months)
	for i := range points {
		points[i].Month = first.AddDate(0, i, 0).Format("2006-01")
	}

	// slotIndex maps an event month into the series via
	// yearDelta*12 + monthDelta relative to the first slot.
	slotIndex := func(year int, month time.Month) int {
		return (year-first.Year())*12 + int(month) - int(first.Month())
	}

	rows, err := db.conn.QueryContext(ctx, `SELECT
			CAST(EXTRACT(year FROM timestamp) AS INTEGER),
			CAST(EXTRACT(month FROM timestamp) AS INTEGER),
			COUNT(*)
		FROM search_events WHERE timestamp >= ? AND timestamp < ?
		GROUP BY 1, 2`, first, now)
	if err != nil {
		return nil, fmt.Errorf("querying monthly searches: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var year, month int
		var count int64
		if err := rows.Scan(&year, &month, &count); err != nil {
			return nil, fmt.Errorf("scanning monthly bucket: %w", err)
		}
		if idx := slotIndex(year, time.Month(month)); idx >= 0 && idx < months {
			points[idx].Searches = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	clickRows, err := db.conn.QueryContext(ctx, `SELECT
			CAST(EXTRACT(year FROM timestamp) AS INTEGER),
			CAST(EXTRACT(month FROM timestamp) AS INTEGER),
			COUNT(*),
			COALESCE(AVG(price), 0),
			COALESCE(MIN(price), 0),
			COALESCE(MAX(price), 0)
		FROM clickout_events WHERE timestamp >= ? AND timestamp < ?
		GROUP BY 1, 2`, first, now)
	if err != nil {
		return nil, fmt.Errorf("querying monthly clickouts: %w", err)
	}
	defer clickRows.Close()

	for clickRows.Next() {
		var year, month int
		var count int64
		var avg, min, max float64
		if err := clickRows.Scan(&year, &month, &count, &avg, &min, &max); err != nil {
			return nil, fmt.Errorf("scanning monthly bucket: %w", err)
		}
		if idx := slotIndex(year, time.Month(month)); idx >= 0 && idx < months {
			points[idx].Clickouts = count
			points[idx].AvgPrice = avg
			points[idx].MinPrice = min
			points[idx].MaxPrice = max
		}
	}
	return points, clickRows.Err()
}
