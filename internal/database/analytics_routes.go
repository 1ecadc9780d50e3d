// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package database

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/farescope/farescope/internal/models"
)

// conversionPct rounds clickouts/searches to a one-decimal percentage:
// round(clickouts/searches*1000)/10. Zero searches yield 0.
func conversionPct(clickouts, searches int64) float64 {
	if searches == 0 {
		return 0
	}
	return math.Round(float64(clickouts)/float64(searches)*1000) / 10
}

// GetTopRoutes groups search events in the range by (origin,
// destination), joined against click-out counts and average price for
// the same pair and window, ordered by search count.
func (db *DB) GetTopRoutes(ctx context.Context, rangeKey string, limit int, now time.Time) ([]models.TopRoute, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	w, _, _ := rangeWindow(rangeKey, now)
	rows, err := db.conn.QueryContext(ctx, `SELECT
			s.origin, s.destination, s.searches,
			COALESCE(c.clickouts, 0), COALESCE(c.avg_price, 0)
		FROM (
			SELECT origin, destination, COUNT(*) AS searches
			FROM search_events WHERE timestamp >= ? AND timestamp < ?
			GROUP BY origin, destination
		) s
		LEFT JOIN (
			SELECT origin, destination, COUNT(*) AS clickouts, AVG(price) AS avg_price
			FROM clickout_events WHERE timestamp >= ? AND timestamp < ?
			GROUP BY origin, destination
		) c ON s.origin = c.origin AND s.destination = c.destination
		ORDER BY s.searches DESC, s.origin, s.destination
		LIMIT ?`, w.From, w.To, w.From, w.To, limit)
	if err != nil {
		return nil, fmt.Errorf("querying top routes: %w", err)
	}
	defer rows.Close()

	routes := make([]models.TopRoute, 0, limit)
	for rows.Next() {
		var r models.TopRoute
		if err := rows.Scan(&r.Origin, &r.Destination, &r.Searches, &r.Clickouts, &r.AvgPrice); err != nil {
			return nil, fmt.Errorf("scanning top route: %w", err)
		}
		r.Conversion = conversionPct(r.Clickouts, r.Searches)
		routes = append(routes, r)
	}
	return routes, rows.Err()
}

// weekGrowthPct is the week-over-week growth percentage. A route absent
// last week but present this week reports 100, signaling "new" without
// dividing by zero.
func weekGrowthPct(thisWeek, lastWeek int64) float64 {
	if lastWeek == 0 {
		if thisWeek >= 1 {
			return 100
		}
		return 0
	}
	return float64(thisWeek-lastWeek) / float64(lastWeek) * 100
}

// GetTrendingRoutes compares search counts per route between the last
// seven days and the seven days before that, ordered by growth.
func (db *DB) GetTrendingRoutes(ctx context.Context, limit int, now time.Time) ([]models.TrendingRoute, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	now = now.UTC()
	weekAgo := now.Add(-7 * 24 * time.Hour)
	twoWeeksAgo := now.Add(-14 * 24 * time.Hour)

	rows, err := db.conn.QueryContext(ctx, `SELECT
			t.origin, t.destination, t.searches, COALESCE(l.searches, 0)
		FROM (
			SELECT origin, destination, COUNT(*) AS searches
			FROM search_events WHERE timestamp >= ? AND timestamp < ?
			GROUP BY origin, destination
		) t
		LEFT JOIN (
			SELECT origin, destination, COUNT(*) AS searches
			FROM search_events WHERE timestamp >= ? AND timestamp < ?
			GROUP BY origin, destination
		) l ON t.origin = l.origin AND t.destination = l.destination`,
		weekAgo, now, twoWeeksAgo, weekAgo)
	if err != nil {
		return nil, fmt.Errorf("querying trending routes: %w", err)
	}
	defer rows.Close()

	var routes []models.TrendingRoute
	for rows.Next() {
		var r models.TrendingRoute
		if err := rows.Scan(&r.Origin, &r.Destination, &r.ThisWeek, &r.LastWeek); err != nil {
			return nil, fmt.Errorf("scanning trending route: %w", err)
		}
		r.GrowthPct = weekGrowthPct(r.ThisWeek, r.LastWeek)
		routes = append(routes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Sort by growth, then by current volume for stable ties.
	sort.Slice(routes, func(i, j int) bool {
		a, b := routes[i], routes[j]
		if a.GrowthPct != b.GrowthPct {
			return a.GrowthPct > b.GrowthPct
		}
		if a.ThisWeek != b.ThisWeek {
			return a.ThisWeek > b.ThisWeek
		}
		if a.Origin != b.Origin {
			return a.Origin < b.Origin
		}
		return a.Destination < b.Destination
	})
	if len(routes) > limit {
		routes = routes[:limit]
	}
	return routes, nil
}
