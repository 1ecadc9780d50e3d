// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package database

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/farescope/farescope/internal/models"
)

// countryRegions is the static country→region lookup. Unmapped codes
// roll up under "Other"; events without a country land in "Unknown".
var countryRegions = map[string]string{
	"US": "North America", "CA": "North America", "MX": "North America",
	"BR": "South America", "AR": "South America", "CL": "South America",
	"CO": "South America", "PE": "South America",
	"GB": "Europe", "DE": "Europe", "FR": "Europe", "ES": "Europe",
	"IT": "Europe", "NL": "Europe", "SE": "Europe", "NO": "Europe",
	"DK": "Europe", "FI": "Europe", "PL": "Europe", "PT": "Europe",
	"IE": "Europe", "CH": "Europe", "AT": "Europe", "BE": "Europe",
	"GR": "Europe", "CZ": "Europe", "RO": "Europe", "HU": "Europe",
	"CN": "Asia", "JP": "Asia", "KR": "Asia", "IN": "Asia",
	"SG": "Asia", "TH": "Asia", "VN": "Asia", "MY": "Asia",
	"ID": "Asia", "PH": "Asia", "HK": "Asia", "TW": "Asia",
	"AE": "Middle East", "SA": "Middle East", "IL": "Middle East",
	"QA": "Middle East", "TR": "Middle East",
	"ZA": "Africa", "NG": "Africa", "EG": "Africa", "KE": "Africa",
	"MA": "Africa",
	"AU": "Oceania", "NZ": "Oceania",
}

const (
	geoOtherKey   = "Other"
	geoUnknownKey = "Unknown"
)

// GetCountryRollup groups search events in the range by country code,
// sorted descending. When topN > 0, the tail beyond topN collapses into
// an "Other" slot. Events without a country report as "Unknown".
func (db *DB) GetCountryRollup(ctx context.Context, rangeKey string, topN int, now time.Time) ([]models.GeoEntry, error) {
	counts, err := db.countryCounts(ctx, rangeKey, now)
	if err != nil {
		return nil, err
	}

	entries := make([]models.GeoEntry, 0, len(counts))
	for code, count := range counts {
		key := code
		if key == "" {
			key = geoUnknownKey
		}
		entries = append(entries, models.GeoEntry{Key: key, Count: count})
	}
	sortGeo(entries)

	if topN > 0 && len(entries) > topN {
		var tail int64
		for _, e := range entries[topN:] {
			tail += e.Count
		}
		entries = append(entries[:topN], models.GeoEntry{Key: geoOtherKey, Count: tail})
	}
	return entries, nil
}

// GetRegionRollup groups search events by region via the static
// country→region table. Unmapped countries count toward "Other" and
// missing countries toward "Unknown".
func (db *DB) GetRegionRollup(ctx context.Context, rangeKey string, now time.Time) ([]models.GeoEntry, error) {
	counts, err := db.countryCounts(ctx, rangeKey, now)
	if err != nil {
		return nil, err
	}

	regions := make(map[string]int64)
	for code, count := range counts {
		switch {
		case code == "":
			regions[geoUnknownKey] += count
		default:
			region, ok := countryRegions[code]
			if !ok {
				region = geoOtherKey
			}
			regions[region] += count
		}
	}

	entries := make([]models.GeoEntry, 0, len(regions))
	for region, count := range regions {
		entries = append(entries, models.GeoEntry{Key: region, Count: count})
	}
	sortGeo(entries)
	return entries, nil
}

func (db *DB) countryCounts(ctx context.Context, rangeKey string, now time.Time) (map[string]int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	w, _, _ := rangeWindow(rangeKey, now)
	rows, err := db.conn.QueryContext(ctx, `SELECT country_code, COUNT(*)
		FROM search_events WHERE timestamp >= ? AND timestamp < ?
		GROUP BY country_code`, w.From, w.To)
	if err != nil {
		return nil, fmt.Errorf("querying country counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var code string
		var count int64
		if err := rows.Scan(&code, &count); err != nil {
			return nil, fmt.Errorf("scanning country count: %w", err)
		}
		counts[code] = count
	}
	return counts, rows.Err()
}

func sortGeo(entries []models.GeoEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Key < entries[j].Key
	})
}
