// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package models

import "time"

// WindowMetrics are counts over one fixed 24h window.
type WindowMetrics struct {
	TotalSearches   int64   `json:"totalSearches"`
	TotalClickouts  int64   `json:"totalClickouts"`
	UniqueSessions  int64   `json:"uniqueSessions"`
	ClickoutRate    float64 `json:"clickoutRate"`
	AvgClickoutUSD  float64 `json:"avgClickoutPrice"`
	TopOrigin       string  `json:"topOrigin,omitempty"`
	TopDestination  string  `json:"topDestination,omitempty"`
}

// DashboardMetrics pairs the last-24h window with the preceding one.
type DashboardMetrics struct {
	Last24h WindowMetrics `json:"last24h"`
	Prev24h WindowMetrics `json:"prev24h"`
}

// HourlyBucket is one slot of the 24-hour series. Start is the inclusive
// bucket boundary; events in [Start, Start+1h) are counted.
type HourlyBucket struct {
	Start     time.Time `json:"start"`
	Searches  int64     `json:"searches"`
	Clickouts int64     `json:"clickouts"`
}

// BreakdownEntry is one value of a categorical dimension with its count.
type BreakdownEntry struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// TopRoute is one (origin, destination) pair with joined click-out stats.
// Conversion is a one-decimal percentage.
type TopRoute struct {
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Searches    int64   `json:"searches"`
	Clickouts   int64   `json:"clickouts"`
	AvgPrice    float64 `json:"avgPrice"`
	Conversion  float64 `json:"conversion"`
}

// TrendingRoute carries week-over-week growth for one route. Growth is
// 100 when the prior week had no events and this week has at least one.
type TrendingRoute struct {
	Origin       string  `json:"origin"`
	Destination  string  `json:"destination"`
	ThisWeek     int64   `json:"thisWeek"`
	LastWeek     int64   `json:"lastWeek"`
	GrowthPct    float64 `json:"growthPct"`
}

// EngagementPoint is one bucket of the engagement series.
type EngagementPoint struct {
	Start     time.Time `json:"start"`
	Searches  int64     `json:"searches"`
	Sessions  int64     `json:"sessions"`
	Clickouts int64     `json:"clickouts"`
	CTR       float64   `json:"ctr"`
}

// GeoEntry is one country or region rollup slot.
type GeoEntry struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// MonthlyPoint is one calendar-month slot of the monthly trend series.
type MonthlyPoint struct {
	Month     string  `json:"month"`
	Searches  int64   `json:"searches"`
	Clickouts int64   `json:"clickouts"`
	AvgPrice  float64 `json:"avgPrice"`
	MinPrice  float64 `json:"minPrice"`
	MaxPrice  float64 `json:"maxPrice"`
}

// AnalyticsFilter narrows aggregation queries. Zero values mean
// "no restriction" except Limit, which callers default per endpoint.
type AnalyticsFilter struct {
	Range       string
	Origin      string
	Destination string
	CountryCode string
	Limit       int
}

// Supported range keywords for reporting endpoints.
const (
	RangeLast24h = "last24h"
	Range7d      = "7d"
	Range30d     = "30d"
)
