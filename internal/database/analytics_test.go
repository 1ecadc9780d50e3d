// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farescope/farescope/internal/config"
	"github.com/farescope/farescope/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(&config.DatabaseConfig{Path: ":memory:", Threads: 1, MaxMemory: "256MB"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedSearch(t *testing.T, db *DB, ts time.Time, origin, destination string, mutate ...func(*models.SearchEvent)) {
	t.Helper()
	e := &models.SearchEvent{
		ID:          uuid.NewString(),
		Timestamp:   ts,
		Origin:      origin,
		Destination: destination,
		TripType:    models.TripRoundTrip,
		SessionID:   uuid.NewString(),
	}
	for _, m := range mutate {
		m(e)
	}
	require.NoError(t, db.InsertSearchEvent(context.Background(), e))
}

func seedClickout(t *testing.T, db *DB, ts time.Time, origin, destination string, price float64) {
	t.Helper()
	e := &models.ClickoutEvent{
		ID:          uuid.NewString(),
		Timestamp:   ts,
		Origin:      origin,
		Destination: destination,
		TripType:    models.TripRoundTrip,
		Partner:     "partner-a",
		SessionID:   uuid.NewString(),
		Price:       price,
		Currency:    "USD",
	}
	require.NoError(t, db.InsertClickoutEvent(context.Background(), e))
}

var testNow = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func TestDashboardMetricsWindows(t *testing.T) {
	db := newTestDB(t)

	// 10 searches in the last 24h, 3 in the preceding 24h.
	for i := 0; i < 10; i++ {
		seedSearch(t, db, testNow.Add(-time.Duration(i+1)*time.Hour), "LAX", "JFK")
	}
	for i := 0; i < 3; i++ {
		seedSearch(t, db, testNow.Add(-25*time.Hour).Add(-time.Duration(i)*time.Hour), "LAX", "JFK")
	}

	m, err := db.GetDashboardMetrics(context.Background(), testNow)
	require.NoError(t, err)

	assert.Equal(t, int64(10), m.Last24h.TotalSearches)
	assert.Equal(t, int64(3), m.Prev24h.TotalSearches)
	assert.Equal(t, "LAX", m.Last24h.TopOrigin)
	assert.Equal(t, "JFK", m.Last24h.TopDestination)
}

func TestDashboardMetricsEmptyWindow(t *testing.T) {
	db := newTestDB(t)

	m, err := db.GetDashboardMetrics(context.Background(), testNow)
	require.NoError(t, err)

	assert.Zero(t, m.Last24h.TotalSearches)
	assert.Zero(t, m.Last24h.ClickoutRate)
	assert.Zero(t, m.Prev24h.ClickoutRate)
	assert.False(t, m.Last24h.ClickoutRate != m.Last24h.ClickoutRate, "rate must never be NaN")
}

func TestClickoutRateDefinedWithZeroSearches(t *testing.T) {
	db := newTestDB(t)
	seedClickout(t, db, testNow.Add(-time.Hour), "LAX", "JFK", 420)

	m, err := db.GetDashboardMetrics(context.Background(), testNow)
	require.NoError(t, err)

	assert.Equal(t, int64(1), m.Last24h.TotalClickouts)
	assert.Zero(t, m.Last24h.ClickoutRate)
}

func TestTopRoutesConversionFixture(t *testing.T) {
	db := newTestDB(t)

	// 37 searches, 9 clickouts -> round(9/37*1000)/10 = 24.3
	for i := 0; i < 37; i++ {
		seedSearch(t, db, testNow.Add(-time.Duration(i%20+1)*time.Hour/2), "LAX", "JFK")
	}
	for i := 0; i < 9; i++ {
		seedClickout(t, db, testNow.Add(-time.Duration(i+1)*time.Hour), "LAX", "JFK", 350+float64(i))
	}

	routes, err := db.GetTopRoutes(context.Background(), models.RangeLast24h, 10, testNow)
	require.NoError(t, err)
	require.Len(t, routes, 1)

	assert.Equal(t, int64(37), routes[0].Searches)
	assert.Equal(t, int64(9), routes[0].Clickouts)
	assert.InDelta(t, 24.3, routes[0].Conversion, 1e-9)
}

func TestTopRoutesWindowExcludesPrior(t *testing.T) {
	db := newTestDB(t)

	for i := 0; i < 10; i++ {
		seedSearch(t, db, testNow.Add(-time.Duration(i+1)*time.Hour), "LAX", "JFK")
	}
	for i := 0; i < 3; i++ {
		seedSearch(t, db, testNow.Add(-30*time.Hour), "LAX", "JFK")
	}

	routes, err := db.GetTopRoutes(context.Background(), models.RangeLast24h, 10, testNow)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, int64(10), routes[0].Searches)
	assert.Zero(t, routes[0].Clickouts)
	assert.Zero(t, routes[0].Conversion)
}

func TestConversionPct(t *testing.T) {
	assert.InDelta(t, 24.3, conversionPct(9, 37), 1e-9)
	assert.Zero(t, conversionPct(5, 0))
	assert.InDelta(t, 100.0, conversionPct(10, 10), 1e-9)
	assert.InDelta(t, 33.3, conversionPct(1, 3), 1e-9)
}

func TestHourlyBucketsExhaustiveAndDisjoint(t *testing.T) {
	db := newTestDB(t)

	// Boundary cases: exactly on a bucket edge, just inside the window,
	// just outside both ends.
	start := testNow.Add(-24 * time.Hour)
	seedSearch(t, db, start, "LAX", "JFK")                       // first bucket, inclusive edge
	seedSearch(t, db, start.Add(time.Hour-time.Second), "LAX", "JFK") // still first bucket
	seedSearch(t, db, start.Add(time.Hour), "LAX", "JFK")        // second bucket edge
	seedSearch(t, db, testNow.Add(-time.Second), "LAX", "JFK")   // last bucket
	seedSearch(t, db, start.Add(-time.Second), "LAX", "JFK")     // before window
	seedSearch(t, db, testNow, "LAX", "JFK")                     // at now, excluded

	buckets, err := db.GetHourlySeries(context.Background(), testNow)
	require.NoError(t, err)
	require.Len(t, buckets, 24)

	var total int64
	for _, b := range buckets {
		total += b.Searches
	}
	assert.Equal(t, int64(4), total)
	assert.Equal(t, int64(2), buckets[0].Searches)
	assert.Equal(t, int64(1), buckets[1].Searches)
	assert.Equal(t, int64(1), buckets[23].Searches)
}

func TestBreakdownTopNCap(t *testing.T) {
	db := newTestDB(t)

	for i := 0; i < 10; i++ {
		device := fmt.Sprintf("device-%02d", i)
		// device-00 gets 11 events, device-01 gets 10, ...
		for j := 0; j <= 10-i; j++ {
			seedSearch(t, db, testNow.Add(-time.Hour), "LAX", "JFK", func(e *models.SearchEvent) {
				e.DeviceType = device
			})
		}
	}

	entries, err := db.GetBreakdown(context.Background(), "device", models.RangeLast24h, testNow)
	require.NoError(t, err)
	require.Len(t, entries, 8)
	assert.Equal(t, "device-00", entries[0].Value)
	assert.Equal(t, int64(11), entries[0].Count)
	for i := 1; i < len(entries); i++ {
		assert.GreaterOrEqual(t, entries[i-1].Count, entries[i].Count)
	}
}

func TestBreakdownUnknownDimension(t *testing.T) {
	db := newTestDB(t)
	_, err := db.GetBreakdown(context.Background(), "shoe_size", models.RangeLast24h, testNow)
	assert.Error(t, err)
}

func TestWeekGrowthPct(t *testing.T) {
	assert.InDelta(t, 50.0, weekGrowthPct(15, 10), 1e-9)
	assert.InDelta(t, -50.0, weekGrowthPct(5, 10), 1e-9)
	assert.InDelta(t, 100.0, weekGrowthPct(1, 0), 1e-9)
	assert.InDelta(t, 100.0, weekGrowthPct(7, 0), 1e-9)
	assert.Zero(t, weekGrowthPct(0, 0))
}

func TestTrendingRoutes(t *testing.T) {
	db := newTestDB(t)

	// Established route: 10 last week, 15 this week -> +50%.
	for i := 0; i < 15; i++ {
		seedSearch(t, db, testNow.Add(-48*time.Hour), "SFO", "ORD")
	}
	for i := 0; i < 10; i++ {
		seedSearch(t, db, testNow.Add(-10*24*time.Hour), "SFO", "ORD")
	}
	// New route this week -> growth pinned at 100.
	for i := 0; i < 3; i++ {
		seedSearch(t, db, testNow.Add(-24*time.Hour), "LAX", "JFK")
	}

	routes, err := db.GetTrendingRoutes(context.Background(), 10, testNow)
	require.NoError(t, err)
	require.Len(t, routes, 2)

	assert.Equal(t, "LAX", routes[0].Origin)
	assert.InDelta(t, 100.0, routes[0].GrowthPct, 1e-9)
	assert.Equal(t, "SFO", routes[1].Origin)
	assert.InDelta(t, 50.0, routes[1].GrowthPct, 1e-9)
}

func TestEngagementSeriesCTR(t *testing.T) {
	db := newTestDB(t)

	seedSearch(t, db, testNow.Add(-90*time.Minute), "LAX", "JFK")
	seedSearch(t, db, testNow.Add(-95*time.Minute), "LAX", "JFK")
	seedClickout(t, db, testNow.Add(-92*time.Minute), "LAX", "JFK", 300)
	// A clickout with no searches in its bucket must not break CTR.
	seedClickout(t, db, testNow.Add(-5*time.Hour), "SFO", "ORD", 250)

	points, err := db.GetEngagementSeries(context.Background(), models.RangeLast24h, testNow)
	require.NoError(t, err)
	require.Len(t, points, 24)

	for _, p := range points {
		assert.False(t, p.CTR != p.CTR, "CTR must never be NaN")
		if p.Searches == 2 {
			assert.InDelta(t, 50.0, p.CTR, 1e-9)
		}
		if p.Searches == 0 {
			assert.Zero(t, p.CTR)
		}
	}
}

func TestEngagementSeriesDailyBuckets(t *testing.T) {
	db := newTestDB(t)
	seedSearch(t, db, testNow.Add(-3*24*time.Hour), "LAX", "JFK")

	points, err := db.GetEngagementSeries(context.Background(), models.Range7d, testNow)
	require.NoError(t, err)
	require.Len(t, points, 7)

	var total int64
	for _, p := range points {
		total += p.Searches
	}
	assert.Equal(t, int64(1), total)
}

func TestMonthlyTrend(t *testing.T) {
	db := newTestDB(t)

	seedSearch(t, db, testNow.Add(-time.Hour), "LAX", "JFK")
	seedClickout(t, db, testNow.AddDate(0, -1, 0), "LAX", "JFK", 200)
	seedClickout(t, db, testNow.AddDate(0, -1, 0), "LAX", "JFK", 400)

	points, err := db.GetMonthlyTrend(context.Background(), 12, testNow)
	require.NoError(t, err)
	require.Len(t, points, 12)

	last := points[11]
	assert.Equal(t, "2026-08", last.Month)
	assert.Equal(t, int64(1), last.Searches)

	prior := points[10]
	assert.Equal(t, "2026-07", prior.Month)
	assert.Equal(t, int64(2), prior.Clickouts)
	assert.InDelta(t, 300.0, prior.AvgPrice, 1e-9)
	assert.InDelta(t, 200.0, prior.MinPrice, 1e-9)
	assert.InDelta(t, 400.0, prior.MaxPrice, 1e-9)
}

func TestMonthlyTrendClampsLength(t *testing.T) {
	db := newTestDB(t)

	points, err := db.GetMonthlyTrend(context.Background(), 0, testNow)
	require.NoError(t, err)
	assert.Len(t, points, 12)

	points, err = db.GetMonthlyTrend(context.Background(), 99, testNow)
	require.NoError(t, err)
	assert.Len(t, points, 12)

	points, err = db.GetMonthlyTrend(context.Background(), 3, testNow)
	require.NoError(t, err)
	assert.Len(t, points, 3)
}

func TestGeoRollups(t *testing.T) {
	db := newTestDB(t)

	countries := map[string]int{"US": 5, "DE": 3, "JP": 2, "XX": 1, "": 2}
	for code, n := range countries {
		for i := 0; i < n; i++ {
			seedSearch(t, db, testNow.Add(-time.Hour), "LAX", "JFK", func(e *models.SearchEvent) {
				e.CountryCode = code
			})
		}
	}

	byCountry, err := db.GetCountryRollup(context.Background(), models.RangeLast24h, 0, testNow)
	require.NoError(t, err)
	require.Len(t, byCountry, 5)
	assert.Equal(t, models.GeoEntry{Key: "US", Count: 5}, byCountry[0])

	// Top-2 plus collapsed tail.
	top, err := db.GetCountryRollup(context.Background(), models.RangeLast24h, 2, testNow)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "Other", top[2].Key)
	assert.Equal(t, int64(5), top[2].Count)

	byRegion, err := db.GetRegionRollup(context.Background(), models.RangeLast24h, testNow)
	require.NoError(t, err)

	regions := make(map[string]int64, len(byRegion))
	for _, e := range byRegion {
		regions[e.Key] = e.Count
	}
	assert.Equal(t, int64(5), regions["North America"])
	assert.Equal(t, int64(3), regions["Europe"])
	assert.Equal(t, int64(2), regions["Asia"])
	assert.Equal(t, int64(1), regions["Other"])
	assert.Equal(t, int64(2), regions["Unknown"])
}

func TestExportRowCapApplied(t *testing.T) {
	db := newTestDB(t)
	seedSearch(t, db, testNow.Add(-time.Hour), "LAX", "JFK")

	events, err := db.ExportSearchEvents(context.Background(), testNow.Add(-24*time.Hour), testNow)
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, "LAX", events[0].Origin)
}
