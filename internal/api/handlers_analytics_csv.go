// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package api

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/farescope/farescope/internal/logging"
	"github.com/farescope/farescope/internal/models"
)

// reportFormat validates ?format= on reporting endpoints, defaulting to
// json. A reply of false means the error is written.
func reportFormat(w http.ResponseWriter, r *http.Request) (string, bool) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	if format != "csv" && format != "json" {
		NewResponseWriter(w, r).BadRequest("format must be csv or json")
		return "", false
	}
	return format, true
}

// writeReportCSV renders an aggregation result as a CSV download.
// records[0] is the header row; the filename is fixed per endpoint.
func writeReportCSV(w http.ResponseWriter, filename string, records [][]string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)

	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		logging.Error().Err(err).Str("filename", filename).Msg("Failed to write CSV report")
	}
}

func formatCount(v int64) string { return strconv.FormatInt(v, 10) }

// formatRate uses the shortest decimal representation so CSV cells carry
// the same values the JSON encoder emits.
func formatRate(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func dashboardCSV(m *models.DashboardMetrics) [][]string {
	records := [][]string{{
		"window", "total_searches", "total_clickouts", "unique_sessions",
		"clickout_rate", "avg_clickout_price", "top_origin", "top_destination",
	}}
	for _, row := range []struct {
		window  string
		metrics *models.WindowMetrics
	}{
		{"last24h", &m.Last24h},
		{"prev24h", &m.Prev24h},
	} {
		records = append(records, []string{
			row.window,
			formatCount(row.metrics.TotalSearches),
			formatCount(row.metrics.TotalClickouts),
			formatCount(row.metrics.UniqueSessions),
			formatRate(row.metrics.ClickoutRate),
			formatRate(row.metrics.AvgClickoutUSD),
			row.metrics.TopOrigin,
			row.metrics.TopDestination,
		})
	}
	return records
}

func hourlyCSV(series []models.HourlyBucket) [][]string {
	records := [][]string{{"start", "searches", "clickouts"}}
	for i := range series {
		b := &series[i]
		records = append(records, []string{
			b.Start.Format(time.RFC3339), formatCount(b.Searches), formatCount(b.Clickouts),
		})
	}
	return records
}

func breakdownCSV(entries []models.BreakdownEntry) [][]string {
	records := [][]string{{"value", "count"}}
	for _, e := range entries {
		records = append(records, []string{e.Value, formatCount(e.Count)})
	}
	return records
}

func topRoutesCSV(routes []models.TopRoute) [][]string {
	records := [][]string{{"origin", "destination", "searches", "clickouts", "avg_price", "conversion"}}
	for i := range routes {
		rt := &routes[i]
		records = append(records, []string{
			rt.Origin, rt.Destination,
			formatCount(rt.Searches), formatCount(rt.Clickouts),
			formatRate(rt.AvgPrice), formatRate(rt.Conversion),
		})
	}
	return records
}

func trendingRoutesCSV(routes []models.TrendingRoute) [][]string {
	records := [][]string{{"origin", "destination", "this_week", "last_week", "growth_pct"}}
	for i := range routes {
		rt := &routes[i]
		records = append(records, []string{
			rt.Origin, rt.Destination,
			formatCount(rt.ThisWeek), formatCount(rt.LastWeek), formatRate(rt.GrowthPct),
		})
	}
	return records
}

func engagementCSV(series []models.EngagementPoint) [][]string {
	records := [][]string{{"start", "searches", "sessions", "clickouts", "ctr"}}
	for i := range series {
		p := &series[i]
		records = append(records, []string{
			p.Start.Format(time.RFC3339),
			formatCount(p.Searches), formatCount(p.Sessions), formatCount(p.Clickouts),
			formatRate(p.CTR),
		})
	}
	return records
}

func monthlyCSV(trend []models.MonthlyPoint) [][]string {
	records := [][]string{{"month", "searches", "clickouts", "avg_price", "min_price", "max_price"}}
	for i := range trend {
		p := &trend[i]
		records = append(records, []string{
			p.Month, formatCount(p.Searches), formatCount(p.Clickouts),
			formatRate(p.AvgPrice), formatRate(p.MinPrice), formatRate(p.MaxPrice),
		})
	}
	return records
}

func geoCSV(entries []models.GeoEntry) [][]string {
	records := [][]string{{"key", "count"}}
	for _, e := range entries {
		records = append(records, []string{e.Key, formatCount(e.Count)})
	}
	return records
}
