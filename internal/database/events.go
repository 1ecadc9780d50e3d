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

// ExportRowCap bounds event reads for the export endpoints.
const ExportRowCap = 10000

// InsertSearchEvent appends one search event. Events are immutable once
// written; there is no update path.
func (db *DB) InsertSearchEvent(ctx context.Context, e *models.SearchEvent) error {
	stmt, err := db.prepared(ctx, `INSERT INTO search_events
		(id, timestamp, origin, destination, trip_type, travel_class, adults, children,
		 device_type, browser, os, masked_ip, country_code, region, session_id,
		 referrer, utm_source, utm_medium, utm_campaign)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	_, err = stmt.ExecContext(ctx,
		e.ID, e.Timestamp.UTC(), e.Origin, e.Destination, e.TripType, e.TravelClass,
		e.Adults, e.Children, e.DeviceType, e.Browser, e.OS, e.MaskedIP,
		e.CountryCode, e.Region, e.SessionID, e.Referrer,
		e.UTMSource, e.UTMMedium, e.UTMCampaign)
	if err != nil {
		return fmt.Errorf("inserting search event: %w", err)
	}
	return nil
}

// InsertClickoutEvent appends one click-out event.
func (db *DB) InsertClickoutEvent(ctx context.Context, e *models.ClickoutEvent) error {
	stmt, err := db.prepared(ctx, `INSERT INTO clickout_events
		(id, timestamp, origin, destination, trip_type, partner, masked_ip, session_id,
		 utm_source, utm_medium, utm_campaign, price, currency, deep_link)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	_, err = stmt.ExecContext(ctx,
		e.ID, e.Timestamp.UTC(), e.Origin, e.Destination, e.TripType, e.Partner,
		e.MaskedIP, e.SessionID, e.UTMSource, e.UTMMedium, e.UTMCampaign,
		e.Price, e.Currency, e.DeepLink)
	if err != nil {
		return fmt.Errorf("inserting clickout event: %w", err)
	}
	return nil
}

// ExportSearchEvents reads search events in a window, newest first,
// capped at ExportRowCap.
func (db *DB) ExportSearchEvents(ctx context.Context, from, to time.Time) ([]models.SearchEvent, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT
		id, timestamp, origin, destination, trip_type, travel_class, adults, children,
		device_type, browser, os, masked_ip, country_code, region, session_id,
		referrer, utm_source, utm_medium, utm_campaign
		FROM search_events WHERE timestamp >= ? AND timestamp < ?
		ORDER BY timestamp DESC LIMIT ?`, from.UTC(), to.UTC(), ExportRowCap)
	if err != nil {
		return nil, fmt.Errorf("exporting search events: %w", err)
	}
	defer rows.Close()

	var out []models.SearchEvent
	for rows.Next() {
		var e models.SearchEvent
		if err := rows.Scan(
			&e.ID, &e.Timestamp, &e.Origin, &e.Destination, &e.TripType, &e.TravelClass,
			&e.Adults, &e.Children, &e.DeviceType, &e.Browser, &e.OS, &e.MaskedIP,
			&e.CountryCode, &e.Region, &e.SessionID, &e.Referrer,
			&e.UTMSource, &e.UTMMedium, &e.UTMCampaign); err != nil {
			return nil, fmt.Errorf("scanning search event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ExportClickoutEvents reads click-out events in a window, newest first,
// capped at ExportRowCap.
func (db *DB) ExportClickoutEvents(ctx context.Context, from, to time.Time) ([]models.ClickoutEvent, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT
		id, timestamp, origin, destination, trip_type, partner, masked_ip, session_id,
		utm_source, utm_medium, utm_campaign, price, currency, deep_link
		FROM clickout_events WHERE timestamp >= ? AND timestamp < ?
		ORDER BY timestamp DESC LIMIT ?`, from.UTC(), to.UTC(), ExportRowCap)
	if err != nil {
		return nil, fmt.Errorf("exporting clickout events: %w", err)
	}
	defer rows.Close()

	var out []models.ClickoutEvent
	for rows.Next() {
		var e models.ClickoutEvent
		if err := rows.Scan(
			&e.ID, &e.Timestamp, &e.Origin, &e.Destination, &e.TripType, &e.Partner,
			&e.MaskedIP, &e.SessionID, &e.UTMSource, &e.UTMMedium, &e.UTMCampaign,
			&e.Price, &e.Currency, &e.DeepLink); err != nil {
			return nil, fmt.Errorf("scanning clickout event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
