// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package database

// tableCreationQueries returns the idempotent schema. Event tables are
// append-only: nothing in the codebase updates or deletes their rows.
func tableCreationQueries() []string {
	return []string{
		// ---------------------------------------------------------
		// Accounts and authorization
		// ---------------------------------------------------------
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR PRIMARY KEY,
			username VARCHAR NOT NULL UNIQUE,
			email VARCHAR NOT NULL,
			password_hash VARCHAR NOT NULL,
			role VARCHAR NOT NULL,
			active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		// ---------------------------------------------------------
		// CMS content
		// ---------------------------------------------------------
		`CREATE TABLE IF NOT EXISTS cms_pages (
			id VARCHAR PRIMARY KEY,
			slug VARCHAR NOT NULL UNIQUE,
			title VARCHAR NOT NULL,
			content VARCHAR NOT NULL,
			status VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		// ---------------------------------------------------------
		// Notifications and email campaigns
		// ---------------------------------------------------------
		`CREATE TABLE IF NOT EXISTS notifications (
			id VARCHAR PRIMARY KEY,
			user_id VARCHAR NOT NULL,
			type VARCHAR NOT NULL,
			title VARCHAR NOT NULL,
			body VARCHAR NOT NULL,
			read BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS email_campaigns (
			id VARCHAR PRIMARY KEY,
			subject VARCHAR NOT NULL,
			body VARCHAR NOT NULL,
			recipients VARCHAR NOT NULL,
			status VARCHAR NOT NULL,
			sent_count INTEGER NOT NULL DEFAULT 0,
			fail_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		// ---------------------------------------------------------
		// Reference data
		// ---------------------------------------------------------
		`CREATE TABLE IF NOT EXISTS airports (
			code VARCHAR PRIMARY KEY,
			name VARCHAR NOT NULL,
			city VARCHAR NOT NULL,
			country_code VARCHAR NOT NULL,
			latitude DOUBLE NOT NULL DEFAULT 0,
			longitude DOUBLE NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS cities (
			code VARCHAR PRIMARY KEY,
			name VARCHAR NOT NULL,
			country_code VARCHAR NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS countries (
			code VARCHAR PRIMARY KEY,
			name VARCHAR NOT NULL,
			currency VARCHAR NOT NULL DEFAULT '',
			region VARCHAR NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS airlines (
			code VARCHAR PRIMARY KEY,
			name VARCHAR NOT NULL
		)`,

		// ---------------------------------------------------------
		// Append-only analytics event logs
		// ---------------------------------------------------------
		`CREATE TABLE IF NOT EXISTS search_events (
			id UUID PRIMARY KEY,
			timestamp TIMESTAMP NOT NULL,
			origin VARCHAR NOT NULL,
			destination VARCHAR NOT NULL,
			trip_type VARCHAR NOT NULL,
			travel_class VARCHAR NOT NULL DEFAULT '',
			adults INTEGER NOT NULL DEFAULT 0,
			children INTEGER NOT NULL DEFAULT 0,
			device_type VARCHAR NOT NULL DEFAULT '',
			browser VARCHAR NOT NULL DEFAULT '',
			os VARCHAR NOT NULL DEFAULT '',
			masked_ip VARCHAR NOT NULL DEFAULT '',
			country_code VARCHAR NOT NULL DEFAULT '',
			region VARCHAR NOT NULL DEFAULT '',
			session_id VARCHAR NOT NULL,
			referrer VARCHAR NOT NULL DEFAULT '',
			utm_source VARCHAR NOT NULL DEFAULT '',
			utm_medium VARCHAR NOT NULL DEFAULT '',
			utm_campaign VARCHAR NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS clickout_events (
			id UUID PRIMARY KEY,
			timestamp TIMESTAMP NOT NULL,
			origin VARCHAR NOT NULL,
			destination VARCHAR NOT NULL,
			trip_type VARCHAR NOT NULL,
			partner VARCHAR NOT NULL,
			masked_ip VARCHAR NOT NULL DEFAULT '',
			session_id VARCHAR NOT NULL,
			utm_source VARCHAR NOT NULL DEFAULT '',
			utm_medium VARCHAR NOT NULL DEFAULT '',
			utm_campaign VARCHAR NOT NULL DEFAULT '',
			price DOUBLE NOT NULL DEFAULT 0,
			currency VARCHAR NOT NULL DEFAULT '',
			deep_link VARCHAR NOT NULL DEFAULT ''
		)`,

		`CREATE INDEX IF NOT EXISTS idx_search_events_ts ON search_events (timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_search_events_route ON search_events (origin, destination)`,
		`CREATE INDEX IF NOT EXISTS idx_clickout_events_ts ON clickout_events (timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_clickout_events_route ON clickout_events (origin, destination)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications (user_id)`,
	}
}
