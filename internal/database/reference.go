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
	"strings"

	"github.com/farescope/farescope/internal/models"
)

// SeedReferenceData loads airports, cities, countries and airlines.
// Existing rows are replaced so reseeding with updated data is safe.
func (db *DB) SeedReferenceData(ctx context.Context, airports []models.Airport, cities []models.City, countries []models.Country, airlines []models.Airline) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, a := range airports {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO airports (code, name, city, country_code, latitude, longitude) VALUES (?, ?, ?, ?, ?, ?)`,
			a.Code, a.Name, a.City, a.CountryCode, a.Latitude, a.Longitude); err != nil {
			return fmt.Errorf("seeding airport %s: %w", a.Code, err)
		}
	}
	for _, c := range cities {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO cities (code, name, country_code) VALUES (?, ?, ?)`,
			c.Code, c.Name, c.CountryCode); err != nil {
			return fmt.Errorf("seeding city %s: %w", c.Code, err)
		}
	}
	for _, c := range countries {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO countries (code, name, currency, region) VALUES (?, ?, ?, ?)`,
			c.Code, c.Name, c.Currency, c.Region); err != nil {
			return fmt.Errorf("seeding country %s: %w", c.Code, err)
		}
	}
	for _, a := range airlines {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO airlines (code, name) VALUES (?, ?)`,
			a.Code, a.Name); err != nil {
			return fmt.Errorf("seeding airline %s: %w", a.Code, err)
		}
	}
	return tx.Commit()
}

// SearchAirports matches keyword against airport code, name or city,
// case-insensitively. Exact code matches sort first.
func (db *DB) SearchAirports(ctx context.Context, keyword string, limit int) ([]models.Airport, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	upper := strings.ToUpper(keyword)
	pattern := "%" + upper + "%"

	rows, err := db.conn.QueryContext(ctx,
		`SELECT code, name, city, country_code, latitude, longitude FROM airports
		 WHERE code = ? OR UPPER(name) LIKE ? OR UPPER(city) LIKE ?
		 ORDER BY (code = ?) DESC, code LIMIT ?`,
		upper, pattern, pattern, upper, limit)
	if err != nil {
		return nil, fmt.Errorf("searching airports: %w", err)
	}
	defer rows.Close()

	var out []models.Airport
	for rows.Next() {
		var a models.Airport
		if err := rows.Scan(&a.Code, &a.Name, &a.City, &a.CountryCode, &a.Latitude, &a.Longitude); err != nil {
			return nil, fmt.Errorf("scanning airport: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetAirport fetches one airport by IATA code.
func (db *DB) GetAirport(ctx context.Context, code string) (*models.Airport, error) {
	var a models.Airport
	err := db.conn.QueryRowContext(ctx,
		`SELECT code, name, city, country_code, latitude, longitude FROM airports WHERE code = ?`,
		strings.ToUpper(code)).
		Scan(&a.Code, &a.Name, &a.City, &a.CountryCode, &a.Latitude, &a.Longitude)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning airport: %w", err)
	}
	return &a, nil
}

// ListAirlines returns all carriers ordered by code.
func (db *DB) ListAirlines(ctx context.Context) ([]models.Airline, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT code, name FROM airlines ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("listing airlines: %w", err)
	}
	defer rows.Close()

	var out []models.Airline
	for rows.Next() {
		var a models.Airline
		if err := rows.Scan(&a.Code, &a.Name); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetCountry fetches one country by ISO code.
func (db *DB) GetCountry(ctx context.Context, code string) (*models.Country, error) {
	var c models.Country
	err := db.conn.QueryRowContext(ctx,
		`SELECT code, name, currency, region FROM countries WHERE code = ?`, strings.ToUpper(code)).
		Scan(&c.Code, &c.Name, &c.Currency, &c.Region)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning country: %w", err)
	}
	return &c, nil
}
