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

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/farescope/farescope/internal/models"
)

// CreateCampaign stores a draft campaign. Recipients are kept as a JSON
// array in one column; campaigns are small and never queried by member.
func (db *DB) CreateCampaign(ctx context.Context, req *models.CampaignRequest) (*models.EmailCampaign, error) {
	recipients, err := json.Marshal(req.Recipients)
	if err != nil {
		return nil, fmt.Errorf("encoding recipients: %w", err)
	}

	now := time.Now().UTC()
	c := &models.EmailCampaign{
		ID:         uuid.NewString(),
		Subject:    req.Subject,
		Body:       req.Body,
		Recipients: req.Recipients,
		Status:     models.CampaignStatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := db.conn.ExecContext(ctx,
		`INSERT INTO email_campaigns (id, subject, body, recipients, status, sent_count, fail_count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, 0, 0, ?, ?)`,
		c.ID, c.Subject, c.Body, string(recipients), c.Status, c.CreatedAt, c.UpdatedAt); err != nil {
		return nil, fmt.Errorf("inserting campaign: %w", err)
	}
	return c, nil
}

// GetCampaign fetches one campaign by id.
func (db *DB) GetCampaign(ctx context.Context, id string) (*models.EmailCampaign, error) {
	var c models.EmailCampaign
	var recipients string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, subject, body, recipients, status, sent_count, fail_count, created_at, updated_at
		 FROM email_campaigns WHERE id = ?`, id).
		Scan(&c.ID, &c.Subject, &c.Body, &recipients, &c.Status, &c.SentCount, &c.FailCount, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning campaign: %w", err)
	}
	if err := json.Unmarshal([]byte(recipients), &c.Recipients); err != nil {
		return nil, fmt.Errorf("decoding recipients: %w", err)
	}
	return &c, nil
}

// ListCampaigns returns campaigns newest first.
func (db *DB) ListCampaigns(ctx context.Context) ([]models.EmailCampaign, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, subject, body, recipients, status, sent_count, fail_count, created_at, updated_at
		 FROM email_campaigns ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing campaigns: %w", err)
	}
	defer rows.Close()

	var out []models.EmailCampaign
	for rows.Next() {
		var c models.EmailCampaign
		var recipients string
		if err := rows.Scan(&c.ID, &c.Subject, &c.Body, &recipients, &c.Status, &c.SentCount, &c.FailCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning campaign: %w", err)
		}
		if err := json.Unmarshal([]byte(recipients), &c.Recipients); err != nil {
			return nil, fmt.Errorf("decoding recipients: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateCampaignStatus records the outcome of a send pass.
func (db *DB) UpdateCampaignStatus(ctx context.Context, id, status string, sent, failed int) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE email_campaigns SET status = ?, sent_count = ?, fail_count = ?, updated_at = ? WHERE id = ?`,
		status, sent, failed, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating campaign: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
