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

	"github.com/google/uuid"

	"github.com/farescope/farescope/internal/models"
)

// CreatePage inserts a CMS page. Slug collisions surface as an insert
// error from the unique constraint.
func (db *DB) CreatePage(ctx context.Context, req *models.PageRequest) (*models.CMSPage, error) {
	now := time.Now().UTC()
	page := &models.CMSPage{
		ID:        uuid.NewString(),
		Slug:      req.Slug,
		Title:     req.Title,
		Content:   req.Content,
		Status:    req.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := db.conn.ExecContext(ctx,
		`INSERT INTO cms_pages (id, slug, title, content, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		page.ID, page.Slug, page.Title, page.Content, page.Status, page.CreatedAt, page.UpdatedAt); err != nil {
		return nil, fmt.Errorf("inserting page: %w", err)
	}
	return page, nil
}

// GetPageBySlug fetches one page. When publishedOnly is set, draft pages
// are reported as not found.
func (db *DB) GetPageBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.CMSPage, error) {
	query := `SELECT id, slug, title, content, status, created_at, updated_at FROM cms_pages WHERE slug = ?`
	args := []interface{}{slug}
	if publishedOnly {
		query += ` AND status = ?`
		args = append(args, models.PageStatusPublished)
	}

	var p models.CMSPage
	err := db.conn.QueryRowContext(ctx, query, args...).
		Scan(&p.ID, &p.Slug, &p.Title, &p.Content, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning page: %w", err)
	}
	return &p, nil
}

// ListPages returns pages ordered by slug, optionally filtered by status.
func (db *DB) ListPages(ctx context.Context, status string) ([]models.CMSPage, error) {
	query := `SELECT id, slug, title, content, status, created_at, updated_at FROM cms_pages`
	var args []interface{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY slug`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}
	defer rows.Close()

	var pages []models.CMSPage
	for rows.Next() {
		var p models.CMSPage
		if err := rows.Scan(&p.ID, &p.Slug, &p.Title, &p.Content, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning page: %w", err)
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// UpdatePage replaces the mutable fields of the page with the given slug.
func (db *DB) UpdatePage(ctx context.Context, slug string, req *models.PageRequest) (*models.CMSPage, error) {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE cms_pages SET slug = ?, title = ?, content = ?, status = ?, updated_at = ? WHERE slug = ?`,
		req.Slug, req.Title, req.Content, req.Status, time.Now().UTC(), slug)
	if err != nil {
		return nil, fmt.Errorf("updating page: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}
	return db.GetPageBySlug(ctx, req.Slug, false)
}

// DeletePage removes the page with the given slug.
func (db *DB) DeletePage(ctx context.Context, slug string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM cms_pages WHERE slug = ?`, slug)
	if err != nil {
		return fmt.Errorf("deleting page: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
