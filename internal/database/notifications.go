// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/farescope/farescope/internal/models"
)

// CreateNotification persists one notification row. Realtime delivery is
// the caller's concern; the row exists whether or not the user is online.
func (db *DB) CreateNotification(ctx context.Context, userID, ntype, title, body string) (*models.Notification, error) {
	n := &models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      ntype,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}

	stmt, err := db.prepared(ctx, `INSERT INTO notifications
		(id, user_id, type, title, body, read, created_at)
		VALUES (?, ?, ?, ?, ?, false, ?)`)
	if err != nil {
		return nil, err
	}
	if _, err := stmt.ExecContext(ctx, n.ID, n.UserID, n.Type, n.Title, n.Body, n.CreatedAt); err != nil {
		return nil, fmt.Errorf("inserting notification: %w", err)
	}
	return n, nil
}

// ListNotifications returns the newest notifications for one user.
func (db *DB) ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `SELECT id, user_id, type, title, body, read, created_at
		FROM notifications WHERE user_id = ?`
	args := []interface{}{userID}
	if unreadOnly {
		query += ` AND read = false`
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	out := make([]models.Notification, 0, limit)
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// UnreadCount returns the number of unread notifications for userID.
func (db *DB) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read = false`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting unread: %w", err)
	}
	return count, nil
}

// MarkRead marks one of the user's notifications as read.
func (db *DB) MarkRead(ctx context.Context, userID, notificationID string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE notifications SET read = true WHERE id = ? AND user_id = ?`, notificationID, userID)
	if err != nil {
		return fmt.Errorf("marking read: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read and
// returns how many rows changed.
func (db *DB) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE notifications SET read = true WHERE user_id = ? AND read = false`, userID)
	if err != nil {
		return 0, fmt.Errorf("marking all read: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// ListUserIDs returns every account id, used by broadcast-to-all.
func (db *DB) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id FROM users WHERE active = true`)
	if err != nil {
		return nil, fmt.Errorf("listing user ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
