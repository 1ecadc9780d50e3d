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

// ErrNotFound is returned by lookups that matched no row.
var ErrNotFound = errors.New("not found")

// CreateUser inserts a new account and returns it.
func (db *DB) CreateUser(ctx context.Context, username, email, passwordHash string, role models.Role) (*models.User, error) {
	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	stmt, err := db.prepared(ctx, `INSERT INTO users
		(id, username, email, password_hash, role, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	if _, err := stmt.ExecContext(ctx, user.ID, user.Username, user.Email,
		user.PasswordHash, string(user.Role), user.Active, user.CreatedAt, user.UpdatedAt); err != nil {
		return nil, fmt.Errorf("inserting user: %w", err)
	}
	return user, nil
}

// GetUserByUsername fetches one account by its unique username.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return db.scanUser(db.conn.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, role, active, created_at, updated_at
		 FROM users WHERE username = ?`, username))
}

// GetUserByID fetches one account by id.
func (db *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return db.scanUser(db.conn.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, role, active, created_at, updated_at
		 FROM users WHERE id = ?`, id))
}

func (db *DB) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var role string
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	u.Role = models.Role(role)
	return &u, nil
}

// ListUsers returns a page of accounts ordered by creation time, plus
// the total count for pagination.
func (db *DB) ListUsers(ctx context.Context, limit, offset int) ([]models.User, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var total int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting users: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, username, email, password_hash, role, active, created_at, updated_at
		 FROM users ORDER BY created_at, id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0, limit)
	for rows.Next() {
		var u models.User
		var role string
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &u.Active, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning user: %w", err)
		}
		u.Role = models.Role(role)
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// UpdateUser applies the non-nil fields of req to the account.
func (db *DB) UpdateUser(ctx context.Context, id string, req *models.UpdateUserRequest) (*models.User, error) {
	user, err := db.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Role != nil {
		user.Role = models.Role(*req.Role)
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	user.UpdatedAt = time.Now().UTC()

	if _, err := db.conn.ExecContext(ctx,
		`UPDATE users SET email = ?, role = ?, active = ?, updated_at = ? WHERE id = ?`,
		user.Email, string(user.Role), user.Active, user.UpdatedAt, id); err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}
	return user, nil
}

// DeleteUser removes an account.
func (db *DB) DeleteUser(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// EnsureAdminUser creates the bootstrap admin account if the username is
// absent. Called once at startup with credentials from configuration.
func (db *DB) EnsureAdminUser(ctx context.Context, username, passwordHash string) error {
	_, err := db.GetUserByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	_, err = db.CreateUser(ctx, username, username+"@localhost", passwordHash, models.RoleAdmin)
	return err
}
