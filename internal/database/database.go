// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

// Package database provides the embedded DuckDB instance holding both
// the operational tables (users, CMS pages, notifications, campaigns,
// reference data) and the append-only analytics event logs, plus every
// aggregation query the reporting API serves.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/farescope/farescope/internal/config"
	"github.com/farescope/farescope/internal/logging"
)

// DB wraps the DuckDB connection pool and a prepared-statement cache.
type DB struct {
	conn      *sql.DB
	cfg       *config.DatabaseConfig
	stmtMu    sync.RWMutex
	stmtCache map[string]*sql.Stmt
}

// New opens (or creates) the database at cfg.Path and applies the schema.
// The special path ":memory:" opens an in-process instance for tests.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	dsn := cfg.Path
	if dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o750); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		order := "false"
		if cfg.PreserveInsertionOrder {
			order = "true"
		}
		dsn = fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&preserve_insertion_order=%s",
			cfg.Path, cfg.Threads, cfg.MaxMemory, order)
	}

	conn, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{
		conn:      conn,
		cfg:       cfg,
		stmtCache: make(map[string]*sql.Stmt),
	}
	db.configurePool()

	if err := db.initialize(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	logging.Info().Str("path", cfg.Path).Msg("Database initialized")
	return db, nil
}

func (db *DB) configurePool() {
	maxOpen := db.cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 8
	}
	maxIdle := db.cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 2
	}
	db.conn.SetMaxOpenConns(maxOpen)
	db.conn.SetMaxIdleConns(maxIdle)
	db.conn.SetConnMaxLifetime(time.Hour)
}

func (db *DB) initialize() error {
	for _, query := range tableCreationQueries() {
		if _, err := db.conn.Exec(query); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// Conn exposes the raw pool for callers composing their own queries.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Ping verifies the connection with the given context.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close flushes and closes the database. CHECKPOINT forces the WAL into
// the main file so a clean shutdown leaves nothing to replay.
func (db *DB) Close() error {
	db.stmtMu.Lock()
	for query, stmt := range db.stmtCache {
		_ = stmt.Close()
		delete(db.stmtCache, query)
	}
	db.stmtMu.Unlock()

	if _, err := db.conn.Exec("CHECKPOINT"); err != nil {
		logging.Warn().Err(err).Msg("Checkpoint on close failed")
	}
	return db.conn.Close()
}

// defaultQueryTimeout bounds queries whose caller supplied no deadline.
const defaultQueryTimeout = 30 * time.Second

func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// prepared returns a cached prepared statement for query.
func (db *DB) prepared(ctx context.Context, query string) (*sql.Stmt, error) {
	db.stmtMu.RLock()
	stmt, ok := db.stmtCache[query]
	db.stmtMu.RUnlock()
	if ok {
		return stmt, nil
	}

	db.stmtMu.Lock()
	defer db.stmtMu.Unlock()
	if stmt, ok = db.stmtCache[query]; ok {
		return stmt, nil
	}

	stmt, err := db.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("preparing statement: %w", err)
	}
	db.stmtCache[query] = stmt
	return stmt, nil
}
