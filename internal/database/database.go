// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

// Package database opens the single SQLite connection every subsystem
// (event store, projections, queries) shares, and runs schema migrations
// against it. Spec section 6 fixes one SQLite database per deployment; a
// single shared *sql.DB with one open connection, as the teacher already
// configured, is the whole backend story.
package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/mattn/go-sqlite3"
	"github.com/jmoiron/sqlx"
)

// Open establishes the shared SQLite connection. Matches the teacher's
// single-connection convention: SQLite serializes writers anyway, and a
// single connection avoids SQLITE_BUSY under the append-then-project
// write pattern this engine uses.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// Sqlx wraps db for the repository-style projection and query code, which
// follows the teacher's sqlx usage in internal/features/food_variety.
func Sqlx(db *sql.DB) *sqlx.DB {
	return sqlx.NewDb(db, "sqlite3")
}

// Migrate applies every migration under migrationsPath in order. Safe to
// call on every boot: golang-migrate tracks applied versions in
// migrationsTable and is a no-op once the schema is current.
func Migrate(db *sql.DB, migrationsPath, migrationsTable string) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return fmt.Errorf("init migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("init migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Health pings the database, matching the teacher's readiness-check shape.
func Health(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("database not connected")
	}
	return db.PingContext(ctx)
}
