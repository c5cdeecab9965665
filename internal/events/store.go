// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package events

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rghsoftware/mealkit/internal/domainerr"
	"github.com/rghsoftware/mealkit/pkg/logger"
)

// Store is the append-only event log. One aggregate stream per
// AggregateID; Append enforces optimistic concurrency on expectedVersion
// the same way the teacher's SQLite layer serializes writes through a
// single connection (SetMaxOpenConns(1)).
type Store struct {
	db *sql.DB
}

// NewStore wraps an already-opened *sql.DB (see internal/database/sqlite
// for how the teacher opens it).
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create appends the first event of a new aggregate stream. It fails with
// domainerr.AggregateExists if the stream is non-empty.
func (s *Store) Create(ctx context.Context, aggType AggregateType, aggregateID, eventType string, payload any) (Event, error) {
	return s.appendAt(ctx, aggType, aggregateID, 1, eventType, payload)
}

// Append appends the next event to an existing stream, requiring the
// stream's current length to equal expectedVersion (the version of the
// last event the caller observed).
func (s *Store) Append(ctx context.Context, aggType AggregateType, aggregateID string, expectedVersion int, eventType string, payload any) (Event, error) {
	return s.appendAt(ctx, aggType, aggregateID, expectedVersion+1, eventType, payload)
}

func (s *Store) appendAt(ctx context.Context, aggType AggregateType, aggregateID string, version int, eventType string, payload any) (Event, error) {
	log := logger.WithAggregate(aggregateID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Event{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current int
	row := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM events WHERE aggregate_id = ?`, aggregateID)
	if err := row.Scan(&current); err != nil {
		return Event{}, fmt.Errorf("read current version: %w", err)
	}

	if version == 1 && current != 0 {
		return Event{}, &domainerr.AggregateExists{AggregateID: aggregateID}
	}
	if version != 1 && current != version-1 {
		return Event{}, &domainerr.VersionConflict{
			AggregateID:     aggregateID,
			ExpectedVersion: version - 1,
			ActualVersion:   current,
		}
	}

	ev, err := NewEvent(aggType, aggregateID, version, eventType, payload)
	if err != nil {
		return Event{}, fmt.Errorf("build event: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO events (id, aggregate_type, aggregate_id, version, event_type, payload, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.AggregateType, ev.AggregateID, ev.Version, ev.EventType, []byte(ev.Payload), ev.OccurredAt,
	)
	if err != nil {
		return Event{}, fmt.Errorf("insert event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Event{}, fmt.Errorf("commit: %w", err)
	}

	log.Debug().Str("event_type", eventType).Int("version", version).Msg("event appended")
	return ev, nil
}

// Load returns the full ordered stream for an aggregate.
func (s *Store) Load(ctx context.Context, aggregateID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, aggregate_type, aggregate_id, version, event_type, payload, occurred_at
		FROM events WHERE aggregate_id = ? ORDER BY version ASC`, aggregateID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// LoadSince returns the ordered stream for an aggregate starting after
// afterVersion (afterVersion=0 returns the full stream).
func (s *Store) LoadSince(ctx context.Context, aggregateID string, afterVersion int) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, aggregate_type, aggregate_id, version, event_type, payload, occurred_at
		FROM events WHERE aggregate_id = ? AND version > ? ORDER BY version ASC`, aggregateID, afterVersion)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// LoadAllSince returns events across all streams with a global sequence
// greater than afterSeq, ordered by sequence. Used by subscriptions that
// project across aggregates in commit order.
func (s *Store) LoadAllSince(ctx context.Context, afterSeq, limit int) ([]Event, int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, id, aggregate_type, aggregate_id, version, event_type, payload, occurred_at
		FROM events WHERE seq > ? ORDER BY seq ASC LIMIT ?`, afterSeq, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []Event
	lastSeq := afterSeq
	for rows.Next() {
		var ev Event
		var seq int
		var payload []byte
		if err := rows.Scan(&seq, &ev.ID, &ev.AggregateType, &ev.AggregateID, &ev.Version, &ev.EventType, &payload, &ev.OccurredAt); err != nil {
			return nil, 0, fmt.Errorf("scan event: %w", err)
		}
		ev.Payload = payload
		out = append(out, ev)
		lastSeq = seq
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate events: %w", err)
	}
	return out, lastSeq, nil
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var out []Event
	for rows.Next() {
		var ev Event
		var payload []byte
		if err := rows.Scan(&ev.ID, &ev.AggregateType, &ev.AggregateID, &ev.Version, &ev.EventType, &payload, &ev.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Payload = payload
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}
