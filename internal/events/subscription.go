// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package events

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rghsoftware/mealkit/pkg/logger"
)

// Handler projects a single event into a read model. Handlers must be
// idempotent: at-least-once delivery means the same event can arrive
// twice after a crash between projection and bookmark advance.
type Handler func(ctx context.Context, ev Event) error

// Subscription polls the global event sequence and dispatches each event
// to Handler in commit order, persisting its position after every batch.
// Modeled on the teacher's Consumer/Processor split in the pack's worker
// implementation: a named subscription owns its own stopChan-style
// lifecycle and its own durable bookmark.
type Subscription struct {
	name     string
	store    *Store
	db       *sql.DB
	handler  Handler
	interval time.Duration
	batch    int
}

// NewSubscription builds a subscription that will process events through
// handler, polling at interval and pulling up to batch events per poll.
func NewSubscription(name string, store *Store, db *sql.DB, handler Handler, interval time.Duration, batch int) *Subscription {
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	if batch <= 0 {
		batch = 100
	}
	return &Subscription{name: name, store: store, db: db, handler: handler, interval: interval, batch: batch}
}

// Run blocks, dispatching events until ctx is canceled. Intended to be run
// inside an errgroup alongside the HTTP server, as the teacher's main.go
// runs server ListenAndServe and shutdown signaling concurrently.
func (s *Subscription) Run(ctx context.Context) error {
	log := logger.WithSubscription(s.name)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("subscription stopped")
			return nil
		case <-ticker.C:
			if err := s.pollOnce(ctx); err != nil {
				log.Error().Err(err).Msg("subscription poll failed")
			}
		}
	}
}

func (s *Subscription) pollOnce(ctx context.Context) error {
	bookmark, err := s.loadBookmark(ctx)
	if err != nil {
		return fmt.Errorf("load bookmark: %w", err)
	}

	evs, lastSeq, err := s.store.LoadAllSince(ctx, bookmark, s.batch)
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}
	if len(evs) == 0 {
		return nil
	}

	for _, ev := range evs {
		if err := s.handler(ctx, ev); err != nil {
			return fmt.Errorf("handle event %s (%s): %w", ev.ID, ev.EventType, err)
		}
	}

	return s.saveBookmark(ctx, lastSeq)
}

func (s *Subscription) loadBookmark(ctx context.Context) (int, error) {
	var pos int
	err := s.db.QueryRowContext(ctx, `SELECT position FROM subscription_bookmarks WHERE name = ?`, s.name).Scan(&pos)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return pos, nil
}

func (s *Subscription) saveBookmark(ctx context.Context, position int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subscription_bookmarks (name, position, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET position = excluded.position, updated_at = excluded.updated_at`,
		s.name, position, time.Now().UTC(),
	)
	return err
}

// RunAll runs every subscription concurrently and returns when ctx is
// canceled or any subscription returns a non-nil error, canceling the
// rest. Mirrors the teacher's errgroup-based concurrent lifecycle.
func RunAll(ctx context.Context, subs ...*Subscription) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, sub := range subs {
		sub := sub
		g.Go(func() error {
			return sub.Run(gctx)
		})
	}
	return g.Wait()
}
