// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

// Package logger provides the process-wide zerolog logger used across the
// engine, the projection subscriptions, and the thin REST adapters.
package logger

import (
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Init configures the global logger. level is any zerolog level name
// ("debug", "info", "warn", "error"); format is "json" or "console".
func Init(level, format string) {
	once.Do(func() {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

		lvl, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			lvl = zerolog.InfoLevel
		}

		var writer = os.Stdout
		var output zerolog.ConsoleWriter
		if format == "console" {
			output = zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
				w.Out = writer
			})
			logger = zerolog.New(output).Level(lvl).With().Timestamp().Caller().Logger()
			return
		}

		logger = zerolog.New(writer).Level(lvl).With().Timestamp().Logger()
	})
}

// Get returns the global logger. Safe to call before Init (falls back to a
// sane info/json default so tests that never call Init don't panic).
func Get() *zerolog.Logger {
	once.Do(func() {
		logger = zerolog.New(os.Stdout).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	})
	return &logger
}

// WithAggregate returns a child logger annotated with an aggregate id, for
// use inside event-store append/load paths and projection handlers.
func WithAggregate(aggregateID string) zerolog.Logger {
	return Get().With().Str("aggregate_id", aggregateID).Logger()
}

// WithSubscription returns a child logger annotated with a subscription
// name, for use inside the subscription dispatch loop.
func WithSubscription(name string) zerolog.Logger {
	return Get().With().Str("subscription", name).Logger()
}
