/*
 * Space Food - Self-Hosted Meal Planning Application
 * Copyright (C) 2025 RGH Software
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published
 * by the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rghsoftware/mealkit/internal/api/rest"
	"github.com/rghsoftware/mealkit/internal/config"
	"github.com/rghsoftware/mealkit/internal/database"
	"github.com/rghsoftware/mealkit/internal/events"
	"github.com/rghsoftware/mealkit/internal/projections"
	"github.com/rghsoftware/mealkit/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	log.Info().Msg("starting mealkit server")

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.Database.MigrationsPath, cfg.Database.MigrationsTable); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	log.Info().Msg("database migrations complete")

	store := events.NewStore(db)

	subs := []*events.Subscription{
		events.NewSubscription("recipes_projection", store, db, projections.NewRecipeHandler(database.Sqlx(db)).Handle, 200*time.Millisecond, 100),
		events.NewSubscription("meal_plans_projection", store, db, projections.NewMealPlanHandler(database.Sqlx(db)).Handle, 200*time.Millisecond, 100),
		events.NewSubscription("shopping_lists_projection", store, db, projections.NewShoppingListHandler(database.Sqlx(db)).Handle, 200*time.Millisecond, 100),
		events.NewSubscription("rotation_state_projection", store, db, projections.NewRotationStateHandler(database.Sqlx(db)).Handle, 200*time.Millisecond, 100),
	}

	router := rest.SetupRouter(db, store)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return events.RunAll(gctx, subs...)
	})

	g.Go(func() error {
		log.Info().Str("address", addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info().Msg("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}
