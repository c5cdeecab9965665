// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

// Package projections holds the idempotent event handlers that maintain
// the read-model tables. Handlers tolerate redelivery of the same event
// (at-least-once subscription semantics) by checking existence before
// mutating, following the teacher's upsert conventions in
// internal/features/food_variety/repository.go.
package projections

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/rghsoftware/mealkit/internal/events"
)

// RecipeHandler projects recipe aggregate events into the recipes and
// users tables.
type RecipeHandler struct {
	db *sqlx.DB
}

func NewRecipeHandler(db *sqlx.DB) *RecipeHandler {
	return &RecipeHandler{db: db}
}

// Handle dispatches on event type. Unknown event types are ignored rather
// than erroring, so a subscription carrying mixed aggregate types can
// share one dispatch loop.
func (h *RecipeHandler) Handle(ctx context.Context, ev events.Event) error {
	switch ev.EventType {
	case "RecipeCreated":
		return h.onCreated(ctx, ev)
	case "RecipeTagged":
		return h.onTagged(ctx, ev)
	case "RecipeFavorited":
		return h.onFavorited(ctx, ev, true)
	case "RecipeUnfavorited":
		return h.onFavorited(ctx, ev, false)
	case "RecipeDeleted":
		return h.onDeleted(ctx, ev)
	}
	return nil
}

func (h *RecipeHandler) onCreated(ctx context.Context, ev events.Event) error {
	var payload events.RecipeCreated
	if err := ev.Unmarshal(&payload); err != nil {
		return fmt.Errorf("unmarshal RecipeCreated: %w", err)
	}

	ingredients, err := json.Marshal(payload.Ingredients)
	if err != nil {
		return fmt.Errorf("marshal ingredients: %w", err)
	}
	steps, err := json.Marshal(payload.Steps)
	if err != nil {
		return fmt.Errorf("marshal steps: %w", err)
	}

	res, err := h.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO recipes
			(id, user_id, name, ingredients, steps, prep_time_minutes, cook_time_minutes,
			 advance_prep, skill_level, course, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		payload.RecipeID, payload.UserID, payload.Name, string(ingredients), string(steps),
		payload.PrepTimeMinutes, payload.CookTimeMinutes, payload.AdvancePrepHours > 0,
		payload.SkillLevel, payload.Course,
		ev.OccurredAt, ev.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert recipe: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert recipe: %w", err)
	}
	if inserted == 0 {
		return nil // redelivery: the recipe and its count are already projected
	}

	return h.bumpRecipeCount(ctx, payload.UserID, 1)
}

func (h *RecipeHandler) onTagged(ctx context.Context, ev events.Event) error {
	var payload events.RecipeTagged
	if err := ev.Unmarshal(&payload); err != nil {
		return fmt.Errorf("unmarshal RecipeTagged: %w", err)
	}

	tags, err := json.Marshal(payload.DietaryTags)
	if err != nil {
		return fmt.Errorf("marshal dietary tags: %w", err)
	}

	_, err = h.db.ExecContext(ctx, `
		UPDATE recipes SET complexity = ?, cuisine = ?, dietary_tags = ?, manual_override = ?, updated_at = ?
		WHERE id = ?`,
		payload.Complexity, payload.Cuisine, string(tags), payload.ManualOverride, ev.OccurredAt, payload.RecipeID,
	)
	if err != nil {
		return fmt.Errorf("update recipe tags: %w", err)
	}
	return nil
}

func (h *RecipeHandler) onFavorited(ctx context.Context, ev events.Event, favorited bool) error {
	var recipeID, userID string
	if favorited {
		var payload events.RecipeFavorited
		if err := ev.Unmarshal(&payload); err != nil {
			return fmt.Errorf("unmarshal RecipeFavorited: %w", err)
		}
		recipeID, userID = payload.RecipeID, payload.UserID
	} else {
		var payload events.RecipeUnfavorited
		if err := ev.Unmarshal(&payload); err != nil {
			return fmt.Errorf("unmarshal RecipeUnfavorited: %w", err)
		}
		recipeID, userID = payload.RecipeID, payload.UserID
	}

	tx, err := h.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current bool
	if err := tx.GetContext(ctx, &current, `SELECT is_favorite FROM recipes WHERE id = ?`, recipeID); err != nil {
		return fmt.Errorf("read current favorite state: %w", err)
	}
	if current == favorited {
		return nil // already applied: idempotent no-op against redelivery
	}

	if _, err := tx.ExecContext(ctx, `UPDATE recipes SET is_favorite = ?, updated_at = ? WHERE id = ?`, favorited, ev.OccurredAt, recipeID); err != nil {
		return fmt.Errorf("update favorite flag: %w", err)
	}

	delta := 1
	if !favorited {
		delta = -1
	}
	if err := bumpFavoriteCountTx(ctx, tx, userID, delta); err != nil {
		return err
	}

	return tx.Commit()
}

func bumpFavoriteCountTx(ctx context.Context, tx *sqlx.Tx, userID string, delta int) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO users (id, favorite_count, recipe_count, updated_at) VALUES (?, ?, 0, ?)
		ON CONFLICT(id) DO UPDATE SET
			favorite_count = MAX(0, favorite_count + ?),
			updated_at = excluded.updated_at`,
		userID, max(delta, 0), time.Now().UTC(), delta,
	)
	if err != nil {
		return fmt.Errorf("bump favorite count: %w", err)
	}
	return nil
}

func (h *RecipeHandler) bumpRecipeCount(ctx context.Context, userID string, delta int) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO users (id, favorite_count, recipe_count, updated_at) VALUES (?, 0, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			recipe_count = MAX(0, recipe_count + ?),
			updated_at = excluded.updated_at`,
		userID, max(delta, 0), time.Now().UTC(), delta,
	)
	if err != nil {
		return fmt.Errorf("bump recipe count: %w", err)
	}
	return nil
}

func (h *RecipeHandler) onDeleted(ctx context.Context, ev events.Event) error {
	var payload events.RecipeDeleted
	if err := ev.Unmarshal(&payload); err != nil {
		return fmt.Errorf("unmarshal RecipeDeleted: %w", err)
	}

	var userID string
	var wasFavorite bool
	err := h.db.QueryRowContext(ctx, `SELECT user_id, is_favorite FROM recipes WHERE id = ? AND deleted_at IS NULL`, payload.RecipeID).
		Scan(&userID, &wasFavorite)
	if err != nil {
		return nil // already deleted or never existed: idempotent no-op
	}

	_, err = h.db.ExecContext(ctx, `UPDATE recipes SET deleted_at = ? WHERE id = ?`, ev.OccurredAt, payload.RecipeID)
	if err != nil {
		return fmt.Errorf("soft-delete recipe: %w", err)
	}

	if err := h.bumpRecipeCount(ctx, userID, -1); err != nil {
		return err
	}
	if wasFavorite {
		return h.bumpFavoriteCount(ctx, userID, -1)
	}
	return nil
}

func (h *RecipeHandler) bumpFavoriteCount(ctx context.Context, userID string, delta int) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO users (id, favorite_count, recipe_count, updated_at) VALUES (?, ?, 0, ?)
		ON CONFLICT(id) DO UPDATE SET
			favorite_count = MAX(0, favorite_count + ?),
			updated_at = excluded.updated_at`,
		userID, max(delta, 0), time.Now().UTC(), delta,
	)
	return err
}
