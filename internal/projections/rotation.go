// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package projections

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/rghsoftware/mealkit/internal/events"
)

// RotationStateHandler materializes the rotation snapshot carried by
// MultiWeekMealPlanGenerated for fast queries. Spec 4.12 notes this
// materialization is optional for correctness — the aggregate remains
// authoritative — so this handler only ever overwrites, never merges.
type RotationStateHandler struct {
	db *sqlx.DB
}

func NewRotationStateHandler(db *sqlx.DB) *RotationStateHandler {
	return &RotationStateHandler{db: db}
}

func (h *RotationStateHandler) Handle(ctx context.Context, ev events.Event) error {
	if ev.EventType != "MultiWeekMealPlanGenerated" {
		return nil
	}

	var payload events.MultiWeekMealPlanGenerated
	if err := ev.Unmarshal(&payload); err != nil {
		return fmt.Errorf("unmarshal MultiWeekMealPlanGenerated: %w", err)
	}

	mains, err := json.Marshal(payload.RotationSnapshot.UsedMainCourseIDs)
	if err != nil {
		return fmt.Errorf("marshal used main course ids: %w", err)
	}
	appetizers, err := json.Marshal(payload.RotationSnapshot.UsedAppetizerIDs)
	if err != nil {
		return fmt.Errorf("marshal used appetizer ids: %w", err)
	}
	desserts, err := json.Marshal(payload.RotationSnapshot.UsedDessertIDs)
	if err != nil {
		return fmt.Errorf("marshal used dessert ids: %w", err)
	}
	cuisineUsage, err := json.Marshal(payload.RotationSnapshot.CuisineUsage)
	if err != nil {
		return fmt.Errorf("marshal cuisine usage: %w", err)
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO recipe_rotation_state
			(user_id, batch_id, used_main_course_ids, used_appetizer_ids, used_dessert_ids, cycle_number, cuisine_usage, last_complex_meal_date, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			batch_id = excluded.batch_id,
			used_main_course_ids = excluded.used_main_course_ids,
			used_appetizer_ids = excluded.used_appetizer_ids,
			used_dessert_ids = excluded.used_dessert_ids,
			cycle_number = excluded.cycle_number,
			cuisine_usage = excluded.cuisine_usage,
			last_complex_meal_date = excluded.last_complex_meal_date,
			updated_at = excluded.updated_at`,
		payload.UserID, payload.BatchID, string(mains), string(appetizers), string(desserts),
		payload.RotationSnapshot.CycleNumber, string(cuisineUsage), payload.RotationSnapshot.LastComplexMealDate, ev.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("upsert rotation state: %w", err)
	}
	return nil
}
