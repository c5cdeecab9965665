// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package projections

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/rghsoftware/mealkit/internal/events"
)

// MealPlanHandler projects meal-plan aggregate events into meal_plans and
// meal_assignments. Implements spec 9's single-active-plan race
// mitigation: deactivate-then-insert inside one transaction, so the
// partial unique index (user_id) WHERE status='current' never double-fires
// on the insert. Status is always one of mealplan.Status's four values
// (future, current, past, archived); only the in-progress week of a
// batch is ever 'current', its siblings are inserted as 'future'.
type MealPlanHandler struct {
	db *sqlx.DB
}

func NewMealPlanHandler(db *sqlx.DB) *MealPlanHandler {
	return &MealPlanHandler{db: db}
}

func (h *MealPlanHandler) Handle(ctx context.Context, ev events.Event) error {
	switch ev.EventType {
	case "MealPlanGenerated":
		return h.onGenerated(ctx, ev)
	case "MealSlotReplaced":
		return h.onSlotReplaced(ctx, ev)
	case "WeekRegenerated":
		return h.onWeekRegenerated(ctx, ev)
	case "MealPlanActivated":
		return h.onActivated(ctx, ev)
	case "MealPlanDeactivated":
		return h.onDeactivated(ctx, ev)
	}
	return nil
}

func (h *MealPlanHandler) onGenerated(ctx context.Context, ev events.Event) error {
	var payload events.MealPlanGenerated
	if err := ev.Unmarshal(&payload); err != nil {
		return fmt.Errorf("unmarshal MealPlanGenerated: %w", err)
	}

	tx, err := h.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.GetContext(ctx, &exists, `SELECT COUNT(*) FROM meal_plans WHERE id = ?`, payload.MealPlanID); err != nil {
		return fmt.Errorf("check existing meal plan: %w", err)
	}
	if exists > 0 {
		return nil // already projected: idempotent no-op against redelivery
	}

	// Only the in-progress week (index 0 of a batch, or the sole week of
	// a single-week generation) is promoted to 'current'; later weeks of
	// the same batch are siblings awaiting their turn and stay 'future'
	// until a future regeneration/activation promotes them.
	status := "future"
	if payload.WeekIndex == 0 {
		status = "current"

		// Deactivate the previous current plan for this user in the same
		// transaction that inserts the new current one.
		if _, err := tx.ExecContext(ctx, `UPDATE meal_plans SET status = 'archived', updated_at = ? WHERE user_id = ? AND status = 'current'`, ev.OccurredAt, payload.UserID); err != nil {
			return fmt.Errorf("archive previous current plan: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO meal_plans (id, user_id, batch_id, week_start, week_index, status, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		payload.MealPlanID, payload.UserID, payload.BatchID, payload.WeekStart, payload.WeekIndex, status, ev.OccurredAt, ev.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert meal plan: %w", err)
	}

	for _, a := range payload.Assignments {
		_, err = tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO meal_assignments (id, meal_plan_id, date, course, recipe_id, reasoning, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			assignmentID(payload.MealPlanID, a.Date, a.Course), payload.MealPlanID, a.Date, a.Course, a.RecipeID, a.Reasoning, ev.OccurredAt, ev.OccurredAt,
		)
		if err != nil {
			return fmt.Errorf("insert meal assignment: %w", err)
		}
	}

	return tx.Commit()
}

// assignmentID derives a deterministic id for a meal assignment row so
// INSERT OR IGNORE can dedupe it on redelivery without a separate
// existence check.
func assignmentID(mealPlanID, date, course string) string {
	return mealPlanID + ":" + date + ":" + course
}

func (h *MealPlanHandler) onSlotReplaced(ctx context.Context, ev events.Event) error {
	var payload events.MealSlotReplaced
	if err := ev.Unmarshal(&payload); err != nil {
		return fmt.Errorf("unmarshal MealSlotReplaced: %w", err)
	}

	_, err := h.db.ExecContext(ctx, `
		UPDATE meal_assignments SET recipe_id = ?, reasoning = ?, updated_at = ?
		WHERE meal_plan_id = ? AND date = ? AND course = ?`,
		payload.NewRecipeID, payload.Reasoning, ev.OccurredAt, payload.MealPlanID, payload.Date, payload.Course,
	)
	if err != nil {
		return fmt.Errorf("update replaced assignment: %w", err)
	}
	return nil
}

func (h *MealPlanHandler) onWeekRegenerated(ctx context.Context, ev events.Event) error {
	var payload events.WeekRegenerated
	if err := ev.Unmarshal(&payload); err != nil {
		return fmt.Errorf("unmarshal WeekRegenerated: %w", err)
	}

	tx, err := h.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, a := range payload.Assignments {
		_, err = tx.ExecContext(ctx, `
			UPDATE meal_assignments SET recipe_id = ?, reasoning = ?, updated_at = ?
			WHERE meal_plan_id = ? AND date = ? AND course = ?`,
			a.RecipeID, a.Reasoning, ev.OccurredAt, payload.MealPlanID, a.Date, a.Course,
		)
		if err != nil {
			return fmt.Errorf("update regenerated assignment: %w", err)
		}
	}
	return tx.Commit()
}

func (h *MealPlanHandler) onActivated(ctx context.Context, ev events.Event) error {
	var payload events.MealPlanActivated
	if err := ev.Unmarshal(&payload); err != nil {
		return fmt.Errorf("unmarshal MealPlanActivated: %w", err)
	}

	tx, err := h.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE meal_plans SET status = 'archived', updated_at = ? WHERE user_id = ? AND status = 'current' AND id != ?`, ev.OccurredAt, payload.UserID, payload.MealPlanID); err != nil {
		return fmt.Errorf("archive previous current plan: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE meal_plans SET status = 'current', updated_at = ? WHERE id = ?`, ev.OccurredAt, payload.MealPlanID); err != nil {
		return fmt.Errorf("activate plan: %w", err)
	}
	return tx.Commit()
}

func (h *MealPlanHandler) onDeactivated(ctx context.Context, ev events.Event) error {
	var payload events.MealPlanDeactivated
	if err := ev.Unmarshal(&payload); err != nil {
		return fmt.Errorf("unmarshal MealPlanDeactivated: %w", err)
	}
	_, err := h.db.ExecContext(ctx, `UPDATE meal_plans SET status = 'archived', updated_at = ? WHERE id = ?`, ev.OccurredAt, payload.MealPlanID)
	if err != nil {
		return fmt.Errorf("archive plan: %w", err)
	}
	return nil
}
