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

// ShoppingListHandler projects shopping-list aggregate events. Spec 4.9's
// recalculation path is a transactional DELETE-then-INSERT of every item
// scoped to the list, which also naturally tolerates redelivery: applying
// the same delete-insert twice leaves the same rows in place.
type ShoppingListHandler struct {
	db *sqlx.DB
}

func NewShoppingListHandler(db *sqlx.DB) *ShoppingListHandler {
	return &ShoppingListHandler{db: db}
}

func (h *ShoppingListHandler) Handle(ctx context.Context, ev events.Event) error {
	switch ev.EventType {
	case "ShoppingListGenerated":
		return h.onGenerated(ctx, ev)
	case "ShoppingListRecalculated":
		return h.onRecalculated(ctx, ev)
	case "ShoppingItemCollected":
		return h.onItemCollected(ctx, ev)
	case "ShoppingListReset":
		return h.onReset(ctx, ev)
	}
	return nil
}

func (h *ShoppingListHandler) onGenerated(ctx context.Context, ev events.Event) error {
	var payload events.ShoppingListGenerated
	if err := ev.Unmarshal(&payload); err != nil {
		return fmt.Errorf("unmarshal ShoppingListGenerated: %w", err)
	}

	tx, err := h.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO shopping_lists (id, meal_plan_id, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		payload.ShoppingListID, payload.MealPlanID, ev.OccurredAt, ev.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert shopping list: %w", err)
	}

	if err := replaceItems(ctx, tx, payload.ShoppingListID, payload.Items); err != nil {
		return err
	}
	return tx.Commit()
}

func (h *ShoppingListHandler) onRecalculated(ctx context.Context, ev events.Event) error {
	var payload events.ShoppingListRecalculated
	if err := ev.Unmarshal(&payload); err != nil {
		return fmt.Errorf("unmarshal ShoppingListRecalculated: %w", err)
	}

	tx, err := h.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := replaceItems(ctx, tx, payload.ShoppingListID, payload.Items); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE shopping_lists SET updated_at = ? WHERE id = ?`, ev.OccurredAt, payload.ShoppingListID); err != nil {
		return fmt.Errorf("bump shopping list updated_at: %w", err)
	}
	return tx.Commit()
}

// replaceItems performs the transactional DELETE-INSERT spec 4.9
// prescribes for recalculation; used for both initial generation and
// later recalculation so both paths share one idempotent write pattern.
func replaceItems(ctx context.Context, tx *sqlx.Tx, listID string, items []events.ShoppingItemData) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM shopping_list_items WHERE shopping_list_id = ?`, listID); err != nil {
		return fmt.Errorf("delete existing items: %w", err)
	}

	for _, item := range items {
		sourceIDs, err := json.Marshal(item.SourceRecipeIDs)
		if err != nil {
			return fmt.Errorf("marshal source recipe ids: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO shopping_list_items
				(id, shopping_list_id, canonical_name, quantity, canonical_unit, category, source_recipe_ids, is_collected)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			itemID(listID, item.CanonicalName, item.Unit, item.Category), listID, item.CanonicalName, item.Quantity, item.Unit, item.Category, string(sourceIDs), item.IsCollected,
		)
		if err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
	}
	return nil
}

func itemID(listID, name, unit, category string) string {
	return listID + ":" + name + ":" + unit + ":" + category
}

func (h *ShoppingListHandler) onItemCollected(ctx context.Context, ev events.Event) error {
	var payload events.ShoppingItemCollected
	if err := ev.Unmarshal(&payload); err != nil {
		return fmt.Errorf("unmarshal ShoppingItemCollected: %w", err)
	}

	var collectedAt any
	if payload.Collected {
		collectedAt = ev.OccurredAt
	}

	_, err := h.db.ExecContext(ctx, `
		UPDATE shopping_list_items SET is_collected = ?, collected_at = ?
		WHERE shopping_list_id = ? AND canonical_name = ? AND canonical_unit = ?`,
		payload.Collected, collectedAt, payload.ShoppingListID, payload.CanonicalName, payload.CanonicalUnit,
	)
	if err != nil {
		return fmt.Errorf("update item collected state: %w", err)
	}
	return nil
}

func (h *ShoppingListHandler) onReset(ctx context.Context, ev events.Event) error {
	var payload events.ShoppingListReset
	if err := ev.Unmarshal(&payload); err != nil {
		return fmt.Errorf("unmarshal ShoppingListReset: %w", err)
	}

	_, err := h.db.ExecContext(ctx, `
		UPDATE shopping_list_items SET is_collected = 0, collected_at = NULL WHERE shopping_list_id = ?`,
		payload.ShoppingListID,
	)
	if err != nil {
		return fmt.Errorf("reset shopping list items: %w", err)
	}
	return nil
}
