// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package commands

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/rghsoftware/mealkit/internal/domainerr"
	"github.com/rghsoftware/mealkit/internal/events"
)

// ShoppingListHandlers implements the shopping-list-aggregate commands of
// spec 6: mark_item_collected, reset_shopping_list.
type ShoppingListHandlers struct {
	store    *events.Store
	validate *validator.Validate
}

func NewShoppingListHandlers(store *events.Store) *ShoppingListHandlers {
	return &ShoppingListHandlers{store: store, validate: validator.New()}
}

// MarkItemCollected appends the event carrying the authoritative
// collected value the item should now hold (spec 4.9: "not a toggle").
func (h *ShoppingListHandlers) MarkItemCollected(ctx context.Context, req MarkItemCollectedRequest) error {
	if err := h.validate.Struct(req); err != nil {
		return fmt.Errorf("validate mark item collected request: %w", err)
	}
	version, err := h.currentVersion(ctx, req.ShoppingListID)
	if err != nil {
		return err
	}
	_, err = h.store.Append(ctx, events.AggregateShoppingList, req.ShoppingListID, version, "ShoppingItemCollected", events.ShoppingItemCollected{
		ShoppingListID: req.ShoppingListID,
		CanonicalName:  req.CanonicalName,
		CanonicalUnit:  req.CanonicalUnit,
		Collected:      req.Collected,
	})
	if err != nil {
		return fmt.Errorf("append ShoppingItemCollected: %w", err)
	}
	return nil
}

// ResetShoppingList clears every item's collected state.
func (h *ShoppingListHandlers) ResetShoppingList(ctx context.Context, req ResetShoppingListRequest) error {
	if err := h.validate.Struct(req); err != nil {
		return fmt.Errorf("validate reset shopping list request: %w", err)
	}
	version, err := h.currentVersion(ctx, req.ShoppingListID)
	if err != nil {
		return err
	}
	_, err = h.store.Append(ctx, events.AggregateShoppingList, req.ShoppingListID, version, "ShoppingListReset", events.ShoppingListReset{
		ShoppingListID: req.ShoppingListID,
	})
	if err != nil {
		return fmt.Errorf("append ShoppingListReset: %w", err)
	}
	return nil
}

func (h *ShoppingListHandlers) currentVersion(ctx context.Context, listID string) (int, error) {
	stream, err := h.store.Load(ctx, listID)
	if err != nil {
		return 0, fmt.Errorf("load shopping list stream: %w", err)
	}
	if len(stream) == 0 {
		return 0, &domainerr.NotFound{Kind: "shopping_list", ID: listID}
	}
	return stream[len(stream)-1].Version, nil
}
