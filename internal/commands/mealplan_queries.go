// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rghsoftware/mealkit/internal/domain/shopping"
	"github.com/rghsoftware/mealkit/internal/domainerr"
)

// AssignedRecipeID returns the recipe and reasoning text currently
// assigned to one meal-plan slot, used by ReplaceMealSlot to compute the
// shopping-list subtraction and to carry the slot's reasoning forward
// across the swap.
func (r *Repository) AssignedRecipeID(ctx context.Context, mealPlanID, date, course string) (string, string, error) {
	var row struct {
		RecipeID  string `db:"recipe_id"`
		Reasoning string `db:"reasoning"`
	}
	err := r.db.GetContext(ctx, &row, `
		SELECT recipe_id, reasoning FROM meal_assignments WHERE meal_plan_id = ? AND date = ? AND course = ?`,
		mealPlanID, date, course)
	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			return "", "", &domainerr.NotFound{Kind: "meal_assignment", ID: mealPlanID + "/" + date + "/" + course}
		}
		return "", "", fmt.Errorf("query assigned recipe: %w", err)
	}
	return row.RecipeID, row.Reasoning, nil
}

// MealPlanWeekStart returns a meal plan's week_start and owning user, used
// by RegenerateWeek to rebuild the same week.
func (r *Repository) MealPlanWeekStart(ctx context.Context, mealPlanID string) (time.Time, string, error) {
	var row struct {
		WeekStart time.Time `db:"week_start"`
		UserID    string    `db:"user_id"`
	}
	err := r.db.GetContext(ctx, &row, `SELECT week_start, user_id FROM meal_plans WHERE id = ?`, mealPlanID)
	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			return time.Time{}, "", &domainerr.NotFound{Kind: "meal_plan", ID: mealPlanID}
		}
		return time.Time{}, "", fmt.Errorf("query meal plan: %w", err)
	}
	return row.WeekStart, row.UserID, nil
}

// ShoppingListForMealPlan returns the shopping list id and current items
// tied to a meal plan, or an empty id if none has been generated yet.
func (r *Repository) ShoppingListForMealPlan(ctx context.Context, mealPlanID string) (string, []shopping.Item, error) {
	var listID string
	err := r.db.GetContext(ctx, &listID, `SELECT id FROM shopping_lists WHERE meal_plan_id = ?`, mealPlanID)
	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			return "", nil, nil
		}
		return "", nil, fmt.Errorf("query shopping list: %w", err)
	}

	var rows []struct {
		CanonicalName    string `db:"canonical_name"`
		Quantity         string `db:"quantity"`
		CanonicalUnit    string `db:"canonical_unit"`
		Category         string `db:"category"`
		SourceRecipeIDs  string `db:"source_recipe_ids"`
		IsCollected      bool   `db:"is_collected"`
	}
	err = r.db.SelectContext(ctx, &rows, `
		SELECT canonical_name, quantity, canonical_unit, category, source_recipe_ids, is_collected
		FROM shopping_list_items WHERE shopping_list_id = ?`, listID)
	if err != nil {
		return "", nil, fmt.Errorf("query shopping list items: %w", err)
	}

	items := make([]shopping.Item, 0, len(rows))
	for _, row := range rows {
		qty, err := decimal.NewFromString(row.Quantity)
		if err != nil {
			return "", nil, fmt.Errorf("parse item quantity: %w", err)
		}
		var ids []string
		if err := json.Unmarshal([]byte(row.SourceRecipeIDs), &ids); err != nil {
			return "", nil, fmt.Errorf("unmarshal source recipe ids: %w", err)
		}
		sourceIDs := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			sourceIDs[id] = struct{}{}
		}
		items = append(items, shopping.Item{
			CanonicalName:   row.CanonicalName,
			Quantity:        qty,
			CanonicalUnit:   row.CanonicalUnit,
			Category:        shopping.Category(row.Category),
			SourceRecipeIDs: sourceIDs,
			IsCollected:     row.IsCollected,
		})
	}
	return listID, items, nil
}
