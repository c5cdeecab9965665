// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/rghsoftware/mealkit/internal/domainerr"
)

// ShoppingListRow is the row shape for active_shopping_list(user, week_start_date).
type ShoppingListRow struct {
	ID         string    `db:"id"`
	MealPlanID string    `db:"meal_plan_id"`
	WeekStart  time.Time `db:"week_start"`
}

// ShoppingListItemRow is one item row, scanned with Category carried
// alongside so callers can group without a second query.
type ShoppingListItemRow struct {
	ID             string  `db:"id"`
	CanonicalName  string  `db:"canonical_name"`
	Quantity       string  `db:"quantity"`
	CanonicalUnit  string  `db:"canonical_unit"`
	Category       string  `db:"category"`
	IsCollected    bool    `db:"is_collected"`
}

// ItemFilter selects the items_filtered(list_id, filter) subset (spec 4.10).
type ItemFilter string

const (
	FilterAll       ItemFilter = "all"
	FilterRemaining ItemFilter = "remaining"
	FilterCollected ItemFilter = "collected"
)

// ActiveShoppingList returns the shopping list tied to the meal plan
// active for the given week, or nil if none exists yet.
func (s *Service) ActiveShoppingList(ctx context.Context, userID string, weekStart time.Time) (*ShoppingListRow, error) {
	var row ShoppingListRow
	err := s.db.GetContext(ctx, &row, `
		SELECT sl.id, sl.meal_plan_id, mp.week_start
		FROM shopping_lists sl
		JOIN meal_plans mp ON mp.id = sl.meal_plan_id
		WHERE mp.user_id = ? AND mp.week_start = ?`, userID, weekStart.Format("2006-01-02"))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("query active shopping list: %w", err)
	}
	return &row, nil
}

// ItemsFiltered returns a shopping list's items narrowed by filter,
// grouped implicitly by category via the ORDER BY clause.
func (s *Service) ItemsFiltered(ctx context.Context, listID string, filter ItemFilter) ([]ShoppingListItemRow, error) {
	query := `
		SELECT id, canonical_name, quantity, canonical_unit, category, is_collected
		FROM shopping_list_items WHERE shopping_list_id = ?`
	switch filter {
	case FilterRemaining:
		query += ` AND is_collected = 0`
	case FilterCollected:
		query += ` AND is_collected = 1`
	case FilterAll, "":
	default:
		return nil, fmt.Errorf("unknown item filter %q", filter)
	}
	query += ` ORDER BY category ASC, canonical_name ASC`

	var items []ShoppingListItemRow
	if err := s.db.SelectContext(ctx, &items, query, listID); err != nil {
		return nil, fmt.Errorf("query filtered items: %w", err)
	}
	return items, nil
}

// WeekOption is one entry of week_options(user, current_date).
type WeekOption struct {
	WeekStart time.Time
	IsCurrent bool
	WeekIndex int
	Label     string
}

// WeekOptions enumerates the five selectable weeks (spec 4.10): the
// current week's Monday through four weeks after it.
func WeekOptions(currentDate time.Time) []WeekOption {
	start := mondayOf(currentDate)
	options := make([]WeekOption, 0, 5)
	for i := 0; i < 5; i++ {
		weekStart := start.AddDate(0, 0, 7*i)
		label := "Week of " + weekStart.Format("Jan 2")
		if i == 0 {
			label = "This week"
		}
		options = append(options, WeekOption{
			WeekStart: weekStart,
			IsCurrent: i == 0,
			WeekIndex: i,
			Label:     label,
		})
	}
	return options
}

// ValidateWeekSelection enforces spec 3's week-accessibility invariant:
// week_start_date must be a Monday, not in the past, and within the
// current-plus-four-future-weeks window.
func ValidateWeekSelection(requested, currentDate time.Time) error {
	if requested.Weekday() != time.Monday {
		return domainerr.ErrInvalidWeek
	}
	currentWeekStart := mondayOf(currentDate)
	if requested.Before(currentWeekStart) {
		return domainerr.ErrPastWeekNotAccessible
	}
	latestSelectable := currentWeekStart.AddDate(0, 0, 7*4)
	if requested.After(latestSelectable) {
		return domainerr.ErrFutureWeekOutOfRange
	}
	return nil
}

func mondayOf(t time.Time) time.Time {
	t = t.Truncate(24 * time.Hour)
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}
