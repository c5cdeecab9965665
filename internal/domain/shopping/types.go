// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package shopping

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is a shopping list's lifecycle stage.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// IngredientLine is one ingredient contribution from one recipe, as read
// from a recipe's ingredient list, tagged with the recipe it came from so
// contributions can later be subtracted.
type IngredientLine struct {
	RecipeID string
	Name     string
	Quantity float64
	Unit     string
}

// itemKey is the aggregation grouping key: spec 4.9 step 4, "group by
// (canonical_name, canonical_unit, category)".
type itemKey struct {
	name     string
	unit     string
	category Category
}

// Item is one aggregated shopping-list line.
type Item struct {
	CanonicalName   string
	Quantity        decimal.Decimal
	CanonicalUnit   string
	Category        Category
	SourceRecipeIDs map[string]struct{}
	IsCollected     bool
	CollectedAt     *time.Time
}

func (k itemKey) item() Item {
	return Item{
		CanonicalName:   k.name,
		CanonicalUnit:   k.unit,
		Category:        k.category,
		SourceRecipeIDs: make(map[string]struct{}),
	}
}

// List is the full aggregated shopping list for one week.
type List struct {
	ID            string
	UserID        string
	MealPlanID    string
	WeekStartDate time.Time
	Status        Status
	Items         []Item
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
