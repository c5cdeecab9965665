// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

// Package events implements the append-only event substrate the engine is
// built on: every state change is first an immutable, versioned event on an
// aggregate's stream, and every read model is a projection rebuilt from that
// stream.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AggregateType names the kind of aggregate an event stream belongs to.
type AggregateType string

const (
	AggregateRecipe       AggregateType = "recipe"
	AggregateMealPlan     AggregateType = "meal_plan"
	AggregateShoppingList AggregateType = "shopping_list"
	AggregateUser         AggregateType = "user"
)

// Event is a single immutable fact appended to an aggregate's stream.
// Version is 1-based and strictly increasing per AggregateID; the pair
// (AggregateID, Version) is unique.
type Event struct {
	ID            string          `db:"id"`
	AggregateType AggregateType   `db:"aggregate_type"`
	AggregateID   string          `db:"aggregate_id"`
	Version       int             `db:"version"`
	EventType     string          `db:"event_type"`
	Payload       json.RawMessage `db:"payload"`
	OccurredAt    time.Time       `db:"occurred_at"`
}

// NewEvent builds an Event ready to append, marshaling payload to JSON.
// The caller supplies the target version (current stream length + 1); the
// store enforces it atomically at append time.
func NewEvent(aggType AggregateType, aggregateID string, version int, eventType string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:            uuid.NewString(),
		AggregateType: aggType,
		AggregateID:   aggregateID,
		Version:       version,
		EventType:     eventType,
		Payload:       raw,
		OccurredAt:    time.Now().UTC(),
	}, nil
}

// Unmarshal decodes the event payload into dst.
func (e Event) Unmarshal(dst any) error {
	return json.Unmarshal(e.Payload, dst)
}

// Recipe aggregate event payloads.
type (
	RecipeCreated struct {
		RecipeID         string                 `json:"recipe_id"`
		UserID           string                 `json:"user_id"`
		Name             string                 `json:"name"`
		Ingredients      []RecipeIngredientData `json:"ingredients"`
		Steps            []string               `json:"steps"`
		Course           string                 `json:"course"`
		PrepTimeMinutes  int                    `json:"prep_time_minutes"`
		CookTimeMinutes  int                    `json:"cook_time_minutes"`
		AdvancePrepHours float64                `json:"advance_prep_hours"`
		SkillLevel       string                 `json:"skill_level"`
	}

	// RecipeIngredientData mirrors domain/recipe.Ingredient's persisted
	// shape without importing that package, matching AssignmentData's
	// domain-free convention for event payloads.
	RecipeIngredientData struct {
		Name     string  `json:"name"`
		Quantity float64 `json:"quantity"`
		Unit     string  `json:"unit"`
	}

	RecipeTagged struct {
		RecipeID       string   `json:"recipe_id"`
		Complexity     string   `json:"complexity"`
		Cuisine        string   `json:"cuisine"`
		DietaryTags    []string `json:"dietary_tags"`
		ManualOverride bool     `json:"manual_override"`
	}

	RecipeFavorited struct {
		RecipeID string `json:"recipe_id"`
		UserID   string `json:"user_id"`
	}

	RecipeUnfavorited struct {
		RecipeID string `json:"recipe_id"`
		UserID   string `json:"user_id"`
	}

	RecipeDeleted struct {
		RecipeID string `json:"recipe_id"`
	}
)

// MealPlan aggregate event payloads.
type (
	MealPlanGenerated struct {
		MealPlanID  string           `json:"meal_plan_id"`
		UserID      string           `json:"user_id"`
		BatchID     string           `json:"batch_id"`
		WeekStart   string           `json:"week_start"`
		WeekIndex   int              `json:"week_index"`
		Assignments []AssignmentData `json:"assignments"`
	}

	// AssignmentData mirrors domain/mealplan.MealAssignment's persisted
	// shape without importing that package (keeps events free of domain
	// dependencies so projections can decode them standalone).
	AssignmentData struct {
		Date      string `json:"date"`
		Course    string `json:"course"`
		RecipeID  string `json:"recipe_id"`
		Reasoning string `json:"reasoning"`
	}

	MealSlotReplaced struct {
		MealPlanID  string `json:"meal_plan_id"`
		Date        string `json:"date"`
		Course      string `json:"course"`
		OldRecipeID string `json:"old_recipe_id"`
		NewRecipeID string `json:"new_recipe_id"`
		Reasoning   string `json:"reasoning"`
	}

	WeekRegenerated struct {
		MealPlanID  string           `json:"meal_plan_id"`
		WeekStart   string           `json:"week_start"`
		Assignments []AssignmentData `json:"assignments"`
	}

	MealPlanActivated struct {
		MealPlanID string `json:"meal_plan_id"`
		UserID     string `json:"user_id"`
	}

	MealPlanDeactivated struct {
		MealPlanID string `json:"meal_plan_id"`
		UserID     string `json:"user_id"`
	}

	// MultiWeekMealPlanGenerated is the header event linking the sibling
	// WeekMealPlans of one generation batch; it carries the final
	// rotation snapshot so a later regeneration can start from a known
	// state even if recipe_rotation_state materialization is lagging
	// (spec 9's rotation-snapshot design note).
	MultiWeekMealPlanGenerated struct {
		BatchID          string         `json:"batch_id"`
		UserID           string         `json:"user_id"`
		WeekCount        int            `json:"week_count"`
		RotationSnapshot RotationSnapshot `json:"rotation_snapshot"`
	}

	RotationSnapshot struct {
		UsedMainCourseIDs   []string       `json:"used_main_course_ids"`
		UsedAppetizerIDs    []string       `json:"used_appetizer_ids"`
		UsedDessertIDs      []string       `json:"used_dessert_ids"`
		CycleNumber         int            `json:"cycle_number"`
		CuisineUsage        map[string]int `json:"cuisine_usage"`
		LastComplexMealDate *string        `json:"last_complex_meal_date,omitempty"`
	}
)

// ShoppingList aggregate event payloads.
type (
	ShoppingListGenerated struct {
		ShoppingListID string              `json:"shopping_list_id"`
		MealPlanID     string              `json:"meal_plan_id"`
		Items          []ShoppingItemData  `json:"items"`
	}

	ShoppingItemData struct {
		CanonicalName    string   `json:"canonical_name"`
		Quantity         string   `json:"quantity"` // decimal.Decimal.String()
		Unit             string   `json:"unit"`
		Category         string   `json:"category"`
		SourceRecipeIDs  []string `json:"source_recipe_ids"`
		IsCollected      bool     `json:"is_collected"`
	}

	ShoppingListRecalculated struct {
		ShoppingListID string             `json:"shopping_list_id"`
		Items          []ShoppingItemData `json:"items"`
	}

	ShoppingItemCollected struct {
		ShoppingListID string `json:"shopping_list_id"`
		CanonicalName  string `json:"canonical_name"`
		CanonicalUnit  string `json:"canonical_unit"`
		Collected      bool   `json:"collected"`
	}

	ShoppingListReset struct {
		ShoppingListID string `json:"shopping_list_id"`
	}
)
