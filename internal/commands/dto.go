// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package commands

// GenerateMealPlanRequest is the payload for the generate_meal_plan and
// generate_multi_week_meal_plans commands (spec 6). MultiWeek selects
// which generator runs; WeekStart is only read by the single-week path.
type GenerateMealPlanRequest struct {
	UserID     string `validate:"required"`
	SkillLevel string `validate:"required,oneof=beginner intermediate advanced"`
	WeekStart  string `validate:"omitempty,datetime=2006-01-02"`
	MultiWeek  bool
}

// ReplaceMealSlotRequest is the payload for replace_meal_slot.
type ReplaceMealSlotRequest struct {
	UserID     string `validate:"required"`
	MealPlanID string `validate:"required"`
	Date       string `validate:"required,datetime=2006-01-02"`
	Course     string `validate:"required,oneof=appetizer main_course dessert"`
	NewRecipeID string `validate:"required"`
}

// RegenerateWeekRequest is the payload for regenerate_week.
type RegenerateWeekRequest struct {
	UserID     string `validate:"required"`
	MealPlanID string `validate:"required"`
	SkillLevel string `validate:"required,oneof=beginner intermediate advanced"`
}

// CreateRecipeRequest is the payload for create_recipe.
type CreateRecipeRequest struct {
	UserID      string              `validate:"required"`
	Name        string              `validate:"required,min=1,max=200"`
	Ingredients []IngredientRequest `validate:"required,min=1,dive"`
	Steps       []string            `validate:"required,min=1,dive,required"`
	Course      string              `validate:"required,oneof=appetizer main_course dessert accompaniment"`
	PrepTimeMinutes int             `validate:"gte=0"`
	CookTimeMinutes int             `validate:"gte=0"`
	AdvancePrepHours float64        `validate:"gte=0"`
	SkillLevel  string              `validate:"required,oneof=beginner intermediate advanced"`
}

// IngredientRequest is one ingredient line of a CreateRecipeRequest.
type IngredientRequest struct {
	Name     string  `validate:"required"`
	Quantity float64 `validate:"gt=0"`
	Unit     string  `validate:"required"`
}

// OverrideRecipeTagsRequest is the payload for override_recipe_tags
// (spec 4.11's manual_override escape hatch).
type OverrideRecipeTagsRequest struct {
	RecipeID    string   `validate:"required"`
	Complexity  string   `validate:"required,oneof=simple moderate complex"`
	Cuisine     string   `validate:"omitempty"`
	DietaryTags []string `validate:"dive,oneof=vegetarian vegan gluten_free"`
}

// FavoriteRecipeRequest is the payload for favorite_recipe and
// unfavorite_recipe.
type FavoriteRecipeRequest struct {
	UserID   string `validate:"required"`
	RecipeID string `validate:"required"`
}

// DeleteRecipeRequest is the payload for delete_recipe.
type DeleteRecipeRequest struct {
	RecipeID string `validate:"required"`
}

// MarkItemCollectedRequest is the payload for mark_item_collected.
type MarkItemCollectedRequest struct {
	ShoppingListID string `validate:"required"`
	CanonicalName  string `validate:"required"`
	CanonicalUnit  string `validate:"required"`
	Collected      bool
}

// ResetShoppingListRequest is the payload for reset_shopping_list.
type ResetShoppingListRequest struct {
	ShoppingListID string `validate:"required"`
}
