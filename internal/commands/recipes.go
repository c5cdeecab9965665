// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package commands

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/rghsoftware/mealkit/internal/domain/recipe"
	"github.com/rghsoftware/mealkit/internal/domainerr"
	"github.com/rghsoftware/mealkit/internal/events"
)

// RecipeHandlers implements the recipe-aggregate commands of spec 6:
// create_recipe, override_recipe_tags, favorite_recipe,
// unfavorite_recipe, delete_recipe.
type RecipeHandlers struct {
	store    *events.Store
	repo     *Repository
	validate *validator.Validate
	newID    func() string
}

func NewRecipeHandlers(store *events.Store, repo *Repository, newID func() string) *RecipeHandlers {
	return &RecipeHandlers{store: store, repo: repo, validate: validator.New(), newID: newID}
}

// CreateRecipe validates the request, derives tags from the ingredient
// and step lists (spec 4.11), and appends RecipeCreated followed by
// RecipeTagged so the read model never observes an untagged recipe.
func (h *RecipeHandlers) CreateRecipe(ctx context.Context, req CreateRecipeRequest) (string, error) {
	if err := h.validate.Struct(req); err != nil {
		return "", fmt.Errorf("validate create recipe request: %w", err)
	}

	recipeID := h.newID()
	eventIngredients := make([]events.RecipeIngredientData, len(req.Ingredients))
	domainIngredients := make([]recipe.Ingredient, len(req.Ingredients))
	for i, ing := range req.Ingredients {
		eventIngredients[i] = events.RecipeIngredientData{Name: ing.Name, Quantity: ing.Quantity, Unit: ing.Unit}
		domainIngredients[i] = recipe.Ingredient{Name: ing.Name, Quantity: ing.Quantity, Unit: ing.Unit}
	}

	_, err := h.store.Create(ctx, events.AggregateRecipe, recipeID, "RecipeCreated", events.RecipeCreated{
		RecipeID:         recipeID,
		UserID:           req.UserID,
		Name:             req.Name,
		Ingredients:      eventIngredients,
		Steps:            req.Steps,
		Course:           req.Course,
		PrepTimeMinutes:  req.PrepTimeMinutes,
		CookTimeMinutes:  req.CookTimeMinutes,
		AdvancePrepHours: req.AdvancePrepHours,
		SkillLevel:       req.SkillLevel,
	})
	if err != nil {
		return "", fmt.Errorf("append RecipeCreated: %w", err)
	}

	draft := recipe.Recipe{
		Ingredients: domainIngredients,
		Instructions: req.Steps,
		PrepTimeMinutes: req.PrepTimeMinutes,
		CookTimeMinutes: req.CookTimeMinutes,
		AdvancePrep: recipe.AdvancePrep{Required: req.AdvancePrepHours > 0, Hours: req.AdvancePrepHours},
	}
	complexity, cuisine, dietaryTags := recipe.Tag(draft)

	_, err = h.store.Append(ctx, events.AggregateRecipe, recipeID, 1, "RecipeTagged", events.RecipeTagged{
		RecipeID:       recipeID,
		Complexity:     string(complexity),
		Cuisine:        string(cuisine),
		DietaryTags:    dietaryTagStrings(dietaryTags),
		ManualOverride: false,
	})
	if err != nil {
		return "", fmt.Errorf("append RecipeTagged: %w", err)
	}

	return recipeID, nil
}

// OverrideRecipeTags implements override_recipe_tags: a manual_override
// always wins over InferCuisine/ComplexityScore going forward (spec
// 4.11's escape hatch for mistagged recipes).
func (h *RecipeHandlers) OverrideRecipeTags(ctx context.Context, req OverrideRecipeTagsRequest) error {
	if err := h.validate.Struct(req); err != nil {
		return fmt.Errorf("validate override recipe tags request: %w", err)
	}

	if _, err := h.repo.RecipeByID(ctx, req.RecipeID); err != nil {
		return &domainerr.NotFound{Kind: "recipe", ID: req.RecipeID}
	}

	version, err := h.currentVersion(ctx, req.RecipeID)
	if err != nil {
		return err
	}

	_, err = h.store.Append(ctx, events.AggregateRecipe, req.RecipeID, version, "RecipeTagged", events.RecipeTagged{
		RecipeID:       req.RecipeID,
		Complexity:     req.Complexity,
		Cuisine:        req.Cuisine,
		DietaryTags:    req.DietaryTags,
		ManualOverride: true,
	})
	if err != nil {
		return fmt.Errorf("append RecipeTagged override: %w", err)
	}
	return nil
}

// FavoriteRecipe marks a recipe favorited, idempotently from the caller's
// perspective (the projection absorbs redelivery; this handler always
// appends, relying on the projection's idempotent floor/ceiling logic).
func (h *RecipeHandlers) FavoriteRecipe(ctx context.Context, req FavoriteRecipeRequest) error {
	if err := h.validate.Struct(req); err != nil {
		return fmt.Errorf("validate favorite recipe request: %w", err)
	}
	version, err := h.currentVersion(ctx, req.RecipeID)
	if err != nil {
		return err
	}
	_, err = h.store.Append(ctx, events.AggregateRecipe, req.RecipeID, version, "RecipeFavorited", events.RecipeFavorited{
		RecipeID: req.RecipeID, UserID: req.UserID,
	})
	if err != nil {
		return fmt.Errorf("append RecipeFavorited: %w", err)
	}
	return nil
}

// UnfavoriteRecipe mirrors FavoriteRecipe's reverse transition.
func (h *RecipeHandlers) UnfavoriteRecipe(ctx context.Context, req FavoriteRecipeRequest) error {
	if err := h.validate.Struct(req); err != nil {
		return fmt.Errorf("validate unfavorite recipe request: %w", err)
	}
	version, err := h.currentVersion(ctx, req.RecipeID)
	if err != nil {
		return err
	}
	_, err = h.store.Append(ctx, events.AggregateRecipe, req.RecipeID, version, "RecipeUnfavorited", events.RecipeUnfavorited{
		RecipeID: req.RecipeID, UserID: req.UserID,
	})
	if err != nil {
		return fmt.Errorf("append RecipeUnfavorited: %w", err)
	}
	return nil
}

// DeleteRecipe appends RecipeDeleted; the projection applies the soft
// delete (spec 3: recipes are never hard-deleted, preserving historical
// meal-plan references).
func (h *RecipeHandlers) DeleteRecipe(ctx context.Context, req DeleteRecipeRequest) error {
	if err := h.validate.Struct(req); err != nil {
		return fmt.Errorf("validate delete recipe request: %w", err)
	}
	version, err := h.currentVersion(ctx, req.RecipeID)
	if err != nil {
		return err
	}
	_, err = h.store.Append(ctx, events.AggregateRecipe, req.RecipeID, version, "RecipeDeleted", events.RecipeDeleted{
		RecipeID: req.RecipeID,
	})
	if err != nil {
		return fmt.Errorf("append RecipeDeleted: %w", err)
	}
	return nil
}

// currentVersion loads an aggregate's stream to find its current
// version; commands that append a second-or-later event need this since
// the read model doesn't track event versions.
func (h *RecipeHandlers) currentVersion(ctx context.Context, recipeID string) (int, error) {
	stream, err := h.store.Load(ctx, recipeID)
	if err != nil {
		return 0, fmt.Errorf("load recipe stream: %w", err)
	}
	if len(stream) == 0 {
		return 0, &domainerr.NotFound{Kind: "recipe", ID: recipeID}
	}
	return stream[len(stream)-1].Version, nil
}

func dietaryTagStrings(tags []recipe.DietaryTag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}
