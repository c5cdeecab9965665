// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

// Package commands implements the write-side operations spec 6 lists:
// each handler validates its request, loads whatever read-model state it
// needs to decide, appends the resulting event(s) through the event
// store, and lets the projections catch up asynchronously.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/rghsoftware/mealkit/internal/domain/recipe"
	"github.com/rghsoftware/mealkit/internal/domain/rotation"
)

// Repository reads the read-model state command handlers need to make
// decisions (favorited recipes, current rotation state) — it never
// writes; every write goes through the event store.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

type recipeRow struct {
	ID              string `db:"id"`
	UserID          string `db:"user_id"`
	Name            string `db:"name"`
	Ingredients     string `db:"ingredients"`
	Steps           string `db:"steps"`
	PrepTimeMinutes int    `db:"prep_time_minutes"`
	CookTimeMinutes int    `db:"cook_time_minutes"`
	AdvancePrep     bool   `db:"advance_prep"`
	SkillLevel      string `db:"skill_level"`
	Course          string `db:"course"`
	Complexity      string `db:"complexity"`
	Cuisine         string `db:"cuisine"`
	DietaryTags     string `db:"dietary_tags"`
	ManualOverride  bool   `db:"manual_override"`
	IsFavorite      bool   `db:"is_favorite"`
}

type ingredientJSON struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

func (r recipeRow) toDomain() (recipe.Recipe, error) {
	var ingredients []ingredientJSON
	if err := json.Unmarshal([]byte(r.Ingredients), &ingredients); err != nil {
		return recipe.Recipe{}, fmt.Errorf("unmarshal ingredients for recipe %s: %w", r.ID, err)
	}
	var steps []string
	if err := json.Unmarshal([]byte(r.Steps), &steps); err != nil {
		return recipe.Recipe{}, fmt.Errorf("unmarshal steps for recipe %s: %w", r.ID, err)
	}
	var dietary []string
	if err := json.Unmarshal([]byte(r.DietaryTags), &dietary); err != nil {
		return recipe.Recipe{}, fmt.Errorf("unmarshal dietary tags for recipe %s: %w", r.ID, err)
	}

	domainIngredients := make([]recipe.Ingredient, len(ingredients))
	for i, ing := range ingredients {
		domainIngredients[i] = recipe.Ingredient{Name: ing.Name, Quantity: ing.Quantity, Unit: ing.Unit}
	}
	dietaryTags := make([]recipe.DietaryTag, len(dietary))
	for i, d := range dietary {
		dietaryTags[i] = recipe.DietaryTag(d)
	}

	return recipe.Recipe{
		ID:              r.ID,
		OwnerID:         r.UserID,
		Title:           r.Name,
		Ingredients:     domainIngredients,
		Instructions:    steps,
		PrepTimeMinutes: r.PrepTimeMinutes,
		CookTimeMinutes: r.CookTimeMinutes,
		AdvancePrep:     recipe.AdvancePrep{Required: r.AdvancePrep},
		Complexity:      recipe.Complexity(r.Complexity),
		Cuisine:         recipe.Cuisine(r.Cuisine),
		DietaryTags:     dietaryTags,
		IsFavorite:      r.IsFavorite,
		Course:          recipe.Course(r.Course),
		ManualOverride:  r.ManualOverride,
	}, nil
}

// FavoritedRecipes loads every favorited, non-deleted recipe owned by
// userID, decoded into the domain shape the generator package consumes.
func (r *Repository) FavoritedRecipes(ctx context.Context, userID string) ([]recipe.Recipe, error) {
	var rows []recipeRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, name, ingredients, steps, prep_time_minutes, cook_time_minutes,
			advance_prep, skill_level, course, complexity, cuisine, dietary_tags, manual_override, is_favorite
		FROM recipes WHERE user_id = ? AND is_favorite = 1 AND deleted_at IS NULL`, userID)
	if err != nil {
		return nil, fmt.Errorf("query favorited recipes: %w", err)
	}

	recipes := make([]recipe.Recipe, 0, len(rows))
	for _, row := range rows {
		r, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	return recipes, nil
}

// RecipeByID loads a single recipe by id, used by tagging and
// replacement-candidate validation.
func (r *Repository) RecipeByID(ctx context.Context, recipeID string) (recipe.Recipe, error) {
	var row recipeRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, user_id, name, ingredients, steps, prep_time_minutes, cook_time_minutes,
			advance_prep, skill_level, course, complexity, cuisine, dietary_tags, manual_override, is_favorite
		FROM recipes WHERE id = ? AND deleted_at IS NULL`, recipeID)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("query recipe %s: %w", recipeID, err)
	}
	return row.toDomain()
}

// RotationState loads the current materialized rotation state for
// userID, or a fresh State if none has been materialized yet.
func (r *Repository) RotationState(ctx context.Context, userID string) (*rotation.State, error) {
	var row struct {
		UsedMainCourseIDs   string  `db:"used_main_course_ids"`
		UsedAppetizerIDs    string  `db:"used_appetizer_ids"`
		UsedDessertIDs      string  `db:"used_dessert_ids"`
		CycleNumber         int     `db:"cycle_number"`
		CuisineUsage        string  `db:"cuisine_usage"`
		LastComplexMealDate *string `db:"last_complex_meal_date"`
	}
	err := r.db.GetContext(ctx, &row, `SELECT used_main_course_ids, used_appetizer_ids, used_dessert_ids,
		cycle_number, cuisine_usage, last_complex_meal_date FROM recipe_rotation_state WHERE user_id = ?`, userID)
	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			return rotation.New(), nil
		}
		return nil, fmt.Errorf("query rotation state: %w", err)
	}

	st := rotation.New()
	var mains, appetizers, desserts []string
	if err := json.Unmarshal([]byte(row.UsedMainCourseIDs), &mains); err != nil {
		return nil, fmt.Errorf("unmarshal used main course ids: %w", err)
	}
	if err := json.Unmarshal([]byte(row.UsedAppetizerIDs), &appetizers); err != nil {
		return nil, fmt.Errorf("unmarshal used appetizer ids: %w", err)
	}
	if err := json.Unmarshal([]byte(row.UsedDessertIDs), &desserts); err != nil {
		return nil, fmt.Errorf("unmarshal used dessert ids: %w", err)
	}
	for _, id := range mains {
		st.UsedMainCourseIDs[id] = struct{}{}
	}
	for _, id := range appetizers {
		st.UsedAppetizerIDs[id] = struct{}{}
	}
	for _, id := range desserts {
		st.UsedDessertIDs[id] = struct{}{}
	}
	if err := json.Unmarshal([]byte(row.CuisineUsage), &st.CuisineUsage); err != nil {
		return nil, fmt.Errorf("unmarshal cuisine usage: %w", err)
	}
	st.CycleNumber = row.CycleNumber
	if row.LastComplexMealDate != nil {
		t, err := time.Parse("2006-01-02", *row.LastComplexMealDate)
		if err == nil {
			st.LastComplexMealDate = &t
		}
	}
	return st, nil
}
