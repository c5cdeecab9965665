// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package commands

import (
	"context"
	"database/sql"
	"strconv"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/rghsoftware/mealkit/internal/database"
	"github.com/rghsoftware/mealkit/internal/events"
	"github.com/rghsoftware/mealkit/internal/projections"
)

// openTestDB builds an in-memory schema covering events plus every
// read-model table the commands package queries, mirroring the
// projections package's own in-memory test fixtures.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	schema := []string{
		`CREATE TABLE events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			aggregate_type TEXT NOT NULL,
			aggregate_id TEXT NOT NULL,
			version INTEGER NOT NULL,
			event_type TEXT NOT NULL,
			payload TEXT NOT NULL,
			occurred_at DATETIME NOT NULL,
			UNIQUE (aggregate_id, version)
		)`,
		`CREATE TABLE users (id TEXT PRIMARY KEY, favorite_count INTEGER NOT NULL DEFAULT 0, recipe_count INTEGER NOT NULL DEFAULT 0, updated_at DATETIME NOT NULL)`,
		`CREATE TABLE recipes (
			id TEXT PRIMARY KEY, user_id TEXT NOT NULL, name TEXT NOT NULL,
			ingredients TEXT NOT NULL, steps TEXT NOT NULL,
			prep_time_minutes INTEGER NOT NULL DEFAULT 0, cook_time_minutes INTEGER NOT NULL DEFAULT 0,
			advance_prep INTEGER NOT NULL DEFAULT 0, skill_level TEXT NOT NULL DEFAULT 'beginner',
			course TEXT NOT NULL, complexity TEXT NOT NULL DEFAULT 'simple', cuisine TEXT NOT NULL DEFAULT 'unspecified',
			dietary_tags TEXT NOT NULL DEFAULT '[]', manual_override INTEGER NOT NULL DEFAULT 0,
			is_favorite INTEGER NOT NULL DEFAULT 0, created_at DATETIME NOT NULL, updated_at DATETIME NOT NULL, deleted_at DATETIME
		)`,
		`CREATE TABLE meal_plans (
			id TEXT PRIMARY KEY, user_id TEXT NOT NULL, batch_id TEXT NOT NULL, week_start DATE NOT NULL,
			week_index INTEGER NOT NULL DEFAULT 0, status TEXT NOT NULL DEFAULT 'future', version INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL, updated_at DATETIME NOT NULL
		)`,
		`CREATE UNIQUE INDEX idx_meal_plans_one_active_per_user ON meal_plans (user_id) WHERE status = 'current'`,
		`CREATE TABLE meal_assignments (
			id TEXT PRIMARY KEY, meal_plan_id TEXT NOT NULL, date DATE NOT NULL, course TEXT NOT NULL,
			recipe_id TEXT NOT NULL, reasoning TEXT NOT NULL DEFAULT '', created_at DATETIME NOT NULL, updated_at DATETIME NOT NULL,
			UNIQUE (meal_plan_id, date, course)
		)`,
		`CREATE TABLE shopping_lists (id TEXT PRIMARY KEY, meal_plan_id TEXT NOT NULL UNIQUE, created_at DATETIME NOT NULL, updated_at DATETIME NOT NULL)`,
		`CREATE TABLE shopping_list_items (
			id TEXT PRIMARY KEY, shopping_list_id TEXT NOT NULL, canonical_name TEXT NOT NULL, quantity TEXT NOT NULL,
			canonical_unit TEXT NOT NULL, category TEXT NOT NULL, source_recipe_ids TEXT NOT NULL DEFAULT '[]',
			is_collected INTEGER NOT NULL DEFAULT 0, collected_at DATETIME,
			UNIQUE (shopping_list_id, canonical_name, canonical_unit, category)
		)`,
		`CREATE TABLE recipe_rotation_state (
			user_id TEXT PRIMARY KEY, batch_id TEXT NOT NULL, used_main_course_ids TEXT NOT NULL DEFAULT '[]',
			used_appetizer_ids TEXT NOT NULL DEFAULT '[]', used_dessert_ids TEXT NOT NULL DEFAULT '[]',
			cycle_number INTEGER NOT NULL DEFAULT 1, cuisine_usage TEXT NOT NULL DEFAULT '{}',
			last_complex_meal_date DATE, updated_at DATETIME NOT NULL
		)`,
	}
	for _, stmt := range schema {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return db
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + "-" + strconv.Itoa(n)
	}
}

func seedFavoriteRecipe(t *testing.T, db *sql.DB, id, userID, course string, ingredients, steps []string) {
	t.Helper()
	ingJSON := `[`
	for i, name := range ingredients {
		if i > 0 {
			ingJSON += ","
		}
		ingJSON += `{"name":"` + name + `","quantity":1,"unit":"cup"}`
	}
	ingJSON += `]`

	stepsJSON := `[`
	for i, s := range steps {
		if i > 0 {
			stepsJSON += ","
		}
		stepsJSON += `"` + s + `"`
	}
	stepsJSON += `]`

	_, err := db.Exec(`
		INSERT OR IGNORE INTO users (id, updated_at) VALUES (?, ?)`, userID, time.Now())
	require.NoError(t, err)

	_, err = db.Exec(`
		INSERT INTO recipes (id, user_id, name, ingredients, steps, course, is_favorite, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		id, userID, id, ingJSON, stepsJSON, course, time.Now(), time.Now())
	require.NoError(t, err)
}

func TestCreateRecipeAppendsCreatedThenTagged(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()
	store := events.NewStore(db)
	repo := NewRepository(database.Sqlx(db))
	h := NewRecipeHandlers(store, repo, sequentialIDs("recipe"))

	ctx := context.Background()
	recipeID, err := h.CreateRecipe(ctx, CreateRecipeRequest{
		UserID: "u1",
		Name:   "Spaghetti",
		Ingredients: []IngredientRequest{
			{Name: "pasta", Quantity: 1, Unit: "lb"},
			{Name: "tomato", Quantity: 2, Unit: "cup"},
		},
		Steps:      []string{"Boil", "Combine"},
		Course:     "main_course",
		SkillLevel: "beginner",
	})
	require.NoError(t, err)
	require.NotEmpty(t, recipeID)

	stream, err := store.Load(ctx, recipeID)
	require.NoError(t, err)
	require.Len(t, stream, 2)
	require.Equal(t, "RecipeCreated", stream[0].EventType)
	require.Equal(t, "RecipeTagged", stream[1].EventType)
}

func TestFavoriteRecipeRequiresExistingAggregate(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()
	store := events.NewStore(db)
	repo := NewRepository(database.Sqlx(db))
	h := NewRecipeHandlers(store, repo, sequentialIDs("recipe"))

	err := h.FavoriteRecipe(context.Background(), FavoriteRecipeRequest{UserID: "u1", RecipeID: "missing"})
	require.Error(t, err)
}

func TestGenerateMealPlanRejectsInsufficientRecipes(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()
	store := events.NewStore(db)
	repo := NewRepository(database.Sqlx(db))
	h := NewMealPlanHandlers(store, repo, sequentialIDs("mp"))

	seedFavoriteRecipe(t, db, "r1", "u1", "main_course", []string{"chicken"}, []string{"cook"})

	_, err := h.GenerateMealPlan(context.Background(), GenerateMealPlanRequest{UserID: "u1", SkillLevel: "beginner"})
	require.Error(t, err)
}

func TestGenerateMealPlanSingleWeekSucceedsAndProjectsAssignments(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()
	store := events.NewStore(db)
	sqlxDB := database.Sqlx(db)
	repo := NewRepository(sqlxDB)
	h := NewMealPlanHandlers(store, repo, sequentialIDs("mp"))

	for i := 0; i < 7; i++ {
		seedFavoriteRecipe(t, db, "app-"+string(rune('a'+i)), "u1", "appetizer", []string{"lettuce"}, []string{"toss"})
		seedFavoriteRecipe(t, db, "main-"+string(rune('a'+i)), "u1", "main_course", []string{"chicken breast", "olive oil"}, []string{"sear", "rest"})
		seedFavoriteRecipe(t, db, "des-"+string(rune('a'+i)), "u1", "dessert", []string{"sugar"}, []string{"bake"})
	}

	ctx := context.Background()
	planID, err := h.GenerateMealPlan(ctx, GenerateMealPlanRequest{UserID: "u1", SkillLevel: "beginner"})
	require.NoError(t, err)
	require.NotEmpty(t, planID)

	stream, err := store.Load(ctx, planID)
	require.NoError(t, err)
	require.Len(t, stream, 1)
	require.Equal(t, "MealPlanGenerated", stream[0].EventType)

	handler := projections.NewMealPlanHandler(sqlxDB)
	require.NoError(t, handler.Handle(ctx, stream[0]))

	var assignmentCount int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM meal_assignments WHERE meal_plan_id = ?`, planID).Scan(&assignmentCount))
	require.Equal(t, 21, assignmentCount)
}

func TestMarkItemCollectedRequiresExistingList(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()
	store := events.NewStore(db)
	h := NewShoppingListHandlers(store)

	err := h.MarkItemCollected(context.Background(), MarkItemCollectedRequest{
		ShoppingListID: "missing", CanonicalName: "milk", CanonicalUnit: "cup", Collected: true,
	})
	require.Error(t, err)
}
