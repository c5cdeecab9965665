// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package projections

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/rghsoftware/mealkit/internal/database"
	"github.com/rghsoftware/mealkit/internal/events"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	schema := []string{
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
	}
	for _, stmt := range schema {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return db
}

func TestRecipeHandlerCreatedIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()
	h := NewRecipeHandler(database.Sqlx(db))

	ev, err := events.NewEvent(events.AggregateRecipe, "r1", 1, "RecipeCreated", events.RecipeCreated{
		RecipeID: "r1", UserID: "u1", Name: "Pasta",
		Ingredients: []events.RecipeIngredientData{{Name: "pasta", Quantity: 1, Unit: "lb"}},
		Steps:       []string{"boil"},
		Course:      "main_course",
		SkillLevel:  "beginner",
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, h.Handle(ctx, ev))
	require.NoError(t, h.Handle(ctx, ev)) // redelivery

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM recipes WHERE id = 'r1'`).Scan(&count))
	require.Equal(t, 1, count)

	var recipeCount int
	require.NoError(t, db.QueryRow(`SELECT recipe_count FROM users WHERE id = 'u1'`).Scan(&recipeCount))
	require.Equal(t, 1, recipeCount)
}

func TestRecipeHandlerFavoriteToggleIsIdempotentAndFloorsAtZero(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()
	h := NewRecipeHandler(database.Sqlx(db))
	ctx := context.Background()

	created, err := events.NewEvent(events.AggregateRecipe, "r1", 1, "RecipeCreated", events.RecipeCreated{
		RecipeID: "r1", UserID: "u1", Name: "Pasta",
		Ingredients: []events.RecipeIngredientData{{Name: "pasta", Quantity: 1, Unit: "lb"}},
		Steps:       []string{"boil"},
		Course:      "main_course",
		SkillLevel:  "beginner",
	})
	require.NoError(t, err)
	require.NoError(t, h.Handle(ctx, created))

	fav, err := events.NewEvent(events.AggregateRecipe, "r1", 2, "RecipeFavorited", events.RecipeFavorited{RecipeID: "r1", UserID: "u1"})
	require.NoError(t, err)
	require.NoError(t, h.Handle(ctx, fav))
	require.NoError(t, h.Handle(ctx, fav)) // redelivery must not double-increment

	var favCount int
	require.NoError(t, db.QueryRow(`SELECT favorite_count FROM users WHERE id = 'u1'`).Scan(&favCount))
	require.Equal(t, 1, favCount)

	unfav, err := events.NewEvent(events.AggregateRecipe, "r1", 3, "RecipeUnfavorited", events.RecipeUnfavorited{RecipeID: "r1", UserID: "u1"})
	require.NoError(t, err)
	require.NoError(t, h.Handle(ctx, unfav))
	require.NoError(t, h.Handle(ctx, unfav))

	require.NoError(t, db.QueryRow(`SELECT favorite_count FROM users WHERE id = 'u1'`).Scan(&favCount))
	require.Equal(t, 0, favCount)
}
