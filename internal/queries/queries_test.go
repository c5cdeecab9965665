// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package queries

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rghsoftware/mealkit/internal/database"
	"github.com/rghsoftware/mealkit/internal/domainerr"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	schema := []string{
		`CREATE TABLE users (id TEXT PRIMARY KEY, favorite_count INTEGER NOT NULL DEFAULT 0, recipe_count INTEGER NOT NULL DEFAULT 0, updated_at DATETIME NOT NULL)`,
		`CREATE TABLE recipes (id TEXT PRIMARY KEY, user_id TEXT NOT NULL, course TEXT NOT NULL, is_favorite INTEGER NOT NULL DEFAULT 0, deleted_at DATETIME)`,
		`CREATE TABLE meal_plans (id TEXT PRIMARY KEY, user_id TEXT NOT NULL, batch_id TEXT NOT NULL, week_start DATE NOT NULL, status TEXT NOT NULL DEFAULT 'future')`,
		`CREATE TABLE meal_assignments (id TEXT PRIMARY KEY, meal_plan_id TEXT NOT NULL, date DATE NOT NULL, course TEXT NOT NULL, recipe_id TEXT NOT NULL, reasoning TEXT NOT NULL DEFAULT '')`,
		`CREATE TABLE shopping_lists (id TEXT PRIMARY KEY, meal_plan_id TEXT NOT NULL UNIQUE)`,
		`CREATE TABLE shopping_list_items (id TEXT PRIMARY KEY, shopping_list_id TEXT NOT NULL, canonical_name TEXT NOT NULL, quantity TEXT NOT NULL, canonical_unit TEXT NOT NULL, category TEXT NOT NULL, is_collected INTEGER NOT NULL DEFAULT 0)`,
		`CREATE TABLE recipe_rotation_state (user_id TEXT PRIMARY KEY, used_main_course_ids TEXT NOT NULL DEFAULT '[]', used_appetizer_ids TEXT NOT NULL DEFAULT '[]', used_dessert_ids TEXT NOT NULL DEFAULT '[]')`,
	}
	for _, stmt := range schema {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return db
}

func TestActiveMealPlanReturnsNilWhenAbsent(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()
	svc := New(database.Sqlx(db))

	plan, err := svc.ActiveMealPlan(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, plan)
}

func TestActiveMealPlanWithAssignmentsOrdersByDateThenCourse(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()
	svc := New(database.Sqlx(db))
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO meal_plans (id, user_id, batch_id, week_start, status) VALUES ('p1', 'u1', 'b1', '2026-08-03', 'current')`)
	require.NoError(t, err)
	rows := []struct{ id, date, course, recipe string }{
		{"a1", "2026-08-03", "dessert", "r-des"},
		{"a2", "2026-08-03", "appetizer", "r-app"},
		{"a3", "2026-08-03", "main_course", "r-main"},
	}
	for _, r := range rows {
		_, err := db.Exec(`INSERT INTO meal_assignments (id, meal_plan_id, date, course, recipe_id) VALUES (?, 'p1', ?, ?, ?)`, r.id, r.date, r.course, r.recipe)
		require.NoError(t, err)
	}

	plan, assignments, err := svc.ActiveMealPlanWithAssignments(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, plan)
	require.Len(t, assignments, 3)
	assert.Equal(t, "appetizer", assignments[0].Course)
	assert.Equal(t, "main_course", assignments[1].Course)
	assert.Equal(t, "dessert", assignments[2].Course)
}

func TestRotationProgressCountsUsedAgainstFavoritedMains(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()
	svc := New(database.Sqlx(db))
	ctx := context.Background()

	for _, id := range []string{"m1", "m2", "m3"} {
		_, err := db.Exec(`INSERT INTO recipes (id, user_id, course, is_favorite) VALUES (?, 'u1', 'main_course', 1)`, id)
		require.NoError(t, err)
	}
	_, err := db.Exec(`INSERT INTO recipe_rotation_state (user_id, used_main_course_ids) VALUES ('u1', '["m1","m2"]')`)
	require.NoError(t, err)

	progress, err := svc.RotationProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, progress.UsedMainCourses)
	assert.Equal(t, 3, progress.TotalMainCourses)
}

func TestReplacementCandidatesExcludesUsedIDs(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()
	svc := New(database.Sqlx(db))
	ctx := context.Background()

	for _, id := range []string{"m1", "m2", "m3"} {
		_, err := db.Exec(`INSERT INTO recipes (id, user_id, course, is_favorite) VALUES (?, 'u1', 'main_course', 1)`, id)
		require.NoError(t, err)
	}
	_, err := db.Exec(`INSERT INTO recipe_rotation_state (user_id, used_main_course_ids) VALUES ('u1', '["m1"]')`)
	require.NoError(t, err)

	candidates, err := svc.ReplacementCandidates(ctx, "u1", "main_course")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"m2", "m3"}, candidates)
}

func TestItemsFilteredNarrowsByCollectionState(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()
	svc := New(database.Sqlx(db))
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO shopping_list_items (id, shopping_list_id, canonical_name, quantity, canonical_unit, category, is_collected) VALUES
		('i1', 'sl1', 'milk', '1', 'cup', 'dairy', 0),
		('i2', 'sl1', 'eggs', '12', 'unit', 'dairy', 1)`)
	require.NoError(t, err)

	remaining, err := svc.ItemsFiltered(ctx, "sl1", FilterRemaining)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "milk", remaining[0].CanonicalName)

	collected, err := svc.ItemsFiltered(ctx, "sl1", FilterCollected)
	require.NoError(t, err)
	require.Len(t, collected, 1)
	assert.Equal(t, "eggs", collected[0].CanonicalName)

	all, err := svc.ItemsFiltered(ctx, "sl1", FilterAll)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestWeekOptionsReturnsFiveWeeksStartingAtCurrent(t *testing.T) {
	wednesday := time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC)
	options := WeekOptions(wednesday)
	require.Len(t, options, 5)
	assert.Equal(t, time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC), options[0].WeekStart)
	assert.True(t, options[0].IsCurrent)
	assert.Equal(t, "This week", options[0].Label)
	for i := 1; i < 5; i++ {
		assert.False(t, options[i].IsCurrent)
		assert.Equal(t, options[0].WeekStart.AddDate(0, 0, 7*i), options[i].WeekStart)
	}
}

func TestValidateWeekSelectionRejectsNonMonday(t *testing.T) {
	tuesday := time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	err := ValidateWeekSelection(tuesday, today)
	assert.ErrorIs(t, err, domainerr.ErrInvalidWeek)
}

func TestValidateWeekSelectionRejectsPastWeek(t *testing.T) {
	lastWeek := time.Date(2026, 7, 27, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	err := ValidateWeekSelection(lastWeek, today)
	assert.ErrorIs(t, err, domainerr.ErrPastWeekNotAccessible)
}

func TestValidateWeekSelectionRejectsTooFarFuture(t *testing.T) {
	farFuture := time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	err := ValidateWeekSelection(farFuture, today)
	assert.ErrorIs(t, err, domainerr.ErrFutureWeekOutOfRange)
}

func TestValidateWeekSelectionAcceptsCurrentAndWithinWindow(t *testing.T) {
	today := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	assert.NoError(t, ValidateWeekSelection(today, today))
	assert.NoError(t, ValidateWeekSelection(today.AddDate(0, 0, 28), today))
}
