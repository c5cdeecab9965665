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

func openRotationTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE recipe_rotation_state (
		user_id TEXT PRIMARY KEY, batch_id TEXT NOT NULL DEFAULT '', used_main_course_ids TEXT NOT NULL DEFAULT '[]',
		used_appetizer_ids TEXT NOT NULL DEFAULT '[]', used_dessert_ids TEXT NOT NULL DEFAULT '[]',
		cycle_number INTEGER NOT NULL DEFAULT 0, cuisine_usage TEXT NOT NULL DEFAULT '{}',
		last_complex_meal_date DATE, updated_at DATETIME NOT NULL
	)`)
	require.NoError(t, err)
	return db
}

func TestRotationStateHandlerInsertsSnapshot(t *testing.T) {
	db := openRotationTestDB(t)
	defer db.Close()
	h := NewRotationStateHandler(database.Sqlx(db))
	ctx := context.Background()

	ev, err := events.NewEvent(events.AggregateMealPlan, "b1", 1, "MultiWeekMealPlanGenerated", events.MultiWeekMealPlanGenerated{
		BatchID: "b1", UserID: "u1", WeekCount: 2,
		RotationSnapshot: events.RotationSnapshot{
			UsedMainCourseIDs: []string{"m1", "m2"},
			UsedAppetizerIDs:  []string{"a1"},
			UsedDessertIDs:    []string{"d1"},
			CycleNumber:       0,
			CuisineUsage:      map[string]int{"italian": 2},
		},
	})
	require.NoError(t, err)
	require.NoError(t, h.Handle(ctx, ev))

	var mains string
	var cycle int
	require.NoError(t, db.QueryRow(`SELECT used_main_course_ids, cycle_number FROM recipe_rotation_state WHERE user_id = 'u1'`).Scan(&mains, &cycle))
	require.JSONEq(t, `["m1","m2"]`, mains)
	require.Equal(t, 0, cycle)
}

func TestRotationStateHandlerOverwritesOnConflict(t *testing.T) {
	db := openRotationTestDB(t)
	defer db.Close()
	h := NewRotationStateHandler(database.Sqlx(db))
	ctx := context.Background()

	first, err := events.NewEvent(events.AggregateMealPlan, "b1", 1, "MultiWeekMealPlanGenerated", events.MultiWeekMealPlanGenerated{
		BatchID: "b1", UserID: "u1", WeekCount: 1,
		RotationSnapshot: events.RotationSnapshot{UsedMainCourseIDs: []string{"m1"}, CycleNumber: 0, CuisineUsage: map[string]int{}},
	})
	require.NoError(t, err)
	require.NoError(t, h.Handle(ctx, first))

	second, err := events.NewEvent(events.AggregateMealPlan, "b2", 1, "MultiWeekMealPlanGenerated", events.MultiWeekMealPlanGenerated{
		BatchID: "b2", UserID: "u1", WeekCount: 2,
		RotationSnapshot: events.RotationSnapshot{UsedMainCourseIDs: []string{"m1", "m2", "m3"}, CycleNumber: 1, CuisineUsage: map[string]int{}},
	})
	require.NoError(t, err)
	require.NoError(t, h.Handle(ctx, second))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM recipe_rotation_state WHERE user_id = 'u1'`).Scan(&count))
	require.Equal(t, 1, count)

	var mains, batchID string
	var cycle int
	require.NoError(t, db.QueryRow(`SELECT used_main_course_ids, cycle_number, batch_id FROM recipe_rotation_state WHERE user_id = 'u1'`).Scan(&mains, &cycle, &batchID))
	require.JSONEq(t, `["m1","m2","m3"]`, mains)
	require.Equal(t, 1, cycle)
	require.Equal(t, "b2", batchID)
}

func TestRotationStateHandlerIgnoresOtherEventTypes(t *testing.T) {
	db := openRotationTestDB(t)
	defer db.Close()
	h := NewRotationStateHandler(database.Sqlx(db))
	ctx := context.Background()

	ev, err := events.NewEvent(events.AggregateMealPlan, "p1", 1, "MealPlanGenerated", events.MealPlanGenerated{MealPlanID: "p1", UserID: "u1"})
	require.NoError(t, err)
	require.NoError(t, h.Handle(ctx, ev))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM recipe_rotation_state`).Scan(&count))
	require.Equal(t, 0, count)
}
