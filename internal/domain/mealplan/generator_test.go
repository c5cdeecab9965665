// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package mealplan

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rghsoftware/mealkit/internal/domain/recipe"
	"github.com/rghsoftware/mealkit/internal/domain/rotation"
	"github.com/rghsoftware/mealkit/internal/domainerr"
)

func sequentialIDs() IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func makeSet(course recipe.Course, count int, prep, cook int) []recipe.Recipe {
	out := make([]recipe.Recipe, count)
	for i := range out {
		out[i] = recipe.Recipe{
			ID:              fmt.Sprintf("%s-%d", course, i),
			Course:          course,
			Complexity:      recipe.ComplexitySimple,
			Cuisine:         recipe.CuisineItalian,
			PrepTimeMinutes: prep,
			CookTimeMinutes: cook,
		}
	}
	return out
}

// mondayOnOrAfter returns the first Monday on or after ref.
func mondayOnOrAfter(ref time.Time) time.Time {
	for ref.Weekday() != time.Monday {
		ref = ref.AddDate(0, 0, 1)
	}
	return ref
}

// TestScenarioS1TimeConstraintFails mirrors S1: mains at 20+20=40 minutes
// exceed a 30-minute weeknight cap, so the first weekday fails.
func TestScenarioS1TimeConstraintFails(t *testing.T) {
	recipes := append(append(
		makeSet(recipe.CourseAppetizer, 7, 0, 0),
		makeSet(recipe.CourseMainCourse, 7, 20, 20)...),
		makeSet(recipe.CourseDessert, 7, 0, 0)...)

	prefs := Preferences{
		MaxPrepTimeWeeknightMinutes: 30,
		MaxPrepTimeWeekendMinutes:   90,
		Skill:                       recipe.SkillIntermediate,
		AvoidConsecutiveComplex:     true,
		VarietyWeight:               0.7,
	}

	weekStart := mondayOnOrAfter(time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC))
	rot := rotation.New()
	_, err := GenerateSingleWeek(recipes, prefs, rot, weekStart, sequentialIDs(), nil)

	require.Error(t, err)
	var nc *domainerr.NoCompatibleRecipes
	require.ErrorAs(t, err, &nc)
	assert.Equal(t, domainerr.CourseMainCourse, nc.Course)
}

// TestScenarioS1Succeeds mirrors S1's follow-up: 10+15=25 minute mains fit
// the 30-minute window and the week completes with 21 assignments, each
// main used exactly once.
func TestScenarioS1Succeeds(t *testing.T) {
	recipes := append(append(
		makeSet(recipe.CourseAppetizer, 7, 0, 0),
		makeSet(recipe.CourseMainCourse, 7, 10, 15)...),
		makeSet(recipe.CourseDessert, 7, 0, 0)...)

	prefs := Preferences{
		MaxPrepTimeWeeknightMinutes: 30,
		MaxPrepTimeWeekendMinutes:   90,
		Skill:                       recipe.SkillIntermediate,
		AvoidConsecutiveComplex:     true,
		VarietyWeight:               0.7,
	}

	weekStart := mondayOnOrAfter(time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC))
	rot := rotation.New()
	plan, err := GenerateSingleWeek(recipes, prefs, rot, weekStart, sequentialIDs(), nil)

	require.NoError(t, err)
	assert.Len(t, plan.Assignments, 21)

	mains := make(map[string]int)
	for _, a := range plan.Assignments {
		if a.Course == recipe.CourseMainCourse {
			mains[a.RecipeID]++
		}
	}
	assert.Len(t, mains, 7)
	for _, count := range mains {
		assert.Equal(t, 1, count)
	}
}

func TestGenerateSingleWeekRejectsNonMonday(t *testing.T) {
	rot := rotation.New()
	tuesday := time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC)
	_, err := GenerateSingleWeek(nil, Preferences{}, rot, tuesday, sequentialIDs(), nil)
	require.Error(t, err)
	var ws *domainerr.InvalidWeekStart
	require.ErrorAs(t, err, &ws)
}

func TestComputeMaxWeeksBoundaries(t *testing.T) {
	assert.Equal(t, 1, ComputeMaxWeeks(7, 7, 7))
	assert.Equal(t, 0, ComputeMaxWeeks(6, 7, 7))
	assert.Equal(t, 5, ComputeMaxWeeks(35, 35, 35))
	assert.Equal(t, 4, ComputeMaxWeeks(100, 34, 100))
}

func TestValidateMultiWeekEligibilityInsufficientRecipes(t *testing.T) {
	_, err := ValidateMultiWeekEligibility(6, 7, 7, 20)
	require.Error(t, err)
	var insuff *domainerr.InsufficientRecipes
	require.ErrorAs(t, err, &insuff)
	assert.Equal(t, 21, insuff.Required)
}

// TestMainCourseUniqueAcrossMultiWeekBatch mirrors P1/I2: no main course
// id repeats across any week of one generation batch.
func TestMainCourseUniqueAcrossMultiWeekBatch(t *testing.T) {
	recipes := append(append(
		makeSet(recipe.CourseAppetizer, 21, 5, 5),
		makeSet(recipe.CourseMainCourse, 21, 10, 10)...),
		makeSet(recipe.CourseDessert, 21, 5, 5)...)

	prefs := Preferences{
		MaxPrepTimeWeeknightMinutes: 60,
		MaxPrepTimeWeekendMinutes:   90,
		Skill:                       recipe.SkillAdvanced,
		VarietyWeight:               0.7,
	}

	rot := rotation.New()
	nextMonday := NextMonday(time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC))
	plan, err := GenerateMultiWeek("user-1", recipes, prefs, rot, nextMonday, sequentialIDs(), nil)
	require.NoError(t, err)
	assert.Len(t, plan.Weeks, 3)

	seen := make(map[string]bool)
	for _, week := range plan.Weeks {
		for _, a := range week.Assignments {
			if a.Course != recipe.CourseMainCourse {
				continue
			}
			assert.False(t, seen[a.RecipeID], "main course %s repeated across batch", a.RecipeID)
			seen[a.RecipeID] = true
		}
	}
	assert.Len(t, seen, 21)
}

func TestNextMondayIsStrictlyAfterToday(t *testing.T) {
	monday := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, monday.Weekday(), time.Monday)
	next := NextMonday(monday)
	assert.True(t, next.After(monday))
	assert.Equal(t, time.Monday, next.Weekday())
}
