// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package mealplan

import (
	"math/rand/v2"
	"time"

	"github.com/rghsoftware/mealkit/internal/domain/recipe"
	"github.com/rghsoftware/mealkit/internal/domain/rotation"
	"github.com/rghsoftware/mealkit/internal/domainerr"
)

// recipesByCourse splits a pre-filtered recipe pool into its three
// scheduled courses plus accompaniments. Accompaniments are filtered by
// the caller at pairing time, not pre-split by date.
type recipesByCourse struct {
	appetizers     []recipe.Recipe
	mains          []recipe.Recipe
	desserts       []recipe.Recipe
	accompaniments []recipe.Recipe
}

func splitByCourse(recipes []recipe.Recipe) recipesByCourse {
	var out recipesByCourse
	for _, r := range recipes {
		switch r.Course {
		case recipe.CourseAppetizer:
			out.appetizers = append(out.appetizers, r)
		case recipe.CourseMainCourse:
			out.mains = append(out.mains, r)
		case recipe.CourseDessert:
			out.desserts = append(out.desserts, r)
		case recipe.CourseAccompaniment:
			out.accompaniments = append(out.accompaniments, r)
		}
	}
	return out
}

// GenerateSingleWeek implements generate_single_week (spec 4.6). rot is
// mutated in place; on any failure the caller must discard rot's
// mutations (e.g. by operating on a Clone and only committing on success)
// since partial state must never be observable.
func GenerateSingleWeek(
	recipes []recipe.Recipe,
	prefs Preferences,
	rot *rotation.State,
	weekStart time.Time,
	newID IDGenerator,
	rng *rand.Rand,
) (WeekMealPlan, error) {
	if weekStart.Weekday() != time.Monday {
		return WeekMealPlan{}, &domainerr.InvalidWeekStart{Date: weekStart.Format("2006-01-02")}
	}

	byCourse := splitByCourse(recipes)

	plan := WeekMealPlan{
		ID:                newID(),
		StartDate:         weekStart,
		EndDate:           weekStart.AddDate(0, 0, 6),
		Status:            StatusFuture,
		IsLocked:          false,
		GenerationBatchID: "", // filled by the multi-week caller
		CreatedAt:         time.Now().UTC(),
	}

	for offset := 0; offset < 7; offset++ {
		date := weekStart.AddDate(0, 0, offset)

		appetizer, failed := pickCyclic(byCourse.appetizers, rot.IsAppetizerAvailable, rot.MarkAppetizerUsed, rot.ResetAppetizersIfExhausted)
		if failed {
			return WeekMealPlan{}, &domainerr.NoCompatibleRecipes{Course: domainerr.CourseAppetizer, Date: date.Format("2006-01-02")}
		}

		main, ok := SelectMainCourse(byCourse.mains, prefs, rot, date)
		if !ok {
			return WeekMealPlan{}, &domainerr.NoCompatibleRecipes{Course: domainerr.CourseMainCourse, Date: date.Format("2006-01-02")}
		}
		rot.MarkMainUsed(main.ID)

		var accompanimentID *string
		if acc, ok := SelectAccompaniment(main, byCourse.accompaniments, rng); ok {
			id := acc.ID
			accompanimentID = &id
		}

		dessert, dessertFailed := pickCyclic(byCourse.desserts, rot.IsDessertAvailable, rot.MarkDessertUsed, rot.ResetDessertsIfExhausted)
		if dessertFailed {
			return WeekMealPlan{}, &domainerr.NoCompatibleRecipes{Course: domainerr.CourseDessert, Date: date.Format("2006-01-02")}
		}

		reasoning := buildMainReasoning(main, prefs, rot, date)

		rot.IncrementCuisineUsage(main.Cuisine)
		if main.Complexity == recipe.ComplexityComplex {
			rot.UpdateLastComplexMealDate(date)
		}

		plan.Assignments = append(plan.Assignments,
			MealAssignment{ID: newID(), Date: date, Course: recipe.CourseAppetizer, RecipeID: appetizer.ID},
			MealAssignment{ID: newID(), Date: date, Course: recipe.CourseMainCourse, RecipeID: main.ID, AccompanimentRecipeID: accompanimentID, AssignmentReasoning: reasoning},
			MealAssignment{ID: newID(), Date: date, Course: recipe.CourseDessert, RecipeID: dessert.ID},
		)
	}

	return plan, nil
}

// pickCyclic implements the shared appetizer/dessert cycling policy
// (spec 4.6 steps 1 and 4): reset first if exhausted, then take the first
// available candidate in input order, and mark it used. Returns a zero
// recipe and true (signaling failure) if the candidate list is empty.
func pickCyclic(
	candidates []recipe.Recipe,
	isAvailable func(string) bool,
	markUsed func(string),
	resetIfExhausted func(int),
) (recipe.Recipe, bool) {
	resetIfExhausted(len(candidates))
	for _, c := range candidates {
		if isAvailable(c.ID) {
			markUsed(c.ID)
			return c, false
		}
	}
	return recipe.Recipe{}, true
}

// GenerateMultiWeek implements generate_multi_week_meal_plans (spec 4.7):
// iterates GenerateSingleWeek over a shared mutable rotation, failing the
// whole batch atomically if any week fails.
func GenerateMultiWeek(
	userID string,
	recipes []recipe.Recipe,
	prefs Preferences,
	rot *rotation.State,
	nextMonday time.Time,
	newID IDGenerator,
	rng *rand.Rand,
) (MultiWeekMealPlan, error) {
	byCourse := splitByCourse(recipes)
	totalFavorited := len(recipes)

	maxWeeks, err := ValidateMultiWeekEligibility(len(byCourse.appetizers), len(byCourse.mains), len(byCourse.desserts), totalFavorited)
	if err != nil {
		return MultiWeekMealPlan{}, err
	}

	working := rot.Clone()
	batchID := newID()

	weeks := make([]WeekMealPlan, 0, maxWeeks)
	for w := 0; w < maxWeeks; w++ {
		weekStart := nextMonday.AddDate(0, 0, 7*w)
		week, err := GenerateSingleWeek(recipes, prefs, working, weekStart, newID, rng)
		if err != nil {
			// Atomic failure: nothing generated so far is returned or
			// projected; the caller's working rotation is discarded.
			return MultiWeekMealPlan{}, err
		}
		week.GenerationBatchID = batchID
		week.UserID = userID
		weeks = append(weeks, week)
	}

	return MultiWeekMealPlan{
		BatchID:       batchID,
		UserID:        userID,
		Weeks:         weeks,
		FinalRotation: working.Clone(),
	}, nil
}

// NextMonday returns the next Monday strictly after today (spec 4.7).
func NextMonday(today time.Time) time.Time {
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	daysUntilMonday := (int(time.Monday) - int(today.Weekday()) + 7) % 7
	if daysUntilMonday == 0 {
		daysUntilMonday = 7
	}
	return today.AddDate(0, 0, daysUntilMonday)
}
