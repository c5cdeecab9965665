// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package mealplan

import "github.com/rghsoftware/mealkit/internal/domainerr"

// MinRecipesForMealPlan gates the single-week generate action from the UI
// (spec 4.8). internal/config loads a setting of the same name, but this
// constant is what the check uses.
const MinRecipesForMealPlan = 7

// MinRecipesForMultiWeek is the distinct 21-recipe threshold gating
// multi-week expansion (spec 4.7).
const MinRecipesForMultiWeek = 21

// MaxWeeksCap is the fixed upper bound on multi-week generation (spec 1's
// Non-goals: "5-week multi-week generation is a fixed upper bound").
const MaxWeeksCap = 5

// ValidateSufficientRecipes implements the spec 4.8 pre-flight check.
func ValidateSufficientRecipes(favoritedNonDeletedCount int) error {
	if favoritedNonDeletedCount < MinRecipesForMealPlan {
		return &domainerr.InsufficientRecipes{Required: MinRecipesForMealPlan, Current: favoritedNonDeletedCount}
	}
	return nil
}

// ComputeMaxWeeks implements spec 4.7's max_weeks formula: min(5,
// min(appetizers/7, mains/7, desserts/7)), counted per recipe type, not
// on the total (per scenario S6's clarification).
func ComputeMaxWeeks(appetizerCount, mainCount, dessertCount int) int {
	weeks := appetizerCount / 7
	if v := mainCount / 7; v < weeks {
		weeks = v
	}
	if v := dessertCount / 7; v < weeks {
		weeks = v
	}
	if weeks > MaxWeeksCap {
		weeks = MaxWeeksCap
	}
	return weeks
}

// ValidateMultiWeekEligibility wraps ComputeMaxWeeks with the
// InsufficientRecipes failure spec 4.7 requires when max_weeks < 1.
func ValidateMultiWeekEligibility(appetizerCount, mainCount, dessertCount, totalFavorited int) (int, error) {
	maxWeeks := ComputeMaxWeeks(appetizerCount, mainCount, dessertCount)
	if maxWeeks < 1 {
		return 0, &domainerr.InsufficientRecipes{Required: MinRecipesForMultiWeek, Current: totalFavorited}
	}
	return maxWeeks, nil
}
