// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package mealplan

import (
	"fmt"
	"time"

	"github.com/rghsoftware/mealkit/internal/domain/recipe"
	"github.com/rghsoftware/mealkit/internal/domain/rotation"
)

// buildMainReasoning produces the structured-but-human-readable
// explanation spec 4.6 step 6 asks for, e.g. "Chosen for Friday: fits
// 30-minute weeknight window, Italian cuisine not yet used this batch,
// intermediate-skill appropriate."
func buildMainReasoning(r recipe.Recipe, prefs Preferences, rot *rotation.State, date time.Time) string {
	window := prefs.MaxPrepTimeWeeknightMinutes
	windowLabel := "weeknight"
	if isWeekend(date) {
		window = prefs.MaxPrepTimeWeekendMinutes
		windowLabel = "weekend"
	}

	cuisineUsage := rot.GetCuisineUsage(r.Cuisine)
	var cuisineClause string
	if r.Cuisine == recipe.CuisineNone {
		cuisineClause = "cuisine unclassified"
	} else if cuisineUsage == 0 {
		cuisineClause = fmt.Sprintf("%s cuisine not yet used this batch", titleCase(string(r.Cuisine)))
	} else {
		cuisineClause = fmt.Sprintf("%s cuisine used %d time(s) so far", titleCase(string(r.Cuisine)), cuisineUsage)
	}

	return fmt.Sprintf(
		"Chosen for %s: fits %d-minute %s window, %s, %s-skill appropriate.",
		date.Format("Monday"), window, windowLabel, cuisineClause, string(prefs.Skill),
	)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-32) + s[1:]
}
