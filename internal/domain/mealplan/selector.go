// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package mealplan

import (
	"math/rand/v2"
	"time"

	"github.com/rghsoftware/mealkit/internal/domain/recipe"
	"github.com/rghsoftware/mealkit/internal/domain/rotation"
)

func isWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// SelectMainCourse implements select_main_course_with_preferences (spec
// 4.4): hard-filters availableMains then scores survivors by cuisine
// variety, returning the highest-scoring candidate. Returns false if no
// candidate survives the hard filters.
func SelectMainCourse(availableMains []recipe.Recipe, prefs Preferences, rot *rotation.State, date time.Time) (recipe.Recipe, bool) {
	maxTime := prefs.MaxPrepTimeWeeknightMinutes
	if isWeekend(date) {
		maxTime = prefs.MaxPrepTimeWeekendMinutes
	}

	dayBefore := date.AddDate(0, 0, -1)
	avoidComplex := prefs.AvoidConsecutiveComplex &&
		rot.GetLastComplexMealDate() != nil &&
		sameDate(*rot.GetLastComplexMealDate(), dayBefore)

	var candidates []recipe.Recipe
	for _, r := range availableMains {
		if r.TotalTimeMinutes() > maxTime {
			continue
		}
		if !skillAllows(prefs.Skill, r.Complexity) {
			continue
		}
		if avoidComplex && r.Complexity == recipe.ComplexityComplex {
			continue
		}
		if !rot.IsMainAvailable(r.ID) {
			continue
		}
		candidates = append(candidates, r)
	}

	if len(candidates) == 0 {
		return recipe.Recipe{}, false
	}

	varietyWeight := prefs.VarietyWeight
	bestIdx := 0
	bestScore := -1.0
	for i, c := range candidates {
		score := varietyWeight * (1.0 / float64(rot.GetCuisineUsage(c.Cuisine)+1))
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
		// Ties keep the earlier (lower-index) candidate: input order is
		// preserved because we only replace on strictly greater score.
	}
	return candidates[bestIdx], true
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// SelectAccompaniment implements select_accompaniment (spec 4.5). rng may
// be nil, in which case math/rand/v2's package-level source is used;
// tests inject a seeded *rand.Rand for determinism.
func SelectAccompaniment(main recipe.Recipe, available []recipe.Recipe, rng *rand.Rand) (recipe.Recipe, bool) {
	if !main.AcceptsAccompaniment {
		return recipe.Recipe{}, false
	}

	candidates := available
	if len(main.PreferredAccompaniments) > 0 {
		preferred := make(map[string]bool, len(main.PreferredAccompaniments))
		for _, cat := range main.PreferredAccompaniments {
			preferred[cat] = true
		}
		candidates = nil
		for _, a := range available {
			if preferred[a.AccompanimentCategory] {
				candidates = append(candidates, a)
			}
		}
	}

	if len(candidates) == 0 {
		return recipe.Recipe{}, false
	}

	var idx int
	if rng != nil {
		idx = rng.IntN(len(candidates))
	} else {
		idx = rand.IntN(len(candidates))
	}
	return candidates[idx], true
}
