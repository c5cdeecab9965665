// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

// Package mealplan implements the main-course and accompaniment selectors
// and the single-week/multi-week generators that assign recipes to a
// user's 21 weekly meal slots.
package mealplan

import "github.com/rghsoftware/mealkit/internal/domain/recipe"

// Preferences carries the per-user knobs the generator and selectors
// consult. Default VarietyWeight is 0.7 per spec 4.4.
type Preferences struct {
	MaxPrepTimeWeeknightMinutes int
	MaxPrepTimeWeekendMinutes   int
	Skill                       recipe.SkillLevel
	AvoidConsecutiveComplex     bool
	VarietyWeight               float64
}

// allowedComplexities maps skill level to the complexities a candidate
// main course may have, per spec 4.4 hard-constraint #2.
var allowedComplexities = map[recipe.SkillLevel]map[recipe.Complexity]bool{
	recipe.SkillBeginner: {
		recipe.ComplexitySimple: true,
	},
	recipe.SkillIntermediate: {
		recipe.ComplexitySimple:   true,
		recipe.ComplexityModerate: true,
	},
	recipe.SkillAdvanced: {
		recipe.ComplexitySimple:   true,
		recipe.ComplexityModerate: true,
		recipe.ComplexityComplex:  true,
	},
}

func skillAllows(skill recipe.SkillLevel, c recipe.Complexity) bool {
	allowed, ok := allowedComplexities[skill]
	if !ok {
		return false
	}
	return allowed[c]
}
