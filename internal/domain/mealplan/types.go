// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package mealplan

import (
	"time"

	"github.com/rghsoftware/mealkit/internal/domain/recipe"
	"github.com/rghsoftware/mealkit/internal/domain/rotation"
)

// Status is a WeekMealPlan's lifecycle stage.
type Status string

const (
	StatusFuture   Status = "future"
	StatusCurrent  Status = "current"
	StatusPast     Status = "past"
	StatusArchived Status = "archived"
)

// MealAssignment is one of the 21 weekly slots.
type MealAssignment struct {
	ID                   string
	MealPlanID           string
	Date                 time.Time
	Course               recipe.Course
	RecipeID             string
	AccompanimentRecipeID *string
	PrepRequired         bool
	AssignmentReasoning  string
	ReplacedAt           *time.Time
}

// WeekMealPlan is one generated week: 21 assignments across 7 days.
type WeekMealPlan struct {
	ID                 string
	UserID             string
	StartDate          time.Time // Monday
	EndDate            time.Time // Sunday
	Status             Status
	IsLocked           bool
	GenerationBatchID  string
	ShoppingListID     string
	Assignments        []MealAssignment
	CreatedAt          time.Time
}

// MultiWeekMealPlan is the output of one multi-week generation invocation.
type MultiWeekMealPlan struct {
	BatchID      string
	UserID       string
	Weeks        []WeekMealPlan
	FinalRotation *rotation.State
}
