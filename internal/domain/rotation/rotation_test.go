// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package rotation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rghsoftware/mealkit/internal/domain/recipe"
)

func TestMainCourseNeverResetsWithinBatch(t *testing.T) {
	s := New()
	s.MarkMainUsed("m1")
	// Even if every main in the library were exhausted there is no
	// reset operation exposed for mains, unlike appetizers/desserts.
	assert.False(t, s.IsMainAvailable("m1"))
}

func TestAppetizerResetsOnExhaustion(t *testing.T) {
	s := New()
	s.MarkAppetizerUsed("a1")
	s.MarkAppetizerUsed("a2")
	assert.Equal(t, 1, s.CycleNumber)

	s.ResetAppetizersIfExhausted(2)
	assert.Equal(t, 2, s.CycleNumber)
	assert.True(t, s.IsAppetizerAvailable("a1"))
	assert.True(t, s.IsAppetizerAvailable("a2"))
}

func TestAppetizerDoesNotResetBeforeExhaustion(t *testing.T) {
	s := New()
	s.MarkAppetizerUsed("a1")
	s.ResetAppetizersIfExhausted(3)
	assert.Equal(t, 1, s.CycleNumber)
	assert.False(t, s.IsAppetizerAvailable("a1"))
}

func TestCuisineUsageTracking(t *testing.T) {
	s := New()
	assert.Equal(t, 0, s.GetCuisineUsage(recipe.CuisineItalian))
	s.IncrementCuisineUsage(recipe.CuisineItalian)
	s.IncrementCuisineUsage(recipe.CuisineItalian)
	assert.Equal(t, 2, s.GetCuisineUsage(recipe.CuisineItalian))
}

func TestCloneIsIndependent(t *testing.T) {
	s := New()
	s.MarkMainUsed("m1")
	clone := s.Clone()
	clone.MarkMainUsed("m2")

	assert.True(t, s.IsMainAvailable("m2"))
	assert.False(t, clone.IsMainAvailable("m1"))
}

func TestPruneStaleIDsDropsDeletedRecipes(t *testing.T) {
	s := New()
	s.MarkMainUsed("m1")
	s.MarkMainUsed("m2")

	s.PruneStaleIDs(map[string]struct{}{"m1": {}})
	assert.True(t, s.IsMainAvailable("m2"))
	assert.False(t, s.IsMainAvailable("m1"))
}

func TestLastComplexMealDateRoundTrip(t *testing.T) {
	s := New()
	assert.Nil(t, s.GetLastComplexMealDate())
	date := time.Date(2026, 7, 27, 0, 0, 0, 0, time.UTC)
	s.UpdateLastComplexMealDate(date)
	assert.Equal(t, date, *s.GetLastComplexMealDate())
}
