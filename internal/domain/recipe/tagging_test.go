// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ingredientNames(names ...string) []Ingredient {
	out := make([]Ingredient, len(names))
	for i, n := range names {
		out[i] = Ingredient{Name: n, Quantity: 1, Unit: "piece"}
	}
	return out
}

func steps(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "step"
	}
	return out
}

// TestComplexityScenarioS4 mirrors scenario S4: a recipe tagged, then
// edited twice. Under the literal 30/60 thresholds the first two scores
// stay Simple and the 4-hour advance prep lifts the third to Moderate.
func TestComplexityScenarioS4(t *testing.T) {
	simple := Recipe{Ingredients: ingredientNames("a", "b", "c", "d", "e"), Instructions: steps(4)}
	score := ComplexityScore(simple)
	assert.InDelta(t, 3.1, score, 0.01)
	assert.Equal(t, ComplexitySimple, ComplexityFromScore(score))

	edited := Recipe{
		Ingredients:  ingredientNames("a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"),
		Instructions: steps(8),
	}
	score = ComplexityScore(edited)
	assert.InDelta(t, 6.8, score, 0.01)
	assert.Equal(t, ComplexitySimple, ComplexityFromScore(score))

	marinated := edited
	marinated.AdvancePrep = AdvancePrep{Required: true, Hours: 4}
	score = ComplexityScore(marinated)
	assert.InDelta(t, 36.8, score, 0.01)
	assert.Equal(t, ComplexityModerate, ComplexityFromScore(score))
}

func TestComplexityThresholdBoundaries(t *testing.T) {
	assert.Equal(t, ComplexitySimple, ComplexityFromScore(29.99))
	assert.Equal(t, ComplexityModerate, ComplexityFromScore(30))
	assert.Equal(t, ComplexityModerate, ComplexityFromScore(60))
	assert.Equal(t, ComplexityComplex, ComplexityFromScore(60.01))
}

func TestInferCuisineRequiresMinimumKeywords(t *testing.T) {
	// Only one Italian keyword: no match.
	assert.Equal(t, CuisineNone, InferCuisine(ingredientNames("basil", "chicken breast")))

	// Two Italian keywords: matches.
	assert.Equal(t, CuisineItalian, InferCuisine(ingredientNames("basil", "parmesan", "chicken breast")))
}

func TestInferCuisineTieBreaksByEnumOrder(t *testing.T) {
	// "olive oil" and "oregano" appear in both Italian and Mediterranean
	// signatures, giving both two matches; Italian wins the tie.
	tagged := InferCuisine(ingredientNames("olive oil", "oregano"))
	assert.Equal(t, CuisineItalian, tagged)
}

func TestDetectDietaryTagsConservative(t *testing.T) {
	vegan := ingredientNames("rice", "black beans", "bell pepper")
	tags := DetectDietaryTags(vegan)
	assert.Contains(t, tags, DietaryVegan)
	assert.Contains(t, tags, DietaryVegetarian)
	assert.Contains(t, tags, DietaryGlutenFree)

	withChicken := ingredientNames("rice", "chicken breast")
	tags = DetectDietaryTags(withChicken)
	assert.NotContains(t, tags, DietaryVegetarian)
	assert.NotContains(t, tags, DietaryVegan)

	withCheese := ingredientNames("rice", "cheddar cheese")
	tags = DetectDietaryTags(withCheese)
	assert.Contains(t, tags, DietaryVegetarian)
	assert.NotContains(t, tags, DietaryVegan)

	withFlour := ingredientNames("all-purpose flour", "egg")
	tags = DetectDietaryTags(withFlour)
	assert.NotContains(t, tags, DietaryGlutenFree)
}
