// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package recipe

import "strings"

// Complexity thresholds, per spec 4.11. The 30/60 split is taken
// literally rather than normalized (see SPEC_FULL.md's resolution of the
// advance-prep-scaling open question).
const (
	complexityWeightIngredients = 0.3
	complexityWeightSteps       = 0.4
	complexityWeightAdvancePrep = 0.3

	simpleThreshold   = 30.0
	complexThresholdUpper = 60.0
)

// ComplexityScore computes the raw score behind the Complexity tag.
// Exposed separately from Tag so callers (and tests, e.g. scenario S4) can
// assert on the numeric score as well as the bucket.
func ComplexityScore(r Recipe) float64 {
	advanceMultiplier := 0.0
	switch {
	case !r.AdvancePrep.Required:
		advanceMultiplier = 0
	case r.AdvancePrep.Hours < 4:
		advanceMultiplier = 50
	default:
		advanceMultiplier = 100
	}

	return float64(len(r.Ingredients))*complexityWeightIngredients +
		float64(len(r.Instructions))*complexityWeightSteps +
		advanceMultiplier*complexityWeightAdvancePrep
}

// ComplexityFromScore buckets a raw score into a Complexity tier.
func ComplexityFromScore(score float64) Complexity {
	switch {
	case score < simpleThreshold:
		return ComplexitySimple
	case score <= complexThresholdUpper:
		return ComplexityModerate
	default:
		return ComplexityComplex
	}
}

// cuisineSignature lists the keywords whose presence (case-insensitive,
// substring match against ingredient names) counts toward a cuisine match,
// and the minimum number of distinct matching keywords required.
type cuisineSignature struct {
	cuisine      Cuisine
	keywords     []string
	minKeywords  int
}

var cuisineSignatures = []cuisineSignature{
	{
		cuisine:     CuisineItalian,
		keywords:    []string{"basil", "oregano", "parmesan", "mozzarella", "pasta", "tomato", "olive oil", "prosciutto"},
		minKeywords: 2,
	},
	{
		cuisine:     CuisineAsian,
		keywords:    []string{"soy sauce", "ginger", "sesame oil", "rice vinegar", "miso", "scallion", "fish sauce", "noodle"},
		minKeywords: 2,
	},
	{
		cuisine:     CuisineMexican,
		keywords:    []string{"cilantro", "lime", "cumin", "jalapeno", "tortilla", "queso", "chili powder", "avocado"},
		minKeywords: 2,
	},
	{
		cuisine:     CuisineIndian,
		keywords:    []string{"turmeric", "cumin", "garam masala", "cardamom", "coriander", "ghee", "curry", "cilantro"},
		minKeywords: 2,
	},
	{
		cuisine:     CuisineMediterranean,
		keywords:    []string{"olive oil", "feta", "chickpea", "lemon", "oregano", "tahini", "yogurt", "cucumber"},
		minKeywords: 2,
	},
}

// InferCuisine pattern-matches an ingredient list against known cuisine
// signatures. Multi-match resolves to the highest keyword-match count;
// ties resolve by cuisineEnumOrder. No signature clearing its minimum
// yields CuisineNone.
func InferCuisine(ingredients []Ingredient) Cuisine {
	names := make([]string, len(ingredients))
	for i, ing := range ingredients {
		names[i] = strings.ToLower(ing.Name)
	}
	joined := strings.Join(names, " | ")

	bestCount := 0
	counts := make(map[Cuisine]int)
	for _, sig := range cuisineSignatures {
		matched := 0
		for _, kw := range sig.keywords {
			if strings.Contains(joined, kw) {
				matched++
			}
		}
		if matched >= sig.minKeywords {
			counts[sig.cuisine] = matched
			if matched > bestCount {
				bestCount = matched
			}
		}
	}

	if bestCount == 0 {
		return CuisineNone
	}
	for _, c := range cuisineEnumOrder {
		if counts[c] == bestCount {
			return c
		}
	}
	return CuisineNone
}

// dietaryDisqualifiers lists, per tag, ingredient-name substrings whose
// presence rules the tag out. Detection must never false-positive: any
// ambiguous ingredient is treated as disqualifying.
var dietaryDisqualifiers = map[DietaryTag][]string{
	DietaryVegetarian: {
		"beef", "pork", "chicken", "turkey", "lamb", "bacon", "sausage", "fish", "shrimp",
		"salmon", "tuna", "anchovy", "gelatin", "lard", "prosciutto", "pepperoni",
	},
	DietaryVegan: {
		"beef", "pork", "chicken", "turkey", "lamb", "bacon", "sausage", "fish", "shrimp",
		"salmon", "tuna", "anchovy", "gelatin", "lard", "prosciutto", "pepperoni",
		"milk", "cheese", "butter", "cream", "yogurt", "egg", "honey", "mayonnaise", "whey", "parmesan",
	},
	DietaryGlutenFree: {
		"wheat", "flour", "barley", "rye", "pasta", "bread", "breadcrumb", "soy sauce",
		"couscous", "malt", "beer", "seitan", "noodle",
	},
}

// DetectDietaryTags returns every tag whose disqualifier list has no match
// among the recipe's ingredients.
func DetectDietaryTags(ingredients []Ingredient) []DietaryTag {
	names := make([]string, len(ingredients))
	for i, ing := range ingredients {
		names[i] = strings.ToLower(ing.Name)
	}
	joined := strings.Join(names, " | ")

	var tags []DietaryTag
	for _, tag := range []DietaryTag{DietaryVegetarian, DietaryVegan, DietaryGlutenFree} {
		disqualified := false
		for _, d := range dietaryDisqualifiers[tag] {
			if strings.Contains(joined, d) {
				disqualified = true
				break
			}
		}
		if !disqualified {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Tag derives a recipe's complexity, cuisine, and dietary tags from its
// current fields. Callers honor ManualOverride themselves (spec I8): Tag
// has no knowledge of the override flag, it always computes fresh.
func Tag(r Recipe) (Complexity, Cuisine, []DietaryTag) {
	score := ComplexityScore(r)
	return ComplexityFromScore(score), InferCuisine(r.Ingredients), DetectDietaryTags(r.Ingredients)
}
