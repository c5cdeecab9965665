// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package shopping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeNameStripsRecognizedQualifier(t *testing.T) {
	assert.Equal(t, "basil", CanonicalizeName("Fresh Basil"))
}

func TestCanonicalizeNamePreservesUnrecognizedQualifierResult(t *testing.T) {
	// "chopped saffron threads" strips to "saffron threads", which is not
	// a recognized canonical name, so the qualifier must be preserved.
	assert.Equal(t, "chopped saffron threads", CanonicalizeName("chopped saffron threads"))
}

func TestCanonicalizeNameLowercasesAndTrims(t *testing.T) {
	assert.Equal(t, "garlic", CanonicalizeName("  GARLIC  "))
}

func TestInferCategoryFallsBackToOther(t *testing.T) {
	assert.Equal(t, CategoryOther, InferCategory("dragon fruit"))
}

func TestInferCategoryKnownIngredient(t *testing.T) {
	assert.Equal(t, CategoryDairy, InferCategory("milk"))
	assert.Equal(t, CategoryMeat, InferCategory("chicken"))
	assert.Equal(t, CategoryProduce, InferCategory("tomato"))
}
