// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package shopping

import "strings"

// Category is the shopping-list grouping bucket.
type Category string

const (
	CategoryProduce Category = "produce"
	CategoryDairy   Category = "dairy"
	CategoryMeat    Category = "meat"
	CategoryPantry  Category = "pantry"
	CategoryFrozen  Category = "frozen"
	CategoryBakery  Category = "bakery"
	CategoryOther   Category = "other"
)

// qualifiers are stripped from ingredient names only when a canonical-name
// map entry exists for the stripped form (spec 4.9 step 1): stripping
// blindly would risk merging e.g. "fresh basil" into plain "basil" when no
// such equivalence is known, so qualifiers are only removed when the
// result is itself a recognized canonical name.
var qualifiers = []string{"fresh ", "chopped ", "diced ", "minced ", "sliced ", "ground ", "dried "}

// canonicalNames lists ingredient names the category table (and therefore
// the rest of the aggregation pipeline) recognizes, used to decide
// whether stripping a qualifier is safe.
var canonicalNames = map[string]bool{}

func init() {
	for name := range categoryTable {
		canonicalNames[name] = true
	}
}

// CanonicalizeName lowercases and trims an ingredient name, then strips a
// leading qualifier only if doing so lands on a recognized canonical name.
func CanonicalizeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, q := range qualifiers {
		if strings.HasPrefix(n, q) {
			stripped := strings.TrimPrefix(n, q)
			if canonicalNames[stripped] {
				return stripped
			}
		}
	}
	return n
}

// categoryTable maps a canonical ingredient name to its shopping category.
// Data, not code, per spec 9's design note for the unit table — the same
// principle applies here. Unmatched names fall back to CategoryOther.
var categoryTable = map[string]Category{
	"milk": CategoryDairy, "cheese": CategoryDairy, "butter": CategoryDairy,
	"yogurt": CategoryDairy, "cream": CategoryDairy, "parmesan": CategoryDairy,
	"mozzarella": CategoryDairy, "egg": CategoryDairy, "feta": CategoryDairy,

	"chicken": CategoryMeat, "beef": CategoryMeat, "pork": CategoryMeat,
	"turkey": CategoryMeat, "bacon": CategoryMeat, "sausage": CategoryMeat,
	"shrimp": CategoryMeat, "salmon": CategoryMeat, "tuna": CategoryMeat,

	"tomato": CategoryProduce, "onion": CategoryProduce, "garlic": CategoryProduce,
	"basil": CategoryProduce, "cilantro": CategoryProduce, "lime": CategoryProduce,
	"lemon": CategoryProduce, "bell pepper": CategoryProduce, "carrot": CategoryProduce,
	"potato": CategoryProduce, "spinach": CategoryProduce, "cucumber": CategoryProduce,
	"avocado": CategoryProduce, "ginger": CategoryProduce, "scallion": CategoryProduce,

	"bread": CategoryBakery, "tortilla": CategoryBakery, "bun": CategoryBakery,

	"frozen peas": CategoryFrozen, "frozen corn": CategoryFrozen, "ice cream": CategoryFrozen,

	"flour": CategoryPantry, "rice": CategoryPantry, "pasta": CategoryPantry,
	"olive oil": CategoryPantry, "salt": CategoryPantry, "pepper": CategoryPantry,
	"cumin": CategoryPantry, "oregano": CategoryPantry, "soy sauce": CategoryPantry,
	"sesame oil": CategoryPantry, "turmeric": CategoryPantry, "black beans": CategoryPantry,
}

// InferCategory maps a canonical ingredient name to its shopping category,
// falling back to CategoryOther for anything not in the table.
func InferCategory(canonicalName string) Category {
	if cat, ok := categoryTable[canonicalName]; ok {
		return cat
	}
	return CategoryOther
}
