// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package shopping

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func normalizeLine(line IngredientLine) (name, unit string, quantity decimal.Decimal) {
	name = CanonicalizeName(line.Name)
	canonicalUnit, canonicalQty, ok := Normalize(line.Quantity, line.Unit)
	if !ok {
		// Unrecognized unit: spec 9 says do-not-combine, so the line is
		// aggregated under its own literal (lowercased) unit rather than
		// a shared canonical one.
		return name, strings.ToLower(strings.TrimSpace(line.Unit)), decimal.NewFromFloat(line.Quantity).Round(3)
	}
	return name, canonicalUnit, decimal.NewFromFloat(canonicalQty).Round(3)
}

// Aggregate implements spec 4.9's "on MealPlanGenerated" path: merges
// ingredient lines from every assigned recipe into grouped, summed items.
func Aggregate(lines []IngredientLine) []Item {
	index := make(map[itemKey]*Item)
	var order []itemKey

	for _, line := range lines {
		name, unit, qty := normalizeLine(line)
		category := InferCategory(name)
		key := itemKey{name: name, unit: unit, category: category}

		item, exists := index[key]
		if !exists {
			v := key.item()
			index[key] = &v
			item = index[key]
			order = append(order, key)
		}
		item.Quantity = item.Quantity.Add(qty)
		item.SourceRecipeIDs[line.RecipeID] = struct{}{}
	}

	out := make([]Item, 0, len(order))
	for _, key := range order {
		out = append(out, *index[key])
	}
	return out
}

// Recalculate implements the subtraction-addition pattern spec 4.9
// prescribes for MealReplaced: subtract removed's contributions, add
// added's (each line rounded to 3 decimal places by normalizeLine), drop
// anything that nets to zero, and preserve
// is_collected by (canonical_name, canonical_unit, category).
func Recalculate(current []Item, removed, added []IngredientLine) []Item {
	index := make(map[itemKey]*Item)
	var order []itemKey
	for _, item := range current {
		key := itemKey{name: item.CanonicalName, unit: item.CanonicalUnit, category: item.Category}
		v := item
		index[key] = &v
		order = append(order, key)
	}

	for _, line := range removed {
		name, unit, qty := normalizeLine(line)
		category := InferCategory(name)
		key := itemKey{name: name, unit: unit, category: category}
		if item, ok := index[key]; ok {
			item.Quantity = item.Quantity.Sub(qty)
			delete(item.SourceRecipeIDs, line.RecipeID)
		}
	}

	for _, line := range added {
		name, unit, qty := normalizeLine(line)
		category := InferCategory(name)
		key := itemKey{name: name, unit: unit, category: category}
		item, exists := index[key]
		if !exists {
			v := key.item()
			index[key] = &v
			item = index[key]
			order = append(order, key)
		}
		item.Quantity = item.Quantity.Add(qty)
		item.SourceRecipeIDs[line.RecipeID] = struct{}{}
	}

	out := make([]Item, 0, len(order))
	for _, key := range order {
		item := index[key]
		if item.Quantity.LessThanOrEqual(decimal.Zero) {
			continue // negative transients and zeroed items are removed, per spec 4.9
		}
		out = append(out, *item)
	}
	return out
}

// Reset implements ShoppingListReset: clears is_collected on every item,
// keeping the list id stable (caller owns persistence of that id).
func Reset(items []Item) []Item {
	out := make([]Item, len(items))
	for i, item := range items {
		item.IsCollected = false
		item.CollectedAt = nil
		out[i] = item
	}
	return out
}

// MarkCollected implements ShoppingListItemCollected: idempotently sets
// one item's is_collected to the event's authoritative target value, not
// a toggle (spec 4.9).
func MarkCollected(items []Item, canonicalName, canonicalUnit string, category Category, collected bool, now time.Time) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	for i := range out {
		if out[i].CanonicalName == canonicalName && out[i].CanonicalUnit == canonicalUnit && out[i].Category == category {
			out[i].IsCollected = collected
			if collected {
				t := now
				out[i].CollectedAt = &t
			} else {
				out[i].CollectedAt = nil
			}
		}
	}
	return out
}
