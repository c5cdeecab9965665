// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

// Package shopping implements the shopping-list aggregation engine:
// canonicalization, unit normalization, category inference, and the
// subtraction-addition recalculation pattern used on meal replacement.
package shopping

import "strings"

// UnitFamily groups units that can be converted to one canonical unit.
type UnitFamily string

const (
	FamilyMass   UnitFamily = "mass"
	FamilyVolume UnitFamily = "volume"
	FamilyCount  UnitFamily = "count"
)

// CanonicalUnit is the unit every quantity in a family is normalized to
// before aggregation (spec 9's design note: "canonical unit-conversion
// table as data, not code").
const (
	CanonicalMassUnit   = "g"
	CanonicalVolumeUnit = "ml"
	CanonicalCountUnit  = "piece"
)

// conversionKey is the (family, source unit) lookup key.
type conversionKey struct {
	family UnitFamily
	unit   string
}

// conversionTable maps (unit_family, source_unit) -> factor_to_canonical.
// Missing entries mean do-not-combine (spec 9): an unrecognized unit is
// left un-normalized and aggregated under its own literal unit string, so
// it simply won't merge with other quantities of the same ingredient.
var conversionTable = map[conversionKey]float64{
	{FamilyMass, "g"}:    1,
	{FamilyMass, "gram"}: 1,
	{FamilyMass, "grams"}: 1,
	{FamilyMass, "kg"}:   1000,
	{FamilyMass, "kilogram"}: 1000,
	{FamilyMass, "oz"}:   28.3495,
	{FamilyMass, "ounce"}: 28.3495,
	{FamilyMass, "lb"}:   453.592,
	{FamilyMass, "pound"}: 453.592,
	{FamilyMass, "stick"}: 113, // butter stick, per spec 4.9 example

	{FamilyVolume, "ml"}:         1,
	{FamilyVolume, "milliliter"}: 1,
	{FamilyVolume, "l"}:          1000,
	{FamilyVolume, "liter"}:      1000,
	{FamilyVolume, "tsp"}:        4.92892,
	{FamilyVolume, "teaspoon"}:   4.92892,
	{FamilyVolume, "tbsp"}:       14.7868,
	{FamilyVolume, "tablespoon"}: 14.7868,
	{FamilyVolume, "cup"}:        236.588,
	{FamilyVolume, "pint"}:       473.176,
	{FamilyVolume, "quart"}:      946.353,
	{FamilyVolume, "gallon"}:     3785.41,
	{FamilyVolume, "fl oz"}:      29.5735,

	{FamilyCount, "piece"}: 1,
	{FamilyCount, "pieces"}: 1,
	{FamilyCount, "whole"}: 1,
	{FamilyCount, "clove"}: 1,
	{FamilyCount, "cloves"}: 1,
}

// unitFamilies maps each recognized unit string to the family it belongs
// to, used to look up its conversion entry without the caller having to
// know the family up front.
var unitFamilies = map[string]UnitFamily{}

func init() {
	for key := range conversionTable {
		unitFamilies[key.unit] = key.family
	}
}

// Normalize converts quantity in sourceUnit to its family's canonical
// unit. ok is false when sourceUnit is not in the conversion table — the
// caller must then aggregate under the literal unit, per spec 9.
func Normalize(quantity float64, sourceUnit string) (canonicalUnit string, canonicalQuantity float64, ok bool) {
	unit := strings.ToLower(strings.TrimSpace(sourceUnit))
	family, known := unitFamilies[unit]
	if !known {
		return "", 0, false
	}

	factor := conversionTable[conversionKey{family, unit}]
	canonicalQuantity = quantity * factor

	switch family {
	case FamilyMass:
		return CanonicalMassUnit, canonicalQuantity, true
	case FamilyVolume:
		return CanonicalVolumeUnit, canonicalQuantity, true
	case FamilyCount:
		return CanonicalCountUnit, canonicalQuantity, true
	}
	return "", 0, false
}
