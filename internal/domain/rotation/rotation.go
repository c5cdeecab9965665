// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

// Package rotation implements the per-user RotationState: the variety
// enforcement structure carried across weeks within one generation batch.
// Grounded on the teacher's food_variety feature, which models the same
// "don't repeat what you just ate" idea over a narrower domain.
package rotation

import (
	"time"

	"github.com/rghsoftware/mealkit/internal/domain/recipe"
)

// State is the mutable rotation structure threaded through a generation
// batch. Use New for an empty rotation: the zero value's maps are nil, so
// the Mark* and IncrementCuisineUsage methods panic on it.
type State struct {
	UsedMainCourseIDs map[string]struct{}
	UsedAppetizerIDs  map[string]struct{}
	UsedDessertIDs    map[string]struct{}
	CuisineUsage      map[recipe.Cuisine]int
	LastComplexMealDate *time.Time
	CycleNumber       int
}

// New returns an empty rotation state.
func New() *State {
	return &State{
		UsedMainCourseIDs: make(map[string]struct{}),
		UsedAppetizerIDs:  make(map[string]struct{}),
		UsedDessertIDs:    make(map[string]struct{}),
		CuisineUsage:      make(map[recipe.Cuisine]int),
		CycleNumber:       1,
	}
}

// Clone deep-copies the state, used to take the end-of-batch snapshot
// without aliasing the live generator's maps (spec 9's "rotation snapshot"
// design note).
func (s *State) Clone() *State {
	clone := &State{
		UsedMainCourseIDs: make(map[string]struct{}, len(s.UsedMainCourseIDs)),
		UsedAppetizerIDs:  make(map[string]struct{}, len(s.UsedAppetizerIDs)),
		UsedDessertIDs:    make(map[string]struct{}, len(s.UsedDessertIDs)),
		CuisineUsage:      make(map[recipe.Cuisine]int, len(s.CuisineUsage)),
		CycleNumber:       s.CycleNumber,
	}
	for k := range s.UsedMainCourseIDs {
		clone.UsedMainCourseIDs[k] = struct{}{}
	}
	for k := range s.UsedAppetizerIDs {
		clone.UsedAppetizerIDs[k] = struct{}{}
	}
	for k := range s.UsedDessertIDs {
		clone.UsedDessertIDs[k] = struct{}{}
	}
	for k, v := range s.CuisineUsage {
		clone.CuisineUsage[k] = v
	}
	if s.LastComplexMealDate != nil {
		t := *s.LastComplexMealDate
		clone.LastComplexMealDate = &t
	}
	return clone
}

// IsMainAvailable reports whether a main course has not yet been used in
// this batch. Mains never reset within a batch (spec 4.2).
func (s *State) IsMainAvailable(id string) bool {
	_, used := s.UsedMainCourseIDs[id]
	return !used
}

// MarkMainUsed records a main course as consumed for the rest of the batch.
func (s *State) MarkMainUsed(id string) {
	s.UsedMainCourseIDs[id] = struct{}{}
}

// IsAppetizerAvailable reports whether an appetizer has not been used in
// the current cycle.
func (s *State) IsAppetizerAvailable(id string) bool {
	_, used := s.UsedAppetizerIDs[id]
	return !used
}

// MarkAppetizerUsed records an appetizer as consumed for the current cycle.
func (s *State) MarkAppetizerUsed(id string) {
	s.UsedAppetizerIDs[id] = struct{}{}
}

// ResetAppetizersIfExhausted clears the used-appetizer set and increments
// CycleNumber once every appetizer in the user's library has been used.
func (s *State) ResetAppetizersIfExhausted(totalCount int) {
	if totalCount > 0 && len(s.UsedAppetizerIDs) >= totalCount {
		s.UsedAppetizerIDs = make(map[string]struct{})
		s.CycleNumber++
	}
}

// IsDessertAvailable mirrors IsAppetizerAvailable for desserts.
func (s *State) IsDessertAvailable(id string) bool {
	_, used := s.UsedDessertIDs[id]
	return !used
}

// MarkDessertUsed mirrors MarkAppetizerUsed for desserts.
func (s *State) MarkDessertUsed(id string) {
	s.UsedDessertIDs[id] = struct{}{}
}

// ResetDessertsIfExhausted mirrors ResetAppetizersIfExhausted for desserts.
func (s *State) ResetDessertsIfExhausted(totalCount int) {
	if totalCount > 0 && len(s.UsedDessertIDs) >= totalCount {
		s.UsedDessertIDs = make(map[string]struct{})
		s.CycleNumber++
	}
}

// GetCuisineUsage returns how many times cuisine has been used so far.
func (s *State) GetCuisineUsage(cuisine recipe.Cuisine) int {
	return s.CuisineUsage[cuisine]
}

// IncrementCuisineUsage records one more use of cuisine.
func (s *State) IncrementCuisineUsage(cuisine recipe.Cuisine) {
	s.CuisineUsage[cuisine]++
}

// GetLastComplexMealDate returns the date a Complex main was last assigned,
// if any.
func (s *State) GetLastComplexMealDate() *time.Time {
	return s.LastComplexMealDate
}

// UpdateLastComplexMealDate records date as the most recent Complex-main
// assignment.
func (s *State) UpdateLastComplexMealDate(date time.Time) {
	s.LastComplexMealDate = &date
}

// PruneStaleIDs intersects each used-id set with the set of ids still
// present in currentFavorites, dropping ids for recipes deleted or
// unfavorited since they were marked used. Spec 4.2's cleanup policy: run
// this before the next generation using the rotation.
func (s *State) PruneStaleIDs(currentFavorites map[string]struct{}) {
	s.UsedMainCourseIDs = intersect(s.UsedMainCourseIDs, currentFavorites)
	s.UsedAppetizerIDs = intersect(s.UsedAppetizerIDs, currentFavorites)
	s.UsedDessertIDs = intersect(s.UsedDessertIDs, currentFavorites)
}

func intersect(set, allowed map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(set))
	for id := range set {
		if _, ok := allowed[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}
