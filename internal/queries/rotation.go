// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package queries

import (
	"context"
	"encoding/json"
	"fmt"
)

// RotationProgress is the (used, total) pair rotation_progress(user)
// returns (spec 6).
type RotationProgress struct {
	UsedMainCourses int
	TotalMainCourses int
}

// RotationProgress reports how many of the user's favorited main courses
// have been used in the current batch versus how many exist in total.
func (s *Service) RotationProgress(ctx context.Context, userID string) (RotationProgress, error) {
	var usedJSON string
	err := s.db.GetContext(ctx, &usedJSON, `SELECT used_main_course_ids FROM recipe_rotation_state WHERE user_id = ?`, userID)
	if isNoRows(err) {
		usedJSON = "[]"
	} else if err != nil {
		return RotationProgress{}, fmt.Errorf("query rotation state: %w", err)
	}

	var used []string
	if err := json.Unmarshal([]byte(usedJSON), &used); err != nil {
		return RotationProgress{}, fmt.Errorf("unmarshal used main course ids: %w", err)
	}

	var total int
	err = s.db.GetContext(ctx, &total, `
		SELECT COUNT(*) FROM recipes
		WHERE user_id = ? AND course = 'main_course' AND is_favorite = 1 AND deleted_at IS NULL`, userID)
	if err != nil {
		return RotationProgress{}, fmt.Errorf("count favorited mains: %w", err)
	}

	return RotationProgress{UsedMainCourses: len(used), TotalMainCourses: total}, nil
}

// ReplacementCandidates returns the ids of favorited, non-deleted recipes
// of course not currently in the user's used-id set for that course, for
// the ReplaceMealSlot command to choose from.
func (s *Service) ReplacementCandidates(ctx context.Context, userID, course string) ([]string, error) {
	column := map[string]string{
		"appetizer":   "used_appetizer_ids",
		"main_course": "used_main_course_ids",
		"dessert":     "used_dessert_ids",
	}[course]
	if column == "" {
		return nil, fmt.Errorf("unknown course %q", course)
	}

	var usedJSON string
	err := s.db.GetContext(ctx, &usedJSON, `SELECT `+column+` FROM recipe_rotation_state WHERE user_id = ?`, userID)
	if isNoRows(err) {
		usedJSON = "[]"
	} else if err != nil {
		return nil, fmt.Errorf("query rotation state: %w", err)
	}

	var used []string
	if err := json.Unmarshal([]byte(usedJSON), &used); err != nil {
		return nil, fmt.Errorf("unmarshal used ids: %w", err)
	}
	usedSet := make(map[string]bool, len(used))
	for _, id := range used {
		usedSet[id] = true
	}

	var allIDs []string
	err = s.db.SelectContext(ctx, &allIDs, `
		SELECT id FROM recipes WHERE user_id = ? AND course = ? AND is_favorite = 1 AND deleted_at IS NULL`, userID, course)
	if err != nil {
		return nil, fmt.Errorf("query candidate recipes: %w", err)
	}

	var candidates []string
	for _, id := range allIDs {
		if !usedSet[id] {
			candidates = append(candidates, id)
		}
	}
	return candidates, nil
}
