// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

// Package queries implements the read-only operations spec 6 exposes to
// external collaborators, served exclusively from projections (spec 3's
// "Read-model tables are exclusively owned by their projection handlers;
// queries are read-only" ownership rule).
package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ActiveMealPlan is the row shape for active_meal_plan(user).
type ActiveMealPlan struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	BatchID   string    `db:"batch_id"`
	WeekStart time.Time `db:"week_start"`
	Status    string    `db:"status"`
}

// MealAssignmentRow is one row of active_meal_plan_with_assignments.
type MealAssignmentRow struct {
	ID        string `db:"id"`
	Date      string `db:"date"`
	Course    string `db:"course"`
	RecipeID  string `db:"recipe_id"`
	Reasoning string `db:"reasoning"`
}

// Service wraps the shared read connection for every query in this
// package, following the teacher's repository-per-feature convention
// collapsed into one read-only surface.
type Service struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Service {
	return &Service{db: db}
}

// ActiveMealPlan returns the user's single active meal plan, if any.
func (s *Service) ActiveMealPlan(ctx context.Context, userID string) (*ActiveMealPlan, error) {
	var plan ActiveMealPlan
	err := s.db.GetContext(ctx, &plan, `
		SELECT id, user_id, batch_id, week_start, status FROM meal_plans
		WHERE user_id = ? AND status = 'current'`, userID)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("query active meal plan: %w", err)
	}
	return &plan, nil
}

// ActiveMealPlanWithAssignments returns the active plan plus its 21
// assignments, ordered by date then course.
func (s *Service) ActiveMealPlanWithAssignments(ctx context.Context, userID string) (*ActiveMealPlan, []MealAssignmentRow, error) {
	plan, err := s.ActiveMealPlan(ctx, userID)
	if err != nil || plan == nil {
		return plan, nil, err
	}

	var assignments []MealAssignmentRow
	err = s.db.SelectContext(ctx, &assignments, `
		SELECT id, date, course, recipe_id, reasoning FROM meal_assignments
		WHERE meal_plan_id = ? ORDER BY date ASC,
			CASE course WHEN 'appetizer' THEN 0 WHEN 'main_course' THEN 1 WHEN 'dessert' THEN 2 END`,
		plan.ID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("query assignments: %w", err)
	}
	return plan, assignments, nil
}

// FavoriteCount is the O(1) read-model column lookup (spec 4.12).
func (s *Service) FavoriteCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT favorite_count FROM users WHERE id = ?`, userID)
	if isNoRows(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query favorite count: %w", err)
	}
	return count, nil
}

// RecipeCount is the O(1) read-model column lookup enforcing the
// free-tier cap.
func (s *Service) RecipeCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT recipe_count FROM users WHERE id = ?`, userID)
	if isNoRows(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query recipe count: %w", err)
	}
	return count, nil
}

func isNoRows(err error) bool {
	return err != nil && err.Error() == "sql: no rows in result set"
}
