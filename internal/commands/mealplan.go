// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package commands

import (
	"context"
	cryptorand "crypto/rand"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/rghsoftware/mealkit/internal/domain/mealplan"
	"github.com/rghsoftware/mealkit/internal/domain/recipe"
	"github.com/rghsoftware/mealkit/internal/domain/shopping"
	"github.com/rghsoftware/mealkit/internal/domainerr"
	"github.com/rghsoftware/mealkit/internal/events"
)

// MealPlanHandlers implements the meal-plan-aggregate commands of spec 6:
// generate_meal_plan, generate_multi_week_meal_plans, replace_meal_slot,
// regenerate_week.
type MealPlanHandlers struct {
	store    *events.Store
	repo     *Repository
	validate *validator.Validate
	newID    mealplan.IDGenerator
}

func NewMealPlanHandlers(store *events.Store, repo *Repository, newID mealplan.IDGenerator) *MealPlanHandlers {
	return &MealPlanHandlers{store: store, repo: repo, validate: validator.New(), newID: newID}
}

// defaultMaxPrepTimeWeeknightMinutes and its weekend counterpart are the
// spec 4.4 defaults used until per-user overrides are exposed through a
// settings command.
const (
	defaultMaxPrepTimeWeeknightMinutes = 45
	defaultMaxPrepTimeWeekendMinutes   = 120
	defaultVarietyWeight               = 0.7
)

func preferencesFor(skillLevel string) mealplan.Preferences {
	return mealplan.Preferences{
		Skill:                       recipe.SkillLevel(skillLevel),
		MaxPrepTimeWeeknightMinutes: defaultMaxPrepTimeWeeknightMinutes,
		MaxPrepTimeWeekendMinutes:   defaultMaxPrepTimeWeekendMinutes,
		AvoidConsecutiveComplex:     true,
		VarietyWeight:               defaultVarietyWeight,
	}
}

// GenerateMealPlan implements generate_meal_plan / generate_multi_week_meal_plans
// (spec 4.6/4.7): loads the user's favorited recipes and rotation state,
// runs the single- or multi-week generator, and appends the resulting
// events. A week_start_date of zero value asks for the next Monday.
func (h *MealPlanHandlers) GenerateMealPlan(ctx context.Context, req GenerateMealPlanRequest) (string, error) {
	if err := h.validate.Struct(req); err != nil {
		return "", fmt.Errorf("validate generate meal plan request: %w", err)
	}

	recipes, err := h.repo.FavoritedRecipes(ctx, req.UserID)
	if err != nil {
		return "", fmt.Errorf("load favorited recipes: %w", err)
	}
	if err := mealplan.ValidateSufficientRecipes(len(recipes)); err != nil {
		return "", err
	}

	rot, err := h.repo.RotationState(ctx, req.UserID)
	if err != nil {
		return "", fmt.Errorf("load rotation state: %w", err)
	}
	favoriteIDs := make(map[string]struct{}, len(recipes))
	for _, r := range recipes {
		favoriteIDs[r.ID] = struct{}{}
	}
	rot.PruneStaleIDs(favoriteIDs)

	prefs := preferencesFor(req.SkillLevel)

	if req.MultiWeek {
		batch, err := mealplan.GenerateMultiWeek(req.UserID, recipes, prefs, rot, mealplan.NextMonday(time.Now()), h.newID, rand.New(rand.NewPCG(seedPart(), seedPart())))
		if err != nil {
			return "", err
		}
		if err := h.persistBatch(ctx, batch, recipes); err != nil {
			return "", err
		}
		return batch.BatchID, nil
	}

	weekStart := mealplan.NextMonday(time.Now())
	if req.WeekStart != "" {
		parsed, err := time.Parse("2006-01-02", req.WeekStart)
		if err != nil {
			return "", &domainerr.InvalidWeekStart{Date: req.WeekStart}
		}
		weekStart = parsed
	}

	week, err := mealplan.GenerateSingleWeek(recipes, prefs, rot, weekStart, h.newID, rand.New(rand.NewPCG(seedPart(), seedPart())))
	if err != nil {
		return "", err
	}
	week.UserID = req.UserID

	if err := h.persistWeek(ctx, week, 0); err != nil {
		return "", err
	}
	if err := h.generateShoppingList(ctx, week, recipes); err != nil {
		return "", err
	}
	return week.ID, nil
}

// persistBatch stores every week of a multi-week batch and, per spec
// 4.9, aggregates a shopping list for each week individually — the same
// one-list-per-week invariant the single-week path keeps at line 114
// above. recipes is the same favorited pool the batch was generated
// from, needed to resolve each assignment's ingredient lines.
func (h *MealPlanHandlers) persistBatch(ctx context.Context, batch mealplan.MultiWeekMealPlan, recipes []recipe.Recipe) error {
	for i, week := range batch.Weeks {
		week.GenerationBatchID = batch.BatchID
		if err := h.persistWeek(ctx, week, i); err != nil {
			return err
		}
		if err := h.generateShoppingList(ctx, week, recipes); err != nil {
			return err
		}
	}

	mains := setToSlice(batch.FinalRotation.UsedMainCourseIDs)
	appetizers := setToSlice(batch.FinalRotation.UsedAppetizerIDs)
	desserts := setToSlice(batch.FinalRotation.UsedDessertIDs)
	cuisineUsage := make(map[string]int, len(batch.FinalRotation.CuisineUsage))
	for cuisine, count := range batch.FinalRotation.CuisineUsage {
		cuisineUsage[string(cuisine)] = count
	}
	var lastComplex *string
	if d := batch.FinalRotation.LastComplexMealDate; d != nil {
		s := d.Format("2006-01-02")
		lastComplex = &s
	}

	_, err := h.store.Create(ctx, events.AggregateMealPlan, batch.BatchID, "MultiWeekMealPlanGenerated", events.MultiWeekMealPlanGenerated{
		BatchID:   batch.BatchID,
		UserID:    batch.UserID,
		WeekCount: len(batch.Weeks),
		RotationSnapshot: events.RotationSnapshot{
			UsedMainCourseIDs:   mains,
			UsedAppetizerIDs:    appetizers,
			UsedDessertIDs:      desserts,
			CycleNumber:         batch.FinalRotation.CycleNumber,
			CuisineUsage:        cuisineUsage,
			LastComplexMealDate: lastComplex,
		},
	})
	if err != nil {
		return fmt.Errorf("append MultiWeekMealPlanGenerated: %w", err)
	}
	return nil
}

func (h *MealPlanHandlers) persistWeek(ctx context.Context, week mealplan.WeekMealPlan, weekIndex int) error {
	_, err := h.store.Create(ctx, events.AggregateMealPlan, week.ID, "MealPlanGenerated", events.MealPlanGenerated{
		MealPlanID:  week.ID,
		UserID:      week.UserID,
		BatchID:     week.GenerationBatchID,
		WeekStart:   week.StartDate.Format("2006-01-02"),
		WeekIndex:   weekIndex,
		Assignments: assignmentData(week.Assignments),
	})
	if err != nil {
		return fmt.Errorf("append MealPlanGenerated: %w", err)
	}
	return nil
}

// generateShoppingList implements the "on MealPlanGenerated" aggregation
// path of spec 4.9, scoped to one week's assignments.
func (h *MealPlanHandlers) generateShoppingList(ctx context.Context, week mealplan.WeekMealPlan, pool []recipe.Recipe) error {
	byID := make(map[string]recipe.Recipe, len(pool))
	for _, r := range pool {
		byID[r.ID] = r
	}

	var lines []shopping.IngredientLine
	for _, a := range week.Assignments {
		r, ok := byID[a.RecipeID]
		if !ok {
			continue
		}
		for _, ing := range r.Ingredients {
			lines = append(lines, shopping.IngredientLine{RecipeID: r.ID, Name: ing.Name, Quantity: ing.Quantity, Unit: ing.Unit})
		}
	}

	items := shopping.Aggregate(lines)
	listID := h.newID()
	_, err := h.store.Create(ctx, events.AggregateShoppingList, listID, "ShoppingListGenerated", events.ShoppingListGenerated{
		ShoppingListID: listID,
		MealPlanID:     week.ID,
		Items:          itemData(items),
	})
	if err != nil {
		return fmt.Errorf("append ShoppingListGenerated: %w", err)
	}
	return nil
}

// ReplaceMealSlot implements replace_meal_slot (spec 6): swaps one
// assignment's recipe and recalculates the shopping list via the
// subtraction-addition pattern.
func (h *MealPlanHandlers) ReplaceMealSlot(ctx context.Context, req ReplaceMealSlotRequest) error {
	if err := h.validate.Struct(req); err != nil {
		return fmt.Errorf("validate replace meal slot request: %w", err)
	}

	version, err := h.currentVersion(ctx, req.MealPlanID)
	if err != nil {
		return err
	}

	oldRecipeID, oldReasoning, err := h.repo.AssignedRecipeID(ctx, req.MealPlanID, req.Date, req.Course)
	if err != nil {
		return err
	}

	newRecipe, err := h.repo.RecipeByID(ctx, req.NewRecipeID)
	if err != nil {
		return &domainerr.NotFound{Kind: "recipe", ID: req.NewRecipeID}
	}

	_, err = h.store.Append(ctx, events.AggregateMealPlan, req.MealPlanID, version, "MealSlotReplaced", events.MealSlotReplaced{
		MealPlanID:  req.MealPlanID,
		Date:        req.Date,
		Course:      req.Course,
		OldRecipeID: oldRecipeID,
		NewRecipeID: req.NewRecipeID,
		Reasoning:   oldReasoning,
	})
	if err != nil {
		return fmt.Errorf("append MealSlotReplaced: %w", err)
	}

	return h.recalculateShoppingList(ctx, req.MealPlanID, oldRecipeID, newRecipe)
}

func (h *MealPlanHandlers) recalculateShoppingList(ctx context.Context, mealPlanID, oldRecipeID string, newRecipe recipe.Recipe) error {
	listID, currentItems, err := h.repo.ShoppingListForMealPlan(ctx, mealPlanID)
	if err != nil {
		return err
	}
	if listID == "" {
		return nil // no shopping list generated yet for this plan
	}

	oldRecipe, err := h.repo.RecipeByID(ctx, oldRecipeID)
	if err != nil {
		return fmt.Errorf("load replaced recipe: %w", err)
	}

	var removed, added []shopping.IngredientLine
	for _, ing := range oldRecipe.Ingredients {
		removed = append(removed, shopping.IngredientLine{RecipeID: oldRecipeID, Name: ing.Name, Quantity: ing.Quantity, Unit: ing.Unit})
	}
	for _, ing := range newRecipe.Ingredients {
		added = append(added, shopping.IngredientLine{RecipeID: newRecipe.ID, Name: ing.Name, Quantity: ing.Quantity, Unit: ing.Unit})
	}

	recalculated := shopping.Recalculate(currentItems, removed, added)

	version, err := h.currentVersion(ctx, listID)
	if err != nil {
		return err
	}
	_, err = h.store.Append(ctx, events.AggregateShoppingList, listID, version, "ShoppingListRecalculated", events.ShoppingListRecalculated{
		ShoppingListID: listID,
		Items:          itemData(recalculated),
	})
	if err != nil {
		return fmt.Errorf("append ShoppingListRecalculated: %w", err)
	}
	return nil
}

// RegenerateWeek implements regenerate_week: re-runs the single-week
// generator for an existing plan's week, keeping the same rotation state
// (spec 4.6's "regeneration reuses the same selection rules").
func (h *MealPlanHandlers) RegenerateWeek(ctx context.Context, req RegenerateWeekRequest) error {
	if err := h.validate.Struct(req); err != nil {
		return fmt.Errorf("validate regenerate week request: %w", err)
	}

	weekStart, userID, err := h.repo.MealPlanWeekStart(ctx, req.MealPlanID)
	if err != nil {
		return err
	}

	recipes, err := h.repo.FavoritedRecipes(ctx, userID)
	if err != nil {
		return fmt.Errorf("load favorited recipes: %w", err)
	}
	if err := mealplan.ValidateSufficientRecipes(len(recipes)); err != nil {
		return err
	}

	rot, err := h.repo.RotationState(ctx, userID)
	if err != nil {
		return fmt.Errorf("load rotation state: %w", err)
	}

	week, err := mealplan.GenerateSingleWeek(recipes, preferencesFor(req.SkillLevel), rot, weekStart, h.newID, rand.New(rand.NewPCG(seedPart(), seedPart())))
	if err != nil {
		return err
	}

	version, err := h.currentVersion(ctx, req.MealPlanID)
	if err != nil {
		return err
	}
	_, err = h.store.Append(ctx, events.AggregateMealPlan, req.MealPlanID, version, "WeekRegenerated", events.WeekRegenerated{
		MealPlanID:  req.MealPlanID,
		WeekStart:   weekStart.Format("2006-01-02"),
		Assignments: assignmentData(week.Assignments),
	})
	if err != nil {
		return fmt.Errorf("append WeekRegenerated: %w", err)
	}
	return nil
}

func (h *MealPlanHandlers) currentVersion(ctx context.Context, aggregateID string) (int, error) {
	stream, err := h.store.Load(ctx, aggregateID)
	if err != nil {
		return 0, fmt.Errorf("load stream: %w", err)
	}
	if len(stream) == 0 {
		return 0, &domainerr.NotFound{Kind: "meal_plan", ID: aggregateID}
	}
	return stream[len(stream)-1].Version, nil
}

func assignmentData(assignments []mealplan.MealAssignment) []events.AssignmentData {
	out := make([]events.AssignmentData, len(assignments))
	for i, a := range assignments {
		out[i] = events.AssignmentData{
			Date:      a.Date.Format("2006-01-02"),
			Course:    string(a.Course),
			RecipeID:  a.RecipeID,
			Reasoning: a.AssignmentReasoning,
		}
	}
	return out
}

func itemData(items []shopping.Item) []events.ShoppingItemData {
	out := make([]events.ShoppingItemData, len(items))
	for i, item := range items {
		ids := make([]string, 0, len(item.SourceRecipeIDs))
		for id := range item.SourceRecipeIDs {
			ids = append(ids, id)
		}
		out[i] = events.ShoppingItemData{
			CanonicalName:   item.CanonicalName,
			Quantity:        item.Quantity.String(),
			Unit:            item.CanonicalUnit,
			Category:        string(item.Category),
			SourceRecipeIDs: ids,
			IsCollected:     item.IsCollected,
		}
	}
	return out
}

func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// seedPart sources entropy for the generator's non-deterministic
// accompaniment pick; production call sites need real randomness, tests
// inject their own *rand.Rand directly into the domain layer instead.
func seedPart() uint64 {
	var b [8]byte
	_, _ = cryptorand.Read(b[:])
	var v uint64
	for i, c := range b {
		v |= uint64(c) << (8 * i)
	}
	return v
}
