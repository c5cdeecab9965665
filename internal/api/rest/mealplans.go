// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rghsoftware/mealkit/internal/commands"
	"github.com/rghsoftware/mealkit/internal/domainerr"
	"github.com/rghsoftware/mealkit/internal/middleware"
	"github.com/rghsoftware/mealkit/internal/queries"
)

// MealPlanHandler adapts the meal-plan commands and queries to gin routes.
type MealPlanHandler struct {
	plans    *commands.MealPlanHandlers
	queries  *queries.Service
}

func NewMealPlanHandler(plans *commands.MealPlanHandlers, q *queries.Service) *MealPlanHandler {
	return &MealPlanHandler{plans: plans, queries: q}
}

func (h *MealPlanHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("", h.ActivePlan)
	router.POST("", h.Generate)
	router.POST("/regenerate-week", h.RegenerateWeek)
	router.POST("/replace-slot", h.ReplaceSlot)
	router.GET("/rotation-progress", h.RotationProgress)
	router.GET("/replacement-candidates", h.ReplacementCandidates)
	router.GET("/week-options", h.WeekOptions)
}

func (h *MealPlanHandler) ActivePlan(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	plan, assignments, err := h.queries.ActiveMealPlanWithAssignments(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if plan == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active meal plan"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"meal_plan": plan, "assignments": assignments})
}

func (h *MealPlanHandler) Generate(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req commands.GenerateMealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.UserID = userID

	id, err := h.plans.GenerateMealPlan(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *MealPlanHandler) RegenerateWeek(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req commands.RegenerateWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.UserID = userID

	if err := h.plans.RegenerateWeek(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MealPlanHandler) ReplaceSlot(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req commands.ReplaceMealSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.UserID = userID

	if err := h.plans.ReplaceMealSlot(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MealPlanHandler) RotationProgress(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	progress, err := h.queries.RotationProgress(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *MealPlanHandler) ReplacementCandidates(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	course := c.Query("course")
	if course == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "course query parameter is required"})
		return
	}
	candidates, err := h.queries.ReplacementCandidates(c.Request.Context(), userID, course)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidates": candidates})
}

func (h *MealPlanHandler) WeekOptions(c *gin.Context) {
	_, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, queries.WeekOptions(time.Now().UTC()))
}

// parseWeekStart is shared by shopping-list routes that take a week as a
// query parameter.
func parseWeekStart(c *gin.Context) (time.Time, error) {
	raw := c.Query("week_start")
	if raw == "" {
		return time.Time{}, &domainerr.InvalidWeekStart{Date: raw}
	}
	return time.Parse("2006-01-02", raw)
}
