// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rghsoftware/mealkit/internal/middleware"
	"github.com/rghsoftware/mealkit/internal/queries"
)

// UserHandler exposes the O(1) favorite_count/recipe_count read-model
// lookups (spec 6).
type UserHandler struct {
	queries *queries.Service
}

func NewUserHandler(q *queries.Service) *UserHandler {
	return &UserHandler{queries: q}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/me/counts", h.Counts)
}

func (h *UserHandler) Counts(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	favoriteCount, err := h.queries.FavoriteCount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	recipeCount, err := h.queries.RecipeCount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorite_count": favoriteCount, "recipe_count": recipeCount})
}
