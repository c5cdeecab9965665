// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rghsoftware/mealkit/internal/commands"
	"github.com/rghsoftware/mealkit/internal/middleware"
	"github.com/rghsoftware/mealkit/internal/recipeimport"
)

// RecipeHandler adapts commands.RecipeHandlers to gin routes.
type RecipeHandler struct {
	recipes *commands.RecipeHandlers
	scraper *recipeimport.Scraper
}

func NewRecipeHandler(recipes *commands.RecipeHandlers) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, scraper: recipeimport.NewScraper()}
}

// RegisterRoutes mirrors the teacher's group-per-feature registration.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("", h.CreateRecipe)
	router.POST("/import", h.ImportFromURL)
	router.PATCH("/:id/tags", h.OverrideTags)
	router.POST("/:id/favorite", h.Favorite)
	router.DELETE("/:id/favorite", h.Unfavorite)
	router.DELETE("/:id", h.Delete)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req commands.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.UserID = userID

	id, err := h.recipes.CreateRecipe(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// ImportFromURL scrapes a recipe card from a source URL (spec's
// supplemental import path) and hands the draft back for the client to
// review before issuing CreateRecipe; it does not create the aggregate
// itself, since the scraped draft still needs course/skill-level input
// the source page doesn't carry.
func (h *RecipeHandler) ImportFromURL(c *gin.Context) {
	var body struct {
		URL string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draft, err := h.scraper.Fetch(c.Request.Context(), body.URL)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *RecipeHandler) OverrideTags(c *gin.Context) {
	var req commands.OverrideRecipeTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.RecipeID = c.Param("id")

	if err := h.recipes.OverrideRecipeTags(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) Favorite(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	req := commands.FavoriteRecipeRequest{UserID: userID, RecipeID: c.Param("id")}
	if err := h.recipes.FavoriteRecipe(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) Unfavorite(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	req := commands.FavoriteRecipeRequest{UserID: userID, RecipeID: c.Param("id")}
	if err := h.recipes.UnfavoriteRecipe(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) Delete(c *gin.Context) {
	req := commands.DeleteRecipeRequest{RecipeID: c.Param("id")}
	if err := h.recipes.DeleteRecipe(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
