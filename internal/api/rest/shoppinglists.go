// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rghsoftware/mealkit/internal/commands"
	"github.com/rghsoftware/mealkit/internal/middleware"
	"github.com/rghsoftware/mealkit/internal/queries"
)

// ShoppingListHandler adapts the shopping-list commands and queries to
// gin routes.
type ShoppingListHandler struct {
	lists   *commands.ShoppingListHandlers
	queries *queries.Service
}

func NewShoppingListHandler(lists *commands.ShoppingListHandlers, q *queries.Service) *ShoppingListHandler {
	return &ShoppingListHandler{lists: lists, queries: q}
}

func (h *ShoppingListHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("", h.ActiveList)
	router.POST("/items/collect", h.MarkItemCollected)
	router.POST("/reset", h.Reset)
}

func (h *ShoppingListHandler) ActiveList(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	weekStart, err := parseWeekStart(c)
	if err != nil {
		respondError(c, err)
		return
	}

	list, err := h.queries.ActiveShoppingList(c.Request.Context(), userID, weekStart)
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no shopping list for that week"})
		return
	}

	filter := queries.ItemFilter(c.DefaultQuery("filter", string(queries.FilterAll)))
	items, err := h.queries.ItemsFiltered(c.Request.Context(), list.ID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shopping_list": list, "items": items})
}

func (h *ShoppingListHandler) MarkItemCollected(c *gin.Context) {
	var req commands.MarkItemCollectedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.lists.MarkItemCollected(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ShoppingListHandler) Reset(c *gin.Context) {
	var req commands.ResetShoppingListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.lists.ResetShoppingList(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
