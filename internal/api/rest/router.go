/*
 * Space Food - Self-Hosted Meal Planning Application
 * Copyright (C) 2025 RGH Software
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published
 * by the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

// Package rest wires the event-sourced commands and read-model queries
// behind thin gin adapters; every handler here validates the inbound
// shape and otherwise delegates straight to internal/commands or
// internal/queries (spec 6's external operation surface).
package rest

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rghsoftware/mealkit/internal/commands"
	"github.com/rghsoftware/mealkit/internal/database"
	"github.com/rghsoftware/mealkit/internal/domain/mealplan"
	"github.com/rghsoftware/mealkit/internal/events"
	"github.com/rghsoftware/mealkit/internal/middleware"
	"github.com/rghsoftware/mealkit/internal/queries"
)

// SetupRouter builds the engine's full gin.Engine from a shared database
// connection and event store, following the teacher's SetupRouter shape
// of one router assembled in main.go with feature handlers registered
// into route groups.
func SetupRouter(db *sql.DB, store *events.Store) *gin.Engine {
	router := gin.Default()
	sqlxDB := database.Sqlx(db)

	router.GET("/health", func(c *gin.Context) {
		if err := database.Health(c.Request.Context(), db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	repo := commands.NewRepository(sqlxDB)
	recipeHandlers := commands.NewRecipeHandlers(store, repo, mealplan.NewULID)
	mealPlanHandlers := commands.NewMealPlanHandlers(store, repo, mealplan.NewULID)
	shoppingListHandlers := commands.NewShoppingListHandlers(store)
	queryService := queries.New(sqlxDB)

	v1 := router.Group("/api/v1")
	protected := v1.Group("")
	protected.Use(middleware.RequireUserID())

	recipeGroup := protected.Group("/recipes")
	NewRecipeHandler(recipeHandlers).RegisterRoutes(recipeGroup)

	mealPlanGroup := protected.Group("/meal-plans")
	NewMealPlanHandler(mealPlanHandlers, queryService).RegisterRoutes(mealPlanGroup)

	shoppingListGroup := protected.Group("/shopping-list")
	NewShoppingListHandler(shoppingListHandlers, queryService).RegisterRoutes(shoppingListGroup)

	usersGroup := protected.Group("/users")
	NewUserHandler(queryService).RegisterRoutes(usersGroup)

	return router
}
