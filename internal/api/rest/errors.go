// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rghsoftware/mealkit/internal/domainerr"
)

// respondError maps the section-7 domain error taxonomy to an HTTP status,
// following the teacher's gin.H{"error": ...} response shape.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, domainerr.ErrInsufficientRecipes),
		errors.Is(err, domainerr.ErrInvalidWeekStart),
		errors.Is(err, domainerr.ErrInvalidWeek),
		errors.Is(err, domainerr.ErrFutureWeekOutOfRange):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domainerr.ErrNoCompatibleRecipes):
		status = http.StatusConflict
	case errors.Is(err, domainerr.ErrPastWeekNotAccessible):
		status = http.StatusForbidden
	case errors.Is(err, domainerr.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, domainerr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domainerr.ErrVersionConflict):
		status = http.StatusConflict
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
