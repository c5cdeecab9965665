// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

// Package middleware provides the gin middleware the REST adapters run
// under. Spec section 6 scopes this engine to the planning/shopping
// domain and leaves account management to whatever deployment wraps it;
// RequireUserID is a placeholder for that collaborator, trusting a
// pre-authenticated identity header the way a reverse proxy or a sibling
// auth service would set it.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const userIDContextKey = "user_id"

// UserIDHeader is the header an upstream auth layer is expected to set
// once a request is authenticated.
const UserIDHeader = "X-User-ID"

// RequireUserID rejects any request missing the identity header and
// stashes the user id in the gin context for handlers to read with
// UserID.
func RequireUserID() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(UserIDHeader)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + UserIDHeader + " header"})
			return
		}
		c.Set(userIDContextKey, userID)
		c.Next()
	}
}

// UserID reads the authenticated user id stashed by RequireUserID.
func UserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(userIDContextKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}
