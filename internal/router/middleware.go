package router

import (
	"net/http"

	"github.com/Devin-147/reconsolidator-app-sub000/internal/repository"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserLoaderMiddleware checks for a userID in the session.
// If found, it loads the user from the database and adds it to the context.
// This ensures we don't have "zombie" sessions for users who no longer exist.
func UserLoaderMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get("userID").(uint)
		if !ok {
			// No user ID in session, proceed as a guest.
			c.Next()
			return
		}

		user, err := repository.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			// User ID from session is invalid (user was deleted, etc.)
			// Clear the bad session and treat as a guest.
			log.Debug("Clearing stale session", zap.Uint("userID", userID))
			session.Clear()
			session.Options(sessions.Options{Path: "/", MaxAge: -1})
			session.Save()
			c.Next()
			return
		}

		// User is valid, store user object in context for other handlers.
		c.Set("user", user)
		c.Next()
	}
}

// AuthRequired rejects requests from guests. The client is a SPA, so this is
// a JSON 401 rather than a redirect.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get("user"); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
