package router

import (
	"net/http"

	"github.com/Devin-147/reconsolidator-app-sub000/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Define keys for storing the token in the session and context.
const (
	csrfTokenSessionKey = "csrf_token"
	csrfTokenContextKey = "csrf_token"
	csrfTokenHeaderKey  = "X-CSRF-Token"
)

// CSRFProtection is a custom middleware to protect against CSRF attacks.
// The SPA fetches the token from /api/csrf and echoes it back in a header on
// every unsafe request. The billing webhook is exempt: it authenticates with
// its own signature.
func CSRFProtection(exemptPaths ...string) gin.HandlerFunc {
	exempt := make(map[string]bool, len(exemptPaths))
	for _, p := range exemptPaths {
		exempt[p] = true
	}

	return func(c *gin.Context) {
		if exempt[c.Request.URL.Path] {
			c.Next()
			return
		}

		session := sessions.Default(c)

		// 1. Get or create the real CSRF token for the session.
		var token string
		sessionToken := session.Get(csrfTokenSessionKey)

		if sessionToken == nil {
			newToken, err := utils.GenerateSecureToken(32)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to generate CSRF token"})
				return
			}
			token = newToken
			session.Set(csrfTokenSessionKey, token)
			if err := session.Save(); err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to save session"})
				return
			}
		} else {
			token = sessionToken.(string)
		}

		// 2. Make the token available to handlers.
		c.Set(csrfTokenContextKey, token)

		// 3. Validate the token on unsafe methods (POST, etc.).
		if c.Request.Method == http.MethodPost || c.Request.Method == http.MethodPut || c.Request.Method == http.MethodDelete {
			submittedToken := c.GetHeader(csrfTokenHeaderKey)
			if !utils.TokensMatch(submittedToken, token) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid CSRF token"})
				return
			}
		}

		// If everything is okay, proceed to the next handler.
		c.Next()
	}
}
