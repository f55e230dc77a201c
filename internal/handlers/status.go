package handlers

import (
	"errors"
	"net/http"

	"github.com/Devin-147/reconsolidator-app-sub000/internal/models"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type StatusHandler struct {
	log *zap.Logger
}

func NewStatusHandler(log *zap.Logger) *StatusHandler {
	return &StatusHandler{log: log}
}

// Get looks up a user's entitlement by email. An unknown email is a
// distinguished state, not an error: the client uses it to route to signup.
func (h *StatusHandler) Get(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email query parameter is required"})
		return
	}

	user, err := repository.GetUserByEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{"isAuthenticated": false, "userStatus": models.StatusNone})
			return
		}
		h.log.Error("Failed to look up user status", zap.String("email", email), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"isAuthenticated": true, "userStatus": user.Status})
}
