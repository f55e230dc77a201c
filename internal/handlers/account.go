package handlers

import (
	"net/http"
	"time"

	"github.com/Devin-147/reconsolidator-app-sub000/internal/repository"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AccountHandler struct {
	log   *zap.Logger
	media *services.MediaService
}

func NewAccountHandler(log *zap.Logger, media *services.MediaService) *AccountHandler {
	return &AccountHandler{log: log, media: media}
}

type updateInfoRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (h *AccountHandler) UpdateInfo(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req updateInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := repository.UpdateUser(c.Request.Context(), user.ID, req.FirstName, req.LastName); err != nil {
		h.log.Error("Failed to update user info", zap.Uint("userID", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}
	c.Status(http.StatusNoContent)
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *AccountHandler) UpdatePassword(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if !user.CheckPassword(req.CurrentPassword) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "incorrect current password"})
		return
	}

	if err := repository.UpdateUserPassword(c.Request.Context(), user.ID, req.NewPassword); err != nil {
		h.log.Error("Failed to update password", zap.Uint("userID", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update password"})
		return
	}
	c.Status(http.StatusNoContent)
}

type reminderRequest struct {
	Enabled      bool   `json:"enabled"`
	ReminderTime string `json:"reminderTime"`
	Timezone     string `json:"timezone"`
}

// UpdateReminders stores follow-up reminder preferences. The time arrives in
// the user's local timezone and is stored in UTC; parsing against today's
// date keeps DST correct.
func (h *AccountHandler) UpdateReminders(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req reminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Timezone == "" {
		req.Timezone = "UTC"
	}

	loc, err := time.LoadLocation(req.Timezone)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid timezone"})
		return
	}

	now := time.Now()
	parsed, err := time.ParseInLocation("2006-01-02 15:04", now.Format("2006-01-02")+" "+req.ReminderTime, loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid time format, use HH:MM"})
		return
	}

	utcTime := parsed.UTC().Format("15:04")
	if err := repository.UpdateReminderPreferences(user.ID, req.Enabled, utcTime, req.Timezone); err != nil {
		h.log.Error("Failed to update reminder preferences", zap.Uint("userID", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save reminder settings"})
		return
	}
	c.Status(http.StatusNoContent)
}

type deleteSessionDataRequest struct {
	TreatmentNumber *int `json:"treatmentNumber"`
}

// DeleteSessionData purges one treatment's database rows and media objects.
// The database deletes must succeed; storage deletion is best-effort and
// only logged on failure.
func (h *AccountHandler) DeleteSessionData(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req deleteSessionDataRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TreatmentNumber == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "treatmentNumber is required"})
		return
	}

	ctx := c.Request.Context()
	if err := repository.DeleteTreatmentState(ctx, user.ID, *req.TreatmentNumber); err != nil {
		h.log.Error("Failed to delete treatment state", zap.Uint("userID", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed: " + err.Error()})
		return
	}
	if err := repository.DeleteTreatmentResult(ctx, user.ID, *req.TreatmentNumber); err != nil {
		h.log.Error("Failed to delete treatment result", zap.Uint("userID", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed: " + err.Error()})
		return
	}

	h.media.DeleteTreatmentMedia(ctx, user.ID, user.Email, *req.TreatmentNumber)

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
