package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Devin-147/reconsolidator-app-sub000/internal/models"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/repository"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SetupHandler struct {
	log *zap.Logger
}

func NewSetupHandler(log *zap.Logger) *SetupHandler {
	return &SetupHandler{log: log}
}

type setupRequest struct {
	TargetEventTranscript string `json:"targetEventTranscript"`
	Memory1               string `json:"memory1"`
	Memory2               string `json:"memory2"`
	CalibrationSuds       *int   `json:"calibrationSuds"`
}

// Save validates and upserts the session setup. All four fields are
// required; MemoriesSaved only flips once they are all present.
func (h *SetupHandler) Save(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req setupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if strings.TrimSpace(req.TargetEventTranscript) == "" ||
		strings.TrimSpace(req.Memory1) == "" ||
		strings.TrimSpace(req.Memory2) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target event and both memories are required"})
		return
	}
	if req.CalibrationSuds == nil || !utils.IsValidSuds(*req.CalibrationSuds) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "calibration SUDS must be between 0 and 100"})
		return
	}

	setup := &models.SessionSetup{
		UserID:                user.ID,
		TargetEventTranscript: req.TargetEventTranscript,
		Memory1:               req.Memory1,
		Memory2:               req.Memory2,
		CalibrationSuds:       *req.CalibrationSuds,
	}
	if err := repository.SaveSessionSetup(c.Request.Context(), setup); err != nil {
		h.log.Error("Failed to save session setup", zap.Uint("userID", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save setup"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"memoriesSaved": setup.MemoriesSaved})
}

// Get returns the saved setup, or memoriesSaved:false when none exists.
func (h *SetupHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	setup, err := repository.GetSessionSetup(c.Request.Context(), user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{"memoriesSaved": false})
			return
		}
		h.log.Error("Failed to load session setup", zap.Uint("userID", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load setup"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"targetEventTranscript": setup.TargetEventTranscript,
		"memory1":               setup.Memory1,
		"memory2":               setup.Memory2,
		"calibrationSuds":       setup.CalibrationSuds,
		"memoriesSaved":         setup.MemoriesSaved,
	})
}
