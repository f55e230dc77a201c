package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Devin-147/reconsolidator-app-sub000/internal/models"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/repository"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/services"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// followUpNumber is the sixth pass through the protocol, offered after the
// five numbered treatments.
const followUpNumber = models.TreatmentCount + 1

type TreatmentHandler struct {
	log     *zap.Logger
	store   session.Store
	catalog *models.Catalog
	email   *services.EmailService
}

func NewTreatmentHandler(log *zap.Logger, store session.Store, catalog *models.Catalog, email *services.EmailService) *TreatmentHandler {
	return &TreatmentHandler{log: log, store: store, catalog: catalog, email: email}
}

// controller resolves the URL's treatment number and loads the session
// controller plus the user's setup. A missing or incomplete setup bounces
// the client back to the setup screen.
func (h *TreatmentHandler) controller(c *gin.Context) (*session.Controller, *models.SessionSetup, *models.User, bool) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, nil, nil, false
	}

	n, err := strconv.Atoi(c.Param("n"))
	if err != nil || n < 1 || n > followUpNumber {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid treatment number"})
		return nil, nil, nil, false
	}

	setup, err := repository.GetSessionSetup(c.Request.Context(), user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusConflict, gin.H{"error": session.ErrSetupIncomplete.Error(), "redirect": "/"})
			return nil, nil, nil, false
		}
		h.log.Error("Failed to load setup", zap.Uint("userID", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load setup"})
		return nil, nil, nil, false
	}

	ctrl, err := session.NewController(c.Request.Context(), h.store, user.ID, n)
	if err != nil {
		h.log.Error("Failed to load treatment state", zap.Uint("userID", user.ID), zap.Int("treatment", n), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load treatment state"})
		return nil, nil, nil, false
	}
	return ctrl, setup, user, true
}

// writeSessionError maps the session package's precondition errors onto
// user-facing JSON responses. The cursor never moved, so these are all safe
// to retry.
func writeSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrSetupIncomplete):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "redirect": "/"})
	case errors.Is(err, session.ErrWrongPhase), errors.Is(err, session.ErrAlreadyComplete):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrSelectionFull),
		errors.Is(err, session.ErrSelectionCount),
		errors.Is(err, session.ErrBlankCustomError),
		errors.Is(err, session.ErrResponseTooShort),
		errors.Is(err, session.ErrBadIndex),
		errors.Is(err, session.ErrNarrationMissing),
		errors.Is(err, session.ErrPlaybackRequired),
		errors.Is(err, session.ErrReversalFull),
		errors.Is(err, session.ErrReversalCount),
		errors.Is(err, session.ErrNotSelected),
		errors.Is(err, session.ErrReversalMissing),
		errors.Is(err, session.ErrSudsRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed: " + err.Error()})
	}
}

func stateView(ctrl *session.Controller) gin.H {
	st := ctrl.State()
	return gin.H{
		"treatmentNumber":        st.TreatmentNumber,
		"phase":                  st.Phase,
		"phaseName":              ctrl.Phase().String(),
		"selectedErrors":         st.SelectedErrors,
		"selectedCount":          len(st.SelectedErrors),
		"narrations":             st.Narrations,
		"hasPlayedAllNarrations": st.HasPlayedAllNarrations,
		"reversalSelection":      st.ReversalSelection,
		"completed":              st.Completed,
	}
}

// Start re-runs the setup gate and returns the session state. Called on
// every treatment page mount.
func (h *TreatmentHandler) Start(c *gin.Context) {
	ctrl, setup, _, ok := h.controller(c)
	if !ok {
		return
	}
	if err := ctrl.VerifyGate(c.Request.Context(), setup); err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, stateView(ctrl))
}

// GetState returns the current session state without advancing anything.
func (h *TreatmentHandler) GetState(c *gin.Context) {
	ctrl, _, _, ok := h.controller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, stateView(ctrl))
}

// Catalog serves the fixed prediction-error catalog.
func (h *TreatmentHandler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"predictionErrors": h.catalog.Errors})
}

type toggleErrorRequest struct {
	ID int64 `json:"id" binding:"required"`
}

func (h *TreatmentHandler) ToggleError(c *gin.Context) {
	ctrl, _, _, ok := h.controller(c)
	if !ok {
		return
	}

	var req toggleErrorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prediction error id is required"})
		return
	}

	// Custom entries only exist in the selection itself, so resolve there
	// first; removal works for them even though they are not in the catalog.
	pe, found := models.PredictionError{ID: req.ID}, false
	for _, sel := range ctrl.State().SelectedErrors {
		if sel.ID == req.ID {
			pe, found = sel, true
			break
		}
	}
	if !found {
		if pe, found = h.catalog.Find(req.ID); !found {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown prediction error"})
			return
		}
	}

	if err := ctrl.ToggleError(c.Request.Context(), pe); err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, stateView(ctrl))
}

type customErrorRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *TreatmentHandler) AddCustomError(c *gin.Context) {
	ctrl, _, _, ok := h.controller(c)
	if !ok {
		return
	}

	var req customErrorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	pe, err := ctrl.AddCustomError(c.Request.Context(), req.Title, req.Description)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"predictionError": pe, "selectedCount": len(ctrl.State().SelectedErrors)})
}

func (h *TreatmentHandler) CompleteSelection(c *gin.Context) {
	ctrl, _, _, ok := h.controller(c)
	if !ok {
		return
	}
	if err := ctrl.CompleteSelection(c.Request.Context()); err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, stateView(ctrl))
}

type phaseResponseRequest struct {
	Response string `json:"response"`
}

// CompleteNarrativePhase handles phases 1-3.
func (h *TreatmentHandler) CompleteNarrativePhase(c *gin.Context) {
	ctrl, _, _, ok := h.controller(c)
	if !ok {
		return
	}

	p, err := strconv.Atoi(c.Param("p"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid phase number"})
		return
	}

	var req phaseResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := ctrl.CompleteNarrativePhase(c.Request.Context(), session.Phase(p), req.Response); err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, stateView(ctrl))
}

// Scripts recomputes and serves the narrative scripts for the narration
// phase, together with the advisory capture limit.
func (h *TreatmentHandler) Scripts(c *gin.Context) {
	ctrl, setup, _, ok := h.controller(c)
	if !ok {
		return
	}

	scripts, err := ctrl.Scripts(setup)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"scripts":             scripts,
		"maxNarrationSeconds": models.MaxNarrationSeconds,
	})
}

type narrationRequest struct {
	Index    *int    `json:"index"`
	AudioURL *string `json:"audioUrl"`
}

func (h *TreatmentHandler) RecordNarration(c *gin.Context) {
	ctrl, _, _, ok := h.controller(c)
	if !ok {
		return
	}

	var req narrationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Index == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "narrative index is required"})
		return
	}

	url := ""
	if req.AudioURL != nil {
		url = *req.AudioURL
	}
	if err := ctrl.RecordNarration(c.Request.Context(), *req.Index, url); err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, stateView(ctrl))
}

func (h *TreatmentHandler) ConfirmPlayback(c *gin.Context) {
	ctrl, _, _, ok := h.controller(c)
	if !ok {
		return
	}
	if err := ctrl.ConfirmPlayback(c.Request.Context()); err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, stateView(ctrl))
}

func (h *TreatmentHandler) CompleteNarration(c *gin.Context) {
	ctrl, _, _, ok := h.controller(c)
	if !ok {
		return
	}
	if err := ctrl.CompleteNarration(c.Request.Context()); err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, stateView(ctrl))
}

type reversalIndexRequest struct {
	Index *int `json:"index"`
}

func (h *TreatmentHandler) ToggleReversal(c *gin.Context) {
	ctrl, _, _, ok := h.controller(c)
	if !ok {
		return
	}

	var req reversalIndexRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Index == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "narrative index is required"})
		return
	}

	if err := ctrl.ToggleReversal(c.Request.Context(), *req.Index); err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, stateView(ctrl))
}

// ReversedScripts serves the rewind variants for the selected narratives.
func (h *TreatmentHandler) ReversedScripts(c *gin.Context) {
	ctrl, setup, _, ok := h.controller(c)
	if !ok {
		return
	}

	scripts, err := ctrl.ReversedScripts(setup)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reversedScripts":       scripts,
		"reversalTargetSeconds": models.ReversalTargetSeconds,
	})
}

type reversalRecordRequest struct {
	Index    *int    `json:"index"`
	VideoURL *string `json:"videoUrl"`
}

func (h *TreatmentHandler) RecordReversal(c *gin.Context) {
	ctrl, _, _, ok := h.controller(c)
	if !ok {
		return
	}

	var req reversalRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Index == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "narrative index is required"})
		return
	}

	url := ""
	if req.VideoURL != nil {
		url = *req.VideoURL
	}
	if err := ctrl.RecordReversal(c.Request.Context(), *req.Index, url); err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, stateView(ctrl))
}

func (h *TreatmentHandler) CompleteReversal(c *gin.Context) {
	ctrl, _, _, ok := h.controller(c)
	if !ok {
		return
	}
	if err := ctrl.CompleteReversal(c.Request.Context()); err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, stateView(ctrl))
}

type completeTreatmentRequest struct {
	FinalSuds *int `json:"finalSuds"`
}

// Complete finishes the reassessment phase: it builds and upserts the
// result, updates the user's SUDS bookkeeping and sends the summary email.
// Email failure is logged but never fails the completion.
func (h *TreatmentHandler) Complete(c *gin.Context) {
	ctrl, setup, user, ok := h.controller(c)
	if !ok {
		return
	}

	var req completeTreatmentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.FinalSuds == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "finalSuds is required"})
		return
	}

	result, err := ctrl.CompleteTreatment(c.Request.Context(), setup, *req.FinalSuds)
	if err != nil {
		writeSessionError(c, err)
		return
	}

	if err := repository.SaveTreatmentResult(c.Request.Context(), &result); err != nil {
		h.log.Error("Failed to save treatment result", zap.Uint("userID", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed: " + err.Error()})
		return
	}
	if err := repository.UpdateUserSuds(c.Request.Context(), user.ID, result.TreatmentNumber, setup.CalibrationSuds, result.FinalSuds); err != nil {
		h.log.Error("Failed to update user SUDS", zap.Uint("userID", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed: " + err.Error()})
		return
	}

	if err := h.email.SendTreatmentSummary(*user, result); err != nil {
		h.log.Warn("Failed to send treatment summary email", zap.Uint("userID", user.ID), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"treatmentNumber":       result.TreatmentNumber,
		"finalSuds":             result.FinalSuds,
		"improvementPercentage": result.ImprovementPercentage,
		"isImprovement":         result.IsImprovement,
		"completedAt":           result.CompletedAt,
	})
}
