package handlers

import (
	"bytes"
	"io"
	"net/http"

	"github.com/Devin-147/reconsolidator-app-sub000/internal/models"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/narrative"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/services"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type MediaHandler struct {
	log    *zap.Logger
	speech *services.SpeechService
	media  *services.MediaService
	vision *services.VisionService
	store  storage.ObjectStore
}

func NewMediaHandler(log *zap.Logger, speech *services.SpeechService, media *services.MediaService, vision *services.VisionService, store storage.ObjectStore) *MediaHandler {
	return &MediaHandler{log: log, speech: speech, media: media, vision: vision, store: store}
}

type narrationAudioRequest struct {
	Text            string  `json:"text"`
	TreatmentNumber *int    `json:"treatmentNumber"`
	NarrativeIndex  *int    `json:"narrativeIndex"`
	VoiceName       string  `json:"voiceName"`
	SpeakingRate    float64 `json:"speakingRate"`
	Pitch           float64 `json:"pitch"`
}

// GenerateNarrationAudio synthesizes one narration script to MP3 and stores
// it under the user's treatment path. Paid entitlement is required; anything
// else is a 403, not a 500.
func (h *MediaHandler) GenerateNarrationAudio(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if !user.IsPaid() {
		c.JSON(http.StatusForbidden, gin.H{"error": "narration audio requires a paid subscription"})
		return
	}

	var req narrationAudioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Text == "" || req.TreatmentNumber == nil || req.NarrativeIndex == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text, treatmentNumber and narrativeIndex are required"})
		return
	}
	if *req.NarrativeIndex < 0 || *req.NarrativeIndex >= models.NarrationCount {
		c.JSON(http.StatusBadRequest, gin.H{"error": "narrativeIndex out of range"})
		return
	}

	audio, err := h.speech.Synthesize(c.Request.Context(), req.Text, services.SynthesizeOptions{
		VoiceName:    req.VoiceName,
		SpeakingRate: req.SpeakingRate,
		Pitch:        req.Pitch,
	})
	if err != nil {
		h.log.Error("Narration synthesis failed", zap.Uint("userID", user.ID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed: " + err.Error()})
		return
	}

	key := narrative.NarrationObjectKey(user.ID, *req.TreatmentNumber, *req.NarrativeIndex)
	if err := h.store.Put(c.Request.Context(), key, bytes.NewReader(audio)); err != nil {
		h.log.Error("Failed to store narration audio", zap.String("key", key), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store audio"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"audioUrl": h.store.PublicURL(key)})
}

type reversedClipsRequest struct {
	TreatmentNumber *int  `json:"treatmentNumber"`
	Indices         []int `json:"indices"`
}

// GenerateReversedClips runs the reversal pipeline over exactly 8 source
// videos. A missing source fails the whole batch; there is no partial
// result.
func (h *MediaHandler) GenerateReversedClips(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req reversedClipsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TreatmentNumber == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "treatmentNumber and indices are required"})
		return
	}
	if len(req.Indices) != models.ReversalCount {
		c.JSON(http.StatusBadRequest, gin.H{"error": "exactly 8 narrative indices are required"})
		return
	}
	seen := make(map[int]bool, len(req.Indices))
	for _, idx := range req.Indices {
		if idx < 1 || idx > models.NarrationCount {
			c.JSON(http.StatusBadRequest, gin.H{"error": "narrative indices must be between 1 and 11"})
			return
		}
		if seen[idx] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "narrative indices must be distinct"})
			return
		}
		seen[idx] = true
	}

	clips, err := h.media.GenerateReversedClips(c.Request.Context(), user.Email, *req.TreatmentNumber, req.Indices)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"clips": clips})
}

// DescribeImage runs the uploaded photo through the vision model and returns
// a first-person description for seeding a memory field.
func (h *MediaHandler) DescribeImage(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if h.vision == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image analysis is not configured"})
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "an image file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, 8<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	description, err := h.vision.DescribeImage(c.Request.Context(), data, mimeType)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"description": description})
}
