package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Devin-147/reconsolidator-app-sub000/internal/config"

	"go.uber.org/zap"
)

const ttsEndpoint = "https://texttospeech.googleapis.com/v1/text:synthesize"

// SpeechService synthesizes narration audio through the Google Cloud
// Text-to-Speech REST API. The REST endpoint with an API key matches how the
// platform credentials are provisioned, so no service-account SDK is used.
type SpeechService struct {
	log    *zap.Logger
	client *http.Client
}

func NewSpeechService(log *zap.Logger) *SpeechService {
	return &SpeechService{
		log:    log,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

type synthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string  `json:"audioEncoding"`
		SpeakingRate  float64 `json:"speakingRate"`
		Pitch         float64 `json:"pitch"`
	} `json:"audioConfig"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

// SynthesizeOptions carries the per-request voice overrides.
type SynthesizeOptions struct {
	VoiceName    string
	SpeakingRate float64
	Pitch        float64
}

// Synthesize converts text to MP3 audio bytes.
func (s *SpeechService) Synthesize(ctx context.Context, text string, opts SynthesizeOptions) ([]byte, error) {
	conf := config.Conf.Speech
	if conf.APIKey == "" {
		return nil, fmt.Errorf("text-to-speech is not configured")
	}

	voice := conf.VoiceName
	if opts.VoiceName != "" {
		voice = opts.VoiceName
	}
	rate := conf.SpeakingRate
	if opts.SpeakingRate > 0 {
		rate = opts.SpeakingRate
	}

	var reqBody synthesizeRequest
	reqBody.Input.Text = text
	reqBody.Voice.LanguageCode = "en-US"
	reqBody.Voice.Name = voice
	reqBody.AudioConfig.AudioEncoding = "MP3"
	reqBody.AudioConfig.SpeakingRate = rate
	reqBody.AudioConfig.Pitch = opts.Pitch

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ttsEndpoint+"?key="+conf.APIKey, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed: %s", err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		s.log.Error("TTS request rejected",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return nil, fmt.Errorf("text-to-speech request failed with status %d", resp.StatusCode)
	}

	var synth synthesizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&synth); err != nil {
		return nil, err
	}

	audio, err := base64.StdEncoding.DecodeString(synth.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio content: %w", err)
	}
	return audio, nil
}
