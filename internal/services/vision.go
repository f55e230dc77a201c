package services

import (
	"context"
	"fmt"

	"github.com/Devin-147/reconsolidator-app-sub000/internal/config"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// VisionService describes uploaded images with Gemini. During setup some
// users anchor a context memory to a photograph; the description seeds the
// memory text.
type VisionService struct {
	log    *zap.Logger
	client *genai.Client
	model  string
}

func NewVisionService(ctx context.Context, log *zap.Logger) (*VisionService, error) {
	conf := config.Conf.Vision
	if conf.APIKey == "" {
		return nil, fmt.Errorf("vision API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: conf.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}

	return &VisionService{
		log:    log,
		client: client,
		model:  conf.Model,
	}, nil
}

// DescribeImage returns a short sensory description of the image, written in
// the first person so it can be pasted straight into a memory field.
func (v *VisionService) DescribeImage(ctx context.Context, imageData []byte, mimeType string) (string, error) {
	prompt := "Describe this photograph in two or three sentences, in the first person, " +
		"focusing on concrete sensory details: where I am, what I can see, what the moment feels like."

	parts := []*genai.Part{
		genai.NewPartFromBytes(imageData, mimeType),
		genai.NewPartFromText(prompt),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := v.client.Models.GenerateContent(ctx, v.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed: %s", err.Error())
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("vision model returned no description")
	}
	return text, nil
}
