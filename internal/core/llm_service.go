package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	defaultPlanModelName = "gemini-2.5-flash"
	jsonMIMEType         = "application/json"
)

// LLMService talks to Gemini in JSON mode.
type LLMService struct {
	client      *genai.Client
	modelName   string
	temperature float32
}

func NewLLMService(ctx context.Context, apiKey, modelName string, temperature float32) (*LLMService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	if modelName == "" {
		modelName = defaultPlanModelName
	}

	return &LLMService{
		client:      client,
		modelName:   modelName,
		temperature: temperature,
	}, nil
}

func (s *LLMService) Close() error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("failed to close GenAI client: %w", err)
	}
	return nil
}

// GenerateJSON sends prompt as a single user turn and returns the
// concatenated text parts of the first candidate.
func (s *LLMService) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	model := s.client.GenerativeModel(s.modelName)

	temp := s.temperature
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:      &temp,
		ResponseMIMEType: jsonMIMEType,
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate request failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}

	if text.Len() == 0 {
		return "", fmt.Errorf("gemini returned no text parts")
	}

	return text.String(), nil
}
