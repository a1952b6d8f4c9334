package models

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/adk/model"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/genai"
)

const (
	ProviderGemini     = "gemini"
	ProviderGrok       = "grok"
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
)

// NewGeminiModel creates a Gemini model through the ADK client.
func NewGeminiModel(ctx context.Context, modelName string, cfg *genai.ClientConfig) (model.LLM, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("API key is required")
	}
	m, err := gemini.NewModel(ctx, modelName, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini model: %w", err)
	}
	return m, nil
}

// New builds the model for provider.
func New(ctx context.Context, provider, modelName, apiKey string) (model.LLM, error) {
	cfg := &genai.ClientConfig{APIKey: apiKey}
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderGemini:
		return NewGeminiModel(ctx, modelName, cfg)
	case ProviderGrok:
		return NewGrokModel(ctx, modelName, cfg)
	case ProviderOpenRouter:
		return NewOpenRouterModel(ctx, modelName, cfg)
	case ProviderOpenAI:
		return NewOpenAIModel(ctx, modelName, cfg)
	default:
		return nil, fmt.Errorf("unknown model provider %q", provider)
	}
}
