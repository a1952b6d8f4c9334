package models

import (
	"context"
	"testing"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

func TestBuildOpenAIParamsMapsRoles(t *testing.T) {
	temp := float32(0.8)
	req := &model.LLMRequest{
		Contents: []*genai.Content{
			genai.NewContentFromText("hello", "user"),
			genai.NewContentFromText("hi there", "model"),
			genai.NewContentFromText("write a story", "user"),
		},
		Config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText("You are a storyteller.", "system"),
			Temperature:       &temp,
			MaxOutputTokens:   120,
		},
	}

	params := buildOpenAIParams(req, "grok-4-fast")
	if params.Model != "grok-4-fast" {
		t.Fatalf("expected default model name, got %s", params.Model)
	}
	if len(params.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(params.Messages))
	}
	if params.Messages[0].OfSystem == nil {
		t.Fatalf("expected system instruction first")
	}
	if params.Messages[1].OfUser == nil || params.Messages[2].OfAssistant == nil || params.Messages[3].OfUser == nil {
		t.Fatalf("unexpected role mapping: %#v", params.Messages)
	}
	if !params.MaxTokens.Valid() || params.MaxTokens.Value != 120 {
		t.Fatalf("expected max tokens 120")
	}
}

func TestMaybeAppendUserContent(t *testing.T) {
	m := &openaiModel{name: "test"}
	req := &model.LLMRequest{}
	m.maybeAppendUserContent(req)
	if len(req.Contents) != 1 || req.Contents[0].Role != "user" {
		t.Fatalf("expected a user turn, got %#v", req.Contents)
	}

	req = &model.LLMRequest{Contents: []*genai.Content{genai.NewContentFromText("done", "model")}}
	m.maybeAppendUserContent(req)
	if len(req.Contents) != 2 || req.Contents[1].Role != "user" {
		t.Fatalf("expected trailing user turn, got %#v", req.Contents)
	}
}

func TestNewValidatesInput(t *testing.T) {
	ctx := context.Background()
	if _, err := New(ctx, "palm", "x", "key"); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
	if _, err := New(ctx, ProviderGrok, "grok-4-fast", ""); err == nil {
		t.Fatalf("expected error for missing key")
	}
	if _, err := New(ctx, ProviderGemini, "gemini-2.5-flash", ""); err == nil {
		t.Fatalf("expected error for missing gemini key")
	}
	if _, err := NewGrokModel(ctx, "grok-4-fast", nil); err == nil {
		t.Fatalf("expected error for nil config")
	}

	m, err := New(ctx, ProviderOpenRouter, "meta/llama", "key")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if m.Name() != "meta/llama" {
		t.Fatalf("unexpected model name %s", m.Name())
	}
}
