// Package narrative produces flavor text for newly generated pets.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/adk/model"
	"google.golang.org/genai"

	"github.com/easeaico/project-pet/internal/prompt"
	"github.com/easeaico/project-pet/internal/types"
	"github.com/easeaico/project-pet/internal/utils"
)

// DefaultTimeout bounds a single narration call.
const DefaultTimeout = 15 * time.Second

var tracer = otel.Tracer("github.com/easeaico/project-pet/internal/narrative")

// Narrator asks an LLM for flavor text.
type Narrator struct {
	model   model.LLM
	timeout time.Duration
}

// NewNarrator returns a Narrator. A non-positive timeout uses DefaultTimeout.
func NewNarrator(m model.LLM, timeout time.Duration) *Narrator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Narrator{model: m, timeout: timeout}
}

// Narrate returns flavor text for the pet. Every failure wraps
// types.ErrNarrativeFailure; a missed deadline is types.ErrNarrativeTimeout.
func (n *Narrator) Narrate(ctx context.Context, name string, tier types.Tier, trait types.Trait) (string, error) {
	if n == nil || n.model == nil {
		return "", fmt.Errorf("%w: narrator not configured", types.ErrNarrativeFailure)
	}

	ctx, span := tracer.Start(ctx, "narrative.Narrate")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", n.model.Name()),
		attribute.String("pet.tier", string(tier)),
	)

	system, contents, err := prompt.BuildNarrative(prompt.NarrativeInput{Name: name, Tier: tier, Trait: trait})
	if err != nil {
		return "", fmt.Errorf("%w: %w", types.ErrNarrativeFailure, err)
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	req := &model.LLMRequest{
		Contents: contents,
		Config: &genai.GenerateContentConfig{
			SystemInstruction: system,
			Temperature:       genai.Ptr[float32](0.9),
			MaxOutputTokens:   256,
		},
	}

	text, err := n.call(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "narration failed")
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			slog.Warn("narration timed out", "model", n.model.Name(), "timeout", n.timeout)
			return "", fmt.Errorf("%w after %s", types.ErrNarrativeTimeout, n.timeout)
		}
		slog.Error("failed to generate narrative", "model", n.model.Name(), "error", err.Error())
		return "", fmt.Errorf("%w: %w", types.ErrNarrativeFailure, err)
	}

	narrative, err := utils.ParseNarrativeOutput(text)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("%w: %w", types.ErrNarrativeFailure, err)
	}
	return narrative, nil
}

func (n *Narrator) call(ctx context.Context, req *model.LLMRequest) (string, error) {
	type result struct {
		resp *model.LLMResponse
		err  error
	}
	done := make(chan result, 1)

	go func() {
		seq := n.model.GenerateContent(ctx, req, false)
		var resp *model.LLMResponse
		var err error
		seq(func(r *model.LLMResponse, e error) bool {
			resp = r
			err = e
			return false
		})
		done <- result{resp: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		if res.err != nil {
			return "", res.err
		}
		if res.resp == nil {
			return "", fmt.Errorf("empty model response")
		}
		return utils.ExtractContentText(res.resp.Content), nil
	}
}
