package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/easeaico/project-pet/internal/types"
)

var tracer = otel.Tracer("github.com/easeaico/project-pet/internal/generator")

// Narrator produces flavor text for a freshly rolled pet.
type Narrator interface {
	Narrate(ctx context.Context, name string, tier types.Tier, trait types.Trait) (string, error)
}

// Engine runs a full generation: the deterministic roll plus narration.
type Engine struct {
	narrator Narrator
}

// NewEngine returns an Engine.
func NewEngine(narrator Narrator) *Engine {
	return &Engine{narrator: narrator}
}

// Generate rolls a pet for seed and asks the narrator for its story. It is
// atomic: on any narrative error no record is returned and the caller's
// pity counter must stay as it was.
func (e *Engine) Generate(ctx context.Context, seed uint32, pity int) (types.Pet, int, error) {
	if e == nil || e.narrator == nil {
		return types.Pet{}, pity, fmt.Errorf("generator not configured")
	}

	ctx, span := tracer.Start(ctx, "generator.Generate")
	defer span.End()

	roll := RollPet(seed, pity)
	span.SetAttributes(
		attribute.Int64("pet.seed", int64(seed)),
		attribute.Int("pet.pity", pity),
		attribute.String("pet.tier", string(roll.Pet.Tier)),
	)

	narrative, err := e.narrator.Narrate(ctx, roll.Pet.Name, roll.Pet.Tier, roll.Dominant)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "narration failed")
		if !errors.Is(err, types.ErrNarrativeFailure) {
			err = fmt.Errorf("%w: %w", types.ErrNarrativeFailure, err)
		}
		return types.Pet{}, pity, err
	}

	pet := roll.Pet
	pet.Narrative = narrative
	slog.Info("pet generated", "tier", pet.Tier, "blueprint", pet.Blueprint.URL, "pity", roll.Pity)
	return pet, roll.Pity, nil
}
