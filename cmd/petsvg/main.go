// Package main renders a pet to SVG from a seed or from a stored record.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/easeaico/project-pet/internal/config"
	"github.com/easeaico/project-pet/internal/generator"
	"github.com/easeaico/project-pet/internal/random"
	"github.com/easeaico/project-pet/internal/storage"
	"github.com/easeaico/project-pet/internal/types"
	"github.com/easeaico/project-pet/internal/visual"
)

func main() {
	seed := flag.Uint("seed", 0, "Seed to roll (0 derives one from -user and the clock)")
	pity := flag.Int("pity", 0, "Pity counter to roll with")
	stage := flag.String("stage", string(types.StageActive), "Stage to draw: child, teen, adult, active")
	user := flag.String("user", "", "Render the stored pet of this user instead of rolling")
	size := flag.Int("size", 256, "Output width and height in pixels")
	out := flag.String("out", "", "Output file (default stdout)")
	asJSON := flag.Bool("json", false, "Write the scene graph as JSON instead of SVG")
	flag.Parse()

	var pet types.Pet
	if *user != "" && *seed == 0 {
		p, err := loadStored(*user)
		if err != nil {
			log.Fatalf("failed to load pet: %v", err)
		}
		pet = p
	} else {
		s := uint32(*seed)
		if s == 0 {
			s = random.DeriveSeed(*user, time.Now(), random.NewNonce())
		}
		roll := generator.RollPet(s, *pity)
		pet = roll.Pet
		pet.Stage = types.Stage(*stage)
		fmt.Fprintf(os.Stderr, "seed=%d tier=%s name=%q\n", s, pet.Tier, pet.Name)
	}

	scene := visual.Compose(pet)

	var (
		data []byte
		err  error
	)
	if *asJSON {
		data, err = json.MarshalIndent(scene, "", "  ")
	} else {
		data, err = visual.RenderSVG(scene, *size)
	}
	if err != nil {
		log.Fatalf("failed to render: %v", err)
	}

	if *out == "" {
		_, _ = os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Fatalf("failed to write %s: %v", *out, err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s (%d bytes)\n", *out, len(data))
}

func loadStored(userID string) (types.Pet, error) {
	cfg, err := config.Parse()
	if err != nil {
		return types.Pet{}, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := storage.NewStore(ctx, storage.Options{
		Mode:        cfg.StoreMode,
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.SQLitePath,
	})
	if err != nil {
		return types.Pet{}, err
	}
	defer store.Close()

	row, err := store.Pets.Load(ctx, userID)
	if err != nil {
		return types.Pet{}, err
	}
	if row == nil {
		return types.DefaultPet(), nil
	}
	return row.Pet, nil
}
