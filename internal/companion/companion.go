// Package companion owns the live pet of one user: the in-memory record,
// its decay loop, the discrete care events and the coalesced write-back.
package companion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/easeaico/project-pet/internal/archetype"
	"github.com/easeaico/project-pet/internal/generator"
	"github.com/easeaico/project-pet/internal/persist"
	"github.com/easeaico/project-pet/internal/random"
	"github.com/easeaico/project-pet/internal/types"
	"github.com/easeaico/project-pet/internal/vitals"
)

// Method is how a generation is paid for.
type Method string

const (
	MethodTokens    Method = "tokens"
	MethodFragments Method = "fragments"
)

const (
	// TokenCost is debited from the ledger for a token generation.
	TokenCost = 50
	// FragmentCost is taken from the row's fragments for a fragment generation.
	FragmentCost = 30
	// DismantleReward is credited in fragments when a common pet is dismantled.
	DismantleReward = 10
	// VisibleFor is how long the pet stays on screen after a care event.
	VisibleFor = 8 * time.Second
	// MaxNameRunes bounds a pet name.
	MaxNameRunes = 24
)

// Options tune a Companion. Zero values use the package defaults.
type Options struct {
	DecayInterval time.Duration
	DecayRate     float64
	WriteDebounce time.Duration
	// IdleTTL is how long a Registry keeps an unused companion loaded.
	IdleTTL time.Duration
	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
	// Seed returns the generation seed for a user. Defaults to a
	// per-day seed salted with a random nonce.
	Seed func(userID string, now time.Time) uint32
}

// Snapshot is a consistent copy of the companion state.
type Snapshot struct {
	Pet         types.Pet           `json:"pet"`
	PityCounter int                 `json:"pityCounter"`
	Fragments   int                 `json:"fragments"`
	Archetype   archetype.Archetype `json:"archetype,omitempty"`
	Visible     bool                `json:"visible"`
	Generating  bool                `json:"generating"`

	version uint64
}

// Companion is the session object for one user's pet. All mutations are
// applied under one lock, so readers see either the state before or after
// an operation.
type Companion struct {
	userID    string
	repo      PetRepo
	ledger    Ledger
	engine    *generator.Engine
	rules     *vitals.Rules
	scheduler *persist.Scheduler
	interval  time.Duration
	now       func() time.Time
	seed      func(userID string, now time.Time) uint32

	mu           sync.RWMutex
	loaded       bool
	pet          types.Pet
	pity         int
	fragments    int
	generating   bool
	visibleUntil time.Time
	// version counts commits and orders the patches cut from them.
	version uint64

	subsMu sync.Mutex
	subs   map[int]chan Snapshot
	nextID int

	loopMu sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New returns an unloaded Companion for userID.
func New(userID string, repo PetRepo, ledger Ledger, engine *generator.Engine, opts Options) *Companion {
	if opts.DecayInterval <= 0 {
		opts.DecayInterval = vitals.DefaultDecayInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Seed == nil {
		opts.Seed = func(userID string, now time.Time) uint32 {
			return random.DeriveSeed(userID, now, random.NewNonce())
		}
	}
	return &Companion{
		userID:    userID,
		repo:      repo,
		ledger:    ledger,
		engine:    engine,
		rules:     vitals.NewRules(opts.DecayRate),
		scheduler: persist.NewScheduler(repo, userID, opts.WriteDebounce),
		interval:  opts.DecayInterval,
		now:       opts.Now,
		seed:      opts.Seed,
		subs:      make(map[int]chan Snapshot),
	}
}

// UserID returns the owning user.
func (c *Companion) UserID() string {
	return c.userID
}

// Load hydrates the record from the repo. A user without a row gets a
// dormant capsule, which is written back immediately.
func (c *Companion) Load(ctx context.Context) error {
	if c == nil || c.repo == nil {
		return fmt.Errorf("companion not configured")
	}
	row, err := c.repo.Load(ctx, c.userID)
	if err != nil {
		return fmt.Errorf("failed to load pet: %w", err)
	}

	c.mu.Lock()
	c.loaded = true
	if row == nil {
		c.pet = types.DefaultPet()
		c.pity = 0
		c.fragments = 0
	} else {
		c.pet = types.Sanitize(row.Pet)
		c.pity = max(row.PityCounter, 0)
		c.fragments = max(row.Fragments, 0)
	}
	snap := c.commitLocked()
	c.mu.Unlock()

	if row == nil {
		slog.Info("created dormant capsule", "user_id", c.userID)
		c.flush(ctx, fullPatch(snap))
	}
	return nil
}

// State returns a deep copy of the current state.
func (c *Companion) State() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// Subscribe returns a channel that receives a snapshot after every
// committed mutation. Slow readers only see the latest snapshot. Call the
// returned func to unsubscribe.
func (c *Companion) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	c.subsMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = ch
	c.subsMu.Unlock()

	return ch, func() {
		c.subsMu.Lock()
		defer c.subsMu.Unlock()
		if _, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(ch)
		}
	}
}

// Generate pays for and rolls a new pet. The debit happens before the roll
// and is refunded when narration fails, leaving the record untouched.
func (c *Companion) Generate(ctx context.Context, method Method) error {
	if c.engine == nil {
		return fmt.Errorf("generator not configured")
	}
	if method != MethodTokens && method != MethodFragments {
		return types.InvalidOperation("unknown payment method %q", method)
	}

	c.mu.Lock()
	if err := c.checkLoadedLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.generating {
		c.mu.Unlock()
		return types.InvalidOperation("generation already in progress")
	}
	if c.pet.Stage.Generated() {
		c.mu.Unlock()
		return types.InvalidOperation("dismantle the current pet before generating a new one")
	}
	if method == MethodFragments && c.fragments < FragmentCost {
		have := c.fragments
		c.mu.Unlock()
		return fmt.Errorf("%w: need %d fragments, have %d", types.ErrInsufficientFunds, FragmentCost, have)
	}
	c.generating = true
	pity := c.pity
	c.commitLocked()
	c.mu.Unlock()

	committed := false
	defer func() {
		if committed {
			return
		}
		c.mu.Lock()
		c.generating = false
		c.commitLocked()
		c.mu.Unlock()
	}()

	if method == MethodTokens {
		if c.ledger == nil {
			return fmt.Errorf("ledger not configured")
		}
		ok, err := c.ledger.Deduct(ctx, c.userID, TokenCost)
		if err != nil {
			return fmt.Errorf("failed to debit tokens: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: need %d tokens", types.ErrInsufficientFunds, TokenCost)
		}
	}

	pet, nextPity, err := c.engine.Generate(ctx, c.seed(c.userID, c.now()), pity)
	if err != nil {
		if method == MethodTokens {
			c.refund(err)
		}
		return err
	}

	c.mu.Lock()
	c.pet = pet
	c.pity = nextPity
	if method == MethodFragments {
		c.fragments -= FragmentCost
	}
	c.generating = false
	committed = true
	snap := c.commitLocked()
	c.mu.Unlock()

	slog.Info("pet hatched", "user_id", c.userID, "tier", pet.Tier, "method", method, "pity", nextPity)
	c.flush(ctx, fullPatch(snap))
	return nil
}

func (c *Companion) refund(cause error) {
	// The caller's context may be the one that expired.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.ledger.Credit(ctx, c.userID, TokenCost); err != nil {
		slog.Error("failed to refund tokens", "user_id", c.userID, "amount", TokenCost, "cause", cause.Error(), "error", err.Error())
		return
	}
	slog.Warn("refunded tokens after failed generation", "user_id", c.userID, "amount", TokenCost, "cause", cause.Error())
}

// Dismantle returns a common pet to the dormant capsule and credits
// fragments. The pity counter is kept.
func (c *Companion) Dismantle(ctx context.Context) error {
	c.mu.Lock()
	if err := c.checkLoadedLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	if !c.pet.Stage.Generated() {
		c.mu.Unlock()
		return types.InvalidOperation("there is no active pet to dismantle")
	}
	if c.pet.Tier != types.TierCommon {
		tier := c.pet.Tier
		c.mu.Unlock()
		return types.InvalidOperation("%s pets cannot be dismantled", tier)
	}
	c.pet = types.DefaultPet()
	c.fragments += DismantleReward
	snap := c.commitLocked()
	c.mu.Unlock()

	slog.Info("pet dismantled", "user_id", c.userID, "fragments", snap.Fragments)
	c.flush(ctx, types.Patch{Pet: &snap.Pet, Fragments: &snap.Fragments, Version: snap.version})
	return nil
}

// Rename sets the pet name. Names are trimmed and must be 1 to 24 runes.
func (c *Companion) Rename(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n == 0 || n > MaxNameRunes {
		return types.InvalidOperation("name must be 1 to %d characters", MaxNameRunes)
	}

	c.mu.Lock()
	if err := c.checkLoadedLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.pet.Name = name
	snap := c.commitLocked()
	c.mu.Unlock()

	c.flush(ctx, types.Patch{Pet: &snap.Pet, Version: snap.version})
	return nil
}

// NotifyActivity nudges stats for a product event. detail is only logged.
func (c *Companion) NotifyActivity(kind vitals.ActivityKind, detail string) error {
	slog.Debug("activity", "user_id", c.userID, "kind", kind, "detail", detail)
	return c.mutate(true, func(pet types.Pet) (types.Pet, bool, error) {
		return c.rules.Activity(pet, kind)
	})
}

// RecordInteraction feeds the pet.
func (c *Companion) RecordInteraction() error {
	return c.mutate(true, func(pet types.Pet) (types.Pet, bool, error) {
		pet, changed := c.rules.Interaction(pet, c.now())
		return pet, changed, nil
	})
}

// RecordMiniGameWin boosts the stat trained by kind.
func (c *Companion) RecordMiniGameWin(kind vitals.MiniGameKind) error {
	return c.mutate(true, func(pet types.Pet) (types.Pet, bool, error) {
		return c.rules.MiniGameWin(pet, kind, c.now())
	})
}

// ApplyStyleChoice shapes the personality toward trait.
func (c *Companion) ApplyStyleChoice(trait types.Trait) error {
	return c.mutate(false, func(pet types.Pet) (types.Pet, bool, error) {
		return c.rules.StyleChoice(pet, trait)
	})
}

// Tick applies one decay step. The decay loop calls it on every interval.
func (c *Companion) Tick() {
	c.mu.Lock()
	if !c.loaded {
		c.mu.Unlock()
		return
	}
	pet, changed := c.rules.Decay(c.pet)
	if !changed {
		c.mu.Unlock()
		return
	}
	c.pet = pet
	snap := c.commitLocked()
	c.mu.Unlock()

	c.scheduler.Schedule(types.Patch{Pet: &snap.Pet, Version: snap.version})
}

// Start runs the decay loop until Stop is called or ctx is done.
func (c *Companion) Start(ctx context.Context) {
	c.loopMu.Lock()
	defer c.loopMu.Unlock()
	if c.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Tick()
			}
		}
	}()
}

// Stop ends the decay loop, flushes pending writes and closes subscribers.
func (c *Companion) Stop(ctx context.Context) error {
	c.loopMu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.loopMu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	c.subsMu.Lock()
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
	c.subsMu.Unlock()

	return c.scheduler.Close(ctx)
}

// mutate applies fn to a copy of the record. Events that leave the record
// unchanged are neither published nor written.
func (c *Companion) mutate(visible bool, fn func(types.Pet) (types.Pet, bool, error)) error {
	c.mu.Lock()
	if err := c.checkLoadedLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	pet, changed, err := fn(c.pet.Clone())
	if err != nil || !changed {
		c.mu.Unlock()
		return err
	}
	c.pet = pet
	if visible {
		c.visibleUntil = c.now().Add(VisibleFor)
	}
	snap := c.commitLocked()
	c.mu.Unlock()

	c.scheduler.Schedule(types.Patch{Pet: &snap.Pet, Version: snap.version})
	return nil
}

// flush issues a critical write. Failures are logged by the scheduler and
// never roll back the in-memory record.
func (c *Companion) flush(ctx context.Context, patch types.Patch) {
	_ = c.scheduler.Flush(ctx, patch)
}

func (c *Companion) checkLoadedLocked() error {
	if !c.loaded {
		return types.InvalidOperation("pet not loaded")
	}
	return nil
}

func (c *Companion) snapshotLocked() Snapshot {
	snap := Snapshot{
		Pet:         c.pet.Clone(),
		PityCounter: c.pity,
		Fragments:   c.fragments,
		Visible:     c.now().Before(c.visibleUntil),
		Generating:  c.generating,
		version:     c.version,
	}
	if c.pet.Stage.Generated() {
		snap.Archetype = archetype.Classify(c.pet.Personality)
	}
	return snap
}

// commitLocked bumps the version, snapshots the state and fans it out to
// subscribers.
func (c *Companion) commitLocked() Snapshot {
	c.version++
	snap := c.snapshotLocked()
	c.publish(snap)
	return snap
}

func (c *Companion) publish(snap Snapshot) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- snap:
			continue
		default:
		}
		// Drop the stale snapshot so the newest one is always delivered.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func fullPatch(snap Snapshot) types.Patch {
	pet := snap.Pet
	pity := snap.PityCounter
	fragments := snap.Fragments
	return types.Patch{Pet: &pet, PityCounter: &pity, Fragments: &fragments, Version: snap.version}
}
