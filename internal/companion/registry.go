package companion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/easeaico/project-pet/internal/generator"
)

const (
	// DefaultIdleTTL is how long a companion with no open session stays loaded
	// after its last request.
	DefaultIdleTTL = 10 * time.Minute
	// DefaultSweepInterval is how often idle companions are looked for.
	DefaultSweepInterval = time.Minute
)

type entry struct {
	c        *Companion
	refs     int
	lastUsed time.Time
}

// Registry keeps one live Companion per user. A companion stays loaded
// while a session holds it or until it has been idle for the idle TTL;
// unloading stops its decay loop and flushes pending writes.
type Registry struct {
	repo    PetRepo
	ledger  Ledger
	engine  *generator.Engine
	opts    Options
	idleTTL time.Duration
	now     func() time.Time

	mu    sync.Mutex
	items map[string]*entry
	ctx   context.Context
}

// NewRegistry returns an empty Registry. Decay loops run until ctx is done
// or the companion is released.
func NewRegistry(ctx context.Context, repo PetRepo, ledger Ledger, engine *generator.Engine, opts Options) *Registry {
	idleTTL := opts.IdleTTL
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Registry{
		repo:    repo,
		ledger:  ledger,
		engine:  engine,
		opts:    opts,
		idleTTL: idleTTL,
		now:     now,
		items:   make(map[string]*entry),
		ctx:     ctx,
	}
}

// Get returns the loaded companion for userID, loading it on first use.
// Each call counts as activity for idle eviction.
func (r *Registry) Get(ctx context.Context, userID string) (*Companion, error) {
	e, err := r.acquire(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	return e.c, nil
}

// Acquire returns userID's companion and pins it loaded until the returned
// release func is called. Long-lived sessions such as streams use it.
func (r *Registry) Acquire(ctx context.Context, userID string) (*Companion, func(), error) {
	e, err := r.acquire(ctx, userID, true)
	if err != nil {
		return nil, nil, err
	}
	var once sync.Once
	return e.c, func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			e.refs--
			e.lastUsed = r.now()
		})
	}, nil
}

func (r *Registry) acquire(ctx context.Context, userID string, pin bool) (*entry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[userID]
	if !ok {
		c := New(userID, r.repo, r.ledger, r.engine, r.opts)
		if err := c.Load(ctx); err != nil {
			return nil, err
		}
		c.Start(r.ctx)
		e = &entry{c: c}
		r.items[userID] = e
	}
	e.lastUsed = r.now()
	if pin {
		e.refs++
	}
	return e, nil
}

// Release stops and forgets userID's companion, flushing pending writes.
func (r *Registry) Release(ctx context.Context, userID string) error {
	r.mu.Lock()
	e, ok := r.items[userID]
	delete(r.items, userID)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	return e.c.Stop(ctx)
}

// Sweep unloads every companion that has no open session and has been
// idle for the idle TTL at now. It returns how many were unloaded.
func (r *Registry) Sweep(ctx context.Context, now time.Time) int {
	r.mu.Lock()
	var idle []*Companion
	for id, e := range r.items {
		if e.refs > 0 || now.Sub(e.lastUsed) < r.idleTTL {
			continue
		}
		delete(r.items, id)
		idle = append(idle, e.c)
	}
	r.mu.Unlock()

	for _, c := range idle {
		if err := c.Stop(ctx); err != nil {
			slog.Warn("failed to flush idle companion", "user_id", c.UserID(), "error", err.Error())
		}
	}
	if len(idle) > 0 {
		slog.Debug("unloaded idle companions", "count", len(idle), "live", r.Len())
	}
	return len(idle)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx, r.now())
		}
	}
}

// Len returns the number of live companions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Close releases every companion.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	items := r.items
	r.items = make(map[string]*entry)
	r.mu.Unlock()

	var errs []error
	for _, e := range items {
		if err := e.c.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("user %s: %w", e.c.UserID(), err))
		}
	}
	return errors.Join(errs...)
}
