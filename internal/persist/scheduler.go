// Package persist coalesces pet state writes.
//
// Routine mutations (decay ticks, activity nudges) are scheduled: each
// new request replaces the pending payload and restarts the debounce
// timer, so a burst of changes lands as one write. Important mutations
// (generation, dismantle, rename) are flushed: the timer is cancelled and
// the write happens immediately, carrying any pending fields with it.
//
// Versioned patches that arrive after a newer one has been accepted are
// dropped, so a write cut before a flush can never land after it.
package persist

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/easeaico/project-pet/internal/types"
)

// DefaultDelay is the debounce window for scheduled writes.
const DefaultDelay = 3 * time.Second

const writeTimeout = 5 * time.Second

// Writer saves a partial row for a user.
type Writer interface {
	Save(ctx context.Context, userID string, patch types.Patch) error
}

// Scheduler owns the pending-payload slot and the single timer for one user.
type Scheduler struct {
	writer Writer
	userID string
	delay  time.Duration

	mu      sync.Mutex
	pending *types.Patch
	timer   *time.Timer
	seq     uint64
	closed  bool
	// latest is the highest patch version accepted by Schedule or Flush.
	latest uint64

	// writeMu serializes calls into the writer.
	writeMu sync.Mutex
	written uint64
}

// NewScheduler returns a Scheduler writing userID's row through writer.
func NewScheduler(writer Writer, userID string, delay time.Duration) *Scheduler {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Scheduler{
		writer: writer,
		userID: userID,
		delay:  delay,
	}
}

// Schedule queues patch for a coalesced write. It never blocks on I/O.
func (s *Scheduler) Schedule(patch types.Patch) {
	if patch.Empty() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.staleLocked(patch) {
		return
	}

	merged := patch
	if s.pending != nil {
		merged = s.pending.Merge(patch)
	}
	s.pending = &merged

	s.seq++
	seq := s.seq
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		s.fire(seq)
	})
}

// Flush writes patch immediately together with any pending fields,
// superseding the coalesced write.
func (s *Scheduler) Flush(ctx context.Context, patch types.Patch) error {
	s.mu.Lock()
	if s.staleLocked(patch) {
		s.mu.Unlock()
		slog.Debug("dropped stale flush", "user_id", s.userID, "version", patch.Version)
		return nil
	}
	merged := s.takePendingLocked().Merge(patch)
	s.mu.Unlock()

	if merged.Empty() {
		return nil
	}
	return s.write(ctx, merged)
}

func (s *Scheduler) hasPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Close flushes anything pending and stops accepting scheduled writes.
func (s *Scheduler) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	patch := s.takePendingLocked()
	s.mu.Unlock()

	if patch.Empty() {
		return nil
	}
	return s.write(ctx, patch)
}

// staleLocked reports whether patch is older than one already accepted,
// and records its version otherwise.
func (s *Scheduler) staleLocked(patch types.Patch) bool {
	if patch.Version == 0 {
		return false
	}
	if patch.Version <= s.latest {
		return true
	}
	s.latest = patch.Version
	return false
}

func (s *Scheduler) takePendingLocked() types.Patch {
	s.seq++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	var patch types.Patch
	if s.pending != nil {
		patch = *s.pending
		s.pending = nil
	}
	return patch
}

func (s *Scheduler) fire(seq uint64) {
	s.mu.Lock()
	if seq != s.seq || s.pending == nil {
		s.mu.Unlock()
		return
	}
	patch := *s.pending
	s.pending = nil
	s.timer = nil
	s.mu.Unlock()

	_ = s.write(context.Background(), patch)
}

func (s *Scheduler) write(ctx context.Context, patch types.Patch) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.writer == nil {
		return fmt.Errorf("%w: writer not configured", types.ErrPersistenceWrite)
	}
	if patch.Version != 0 {
		if patch.Version <= s.written {
			return nil
		}
		s.written = patch.Version
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := s.writer.Save(ctx, s.userID, patch); err != nil {
		slog.Error("failed to persist pet state", "user_id", s.userID, "error", err.Error())
		return fmt.Errorf("%w: %w", types.ErrPersistenceWrite, err)
	}
	return nil
}
