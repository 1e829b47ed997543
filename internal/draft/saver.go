package draft

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"lyricclash/internal/models"
)

// DefaultDebounce is the quiet period before a mutated draft is pushed to
// the remote tier
const DefaultDebounce = 2 * time.Second

// Saver persists one attempt's draft across both tiers. Every mutation is
// written through to the local tier immediately; the remote tier is updated
// after a debounce quiet period, or immediately on Flush (visibility loss,
// manual save). Remote saves are serialized: a request arriving while a save
// is in flight joins it rather than queueing another write, and the next
// debounce cycle picks up anything missed. Callers hand in cloned drafts so
// persistence never observes a torn mutation.
type Saver struct {
	key      Key
	local    Store
	remote   Store
	sched    Scheduler
	debounce time.Duration

	// onRemoteResult observes every remote save outcome (nil on success);
	// drives the "draft saved / not saved" indicator
	onRemoteResult func(error)

	mu        sync.Mutex
	pending   *models.AttemptDraft
	cancel    CancelFunc
	hydrated  bool
	closed    bool
	lastSaved time.Time

	flights singleflight.Group
}

// NewSaver creates a saver for one draft key. A nil scheduler uses real
// timers; a non-positive debounce uses the default quiet period.
func NewSaver(key Key, local, remote Store, sched Scheduler, debounce time.Duration, onRemoteResult func(error)) *Saver {
	if sched == nil {
		sched = TimerScheduler{}
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Saver{
		key:            key,
		local:          local,
		remote:         remote,
		sched:          sched,
		debounce:       debounce,
		onRemoteResult: onRemoteResult,
	}
}

// Record persists a mutated draft: local tier synchronously, remote tier on
// a reset debounce timer. The first record after load represents hydration
// rather than user intent and schedules no remote save.
func (s *Saver) Record(ctx context.Context, draft *models.AttemptDraft) error {
	if err := s.local.Save(ctx, s.key, draft); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	if !s.hydrated {
		s.hydrated = true
		return nil
	}

	s.pending = draft
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = s.sched.AfterFunc(s.debounce, func() {
		s.flushPending(context.Background())
	})
	return nil
}

// Flush writes the draft to both tiers immediately, bypassing the debounce.
// Used on visibility loss and manual saves.
func (s *Saver) Flush(ctx context.Context, draft *models.AttemptDraft) error {
	if err := s.local.Save(ctx, s.key, draft); err != nil {
		return err
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.pending = nil
	s.hydrated = true
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return nil
	}
	return s.push(ctx, draft)
}

// flushPending runs when the debounce elapses
func (s *Saver) flushPending(ctx context.Context) {
	s.mu.Lock()
	draft := s.pending
	s.pending = nil
	s.cancel = nil
	closed := s.closed
	s.mu.Unlock()

	if draft == nil || closed {
		return
	}
	s.push(ctx, draft)
}

// push performs the remote save. Concurrent pushes for this saver collapse
// into the single in-flight call.
func (s *Saver) push(ctx context.Context, draft *models.AttemptDraft) error {
	_, err, _ := s.flights.Do("save", func() (interface{}, error) {
		return nil, s.remote.Save(ctx, s.key, draft)
	})

	if err == nil {
		s.mu.Lock()
		s.lastSaved = time.Now()
		s.mu.Unlock()
	}
	if s.onRemoteResult != nil {
		s.onRemoteResult(err)
	}
	return err
}

// LastSavedAt returns when the remote tier last accepted a save, zero if
// never
func (s *Saver) LastSavedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaved
}

// Close cancels any pending debounce so nothing writes a draft after the
// attempt is torn down
func (s *Saver) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.pending = nil
	s.closed = true
}
