package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"forma-web/internal/domain/ports/adapter"
)

// Finished trackers linger this long so late readers still see the final
// projection before the entry is dropped.
const defaultTrackerRetention = 5 * time.Minute

// TrackerRegistry keys one StatusTracker per recordID for the demo
// endpoint. Each tracker owns its own state and timer; nothing is shared
// across records.
type TrackerRegistry struct {
	fetcher   adapter.StatusFetcher
	opts      TrackerOptions
	retention time.Duration
	log       *zerolog.Logger

	mu       sync.Mutex
	trackers map[string]*StatusTracker
}

func NewTrackerRegistry(fetcher adapter.StatusFetcher, opts TrackerOptions, logger *zerolog.Logger) *TrackerRegistry {
	return &TrackerRegistry{
		fetcher:   fetcher,
		opts:      opts,
		retention: defaultTrackerRetention,
		log:       logger,
		trackers:  make(map[string]*StatusTracker),
	}
}

// Track returns the tracker for recordID, starting one on first sight.
// Idempotent: repeated calls for the same record share one tracker.
func (r *TrackerRegistry) Track(ctx context.Context, recordID string) *StatusTracker {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evictFinishedLocked()
	if t, ok := r.trackers[recordID]; ok {
		return t
	}
	t := NewStatusTracker(recordID, r.fetcher, r.opts, r.log)
	t.Start(ctx)
	r.trackers[recordID] = t
	return t
}

// evictFinishedLocked drops trackers whose terminal outcome is older than
// the retention window, so the map does not grow per recordID forever.
// Caller holds r.mu.
func (r *TrackerRegistry) evictFinishedLocked() {
	cutoff := time.Now().Add(-r.retention)
	for id, t := range r.trackers {
		if at, ok := t.FinishedAt(); ok && at.Before(cutoff) {
			delete(r.trackers, id)
		}
	}
}

// Release stops and forgets the tracker for recordID, if any.
func (r *TrackerRegistry) Release(recordID string) {
	r.mu.Lock()
	t, ok := r.trackers[recordID]
	delete(r.trackers, recordID)
	r.mu.Unlock()
	if ok {
		t.Stop()
	}
}

// StopAll stops every tracker. Called on shutdown.
func (r *TrackerRegistry) StopAll() {
	r.mu.Lock()
	all := make([]*StatusTracker, 0, len(r.trackers))
	for _, t := range r.trackers {
		all = append(all, t)
	}
	r.trackers = make(map[string]*StatusTracker)
	r.mu.Unlock()

	for _, t := range all {
		t.Stop()
	}
}
