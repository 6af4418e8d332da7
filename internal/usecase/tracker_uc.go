package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"forma-web/internal/domain"
	"forma-web/internal/domain/model"
	"forma-web/internal/domain/ports/adapter"
	"forma-web/internal/infra/metrics"
)

// TrackerPhase is the polling controller's state.
type TrackerPhase string

const (
	PhaseIdle      TrackerPhase = "idle"
	PhasePolling   TrackerPhase = "polling"
	PhaseCompleted TrackerPhase = "completed"
	PhaseFailed    TrackerPhase = "failed"
	PhaseErrored   TrackerPhase = "errored"
)

const (
	DefaultPollInterval  = 5 * time.Second
	DefaultRetryAttempts = 3
	DefaultRetryDelay    = time.Second
)

// TrackerOptions configures one StatusTracker. Zero values fall back to
// the documented defaults; both callbacks are optional.
type TrackerOptions struct {
	PollInterval  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration

	// OnStatusChange fires on every successful fetch, repeats included.
	// Consumers must tolerate duplicates; the tracker does not deduplicate.
	OnStatusChange func(*model.GenerationStatus)
	// OnComplete fires exactly once per tracked recordID, on the fetch
	// that first observes the completed status.
	OnComplete func(*model.GenerationStatus)
}

func (o TrackerOptions) withDefaults() TrackerOptions {
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.RetryAttempts <= 0 {
		o.RetryAttempts = DefaultRetryAttempts
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = DefaultRetryDelay
	}
	return o
}

// StatusTracker polls the generation backend for one recordID until the
// job reaches a terminal state, the retry budget for a poll is exhausted,
// or Stop is called. A tracker never outlives its recordID; track a new
// record by creating a new tracker.
//
// One goroutine owns the loop, so there is never more than one
// outstanding fetch and observations are processed in issue order. The
// retry budget is scoped to a single poll, not the job's lifetime; a poll
// that recovers within budget leaves the loop in Polling with a fresh
// budget for the next cycle.
type StatusTracker struct {
	recordID string
	fetcher  adapter.StatusFetcher
	opts     TrackerOptions
	log      *zerolog.Logger

	mu            sync.RWMutex
	phase         TrackerPhase
	last          *model.GenerationStatus
	completeFired bool
	finishedAt    time.Time

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewStatusTracker(recordID string, fetcher adapter.StatusFetcher, opts TrackerOptions, logger *zerolog.Logger) *StatusTracker {
	l := logger.With().Str("record_id", recordID).Logger()
	return &StatusTracker{
		recordID: recordID,
		fetcher:  fetcher,
		opts:     opts.withDefaults(),
		log:      &l,
		phase:    PhaseIdle,
	}
}

func (t *StatusTracker) RecordID() string { return t.recordID }

// Start begins polling in a background goroutine. The first fetch happens
// immediately. Calling Start on a running tracker has no effect.
func (t *StatusTracker) Start(parent context.Context) {
	t.mu.Lock()
	if t.cancel != nil {
		t.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(parent)
	t.ctx = ctx
	t.cancel = cancel
	t.done = make(chan struct{})
	t.phase = PhasePolling
	t.mu.Unlock()

	go t.loop()
}

// Stop forces the tracker to Idle from any state: the pending timer is
// cancelled and an in-flight fetch is abandoned, its late result
// discarded. Idempotent.
func (t *StatusTracker) Stop() {
	t.mu.Lock()
	cancel := t.cancel
	done := t.done
	t.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done

	t.mu.Lock()
	t.phase = PhaseIdle
	t.cancel = nil
	t.mu.Unlock()
}

// Phase returns the controller's current state.
func (t *StatusTracker) Phase() TrackerPhase {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.phase
}

// FinishedAt returns when the tracker reached a terminal outcome
// (completed, failed or errored), and whether it has.
func (t *StatusTracker) FinishedAt() (time.Time, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.finishedAt, !t.finishedAt.IsZero()
}

// LastStatus returns the most recent successfully fetched status, if any.
// It is preserved through an Errored run for display.
func (t *StatusTracker) LastStatus() *model.GenerationStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.last == nil {
		return nil
	}
	cp := *t.last
	return &cp
}

// Projection returns what the presentation layer should render right now.
func (t *StatusTracker) Projection() model.StatusProjection {
	t.mu.RLock()
	phase := t.phase
	last := t.last
	t.mu.RUnlock()

	switch {
	case phase == PhaseErrored:
		return model.ClassifyError()
	case last == nil:
		return model.ClassifyLoading()
	default:
		return model.Classify(last)
	}
}

func (t *StatusTracker) loop() {
	defer close(t.done)

	// Single timer owned by the loop; at most one scheduled poll exists.
	timer := time.NewTimer(0) // immediate first fetch
	defer timer.Stop()

	for {
		select {
		case <-t.ctx.Done():
			return
		case <-timer.C:
		}

		st, err := t.fetchWithRetry(t.ctx)
		if t.ctx.Err() != nil {
			// Stopped while fetching; the late result must not be applied.
			return
		}
		if err != nil {
			t.mu.Lock()
			t.phase = PhaseErrored
			t.finishedAt = time.Now()
			t.mu.Unlock()
			metrics.TrackerFinished(string(PhaseErrored))
			t.log.Warn().Err(err).Int("attempts", t.opts.RetryAttempts).Msg("status polling gave up")
			return
		}

		t.observe(st)
		if st.State.Terminal() {
			return
		}
		timer.Reset(t.opts.PollInterval)
	}
}

// fetchWithRetry runs one poll: up to RetryAttempts fetches with a fixed
// RetryDelay between them. Each poll gets a fresh budget.
func (t *StatusTracker) fetchWithRetry(ctx context.Context) (*model.GenerationStatus, error) {
	var lastErr error
	for attempt := 1; attempt <= t.opts.RetryAttempts; attempt++ {
		st, err := t.fetcher.FetchStatus(ctx, t.recordID)
		if err == nil {
			return st, nil
		}
		lastErr = err
		metrics.IncFetchError(fetchErrorKind(err))
		t.log.Debug().Err(err).Int("attempt", attempt).Msg("status fetch failed")

		if attempt == t.opts.RetryAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(t.opts.RetryDelay):
		}
	}
	return nil, lastErr
}

// observe applies a fetched status to tracker state and notifies
// listeners. Runs on the loop goroutine, so callbacks see observations in
// fetch order.
func (t *StatusTracker) observe(st *model.GenerationStatus) {
	t.mu.Lock()
	t.last = st
	switch st.State {
	case model.GenerationCompleted:
		t.phase = PhaseCompleted
	case model.GenerationFailed:
		t.phase = PhaseFailed
	default:
		t.phase = PhasePolling
	}
	if st.State.Terminal() {
		t.finishedAt = time.Now()
	}
	fireComplete := st.State == model.GenerationCompleted && !t.completeFired
	if fireComplete {
		t.completeFired = true
	}
	t.mu.Unlock()

	metrics.ObservePoll(string(st.State))
	if st.State.Terminal() {
		metrics.TrackerFinished(string(st.State))
		t.log.Info().Str("status", string(st.State)).Str("task_id", st.TaskID).Msg("generation reached terminal state")
	}

	if t.opts.OnStatusChange != nil {
		t.opts.OnStatusChange(st)
	}
	if fireComplete && t.opts.OnComplete != nil {
		t.opts.OnComplete(st)
	}
}

func fetchErrorKind(err error) string {
	var rf *domain.RequestFailedError
	switch {
	case errors.Is(err, domain.ErrAuthMissing):
		return "auth_missing"
	case errors.Is(err, domain.ErrMalformedResponse):
		return "malformed"
	case errors.As(err, &rf):
		return "request_failed"
	default:
		return "other"
	}
}
