package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"forma-web/internal/domain"
	"forma-web/internal/domain/model"
)

func TestStatusTracker(t *testing.T) {
	ctx := context.Background()
	testLogger := newTestLogger()

	t.Run("should project a queued job and wait the full interval before the next poll", func(t *testing.T) {
		// --- Arrange ---
		interval := 60 * time.Millisecond
		fetcher := &mockStatusFetcher{} // always pending
		tracker := NewStatusTracker("rec-1", fetcher, TrackerOptions{
			PollInterval: interval,
			RetryDelay:   5 * time.Millisecond,
		}, testLogger)

		// --- Act ---
		tracker.Start(ctx)
		defer tracker.Stop()

		if !waitFor(time.Second, func() bool { return tracker.LastStatus() != nil }) {
			t.Fatal("first fetch never landed")
		}
		proj := tracker.Projection()

		if !waitFor(time.Second, func() bool { return fetcher.CallCount() >= 2 }) {
			t.Fatal("second fetch never happened")
		}

		// --- Assert ---
		if proj.Headline != "Queued for processing..." {
			t.Errorf("expected queued headline, got %q", proj.Headline)
		}
		if proj.ProgressPercent != 10 {
			t.Errorf("expected progress 10, got %d", proj.ProgressPercent)
		}
		times := fetcher.CallTimes()
		if gap := times[1].Sub(times[0]); gap < interval {
			t.Errorf("second poll fired after %v, sooner than the %v interval", gap, interval)
		}
		if tracker.Phase() != PhasePolling {
			t.Errorf("expected polling phase, got %s", tracker.Phase())
		}
	})

	t.Run("should forward every status in order and fire onComplete exactly once", func(t *testing.T) {
		// --- Arrange ---
		fetcher := sequenceFetcher(
			&model.GenerationStatus{RecordID: "rec-2", State: model.GenerationPending},
			&model.GenerationStatus{RecordID: "rec-2", State: model.GenerationRunning},
			&model.GenerationStatus{RecordID: "rec-2", State: model.GenerationCompleted, TaskID: "abc123"},
		)

		var mu sync.Mutex
		var observed []model.GenerationState
		var completions []*model.GenerationStatus
		tracker := NewStatusTracker("rec-2", fetcher, TrackerOptions{
			PollInterval: 10 * time.Millisecond,
			OnStatusChange: func(st *model.GenerationStatus) {
				mu.Lock()
				observed = append(observed, st.State)
				mu.Unlock()
			},
			OnComplete: func(st *model.GenerationStatus) {
				mu.Lock()
				completions = append(completions, st)
				mu.Unlock()
			},
		}, testLogger)

		// --- Act ---
		tracker.Start(ctx)
		defer tracker.Stop()
		if !waitFor(time.Second, func() bool { return tracker.Phase() == PhaseCompleted }) {
			t.Fatalf("tracker never completed, phase=%s", tracker.Phase())
		}
		time.Sleep(60 * time.Millisecond) // room for any stray scheduling

		// --- Assert ---
		if n := fetcher.CallCount(); n != 3 {
			t.Errorf("expected exactly 3 fetches, got %d", n)
		}
		mu.Lock()
		defer mu.Unlock()
		want := []model.GenerationState{model.GenerationPending, model.GenerationRunning, model.GenerationCompleted}
		if len(observed) != len(want) {
			t.Fatalf("expected %d status callbacks, got %d", len(want), len(observed))
		}
		for i := range want {
			if observed[i] != want[i] {
				t.Errorf("callback %d: expected %s, got %s", i, want[i], observed[i])
			}
		}
		if len(completions) != 1 {
			t.Fatalf("expected onComplete exactly once, got %d", len(completions))
		}
		if completions[0].TaskID != "abc123" {
			t.Errorf("onComplete payload lost taskId: %+v", completions[0])
		}
		if proj := tracker.Projection(); proj.ProgressPercent != 100 {
			t.Errorf("expected progress 100 after completion, got %d", proj.ProgressPercent)
		}
	})

	t.Run("should stop polling on failure and surface the backend error message", func(t *testing.T) {
		// --- Arrange ---
		fetcher := sequenceFetcher(
			&model.GenerationStatus{RecordID: "rec-3", State: model.GenerationFailed, ErrorMessage: "GPU timeout"},
		)
		var mu sync.Mutex
		completeFired := false
		tracker := NewStatusTracker("rec-3", fetcher, TrackerOptions{
			PollInterval: 10 * time.Millisecond,
			OnComplete: func(*model.GenerationStatus) {
				mu.Lock()
				completeFired = true
				mu.Unlock()
			},
		}, testLogger)

		// --- Act ---
		tracker.Start(ctx)
		defer tracker.Stop()
		if !waitFor(time.Second, func() bool { return tracker.Phase() == PhaseFailed }) {
			t.Fatalf("tracker never failed, phase=%s", tracker.Phase())
		}
		time.Sleep(60 * time.Millisecond)

		// --- Assert ---
		if n := fetcher.CallCount(); n != 1 {
			t.Errorf("expected polling to stop after the failed status, got %d fetches", n)
		}
		proj := tracker.Projection()
		if proj.Headline != "Generation failed" {
			t.Errorf("expected failed headline, got %q", proj.Headline)
		}
		if proj.Description != "GPU timeout" {
			t.Errorf("expected backend error message as description, got %q", proj.Description)
		}
		mu.Lock()
		fired := completeFired
		mu.Unlock()
		if fired {
			t.Error("onComplete must never fire for a failed job")
		}
	})

	t.Run("should reach Errored after exactly three failed attempts with the retry delay between them", func(t *testing.T) {
		// --- Arrange ---
		retryDelay := 20 * time.Millisecond
		fetcher := &mockStatusFetcher{}
		fetcher.FetchStatusFunc = func(ctx context.Context, recordID string) (*model.GenerationStatus, error) {
			return nil, domain.ErrAuthMissing
		}
		tracker := NewStatusTracker("rec-4", fetcher, TrackerOptions{
			PollInterval:  10 * time.Millisecond,
			RetryAttempts: 3,
			RetryDelay:    retryDelay,
		}, testLogger)

		// --- Act ---
		tracker.Start(ctx)
		defer tracker.Stop()
		if !waitFor(time.Second, func() bool { return tracker.Phase() == PhaseErrored }) {
			t.Fatalf("tracker never errored, phase=%s", tracker.Phase())
		}
		time.Sleep(80 * time.Millisecond)

		// --- Assert ---
		if n := fetcher.CallCount(); n != 3 {
			t.Errorf("expected exactly 3 attempts, got %d", n)
		}
		times := fetcher.CallTimes()
		for i := 1; i < len(times); i++ {
			if gap := times[i].Sub(times[i-1]); gap < retryDelay {
				t.Errorf("attempt %d fired after %v, sooner than the %v retry delay", i+1, gap, retryDelay)
			}
		}
		if st := tracker.LastStatus(); st != nil {
			t.Errorf("expected no last status before any successful fetch, got %+v", st)
		}
		if proj := tracker.Projection(); proj.Headline != "Error loading status" {
			t.Errorf("expected error projection, got %q", proj.Headline)
		}
	})

	t.Run("should recover within the retry budget and keep polling", func(t *testing.T) {
		// --- Arrange ---
		fetcher := &mockStatusFetcher{}
		var mu sync.Mutex
		failuresLeft := 2
		fetcher.FetchStatusFunc = func(ctx context.Context, recordID string) (*model.GenerationStatus, error) {
			mu.Lock()
			defer mu.Unlock()
			if failuresLeft > 0 {
				failuresLeft--
				return nil, &domain.RequestFailedError{StatusCode: 502}
			}
			return &model.GenerationStatus{RecordID: recordID, State: model.GenerationRunning}, nil
		}
		tracker := NewStatusTracker("rec-5", fetcher, TrackerOptions{
			PollInterval:  15 * time.Millisecond,
			RetryAttempts: 3,
			RetryDelay:    5 * time.Millisecond,
		}, testLogger)

		// --- Act ---
		tracker.Start(ctx)
		defer tracker.Stop()
		ok := waitFor(time.Second, func() bool {
			return tracker.Phase() == PhasePolling && tracker.LastStatus() != nil
		})

		// --- Assert ---
		if !ok {
			t.Fatalf("tracker did not recover, phase=%s", tracker.Phase())
		}
		if st := tracker.LastStatus(); st.State != model.GenerationRunning {
			t.Errorf("expected running status after recovery, got %s", st.State)
		}
	})

	t.Run("should keep polling on an unrecognized status", func(t *testing.T) {
		// --- Arrange ---
		fetcher := sequenceFetcher(
			&model.GenerationStatus{RecordID: "rec-6", State: model.ParseGenerationState("archived")},
		)
		tracker := NewStatusTracker("rec-6", fetcher, TrackerOptions{
			PollInterval: 10 * time.Millisecond,
		}, testLogger)

		// --- Act ---
		tracker.Start(ctx)
		defer tracker.Stop()
		if !waitFor(time.Second, func() bool { return fetcher.CallCount() >= 2 }) {
			t.Fatal("polling stopped on unknown status")
		}

		// --- Assert ---
		if proj := tracker.Projection(); proj.Headline != "Unknown status" {
			t.Errorf("expected unknown projection, got %q", proj.Headline)
		}
		if tracker.Phase() != PhasePolling {
			t.Errorf("unknown status must not be terminal, phase=%s", tracker.Phase())
		}
	})

	t.Run("should cancel the pending poll on Stop and discard anything in flight", func(t *testing.T) {
		// --- Arrange ---
		fetcher := &mockStatusFetcher{} // always pending
		tracker := NewStatusTracker("rec-7", fetcher, TrackerOptions{
			PollInterval: 20 * time.Millisecond,
		}, testLogger)

		// --- Act ---
		tracker.Start(ctx)
		if !waitFor(time.Second, func() bool { return fetcher.CallCount() >= 1 }) {
			t.Fatal("first fetch never happened")
		}
		tracker.Stop()
		before := fetcher.CallCount()
		time.Sleep(100 * time.Millisecond)

		// --- Assert ---
		if after := fetcher.CallCount(); after != before {
			t.Errorf("fetches continued after Stop: %d -> %d", before, after)
		}
		if tracker.Phase() != PhaseIdle {
			t.Errorf("expected idle after Stop, got %s", tracker.Phase())
		}
		tracker.Stop() // idempotent
	})

	t.Run("should discard a fetch that settles after Stop", func(t *testing.T) {
		// --- Arrange ---
		release := make(chan struct{})
		fetcher := &mockStatusFetcher{}
		fetcher.FetchStatusFunc = func(ctx context.Context, recordID string) (*model.GenerationStatus, error) {
			<-release
			return &model.GenerationStatus{RecordID: recordID, State: model.GenerationCompleted}, nil
		}
		var mu sync.Mutex
		completeFired := false
		tracker := NewStatusTracker("rec-9", fetcher, TrackerOptions{
			PollInterval: 10 * time.Millisecond,
			OnComplete: func(*model.GenerationStatus) {
				mu.Lock()
				completeFired = true
				mu.Unlock()
			},
		}, testLogger)

		// --- Act ---
		tracker.Start(ctx)
		if !waitFor(time.Second, func() bool { return fetcher.CallCount() >= 1 }) {
			t.Fatal("fetch never started")
		}
		stopped := make(chan struct{})
		go func() {
			tracker.Stop()
			close(stopped)
		}()
		time.Sleep(50 * time.Millisecond) // the fetch is still in flight while Stop waits
		close(release)                    // now let it settle with a completed status
		<-stopped
		time.Sleep(20 * time.Millisecond)

		// --- Assert ---
		if st := tracker.LastStatus(); st != nil {
			t.Errorf("late result must be discarded, got %+v", st)
		}
		if tracker.Phase() != PhaseIdle {
			t.Errorf("expected idle after Stop, got %s", tracker.Phase())
		}
		mu.Lock()
		fired := completeFired
		mu.Unlock()
		if fired {
			t.Error("onComplete must not fire for a result that arrived after Stop")
		}
	})

	t.Run("should not fetch again once completed", func(t *testing.T) {
		// --- Arrange ---
		fetcher := sequenceFetcher(
			&model.GenerationStatus{RecordID: "rec-8", State: model.GenerationCompleted},
		)
		tracker := NewStatusTracker("rec-8", fetcher, TrackerOptions{
			PollInterval: 5 * time.Millisecond,
		}, testLogger)

		// --- Act ---
		tracker.Start(ctx)
		defer tracker.Stop()
		if !waitFor(time.Second, func() bool { return tracker.Phase() == PhaseCompleted }) {
			t.Fatal("tracker never completed")
		}
		time.Sleep(60 * time.Millisecond)

		// --- Assert ---
		if n := fetcher.CallCount(); n != 1 {
			t.Errorf("terminal state must stop scheduling, got %d fetches", n)
		}
	})
}

func TestTrackerRegistry(t *testing.T) {
	ctx := context.Background()
	testLogger := newTestLogger()

	t.Run("should share one tracker per recordID", func(t *testing.T) {
		fetcher := &mockStatusFetcher{}
		reg := NewTrackerRegistry(fetcher, TrackerOptions{PollInterval: 20 * time.Millisecond}, testLogger)
		defer reg.StopAll()

		a := reg.Track(ctx, "rec-1")
		b := reg.Track(ctx, "rec-1")
		if a != b {
			t.Error("expected the same tracker for repeated Track calls")
		}
		if c := reg.Track(ctx, "rec-2"); c == a {
			t.Error("expected a distinct tracker per recordID")
		}
	})

	t.Run("should evict finished trackers after the retention window", func(t *testing.T) {
		fetcher := sequenceFetcher(
			&model.GenerationStatus{RecordID: "rec-1", State: model.GenerationCompleted},
		)
		reg := NewTrackerRegistry(fetcher, TrackerOptions{PollInterval: 5 * time.Millisecond}, testLogger)
		defer reg.StopAll()
		reg.retention = 0

		a := reg.Track(ctx, "rec-1")
		if !waitFor(time.Second, func() bool { _, ok := a.FinishedAt(); return ok }) {
			t.Fatal("tracker never finished")
		}
		if b := reg.Track(ctx, "rec-1"); b == a {
			t.Error("expected the finished tracker to be evicted and replaced")
		}
	})

	t.Run("should keep unfinished trackers across Track calls", func(t *testing.T) {
		fetcher := &mockStatusFetcher{} // always pending
		reg := NewTrackerRegistry(fetcher, TrackerOptions{PollInterval: 20 * time.Millisecond}, testLogger)
		defer reg.StopAll()
		reg.retention = 0

		a := reg.Track(ctx, "rec-1")
		waitFor(time.Second, func() bool { return fetcher.CallCount() >= 1 })
		if b := reg.Track(ctx, "rec-1"); b != a {
			t.Error("a still-polling tracker must survive eviction sweeps")
		}
	})

	t.Run("should stop a released tracker", func(t *testing.T) {
		fetcher := &mockStatusFetcher{}
		reg := NewTrackerRegistry(fetcher, TrackerOptions{PollInterval: 10 * time.Millisecond}, testLogger)
		defer reg.StopAll()

		tr := reg.Track(ctx, "rec-1")
		waitFor(time.Second, func() bool { return fetcher.CallCount() >= 1 })
		reg.Release("rec-1")
		if tr.Phase() != PhaseIdle {
			t.Errorf("expected released tracker to be idle, got %s", tr.Phase())
		}
	})
}
