// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"forma-web/internal/domain"
	"forma-web/internal/domain/model"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// mockStatusFetcher records every fetch and delegates to FetchStatusFunc.
type mockStatusFetcher struct {
	mu              sync.Mutex
	calls           []time.Time
	FetchStatusFunc func(ctx context.Context, recordID string) (*model.GenerationStatus, error)
}

func (m *mockStatusFetcher) FetchStatus(ctx context.Context, recordID string) (*model.GenerationStatus, error) {
	m.mu.Lock()
	m.calls = append(m.calls, time.Now())
	fn := m.FetchStatusFunc
	m.mu.Unlock()
	if fn == nil {
		return &model.GenerationStatus{RecordID: recordID, State: model.GenerationPending}, nil
	}
	return fn(ctx, recordID)
}

func (m *mockStatusFetcher) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockStatusFetcher) CallTimes() []time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Time, len(m.calls))
	copy(out, m.calls)
	return out
}

// sequenceFetcher returns the given statuses one per call, repeating the
// last one once exhausted.
func sequenceFetcher(statuses ...*model.GenerationStatus) *mockStatusFetcher {
	m := &mockStatusFetcher{}
	var n int
	var mu sync.Mutex
	m.FetchStatusFunc = func(ctx context.Context, recordID string) (*model.GenerationStatus, error) {
		mu.Lock()
		defer mu.Unlock()
		i := n
		if i >= len(statuses) {
			i = len(statuses) - 1
		}
		n++
		return statuses[i], nil
	}
	return m
}

// memWaitlistRepo is a small in-memory implementation used by unit tests.
type memWaitlistRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.WaitlistEntry // map by email
	saveErr error                           // used by tests to simulate save failures
}

func newMemWaitlistRepo() *memWaitlistRepo {
	return &memWaitlistRepo{store: make(map[string]*model.WaitlistEntry)}
}

func (m *memWaitlistRepo) Save(ctx context.Context, e *model.WaitlistEntry) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[e.Email]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *e
	m.store[e.Email] = &cp
	return nil
}

func (m *memWaitlistRepo) FindByEmail(ctx context.Context, email string) (*model.WaitlistEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.store[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memWaitlistRepo) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return cond()
}
