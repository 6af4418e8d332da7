package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"forma-web/internal/domain"
	"forma-web/internal/domain/ports/adapter"
	"forma-web/internal/domain/ports/repository"
)

var _ adapter.TokenProvider = (*AccessTokenSource)(nil)

// AccessTokenSource is the token provider for the generation backend. It
// keeps the current token in memory and writes grants through to the
// access-state repository, so the grant survives a restart. Load runs once
// at startup; Clear drops both the cached token and the stored grant.
type AccessTokenSource struct {
	repo repository.AccessStateRepository

	mu    sync.RWMutex
	token string
}

func NewAccessTokenSource(repo repository.AccessStateRepository) *AccessTokenSource {
	return &AccessTokenSource{repo: repo}
}

// Load hydrates the in-memory token from the stored access grant.
// A missing grant is not an error; the token simply stays empty.
func (s *AccessTokenSource) Load(ctx context.Context) error {
	st, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	s.mu.Lock()
	if st.Granted {
		s.token = st.Token
	}
	s.mu.Unlock()
	return nil
}

// Grant stores a new token and marks access as granted.
func (s *AccessTokenSource) Grant(ctx context.Context, token string) error {
	if err := s.repo.Store(ctx, &repository.AccessState{
		Granted:   true,
		Token:     token,
		GrantedAt: time.Now().UTC(),
	}); err != nil {
		return err
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

// Clear revokes the grant everywhere.
func (s *AccessTokenSource) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}

// Token returns the current bearer token, or domain.ErrAuthMissing.
func (s *AccessTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	tok := s.token
	s.mu.RUnlock()
	if tok == "" {
		return "", domain.ErrAuthMissing
	}
	return tok, nil
}
