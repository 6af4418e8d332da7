package repository

import (
	"context"
	"time"
)

// AccessState is the process-wide early-access grant: loaded once at
// startup, cleared by an explicit call. The bearer token for the
// generation backend rides along so the token provider has a single
// source of truth.
type AccessState struct {
	Granted   bool      `json:"granted"`
	Token     string    `json:"token,omitempty"`
	GrantedAt time.Time `json:"granted_at"`
}

// AccessStateRepository stores the access grant.
type AccessStateRepository interface {
	// Load returns the stored state, or domain.ErrNotFound when access
	// was never granted.
	Load(ctx context.Context) (*AccessState, error)
	Store(ctx context.Context, st *AccessState) error
	Clear(ctx context.Context) error
}
