package adapter

import "context"

// TokenProvider supplies the current bearer token for the generation
// backend, or domain.ErrAuthMissing when none is available. Consulted
// before every fetch attempt; token acquisition may race session
// hydration, so "missing now" is not fatal.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}
