package adapter

import (
	"context"

	"forma-web/internal/domain/model"
)

// StatusFetcher performs one authenticated status read for a generation
// job. Single attempt, no implicit retry; retry policy belongs to the
// tracker that drives it.
//
// Errors: domain.ErrAuthMissing when no token is available (no network
// call is made), *domain.RequestFailedError for non-2xx or transport
// failures, domain.ErrMalformedResponse for bodies that do not parse.
type StatusFetcher interface {
	FetchStatus(ctx context.Context, recordID string) (*model.GenerationStatus, error)
}
