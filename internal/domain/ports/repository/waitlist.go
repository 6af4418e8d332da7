package repository

import (
	"context"

	"forma-web/internal/domain/model"
)

// WaitlistRepository persists early-access signups.
type WaitlistRepository interface {
	// Save inserts a new entry. Returns domain.ErrAlreadyExists when the
	// email is already on the list.
	Save(ctx context.Context, entry *model.WaitlistEntry) error
	FindByEmail(ctx context.Context, email string) (*model.WaitlistEntry, error)
	Count(ctx context.Context) (int, error)
}
