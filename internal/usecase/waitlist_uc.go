package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"forma-web/internal/domain"
	"forma-web/internal/domain/model"
	"forma-web/internal/domain/ports/repository"
	"forma-web/internal/infra/logging"
	"forma-web/internal/infra/metrics"
)

// Compile-time check
var _ WaitlistUseCase = (*waitlistUC)(nil)

// WaitlistUseCase exposes early-access signup operations used by the site.
type WaitlistUseCase interface {
	Join(ctx context.Context, email, source string) (*model.WaitlistEntry, error)
	Count(ctx context.Context) (int, error)
}

type waitlistUC struct {
	entries repository.WaitlistRepository
	log     *zerolog.Logger
}

func NewWaitlistUseCase(entries repository.WaitlistRepository, logger *zerolog.Logger) *waitlistUC {
	return &waitlistUC{entries: entries, log: logger}
}

func (u *waitlistUC) Join(ctx context.Context, email, source string) (*model.WaitlistEntry, error) {
	defer logging.TraceDuration(u.log, "WaitlistUC.Join")()

	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		metrics.IncWaitlistSignup("rejected")
		return nil, fmt.Errorf("%w: email", domain.ErrInvalidArgument)
	}

	entry := &model.WaitlistEntry{
		ID:        uuid.NewString(),
		Email:     email,
		Source:    strings.TrimSpace(source),
		CreatedAt: time.Now().UTC(),
	}
	if err := u.entries.Save(ctx, entry); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			metrics.IncWaitlistSignup("duplicate")
			return nil, err
		}
		u.log.Error().Err(err).Msg("waitlist save failed")
		return nil, err
	}

	metrics.IncWaitlistSignup("accepted")
	u.log.Info().Str("entry_id", entry.ID).Str("source", entry.Source).Msg("waitlist signup")
	return entry, nil
}

func (u *waitlistUC) Count(ctx context.Context) (int, error) {
	return u.entries.Count(ctx)
}
