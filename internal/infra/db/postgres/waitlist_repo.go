package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"forma-web/internal/domain"
	"forma-web/internal/domain/model"
	"forma-web/internal/domain/ports/repository"
)

var _ repository.WaitlistRepository = (*WaitlistRepo)(nil)

type WaitlistRepo struct {
	pool *pgxpool.Pool
}

func NewWaitlistRepo(pool *pgxpool.Pool) *WaitlistRepo {
	return &WaitlistRepo{pool: pool}
}

func (r *WaitlistRepo) Save(ctx context.Context, e *model.WaitlistEntry) error {
	const q = `
INSERT INTO waitlist (id, email, source, created_at)
VALUES ($1, $2, $3, $4);
`
	_, err := r.pool.Exec(ctx, q, e.ID, e.Email, e.Source, e.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("save waitlist entry: %w", err)
	}
	return nil
}

func (r *WaitlistRepo) FindByEmail(ctx context.Context, email string) (*model.WaitlistEntry, error) {
	const q = `
SELECT id, email, source, created_at
  FROM waitlist WHERE email=$1;
`
	var e model.WaitlistEntry
	row := r.pool.QueryRow(ctx, q, email)
	if err := row.Scan(&e.ID, &e.Email, &e.Source, &e.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *WaitlistRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM waitlist;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count waitlist: %w", err)
	}
	return n, nil
}
