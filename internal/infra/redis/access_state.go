package redis

import (
	"context"
	"encoding/json"

	"forma-web/internal/domain"
	"forma-web/internal/domain/ports/repository"
)

var _ repository.AccessStateRepository = (*AccessStateRepo)(nil)

const accessStateKey = "forma:access_state"

// AccessStateRepo persists the process-wide early-access grant. No TTL:
// the grant holds until Clear is called.
type AccessStateRepo struct {
	client *Client
}

func NewAccessStateRepo(client *Client) repository.AccessStateRepository {
	return &AccessStateRepo{client: client}
}

func (r *AccessStateRepo) Load(ctx context.Context) (*repository.AccessState, error) {
	data, err := r.client.Get(ctx, accessStateKey)
	if err != nil {
		if IsNil(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var st repository.AccessState
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *AccessStateRepo) Store(ctx context.Context, st *repository.AccessState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, accessStateKey, data, 0)
}

func (r *AccessStateRepo) Clear(ctx context.Context) error {
	return r.client.Del(ctx, accessStateKey)
}
