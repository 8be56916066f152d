package repos

import (
	"context"

	"github.com/google/uuid"

	"reeldiary-server/internal/store"
)

type UsersRepo struct {
	q *store.Queries
}

// ListUserIDs returns every user in signup order.
func (r *UsersRepo) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.q.ListUserIDs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]uuid.UUID, 0, len(rows))
	for _, id := range rows {
		out = append(out, fromPgUUID(id))
	}
	return out, nil
}

func (r *UsersRepo) HasUsers(ctx context.Context) (bool, error) { return r.q.HasAnyUsers(ctx) }

func (r *UsersRepo) Create(ctx context.Context, id uuid.UUID, username string) error {
	return r.q.InsertUser(ctx, store.InsertUserParams{ID: pgUUID(id), Username: username})
}
