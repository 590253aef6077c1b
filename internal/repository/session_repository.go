package repository

import (
	"context"
	"encoding/json"

	"trivia-service/internal/apperr"
	"trivia-service/internal/models"
)

type SessionRepository struct {
	store Store
}

func NewSessionRepository(store Store) *SessionRepository {
	return &SessionRepository{store: store}
}

// Load returns the session saved for owner, or nil when there is none.
// Blobs that do not decode or break the session invariants are reported as
// store_corrupt.
func (r *SessionRepository) Load(ctx context.Context, owner string) (*models.SessionState, error) {
	key := SessionKey(owner)
	blob, found, err := r.store.Get(ctx, key)
	if err != nil || !found {
		return nil, err
	}
	var state models.SessionState
	if err := json.Unmarshal(blob, &state); err != nil {
		return nil, apperr.StoreCorrupt(key, err)
	}
	if err := state.Validate(); err != nil {
		return nil, apperr.StoreCorrupt(key, err)
	}
	return &state, nil
}

func (r *SessionRepository) Save(ctx context.Context, owner string, state *models.SessionState) error {
	blob, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, SessionKey(owner), blob)
}

func (r *SessionRepository) Delete(ctx context.Context, owner string) error {
	return r.store.Delete(ctx, SessionKey(owner))
}
