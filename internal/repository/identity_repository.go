package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"trivia-service/internal/apperr"
	"trivia-service/internal/models"
)

type activePointer struct {
	Name string `json:"name"`
}

// IdentityRepository persists the logged-in identity as a record under
// identity:<name> plus a pointer under ActiveIdentityKey.
type IdentityRepository struct {
	store Store
}

func NewIdentityRepository(store Store) *IdentityRepository {
	return &IdentityRepository{store: store}
}

// Active returns the identity the pointer refers to, or nil when nobody is
// logged in. A dangling pointer is treated as logged out.
func (r *IdentityRepository) Active(ctx context.Context) (*models.Identity, error) {
	blob, found, err := r.store.Get(ctx, ActiveIdentityKey)
	if err != nil || !found {
		return nil, err
	}
	var ptr activePointer
	if err := json.Unmarshal(blob, &ptr); err != nil || ptr.Name == "" {
		if err == nil {
			err = fmt.Errorf("empty name")
		}
		return nil, apperr.StoreCorrupt(ActiveIdentityKey, err)
	}

	key := IdentityKey(ptr.Name)
	blob, found, err = r.store.Get(ctx, key)
	if err != nil || !found {
		return nil, err
	}
	var identity models.Identity
	if err := json.Unmarshal(blob, &identity); err != nil {
		return nil, apperr.StoreCorrupt(key, err)
	}
	if identity.Name != ptr.Name {
		return nil, apperr.StoreCorrupt(key, fmt.Errorf("record name %q does not match %q", identity.Name, ptr.Name))
	}
	return &identity, nil
}

func (r *IdentityRepository) SaveActive(ctx context.Context, identity *models.Identity) error {
	blob, err := json.Marshal(identity)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, IdentityKey(identity.Name), blob); err != nil {
		return err
	}
	ptr, err := json.Marshal(activePointer{Name: identity.Name})
	if err != nil {
		return err
	}
	return r.store.Set(ctx, ActiveIdentityKey, ptr)
}

// DeleteRecord removes the identity record for name without touching the
// active pointer.
func (r *IdentityRepository) DeleteRecord(ctx context.Context, name string) error {
	return r.store.Delete(ctx, IdentityKey(name))
}

// ClearActive removes the pointer and the identity record. Sessions stored
// for the name are left alone.
func (r *IdentityRepository) ClearActive(ctx context.Context, name string) error {
	if err := r.store.Delete(ctx, ActiveIdentityKey); err != nil {
		return err
	}
	return r.store.Delete(ctx, IdentityKey(name))
}
