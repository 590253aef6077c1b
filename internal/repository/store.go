package repository

import "context"

// Store is the durable key-value surface the quiz core persists through.
// A missing key is reported with found == false, not an error.
type Store interface {
	Get(ctx context.Context, key string) (blob []byte, found bool, err error)
	Set(ctx context.Context, key string, blob []byte) error
	Delete(ctx context.Context, key string) error
}

// ActiveIdentityKey points at the name of the identity that is logged in.
const ActiveIdentityKey = "identity"

func IdentityKey(name string) string {
	return "identity:" + name
}

func SessionKey(name string) string {
	return "session:" + name
}
