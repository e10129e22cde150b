package driven

import "context"

// KVStore is the persistent key-value collaborator comment records are
// saved through. It enforces no schema; all validation is the core's
// responsibility. Writes are synchronous and best-effort: overwrite on
// save, no transactions.
type KVStore interface {
	// Get returns the value for key, with ok false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores the value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes the key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
