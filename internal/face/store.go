package face

import "context"

// EncodingStore is the durable source of truth for face encodings.
// Implementations must provide read-after-write consistency within a single
// process and surface I/O failures as errors wrapping ErrStoreUnavailable.
type EncodingStore interface {
	// Put persists a new encoding and returns its record id.
	Put(ctx context.Context, vector FaceVector) (string, error)

	// GetAll returns every encoding owned by ownerID, oldest first
	// (CreatedAt, ties broken by record id). A user without encodings
	// yields an empty slice, not an error.
	GetAll(ctx context.Context, ownerID string) ([]FaceVector, error)

	// Delete removes one encoding. Returns false when no such record exists.
	Delete(ctx context.Context, ownerID, recordID string) (bool, error)

	// Count returns the number of encodings owned by ownerID.
	Count(ctx context.Context, ownerID string) (int, error)

	// All returns every stored encoding across all owners. Used to build
	// the identification index; not part of the per-user request path.
	All(ctx context.Context) ([]FaceVector, error)
}
