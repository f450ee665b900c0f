package face

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EnrollmentManager adds and removes face encodings for users while keeping
// the store, the cache and the optional identification index consistent.
// Mutations for the same owner are strictly serialized; different owners
// proceed independently.
type EnrollmentManager struct {
	store   EncodingStore
	cache   *EncodingCache
	encoder Encoder
	index   *Index // optional, kept in sync when set

	quota int // MAX_IMAGES_PER_USER
	dim   int // expected embedding length

	locks *lockTable
	now   func() time.Time
	newID func() string
}

// NewEnrollmentManager creates a manager enforcing the given per-user quota
// and embedding dimension. index may be nil when identification mode is not
// in use.
func NewEnrollmentManager(store EncodingStore, cache *EncodingCache, encoder Encoder, index *Index, quota, dim int) *EnrollmentManager {
	return &EnrollmentManager{
		store:   store,
		cache:   cache,
		encoder: encoder,
		index:   index,
		quota:   quota,
		dim:     dim,
		locks:   newLockTable(),
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

// Enroll encodes the image and persists the resulting encoding for ownerID.
// Enrollment input must contain exactly one face. When the owner is at quota
// the oldest encoding (CreatedAt, ties by record id) is evicted first, so the
// pool never exceeds the quota after a completed call.
func (m *EnrollmentManager) Enroll(ctx context.Context, ownerID string, image []byte) (*FaceVector, error) {
	faces, err := m.encoder.Encode(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	switch {
	case len(faces) == 0:
		return nil, ErrNoFaceDetected
	case len(faces) > 1:
		return nil, fmt.Errorf("%w: found %d", ErrMultipleFacesDetected, len(faces))
	}

	embedding := faces[0].Embedding
	if len(embedding) != m.dim {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, m.dim, len(embedding))
	}

	unlock, err := m.locks.acquire(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// The cache must observe every committed write before this call returns,
	// even when a later step fails or the context is cancelled mid-way.
	mutated := false
	defer func() {
		if mutated {
			m.cache.Invalidate(ownerID)
		}
	}()

	pool, err := m.cache.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	// Loop instead of a single eviction so a pool that somehow grew past the
	// quota (e.g. after lowering MAX_IMAGES_PER_USER) shrinks back under it.
	for len(pool) >= m.quota && len(pool) > 0 {
		oldest := Oldest(pool)
		if _, err := m.store.Delete(ctx, ownerID, oldest.ID); err != nil {
			return nil, fmt.Errorf("evicting oldest encoding: %w", err)
		}
		mutated = true
		if m.index != nil {
			m.index.Remove(oldest.ID)
		}
		pool = withoutRecord(pool, oldest.ID)
	}

	id := m.newID()
	vector := FaceVector{
		ID:        id,
		OwnerID:   ownerID,
		Embedding: embedding,
		CreatedAt: m.now().UTC(),
		SourceRef: "faces/" + id + ".jpg",
	}

	recordID, err := m.store.Put(ctx, vector)
	if err != nil {
		return nil, fmt.Errorf("persisting encoding: %w", err)
	}
	mutated = true
	vector.ID = recordID

	if m.index != nil {
		m.index.Add(vector)
	}

	return &vector, nil
}

// Remove deletes one encoding and invalidates the owner's cache entry.
// Returns false, not an error, when the record does not exist.
func (m *EnrollmentManager) Remove(ctx context.Context, ownerID, recordID string) (bool, error) {
	unlock, err := m.locks.acquire(ctx, ownerID)
	if err != nil {
		return false, err
	}
	defer unlock()

	existed, err := m.store.Delete(ctx, ownerID, recordID)
	if err != nil {
		return false, fmt.Errorf("deleting encoding: %w", err)
	}
	if existed {
		m.cache.Invalidate(ownerID)
		if m.index != nil {
			m.index.Remove(recordID)
		}
	}
	return existed, nil
}

func withoutRecord(pool []FaceVector, recordID string) []FaceVector {
	out := make([]FaceVector, 0, len(pool))
	for _, v := range pool {
		if v.ID != recordID {
			out = append(out, v)
		}
	}
	return out
}
