// Package face implements the face-encoding enrollment, caching and matching
// engine. It holds the domain types, the storage interface and the matching
// logic; storage backends live in subpackages (postgres, mariadb, memory).
package face

import (
	"sort"
	"time"
)

// FaceVector is a single enrolled face encoding owned by one user.
type FaceVector struct {
	ID        string    // record id (uuid)
	OwnerID   string    // user the encoding belongs to
	Embedding []float32 // fixed-length face embedding
	CreatedAt time.Time // enrollment time, drives eviction order
	SourceRef string    // identifier of the originating image blob
}

// SortVectors orders vectors by creation time, oldest first.
// Ties are broken by record id so the order is stable across loads.
func SortVectors(vectors []FaceVector) {
	sort.Slice(vectors, func(i, j int) bool {
		if vectors[i].CreatedAt.Equal(vectors[j].CreatedAt) {
			return vectors[i].ID < vectors[j].ID
		}
		return vectors[i].CreatedAt.Before(vectors[j].CreatedAt)
	})
}

// Oldest returns the vector that would be evicted next, or nil for an empty pool.
func Oldest(vectors []FaceVector) *FaceVector {
	if len(vectors) == 0 {
		return nil
	}
	oldest := &vectors[0]
	for i := 1; i < len(vectors); i++ {
		v := &vectors[i]
		if v.CreatedAt.Before(oldest.CreatedAt) ||
			(v.CreatedAt.Equal(oldest.CreatedAt) && v.ID < oldest.ID) {
			oldest = v
		}
	}
	return oldest
}
