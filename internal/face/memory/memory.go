// Package memory provides an in-memory EncodingStore. It backs tests and
// single-process deployments that do not need durability.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/kozaktomas/faceid/internal/face"
)

// Store is an in-memory implementation of face.EncodingStore.
// The error fields allow tests to inject storage failures per operation.
type Store struct {
	mu      sync.RWMutex
	records map[string][]face.FaceVector // owner id -> vectors

	// Error injection for tests.
	PutError    error
	GetAllError error
	DeleteError error
	CountError  error
	AllError    error
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{records: make(map[string][]face.FaceVector)}
}

// Put persists a new encoding and returns its record id.
func (s *Store) Put(ctx context.Context, vector face.FaceVector) (string, error) {
	if s.PutError != nil {
		return "", s.PutError
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if vector.ID == "" {
		vector.ID = uuid.NewString()
	}
	vector.Embedding = append([]float32(nil), vector.Embedding...)
	s.records[vector.OwnerID] = append(s.records[vector.OwnerID], vector)
	return vector.ID, nil
}

// GetAll returns the owner's encodings, oldest first.
func (s *Store) GetAll(ctx context.Context, ownerID string) ([]face.FaceVector, error) {
	if s.GetAllError != nil {
		return nil, s.GetAllError
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]face.FaceVector(nil), s.records[ownerID]...)
	face.SortVectors(out)
	return out, nil
}

// Delete removes one encoding, reporting whether it existed.
func (s *Store) Delete(ctx context.Context, ownerID, recordID string) (bool, error) {
	if s.DeleteError != nil {
		return false, s.DeleteError
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	vectors := s.records[ownerID]
	for i := range vectors {
		if vectors[i].ID == recordID {
			s.records[ownerID] = append(vectors[:i:i], vectors[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// Count returns the number of encodings owned by ownerID.
func (s *Store) Count(ctx context.Context, ownerID string) (int, error) {
	if s.CountError != nil {
		return 0, s.CountError
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records[ownerID]), nil
}

// All returns every stored encoding across all owners.
func (s *Store) All(ctx context.Context) ([]face.FaceVector, error) {
	if s.AllError != nil {
		return nil, s.AllError
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []face.FaceVector
	for _, vectors := range s.records {
		out = append(out, vectors...)
	}
	face.SortVectors(out)
	return out, nil
}
