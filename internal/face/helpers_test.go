package face

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// stubStore is an in-memory EncodingStore with error injection and call
// counters for cache and enrollment tests.
type stubStore struct {
	mu      sync.Mutex
	records map[string][]FaceVector

	putErr    error
	getAllErr error
	deleteErr error

	getAllCalls atomic.Int64
	deleted     []string
}

func newStubStore() *stubStore {
	return &stubStore{records: make(map[string][]FaceVector)}
}

func (s *stubStore) Put(ctx context.Context, vector FaceVector) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[vector.OwnerID] = append(s.records[vector.OwnerID], vector)
	return vector.ID, nil
}

func (s *stubStore) GetAll(ctx context.Context, ownerID string) ([]FaceVector, error) {
	s.getAllCalls.Add(1)
	if s.getAllErr != nil {
		return nil, s.getAllErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]FaceVector, len(s.records[ownerID]))
	copy(out, s.records[ownerID])
	SortVectors(out)
	return out, nil
}

func (s *stubStore) Delete(ctx context.Context, ownerID, recordID string) (bool, error) {
	if s.deleteErr != nil {
		return false, s.deleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	pool := s.records[ownerID]
	for i, v := range pool {
		if v.ID == recordID {
			s.records[ownerID] = append(pool[:i:i], pool[i+1:]...)
			s.deleted = append(s.deleted, recordID)
			return true, nil
		}
	}
	return false, nil
}

func (s *stubStore) Count(ctx context.Context, ownerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records[ownerID]), nil
}

func (s *stubStore) All(ctx context.Context) ([]FaceVector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []FaceVector
	for _, pool := range s.records {
		out = append(out, pool...)
	}
	SortVectors(out)
	return out, nil
}

func (s *stubStore) poolSize(ownerID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records[ownerID])
}

// stubEncoder returns canned detections, or delegates to fn when set.
type stubEncoder struct {
	faces []DetectedFace
	err   error
	fn    func(image []byte) ([]DetectedFace, error)
}

func (e *stubEncoder) Encode(ctx context.Context, image []byte) ([]DetectedFace, error) {
	if e.fn != nil {
		return e.fn(image)
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.faces, nil
}

// singleFaceEncoder builds an encoder that always detects one face with the
// given embedding.
func singleFaceEncoder(embedding []float32) *stubEncoder {
	return &stubEncoder{faces: []DetectedFace{{Embedding: embedding, Score: 0.99}}}
}

// vec builds a test FaceVector with a deterministic creation time offset.
func vec(id, ownerID string, embedding []float32, secondsOld int) FaceVector {
	return FaceVector{
		ID:        id,
		OwnerID:   ownerID,
		Embedding: embedding,
		CreatedAt: baseTime.Add(-time.Duration(secondsOld) * time.Second),
		SourceRef: "faces/" + id + ".jpg",
	}
}

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
