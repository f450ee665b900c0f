package face

import (
	"context"
	"testing"
	"time"
)

// End-to-end flow over the in-memory stub: enrollment, eviction and
// authentication share one cache, so an evicted encoding must stop
// authenticating immediately.
func TestEvictedEncodingNoLongerAuthenticates(t *testing.T) {
	store := newStubStore()
	cache := NewEncodingCache(store, 0)
	index := NewIndex()
	ctx := context.Background()

	// Encoder returns whatever embedding the test primes it with.
	enc := &stubEncoder{}
	prime := func(embedding []float32) {
		enc.faces = []DetectedFace{{Embedding: embedding, Score: 0.99}}
	}

	m := NewEnrollmentManager(store, cache, enc, index, 2, 2)
	svc := NewRecognitionService(cache, enc, index, 0.5, 2)

	// Stepping clock so eviction order does not depend on timer resolution.
	clock := baseTime
	m.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	// Fill the quota with two distinct looks.
	prime([]float32{1, 0})
	first, err := m.Enroll(ctx, "alice", []byte("img"))
	if err != nil {
		t.Fatal(err)
	}
	prime([]float32{0, 1})
	if _, err := m.Enroll(ctx, "alice", []byte("img")); err != nil {
		t.Fatal(err)
	}

	// The first look still authenticates.
	prime([]float32{1, 0})
	d, err := svc.Authenticate(ctx, "alice", []byte("img"), 0)
	if err != nil {
		t.Fatal(err)
	}
	if !d.Authenticated || d.RecordID != first.ID {
		t.Fatalf("expected first enrollment to match, got %+v", d)
	}

	// A third enrollment evicts the oldest record.
	prime([]float32{-1, 0})
	if _, err := m.Enroll(ctx, "alice", []byte("img")); err != nil {
		t.Fatal(err)
	}

	prime([]float32{1, 0})
	d, err = svc.Authenticate(ctx, "alice", []byte("img"), 0)
	if err != nil {
		t.Fatal(err)
	}
	if d.Authenticated {
		t.Errorf("expected evicted encoding to stop matching, got %+v", d)
	}

	// Identification must not surface the evicted record either.
	result, err := svc.Identify(ctx, []byte("img"), 0)
	if err != nil {
		t.Fatal(err)
	}
	if result.Matched && result.RecordID == first.ID {
		t.Error("evicted record returned by identification")
	}
}

func TestRemoveRevokesAuthentication(t *testing.T) {
	store := newStubStore()
	cache := NewEncodingCache(store, 0)
	enc := singleFaceEncoder([]float32{1, 0})
	m := NewEnrollmentManager(store, cache, enc, nil, 5, 2)
	svc := NewRecognitionService(cache, enc, nil, 0.5, 2)
	ctx := context.Background()

	v, err := m.Enroll(ctx, "alice", []byte("img"))
	if err != nil {
		t.Fatal(err)
	}

	d, err := svc.Authenticate(ctx, "alice", []byte("img"), 0)
	if err != nil {
		t.Fatal(err)
	}
	if !d.Authenticated {
		t.Fatal("expected enrollment to authenticate")
	}

	removed, err := m.Remove(ctx, "alice", v.ID)
	if err != nil || !removed {
		t.Fatalf("remove failed: removed=%v err=%v", removed, err)
	}

	d, err = svc.Authenticate(ctx, "alice", []byte("img"), 0)
	if err != nil {
		t.Fatal(err)
	}
	if d.Authenticated {
		t.Error("expected authentication to fail after removal")
	}
}
