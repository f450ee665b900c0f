//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kozaktomas/faceid/internal/config"
	"github.com/kozaktomas/faceid/internal/face"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const testEmbeddingDim = 128

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}
	if container == nil {
		t.Skip("Docker not available, skipping integration test")
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	cfg := &config.DatabaseConfig{
		URL:          fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port()),
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	pool, err := NewPool(cfg)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}

	if err := pool.Migrate(ctx, testEmbeddingDim); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}

	return pool, cleanup
}

func testEmbedding(seed int) []float32 {
	embedding := make([]float32, testEmbeddingDim)
	for i := range embedding {
		embedding[i] = float32(i+seed) / float32(testEmbeddingDim)
	}
	return embedding
}

func TestEncodingRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	repo := NewEncodingRepository(pool)

	t.Run("PutAndGetAll", func(t *testing.T) {
		id, err := repo.Put(ctx, face.FaceVector{
			OwnerID:   "alice",
			Embedding: testEmbedding(0),
			CreatedAt: time.Now().UTC(),
			SourceRef: "faces/a1.jpg",
		})
		if err != nil {
			t.Fatalf("Failed to put encoding: %v", err)
		}
		if id == "" {
			t.Fatal("Expected a record id")
		}

		vectors, err := repo.GetAll(ctx, "alice")
		if err != nil {
			t.Fatalf("Failed to get encodings: %v", err)
		}
		if len(vectors) != 1 {
			t.Fatalf("Expected 1 encoding, got %d", len(vectors))
		}
		if vectors[0].OwnerID != "alice" {
			t.Errorf("Expected owner 'alice', got '%s'", vectors[0].OwnerID)
		}
		if len(vectors[0].Embedding) != testEmbeddingDim {
			t.Errorf("Expected %d dimensions, got %d", testEmbeddingDim, len(vectors[0].Embedding))
		}
		if vectors[0].SourceRef != "faces/a1.jpg" {
			t.Errorf("Expected source ref 'faces/a1.jpg', got '%s'", vectors[0].SourceRef)
		}
	})

	t.Run("GetAllSortedOldestFirst", func(t *testing.T) {
		now := time.Now().UTC()
		for i, age := range []time.Duration{time.Hour, 3 * time.Hour, 2 * time.Hour} {
			_, err := repo.Put(ctx, face.FaceVector{
				OwnerID:   "bob",
				Embedding: testEmbedding(i),
				CreatedAt: now.Add(-age),
			})
			if err != nil {
				t.Fatalf("Failed to put encoding: %v", err)
			}
		}

		vectors, err := repo.GetAll(ctx, "bob")
		if err != nil {
			t.Fatalf("Failed to get encodings: %v", err)
		}
		if len(vectors) != 3 {
			t.Fatalf("Expected 3 encodings, got %d", len(vectors))
		}
		for i := 1; i < len(vectors); i++ {
			if vectors[i].CreatedAt.Before(vectors[i-1].CreatedAt) {
				t.Error("Encodings not sorted oldest first")
			}
		}
	})

	t.Run("GetAllScopedToOwner", func(t *testing.T) {
		vectors, err := repo.GetAll(ctx, "alice")
		if err != nil {
			t.Fatalf("Failed to get encodings: %v", err)
		}
		for _, v := range vectors {
			if v.OwnerID != "alice" {
				t.Errorf("Got encoding owned by '%s' in alice's pool", v.OwnerID)
			}
		}
	})

	t.Run("Count", func(t *testing.T) {
		count, err := repo.Count(ctx, "bob")
		if err != nil {
			t.Fatalf("Failed to count: %v", err)
		}
		if count != 3 {
			t.Errorf("Expected 3, got %d", count)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		id, err := repo.Put(ctx, face.FaceVector{
			OwnerID:   "carol",
			Embedding: testEmbedding(7),
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("Failed to put encoding: %v", err)
		}

		existed, err := repo.Delete(ctx, "carol", id)
		if err != nil {
			t.Fatalf("Failed to delete: %v", err)
		}
		if !existed {
			t.Error("Expected delete to report the record existed")
		}

		existed, err = repo.Delete(ctx, "carol", id)
		if err != nil {
			t.Fatalf("Failed to delete: %v", err)
		}
		if existed {
			t.Error("Expected second delete to report false")
		}
	})

	t.Run("DeleteWrongOwner", func(t *testing.T) {
		id, err := repo.Put(ctx, face.FaceVector{
			OwnerID:   "dave",
			Embedding: testEmbedding(9),
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("Failed to put encoding: %v", err)
		}

		existed, err := repo.Delete(ctx, "eve", id)
		if err != nil {
			t.Fatalf("Failed to delete: %v", err)
		}
		if existed {
			t.Error("Delete under the wrong owner must report false")
		}

		count, _ := repo.Count(ctx, "dave")
		if count != 1 {
			t.Error("Record deleted despite wrong owner")
		}
	})

	t.Run("All", func(t *testing.T) {
		vectors, err := repo.All(ctx)
		if err != nil {
			t.Fatalf("Failed to get all encodings: %v", err)
		}
		owners := map[string]bool{}
		for _, v := range vectors {
			owners[v.OwnerID] = true
		}
		if !owners["alice"] || !owners["bob"] {
			t.Errorf("Expected encodings across owners, got %v", owners)
		}
	})
}
