package cmd

import (
	"context"
	"fmt"

	"github.com/kozaktomas/faceid/internal/config"
	"github.com/kozaktomas/faceid/internal/encoder"
	"github.com/kozaktomas/faceid/internal/face"
	"github.com/kozaktomas/faceid/internal/face/mariadb"
	"github.com/kozaktomas/faceid/internal/face/memory"
	"github.com/kozaktomas/faceid/internal/face/postgres"
)

// app bundles the wired recognition core for a command invocation.
type app struct {
	cfg     *config.Config
	store   face.EncodingStore
	cache   *face.EncodingCache
	index   *face.Index
	manager *face.EnrollmentManager
	service *face.RecognitionService
	close   func() error
}

// newStore picks a storage backend from the environment. PostgreSQL wins if
// both DATABASE_URL and MARIADB_DSN are set; with neither set, encodings live
// in memory and are lost on exit.
func newStore(ctx context.Context, cfg *config.Config) (face.EncodingStore, func() error, error) {
	if cfg.Database.URL != "" {
		pool, err := postgres.NewPool(&cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to PostgreSQL: %w", err)
		}
		if err := pool.Migrate(ctx, cfg.Recognition.EmbeddingDim); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrating PostgreSQL schema: %w", err)
		}
		fmt.Println("Using PostgreSQL backend")
		return postgres.NewEncodingRepository(pool), pool.Close, nil
	}

	if cfg.MariaDB.DSN != "" {
		pool, err := mariadb.NewPool(cfg.MariaDB.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to MariaDB: %w", err)
		}
		if err := pool.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrating MariaDB schema: %w", err)
		}
		fmt.Println("Using MariaDB backend")
		return mariadb.NewEncodingRepository(pool), pool.Close, nil
	}

	fmt.Println("No database configured, using in-memory storage")
	return memory.NewStore(), func() error { return nil }, nil
}

// newApp wires the recognition core from config: storage, encoder client,
// cache, search index, enrollment manager and recognition service.
func newApp(ctx context.Context) (*app, error) {
	cfg := config.Load()

	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	enc := encoder.NewClient(cfg.Encoder.URL, cfg.Encoder.Model)

	cache := face.NewEncodingCache(store, cfg.Recognition.CacheMaxOwners)

	index := face.NewIndex()
	vectors, err := store.All(ctx)
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("loading encodings for index: %w", err)
	}
	index.Build(vectors)

	manager := face.NewEnrollmentManager(
		store, cache, enc, index,
		cfg.Recognition.MaxImagesPerUser,
		cfg.Recognition.EmbeddingDim,
	)
	service := face.NewRecognitionService(
		cache, enc, index,
		cfg.Recognition.Tolerance,
		cfg.Recognition.EmbeddingDim,
	)

	return &app{
		cfg:     cfg,
		store:   store,
		cache:   cache,
		index:   index,
		manager: manager,
		service: service,
		close:   closeStore,
	}, nil
}
