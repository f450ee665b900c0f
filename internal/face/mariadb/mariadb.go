// Package mariadb provides a MariaDB/MySQL-backed EncodingStore. Embeddings
// are stored as JSON text, which keeps the backend usable without a vector
// extension; all similarity math happens in process anyway.
package mariadb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/kozaktomas/faceid/internal/face"
)

// Pool manages a MariaDB connection pool.
type Pool struct {
	db *sql.DB
}

// NewPool creates a new MariaDB connection pool. The DSN must include
// parseTime=true so TIMESTAMP columns scan into time.Time.
func NewPool(dsn string) (*Pool, error) {
	if dsn == "" {
		return nil, errors.New("MariaDB DSN is required")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MariaDB: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MariaDB: %w", err)
	}

	return &Pool{db: db}, nil
}

// Close closes the connection pool.
func (p *Pool) Close() error {
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			return fmt.Errorf("closing database connection: %w", err)
		}
	}
	return nil
}

// Migrate creates the encodings table.
func (p *Pool) Migrate(ctx context.Context) error {
	createTable := `
		CREATE TABLE IF NOT EXISTS encodings (
			id         VARCHAR(36) PRIMARY KEY,
			owner_id   VARCHAR(255) NOT NULL,
			embedding  TEXT NOT NULL,
			source_ref VARCHAR(255) NOT NULL DEFAULT '',
			created_at TIMESTAMP(6) NOT NULL,
			INDEX idx_encodings_owner (owner_id, created_at, id)
		)
	`
	if _, err := p.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create encodings table: %w", err)
	}
	return nil
}

// EncodingRepository implements face.EncodingStore on MariaDB.
type EncodingRepository struct {
	pool *Pool
}

// NewEncodingRepository creates a MariaDB-backed encoding store.
func NewEncodingRepository(pool *Pool) *EncodingRepository {
	return &EncodingRepository{pool: pool}
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", face.ErrStoreUnavailable, op, err)
}

// Put persists a new encoding and returns its record id.
func (r *EncodingRepository) Put(ctx context.Context, vector face.FaceVector) (string, error) {
	embedding, err := json.Marshal(vector.Embedding)
	if err != nil {
		return "", fmt.Errorf("marshaling embedding: %w", err)
	}

	_, err = r.pool.db.ExecContext(ctx, `
		INSERT INTO encodings (id, owner_id, embedding, source_ref, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, vector.ID, vector.OwnerID, string(embedding), vector.SourceRef, vector.CreatedAt)
	if err != nil {
		return "", storeErr("insert encoding", err)
	}
	return vector.ID, nil
}

// GetAll retrieves the owner's encodings, oldest first.
func (r *EncodingRepository) GetAll(ctx context.Context, ownerID string) ([]face.FaceVector, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, owner_id, embedding, source_ref, created_at
		FROM encodings
		WHERE owner_id = ?
		ORDER BY created_at, id
	`, ownerID)
	if err != nil {
		return nil, storeErr("query encodings", err)
	}
	defer rows.Close()

	return scanVectors(rows)
}

// Delete removes one encoding, reporting whether it existed.
func (r *EncodingRepository) Delete(ctx context.Context, ownerID, recordID string) (bool, error) {
	result, err := r.pool.db.ExecContext(ctx,
		"DELETE FROM encodings WHERE owner_id = ? AND id = ?", ownerID, recordID)
	if err != nil {
		return false, storeErr("delete encoding", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, storeErr("delete encoding", err)
	}
	return affected > 0, nil
}

// Count returns the number of encodings owned by ownerID.
func (r *EncodingRepository) Count(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := r.pool.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM encodings WHERE owner_id = ?", ownerID).Scan(&count)
	if err != nil {
		return 0, storeErr("count encodings", err)
	}
	return count, nil
}

// All returns every stored encoding across all owners, oldest first.
func (r *EncodingRepository) All(ctx context.Context) ([]face.FaceVector, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, owner_id, embedding, source_ref, created_at
		FROM encodings
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, storeErr("query all encodings", err)
	}
	defer rows.Close()

	return scanVectors(rows)
}

func scanVectors(rows *sql.Rows) ([]face.FaceVector, error) {
	var vectors []face.FaceVector
	for rows.Next() {
		var v face.FaceVector
		var embedding string
		if err := rows.Scan(&v.ID, &v.OwnerID, &embedding, &v.SourceRef, &v.CreatedAt); err != nil {
			return nil, storeErr("scan encoding", err)
		}
		if err := json.Unmarshal([]byte(embedding), &v.Embedding); err != nil {
			return nil, fmt.Errorf("unmarshaling embedding %s: %w", v.ID, err)
		}
		vectors = append(vectors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate encodings", err)
	}
	return vectors, nil
}
