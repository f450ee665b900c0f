package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kozaktomas/faceid/internal/face"
	"github.com/pgvector/pgvector-go"
)

// EncodingRepository implements face.EncodingStore on PostgreSQL.
type EncodingRepository struct {
	pool *Pool
}

// NewEncodingRepository creates a PostgreSQL-backed encoding store.
func NewEncodingRepository(pool *Pool) *EncodingRepository {
	return &EncodingRepository{pool: pool}
}

// storeErr classifies a storage failure so callers can match it with
// errors.Is(err, face.ErrStoreUnavailable).
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", face.ErrStoreUnavailable, op, err)
}

// Put persists a new encoding and returns its record id.
func (r *EncodingRepository) Put(ctx context.Context, vector face.FaceVector) (string, error) {
	vec := pgvector.NewVector(vector.Embedding)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO encodings (id, owner_id, embedding, source_ref, created_at)
		VALUES ($1, $2, $3::vector, $4, $5)
	`, vector.ID, vector.OwnerID, vec, vector.SourceRef, vector.CreatedAt)
	if err != nil {
		return "", storeErr("insert encoding", err)
	}
	return vector.ID, nil
}

// GetAll retrieves the owner's encodings, oldest first.
func (r *EncodingRepository) GetAll(ctx context.Context, ownerID string) ([]face.FaceVector, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner_id, embedding, source_ref, created_at
		FROM encodings
		WHERE owner_id = $1
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
	result, err := r.pool.Exec(ctx,
		"DELETE FROM encodings WHERE owner_id = $1 AND id = $2", ownerID, recordID)
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
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM encodings WHERE owner_id = $1", ownerID).Scan(&count)
	if err != nil {
		return 0, storeErr("count encodings", err)
	}
	return count, nil
}

// All returns every stored encoding across all owners, oldest first.
func (r *EncodingRepository) All(ctx context.Context) ([]face.FaceVector, error) {
	rows, err := r.pool.Query(ctx, `
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
		var vec pgvector.Vector
		if err := rows.Scan(&v.ID, &v.OwnerID, &vec, &v.SourceRef, &v.CreatedAt); err != nil {
			return nil, storeErr("scan encoding", err)
		}
		v.Embedding = vec.Slice()
		vectors = append(vectors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate encodings", err)
	}
	return vectors, nil
}
