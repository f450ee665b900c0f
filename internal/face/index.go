package face

import (
	"sync"

	"github.com/coder/hnsw"
)

// hnswMaxNeighbors (M) is the maximum number of neighbors per HNSW node.
// Higher values improve recall but increase memory and build time.
const hnswMaxNeighbors = 16

// Index is an in-memory HNSW index over every enrolled encoding, used for
// identification mode (matching a probe against all users). It is rebuilt
// from the store at startup and kept in sync by the EnrollmentManager.
type Index struct {
	mu      sync.RWMutex
	graph   *hnsw.Graph[string]
	records map[string]*FaceVector // record id -> vector
}

// NewIndex creates an empty identification index.
func NewIndex() *Index {
	return &Index{records: make(map[string]*FaceVector)}
}

// Build replaces the index content with the given vectors.
func (ix *Index) Build(vectors []FaceVector) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.graph = nil
	ix.records = make(map[string]*FaceVector, len(vectors))
	if len(vectors) == 0 {
		return
	}

	g := newGraph()
	for i := range vectors {
		v := &vectors[i]
		if len(v.Embedding) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(v.ID, v.Embedding))
		ix.records[v.ID] = v
	}
	ix.graph = g
}

// Add inserts a single vector into the index.
func (ix *Index) Add(vector FaceVector) {
	if len(vector.Embedding) == 0 {
		return
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.graph == nil {
		ix.graph = newGraph()
	}
	ix.graph.Add(hnsw.MakeNode(vector.ID, vector.Embedding))
	ix.records[vector.ID] = &vector
}

// Remove drops a record from the index. HNSW has no true deletion, so the
// record is removed from the lookup map and filtered out of search results.
func (ix *Index) Remove(recordID string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.records, recordID)
}

// Search returns up to k nearest vectors to the probe. Removed records are
// filtered out, so the result may be shorter than k.
func (ix *Index) Search(probe []float32, k int) []FaceVector {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ix.graph == nil || k <= 0 {
		return nil
	}

	// Over-fetch to compensate for tombstoned records.
	neighbors := ix.graph.Search(probe, k*2)
	results := make([]FaceVector, 0, k)
	for _, n := range neighbors {
		if v, ok := ix.records[n.Key]; ok {
			results = append(results, *v)
			if len(results) == k {
				break
			}
		}
	}
	return results
}

// Len returns the number of live records in the index.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.records)
}

func newGraph() *hnsw.Graph[string] {
	g := hnsw.NewGraph[string]()
	g.M = hnswMaxNeighbors
	g.Ml = 1.0 / float64(hnswMaxNeighbors)
	g.Distance = hnsw.EuclideanDistance
	return g
}
