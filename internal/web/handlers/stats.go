package handlers

import (
	"net/http"

	"github.com/kozaktomas/faceid/internal/face"
)

// StatsHandler exposes cache and index counters.
type StatsHandler struct {
	cache *face.EncodingCache
	index *face.Index
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(cache *face.EncodingCache, index *face.Index) *StatsHandler {
	return &StatsHandler{
		cache: cache,
		index: index,
	}
}

// Stats returns cache hit/miss counters and the index size.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := h.cache.Stats()

	respondJSON(w, http.StatusOK, map[string]any{
		"cache": map[string]any{
			"hits":   stats.Hits,
			"misses": stats.Misses,
			"owners": stats.Size,
		},
		"index": map[string]any{
			"vectors": h.index.Len(),
		},
	})
}
