package face

import "math"

// MatchResult is the outcome of comparing a probe embedding against a
// candidate pool. When no candidate falls within tolerance, Matched is false
// and Distance still carries the nearest distance for diagnostics
// (+Inf for an empty pool).
type MatchResult struct {
	Matched  bool
	RecordID string
	OwnerID  string
	Distance float64
}

// BestMatch scans candidates linearly and returns the one closest to probe.
// The scan is deterministic: the minimal distance wins and equal distances
// are broken by earliest CreatedAt, then by record id. An empty candidate
// pool yields an unmatched result with infinite distance, never an error.
func BestMatch(probe []float32, candidates []FaceVector, tolerance float64) MatchResult {
	best := MatchResult{Distance: math.Inf(1)}
	var bestVec *FaceVector

	for i := range candidates {
		c := &candidates[i]
		d := EuclideanDistance(probe, c.Embedding)
		if d < best.Distance || (d == best.Distance && bestVec != nil && olderThan(c, bestVec)) {
			best.Distance = d
			best.RecordID = c.ID
			best.OwnerID = c.OwnerID
			bestVec = c
		}
	}

	best.Matched = bestVec != nil && best.Distance <= tolerance
	if !best.Matched {
		best.RecordID = ""
		best.OwnerID = ""
	}
	return best
}

func olderThan(a, b *FaceVector) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID < b.ID
	}
	return a.CreatedAt.Before(b.CreatedAt)
}
