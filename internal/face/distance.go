package face

import "math"

// EuclideanDistance computes the Euclidean (L2) distance between two embeddings.
// Lower means more similar. The match tolerance (default 0.6) is calibrated
// against this metric, so it must not be swapped out silently.
// Returns +Inf for invalid input (length mismatch or empty vectors).
func EuclideanDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
