package face

import "context"

// DetectedFace is one face found by the encoding model in an image.
type DetectedFace struct {
	Embedding []float32 // face embedding, length must match the configured dimension
	BBox      []float64 // [x1, y1, x2, y2] in pixel coordinates
	Score     float64   // detection confidence
}

// Encoder is the black-box face encoding model. It reports every face it
// finds; how many faces are acceptable is policy applied by the callers
// (enrollment rejects ambiguous input, authentication picks the most
// confident face). Implementations must not return an error for an image
// that simply contains no face — that is an empty result.
type Encoder interface {
	Encode(ctx context.Context, image []byte) ([]DetectedFace, error)
}
