// Package mock provides a deterministic Encoder for tests.
package mock

import (
	"context"

	"github.com/kozaktomas/faceid/internal/face"
)

// Encoder is a mock implementation of face.Encoder. EncodeFn decides the
// result per image; when nil, every image yields a single zero-score face
// whose embedding is Embedding.
type Encoder struct {
	EncodeFn  func(image []byte) ([]face.DetectedFace, error)
	Embedding []float32
}

// Encode returns the configured faces for the image.
func (e *Encoder) Encode(ctx context.Context, image []byte) ([]face.DetectedFace, error) {
	if e.EncodeFn != nil {
		return e.EncodeFn(image)
	}
	return []face.DetectedFace{{Embedding: e.Embedding}}, nil
}

// SingleFace builds an Encode result holding exactly one face.
func SingleFace(embedding []float32, score float64) []face.DetectedFace {
	return []face.DetectedFace{{Embedding: embedding, Score: score}}
}
