package face

import (
	"context"
	"fmt"
)

// identifyCandidates bounds the candidate set pulled from the identification
// index per probe.
const identifyCandidates = 10

// Decision is the outcome of an authentication attempt. A rejected probe
// still reports the nearest distance for diagnostics and threshold tuning.
type Decision struct {
	Authenticated bool
	RecordID      string
	Distance      float64
}

// RecognitionService answers "is this image the claimed user" (Authenticate)
// and "whose face is this" (Identify). Both are read-only: the encoding pool
// is never mutated here.
type RecognitionService struct {
	cache   *EncodingCache
	encoder Encoder
	index   *Index // optional, required only for Identify

	tolerance float64 // default tolerance when the caller passes <= 0
	dim       int
}

// NewRecognitionService creates a service with the given default tolerance
// and embedding dimension. index may be nil when identification mode is not
// in use.
func NewRecognitionService(cache *EncodingCache, encoder Encoder, index *Index, tolerance float64, dim int) *RecognitionService {
	return &RecognitionService{
		cache:     cache,
		encoder:   encoder,
		index:     index,
		tolerance: tolerance,
		dim:       dim,
	}
}

// Authenticate compares the probe image against ownerID's enrolled encodings.
// When the image contains several faces the one with the highest detection
// score is used. tolerance <= 0 selects the configured default.
func (s *RecognitionService) Authenticate(ctx context.Context, ownerID string, image []byte, tolerance float64) (*Decision, error) {
	probe, err := s.probeEmbedding(ctx, image)
	if err != nil {
		return nil, err
	}

	pool, err := s.cache.Get(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("loading encodings for owner: %w", err)
	}

	result := BestMatch(probe, pool, s.effectiveTolerance(tolerance))
	return &Decision{
		Authenticated: result.Matched,
		RecordID:      result.RecordID,
		Distance:      result.Distance,
	}, nil
}

// Identify searches the probe across all enrolled users. The index supplies a
// bounded candidate set; the final decision is still an exact BestMatch over
// those candidates.
func (s *RecognitionService) Identify(ctx context.Context, image []byte, tolerance float64) (MatchResult, error) {
	if s.index == nil {
		return MatchResult{}, fmt.Errorf("identification index not configured")
	}

	probe, err := s.probeEmbedding(ctx, image)
	if err != nil {
		return MatchResult{}, err
	}

	candidates := s.index.Search(probe, identifyCandidates)
	return BestMatch(probe, candidates, s.effectiveTolerance(tolerance)), nil
}

func (s *RecognitionService) probeEmbedding(ctx context.Context, image []byte) ([]float32, error) {
	faces, err := s.encoder.Encode(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	if len(faces) == 0 {
		return nil, ErrNoFaceDetected
	}

	best := faces[0]
	for _, f := range faces[1:] {
		if f.Score > best.Score {
			best = f
		}
	}
	if len(best.Embedding) != s.dim {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, s.dim, len(best.Embedding))
	}
	return best.Embedding, nil
}

func (s *RecognitionService) effectiveTolerance(tolerance float64) float64 {
	if tolerance > 0 {
		return tolerance
	}
	return s.tolerance
}
