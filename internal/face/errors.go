package face

import "errors"

var (
	// ErrNoFaceDetected is returned when the encoder finds no face in the image.
	ErrNoFaceDetected = errors.New("no face detected")

	// ErrMultipleFacesDetected is returned when enrollment input contains more
	// than one face. Enrollment rejects ambiguous input; authentication picks
	// the face with the highest detection score instead.
	ErrMultipleFacesDetected = errors.New("multiple faces detected")

	// ErrStoreUnavailable wraps storage I/O failures. A failing store is never
	// treated as "no records".
	ErrStoreUnavailable = errors.New("encoding store unavailable")

	// ErrLockUnavailable is returned when a per-owner lock cannot be acquired
	// before the context is done. Transient; callers may retry.
	ErrLockUnavailable = errors.New("owner lock unavailable")

	// ErrQuotaExceeded indicates a pool above its quota after enrollment.
	// Eviction should make this unreachable; seeing it means an invariant broke.
	ErrQuotaExceeded = errors.New("encoding quota exceeded")

	// ErrDimensionMismatch is returned when an embedding does not have the
	// configured dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
