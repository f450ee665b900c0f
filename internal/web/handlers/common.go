package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"math"
	"net/http"
	"strings"

	"github.com/kozaktomas/faceid/internal/encoder"
	"github.com/kozaktomas/faceid/internal/face"
)

// maxUploadSize limits multipart request bodies. Images above the encoder's
// own 10 MB cap are rejected later with a proper error message, so this only
// guards against runaway uploads.
const maxUploadSize = 16 << 20

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// The status line is already out; all we can do is log.
			log.Printf("failed to encode response: %v", err)
		}
	}
}

// finiteDistance converts a match distance to a JSON-safe value. An empty
// candidate pool yields +Inf, which encoding/json cannot represent, so a
// non-finite distance becomes null.
func finiteDistance(d float64) *float64 {
	if math.IsInf(d, 0) || math.IsNaN(d) {
		return nil
	}
	return &d
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondFaceError maps errors from the recognition core to HTTP statuses.
func respondFaceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, face.ErrNoFaceDetected):
		respondError(w, http.StatusUnprocessableEntity, "no face detected in image")
	case errors.Is(err, face.ErrMultipleFacesDetected):
		respondError(w, http.StatusUnprocessableEntity, "multiple faces detected in image")
	case errors.Is(err, face.ErrQuotaExceeded):
		respondError(w, http.StatusConflict, "image quota exceeded for user")
	case errors.Is(err, face.ErrDimensionMismatch):
		respondError(w, http.StatusUnprocessableEntity, "embedding dimension mismatch")
	case errors.Is(err, encoder.ErrInvalidImage):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, face.ErrStoreUnavailable), errors.Is(err, face.ErrLockUnavailable):
		respondError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// readImageUpload extracts the "image" file from a multipart request.
func readImageUpload(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, errors.New("failed to parse multipart form")
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		return nil, errors.New("image file is required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.New("failed to read image file")
	}
	return data, nil
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
