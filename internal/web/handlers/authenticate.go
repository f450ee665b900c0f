package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/faceid/internal/face"
)

// AuthHandler handles recognition endpoints.
type AuthHandler struct {
	service *face.RecognitionService
}

// NewAuthHandler creates a new recognition handler.
func NewAuthHandler(service *face.RecognitionService) *AuthHandler {
	return &AuthHandler{service: service}
}

// parseTolerance reads an optional tolerance form value. Zero means "use the
// configured default".
func parseTolerance(r *http.Request) (float64, error) {
	raw := r.FormValue("tolerance")
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}

// authResponse is the JSON shape for an authentication decision. Distance is
// null when no candidate existed at all.
type authResponse struct {
	Authenticated bool     `json:"authenticated"`
	RecordID      string   `json:"record_id,omitempty"`
	Distance      *float64 `json:"distance"`
}

// Authenticate verifies a probe image against a single user's enrolled faces.
func (h *AuthHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerID")
	if ownerID == "" {
		respondError(w, http.StatusBadRequest, "owner id is required")
		return
	}

	image, err := readImageUpload(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	tolerance, err := parseTolerance(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tolerance value")
		return
	}

	decision, err := h.service.Authenticate(r.Context(), ownerID, image, tolerance)
	if err != nil {
		log.Printf("authenticate failed for user %s: %v", sanitizeForLog(ownerID), err)
		respondFaceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, authResponse{
		Authenticated: decision.Authenticated,
		RecordID:      decision.RecordID,
		Distance:      finiteDistance(decision.Distance),
	})
}

// Identify searches the whole index for the closest enrolled face.
func (h *AuthHandler) Identify(w http.ResponseWriter, r *http.Request) {
	image, err := readImageUpload(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	tolerance, err := parseTolerance(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tolerance value")
		return
	}

	result, err := h.service.Identify(r.Context(), image, tolerance)
	if err != nil {
		respondFaceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"matched":   result.Matched,
		"owner_id":  result.OwnerID,
		"record_id": result.RecordID,
		"distance":  finiteDistance(result.Distance),
	})
}
