// Package handlers provides HTTP handlers for the web API.
package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/faceid/internal/face"
)

// FacesHandler handles enrollment endpoints.
type FacesHandler struct {
	manager *face.EnrollmentManager
	store   face.EncodingStore
}

// NewFacesHandler creates a new faces handler.
func NewFacesHandler(manager *face.EnrollmentManager, store face.EncodingStore) *FacesHandler {
	return &FacesHandler{
		manager: manager,
		store:   store,
	}
}

// enrolledFace is the JSON shape for a stored encoding. The raw embedding is
// deliberately not exposed over the API.
type enrolledFace struct {
	RecordID  string    `json:"record_id"`
	SourceRef string    `json:"source_ref,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Enroll accepts a face image for a user and stores its encoding.
func (h *FacesHandler) Enroll(w http.ResponseWriter, r *http.Request) {
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

	vec, err := h.manager.Enroll(r.Context(), ownerID, image)
	if err != nil {
		log.Printf("enroll failed for user %s: %v", sanitizeForLog(ownerID), err)
		respondFaceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, enrolledFace{
		RecordID:  vec.ID,
		SourceRef: vec.SourceRef,
		CreatedAt: vec.CreatedAt,
	})
}

// List returns the enrolled encodings for a user, oldest first.
func (h *FacesHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerID")
	if ownerID == "" {
		respondError(w, http.StatusBadRequest, "owner id is required")
		return
	}

	vectors, err := h.store.GetAll(r.Context(), ownerID)
	if err != nil {
		respondFaceError(w, err)
		return
	}

	faces := make([]enrolledFace, 0, len(vectors))
	for _, v := range vectors {
		faces = append(faces, enrolledFace{
			RecordID:  v.ID,
			SourceRef: v.SourceRef,
			CreatedAt: v.CreatedAt,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"owner_id": ownerID,
		"faces":    faces,
	})
}

// Remove deletes a single enrolled encoding.
func (h *FacesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerID")
	recordID := chi.URLParam(r, "recordID")
	if ownerID == "" || recordID == "" {
		respondError(w, http.StatusBadRequest, "owner id and record id are required")
		return
	}

	removed, err := h.manager.Remove(r.Context(), ownerID, recordID)
	if err != nil {
		respondFaceError(w, err)
		return
	}
	if !removed {
		respondError(w, http.StatusNotFound, "encoding not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
