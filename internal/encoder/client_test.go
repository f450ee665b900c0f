package encoder

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"testing"
)

// testJPEG renders a small JPEG for client tests.
func testJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestEncode_SingleFace(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed/face" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("failed to parse multipart form: %v", err)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("expected 'file' form field: %v", err)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"faces_count": 1,
			"model":       "dlib",
			"faces": []map[string]any{
				{
					"face_index": 0,
					"dim":        3,
					"embedding":  []float32{0.1, 0.2, 0.3},
					"bbox":       []float64{10, 20, 110, 120},
					"det_score":  0.98,
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "dlib")
	faces, err := client.Encode(context.Background(), testJPEG(t, 64, 64))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(faces) != 1 {
		t.Fatalf("expected 1 face, got %d", len(faces))
	}
	f := faces[0]
	if len(f.Embedding) != 3 || f.Embedding[0] != 0.1 {
		t.Errorf("unexpected embedding %v", f.Embedding)
	}
	if f.Score != 0.98 {
		t.Errorf("expected score 0.98, got %f", f.Score)
	}
	if len(f.BBox) != 4 {
		t.Errorf("expected 4 bbox coordinates, got %d", len(f.BBox))
	}
}

func TestEncode_NoFaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"faces_count": 0,
			"faces":       []any{},
			"model":       "dlib",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "dlib")
	faces, err := client.Encode(context.Background(), testJPEG(t, 64, 64))
	if err != nil {
		t.Fatalf("an image without faces must not be an error: %v", err)
	}
	if len(faces) != 0 {
		t.Errorf("expected no faces, got %d", len(faces))
	}
}

func TestEncode_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "dlib")
	if _, err := client.Encode(context.Background(), testJPEG(t, 64, 64)); err == nil {
		t.Fatal("expected an error for a 500 response")
	}
}

func TestEncode_InvalidImageRejectedBeforeUpload(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewClient(server.URL, "dlib")
	if _, err := client.Encode(context.Background(), []byte("not an image")); err == nil {
		t.Fatal("expected an error for undecodable input")
	}
	if called {
		t.Error("invalid images must not reach the encoding server")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient("", "")

	if client.baseURL != defaultBaseURL {
		t.Errorf("expected default base URL, got '%s'", client.baseURL)
	}
	if client.Model() != defaultModel {
		t.Errorf("expected default model, got '%s'", client.Model())
	}
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	client := NewClient("http://encoder:8000/", "dlib")

	if client.baseURL != "http://encoder:8000" {
		t.Errorf("expected trailing slash trimmed, got '%s'", client.baseURL)
	}
}
