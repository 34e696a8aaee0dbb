package media

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&Config{
		BaseURL:   srv.URL,
		Cloud:     "testcloud",
		APIKey:    "key",
		APISecret: "secret",
	}), srv
}

func TestClient_Upload(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/testcloud/image/upload") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Fatalf("failed to parse multipart form: %v", err)
		}
		if transformation := r.FormValue("transformation"); transformation != EffectBackgroundRemoval {
			t.Errorf("expected transformation %q, got %q", EffectBackgroundRemoval, transformation)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("expected file field: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"public_id":  "abc123",
			"secure_url": "https://res.test/abc123",
		})
	})

	result, err := client.Upload(context.Background(), "photo.png", []byte("imagedata"), EffectBackgroundRemoval)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.PublicID != "abc123" || result.SecureURL != "https://res.test/abc123" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestClient_UploadError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "invalid image file"},
		})
	})

	_, err := client.Upload(context.Background(), "photo.png", []byte("x"), "")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "invalid image file") {
		t.Errorf("expected upstream message in error, got %v", err)
	}
}

func TestClient_DeliveryURL(t *testing.T) {
	client := NewClient(&Config{BaseURL: "https://api.test/v1_1", Cloud: "testcloud"})

	tests := []struct {
		name           string
		publicID       string
		transformation string
		want           string
	}{
		{
			name:           "plain asset",
			publicID:       "abc123",
			transformation: "",
			want:           "https://res.cloudinary.com/testcloud/image/upload/abc123",
		},
		{
			name:           "generative removal",
			publicID:       "abc123",
			transformation: EffectGenRemove("lamp"),
			want:           "https://res.cloudinary.com/testcloud/image/upload/e_gen_remove:prompt_lamp/abc123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := client.DeliveryURL(tt.publicID, tt.transformation); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestSniffImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.Black)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}

	format, err := SniffImage(buf.Bytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if format != "png" {
		t.Errorf("expected png, got %q", format)
	}

	if _, err := SniffImage([]byte("definitely not an image")); err == nil {
		t.Error("expected error for non-image data")
	}
}
