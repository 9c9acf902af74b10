package storage_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/reelcut/reelcut/internal/storage"
)

func TestNewRequiresBucket(t *testing.T) {
	_, err := storage.New(context.Background(), storage.Config{Endpoint: "http://localhost:9000"})
	if err != storage.ErrNotConfigured {
		t.Fatalf("New() error = %v, want ErrNotConfigured", err)
	}
}

func TestParseURI(t *testing.T) {
	tests := []struct {
		in      string
		bucket  string
		key     string
		wantErr bool
	}{
		{"s3://media/clips/a.png", "media", "clips/a.png", false},
		{"s3://media/", "", "", true},
		{"https://media/a.png", "", "", true},
		{"s3:///a.png", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			bucket, key, err := storage.ParseURI(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseURI() error = %v, wantErr %v", err, tt.wantErr)
			}
			if bucket != tt.bucket || key != tt.key {
				t.Errorf("ParseURI() = (%q,%q), want (%q,%q)", bucket, key, tt.bucket, tt.key)
			}
		})
	}
}

func TestOpenReadsObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/media/clips/a.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Length", "5")
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	s, err := storage.New(context.Background(), storage.Config{
		Endpoint:  srv.URL,
		Bucket:    "media",
		AccessKey: "test",
		SecretKey: "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	rc, size, err := s.Open(context.Background(), "", "clips/a.png")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != "hello" || size != 5 {
		t.Errorf("Open() = %q (%d bytes)", body, size)
	}

	if _, _, err := s.Open(context.Background(), "media", "missing.png"); err == nil {
		t.Error("expected error for missing object")
	}
}

func TestDownloadURLUsesPublicEndpoint(t *testing.T) {
	s, err := storage.New(context.Background(), storage.Config{
		Endpoint:       "http://minio:9000",
		PublicEndpoint: "https://cdn.example.com",
		Bucket:         "media",
		AccessKey:      "test",
		SecretKey:      "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	u, err := s.DownloadURL(context.Background(), "exports/final.mp4", time.Hour)
	if err != nil {
		t.Fatalf("DownloadURL() error = %v", err)
	}
	if !strings.HasPrefix(u, "https://cdn.example.com/media/exports/final.mp4") {
		t.Errorf("DownloadURL() = %s", u)
	}
	if got := s.URI("/exports/final.mp4"); got != "s3://media/exports/final.mp4" {
		t.Errorf("URI() = %s", got)
	}
}
