package render

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/reelcut/reelcut/internal/convert"
	"github.com/reelcut/reelcut/internal/editor"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func samplePayload() convert.Payload {
	return convert.Payload{
		SessionID: "sess-1",
		Parts: []convert.Part{
			{ID: "c1", Name: "Part 1", Type: editor.ClipTypeVideo, StartTime: 0, Duration: 5},
			{ID: "c2", Name: "Part 2", Type: editor.ClipTypeVideo, StartTime: 5, Duration: 3},
		},
	}
}

func TestHTTPClient_SaveEdits_Success(t *testing.T) {
	var received convert.Payload
	var receivedAuth, requestID, sessionHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/save-edits" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		receivedAuth = r.Header.Get("Authorization")
		requestID = r.Header.Get("X-Reelcut-Request-Id")
		sessionHeader = r.Header.Get("X-Reelcut-Session-Id")

		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &received)

		_ = json.NewEncoder(w).Encode(Response{Success: true})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "test-token", testLogger())
	resp, err := client.SaveEdits(context.Background(), samplePayload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Success {
		t.Error("expected success")
	}
	if receivedAuth != "Bearer test-token" {
		t.Errorf("auth = %q, want %q", receivedAuth, "Bearer test-token")
	}
	if requestID == "" {
		t.Error("expected request id header")
	}
	if sessionHeader != "sess-1" {
		t.Errorf("session header = %q", sessionHeader)
	}
	if received.SessionID != "sess-1" || len(received.Parts) != 2 {
		t.Errorf("payload = %+v", received)
	}
}

func TestHTTPClient_CreateEditedVideo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/create-edited-video" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("no token configured, expected no auth header")
		}
		_, _ = w.Write([]byte(`{"success":true,"videoUrl":"https://cdn/v.mp4"}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "", testLogger())
	resp, err := client.CreateEditedVideo(context.Background(), samplePayload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.VideoURL != "https://cdn/v.mp4" {
		t.Errorf("video url = %q", resp.VideoURL)
	}
}

func TestHTTPClient_ReportedFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":"quota exceeded"}`))
	}))
	defer server.Close()

	resp, err := NewHTTPClient(server.URL, "t", testLogger()).SaveEdits(context.Background(), samplePayload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Success || resp.Error != "quota exceeded" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestHTTPClient_ReturnsRenderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"invalid parts"}`))
	}))
	defer server.Close()

	_, err := NewHTTPClient(server.URL, "t", testLogger()).SaveEdits(context.Background(), samplePayload())
	var renderErr *RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("expected RenderError, got %T", err)
	}
	if renderErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("status_code = %d, want %d", renderErr.StatusCode, http.StatusBadRequest)
	}
	if !strings.Contains(renderErr.Body, "invalid parts") {
		t.Fatalf("body = %q", renderErr.Body)
	}
	if IsRetryable(err) {
		t.Error("4xx must not be retryable")
	}
}

func TestHTTPClient_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	if _, err := NewHTTPClient(server.URL, "t", testLogger()).SaveEdits(context.Background(), samplePayload()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"server error", &RenderError{StatusCode: 503}, true},
		{"client error", &RenderError{StatusCode: 404}, false},
		{"transport", errors.New("connection refused"), true},
		{"cancelled", context.Canceled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStubClient(t *testing.T) {
	s := NewStubClient(testLogger())
	s.FailSaves(errors.New("down"))

	if _, err := s.SaveEdits(context.Background(), samplePayload()); err == nil {
		t.Error("expected scripted failure")
	}
	resp, err := s.SaveEdits(context.Background(), samplePayload())
	if err != nil || !resp.Success {
		t.Errorf("SaveEdits() = %+v, %v", resp, err)
	}
	if len(s.Saves()) != 2 {
		t.Errorf("saves = %d, want 2", len(s.Saves()))
	}
}
