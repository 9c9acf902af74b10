package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/reelcut/reelcut/internal/convert"
)

const (
	saveEditsPath   = "/api/save-edits"
	createVideoPath = "/api/create-edited-video"

	maxResponseBytes = 64 << 10
)

// HTTPClient posts edit payloads to the render service as JSON.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHTTPClient(baseURL, token string, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

func (c *HTTPClient) SaveEdits(ctx context.Context, payload convert.Payload) (Response, error) {
	return c.post(ctx, saveEditsPath, payload)
}

func (c *HTTPClient) CreateEditedVideo(ctx context.Context, payload convert.Payload) (Response, error) {
	return c.post(ctx, createVideoPath, payload)
}

func (c *HTTPClient) post(ctx context.Context, path string, payload convert.Payload) (Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Response{}, fmt.Errorf("marshal render payload: %w", err)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("X-Reelcut-Request-Id", uuid.NewString())
	req.Header.Set("X-Reelcut-Session-Id", payload.SessionID)

	c.logger.Info("posting to render service",
		"url", url,
		"session_id", payload.SessionID,
		"part_count", len(payload.Parts),
		"body_bytes", len(body),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Response{}, &RenderError{Endpoint: path, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var result Response
	if err := json.Unmarshal(respBody, &result); err != nil {
		return Response{}, fmt.Errorf("decode render response: %w", err)
	}
	return result, nil
}
