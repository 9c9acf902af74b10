// Package render talks to the remote render service that stores edits and
// produces the final video.
package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/reelcut/reelcut/internal/convert"
)

// Response is the body returned by both render endpoints.
type Response struct {
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	VideoURL string `json:"videoUrl,omitempty"`
}

type Client interface {
	SaveEdits(ctx context.Context, payload convert.Payload) (Response, error)
	CreateEditedVideo(ctx context.Context, payload convert.Payload) (Response, error)
}

// RenderError is a non-2xx answer from the render service.
type RenderError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s failed: HTTP %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// IsRetryable returns true for server errors (5xx). Client errors (4xx)
// are permanent.
func (e *RenderError) IsRetryable() bool {
	return e.StatusCode >= 500
}

// IsRetryable reports whether err is worth another attempt: transport
// failures and 5xx responses are, cancellation and 4xx responses are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var re *RenderError
	if errors.As(err, &re) {
		return re.IsRetryable()
	}
	return true
}
