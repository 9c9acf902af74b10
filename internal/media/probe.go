package media

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Prober reports the playable length of an audio or video file in seconds.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// FFProber shells out to ffprobe.
type FFProber struct{}

type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Duration  string `json:"duration"`
	} `json:"streams"`
}

func (FFProber) Duration(ctx context.Context, path string) (float64, error) {
	if path == "" {
		return 0, fmt.Errorf("file path is required")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := ffmpeg.Probe(path)
		done <- result{out, err}
	}()

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return 0, fmt.Errorf("ffprobe %s: %w", path, r.err)
		}
		return parseProbeDuration([]byte(r.out))
	}
}

func parseProbeDuration(data []byte) (float64, error) {
	var probe probeResult
	if err := json.Unmarshal(data, &probe); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if d, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil && d > 0 {
		return d, nil
	}
	for _, s := range probe.Streams {
		if s.CodecType != "audio" {
			continue
		}
		if d, err := strconv.ParseFloat(s.Duration, 64); err == nil && d > 0 {
			return d, nil
		}
	}
	return 0, fmt.Errorf("no duration in ffprobe output")
}

// StaticProber answers from a fixed table.
type StaticProber map[string]float64

func (p StaticProber) Duration(_ context.Context, path string) (float64, error) {
	d, ok := p[path]
	if !ok {
		return 0, fmt.Errorf("no duration for %s", path)
	}
	return d, nil
}
