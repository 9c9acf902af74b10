// Package editor defines the data model shared by every part of the editing
// session: timeline clips, text items, effect and music settings.
package editor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type ClipType string

const (
	ClipTypeVideo ClipType = "video"
	ClipTypeAudio ClipType = "audio"
)

// Clip is a timed media segment placed on the timeline. Times are seconds.
type Clip struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Type       ClipType `json:"type"`
	ImagePath  string   `json:"imagePath,omitempty"`
	AudioPath  string   `json:"audioPath,omitempty"`
	Text       string   `json:"text,omitempty"`
	StartTime  float64  `json:"startTime"`
	Duration   float64  `json:"duration"`
	Transition string   `json:"transition,omitempty"`
}

// End returns the exclusive end of the clip interval.
func (c Clip) End() float64 {
	return c.StartTime + c.Duration
}

// Overlaps reports whether [start, start+duration) intersects the clip.
func (c Clip) Overlaps(start, duration float64) bool {
	return start < c.End() && c.StartTime < start+duration
}

func (c Clip) Validate() error {
	if c.ID == "" {
		return errors.New("clip id is required")
	}
	if c.Type != ClipTypeVideo && c.Type != ClipTypeAudio {
		return fmt.Errorf("unknown clip type %q", c.Type)
	}
	if c.StartTime < 0 {
		return errors.New("clip start time must not be negative")
	}
	if c.Duration <= 0 {
		return errors.New("clip duration must be positive")
	}
	return nil
}

// TextItem is a timed text annotation positioned relative to the canvas.
// X and Y are normalized to [0,1].
type TextItem struct {
	ID        string  `json:"id"`
	Content   string  `json:"content"`
	Font      string  `json:"font"`
	Size      int     `json:"size"`
	Color     string  `json:"color"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	StartTime float64 `json:"startTime"`
	Duration  float64 `json:"duration"`
	Animation bool    `json:"animation"`
}

// Visible reports whether the item is shown at time t. The end boundary is
// exclusive.
func (t TextItem) Visible(at float64) bool {
	return at >= t.StartTime && at < t.End()
}

func (t TextItem) End() float64 {
	return t.StartTime + t.Duration
}

func (t TextItem) Validate() error {
	if strings.TrimSpace(t.Content) == "" {
		return errors.New("text content is required")
	}
	if t.X < 0 || t.X > 1 || t.Y < 0 || t.Y > 1 {
		return errors.New("text position must be within [0,1]")
	}
	if t.StartTime < 0 {
		return errors.New("text start time must not be negative")
	}
	if t.Duration <= 0 {
		return errors.New("text duration must be positive")
	}
	return nil
}

// ScriptPart is one server-provided narration part that becomes a clip.
type ScriptPart struct {
	ID        string  `json:"id,omitempty"`
	Text      string  `json:"text"`
	ImagePath string  `json:"imagePath,omitempty"`
	AudioPath string  `json:"audioPath,omitempty"`
	Duration  float64 `json:"duration,omitempty"`
}

// NewID returns a random identifier for clips, text items and sessions.
func NewID() string {
	return uuid.NewString()
}
