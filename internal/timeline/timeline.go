// Package timeline holds the ordered clip list of an editing session along
// with the playhead and the pixels-per-second scale used by the track view.
package timeline

import (
	"errors"
	"fmt"
	"sort"

	"github.com/reelcut/reelcut/internal/editor"
)

const (
	DefaultPixelsPerSecond = 50.0
	MinPixelsPerSecond     = 10.0
	MaxPixelsPerSecond     = 200.0
)

var (
	ErrClipNotFound  = errors.New("clip not found")
	ErrDuplicateClip = errors.New("clip already exists")
	ErrCollision     = errors.New("clip would overlap another clip")
)

// Timeline is not safe for concurrent use; the owning session serializes
// access.
type Timeline struct {
	clips           []editor.Clip
	currentTime     float64
	pixelsPerSecond float64
}

func New() *Timeline {
	return &Timeline{pixelsPerSecond: DefaultPixelsPerSecond}
}

// Clips returns a copy of the clips ordered by start time.
func (t *Timeline) Clips() []editor.Clip {
	out := make([]editor.Clip, len(t.clips))
	copy(out, t.clips)
	return out
}

func (t *Timeline) Len() int {
	return len(t.clips)
}

func (t *Timeline) Clip(id string) (editor.Clip, error) {
	idx := t.indexOf(id)
	if idx < 0 {
		return editor.Clip{}, ErrClipNotFound
	}
	return t.clips[idx], nil
}

// Replace swaps the whole clip list, as done on script import or snapshot
// restore. Same-type overlaps are rejected.
func (t *Timeline) Replace(clips []editor.Clip) error {
	seen := make(map[string]bool, len(clips))
	for i, c := range clips {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("clip %d: %w", i, err)
		}
		if seen[c.ID] {
			return fmt.Errorf("clip %s: %w", c.ID, ErrDuplicateClip)
		}
		seen[c.ID] = true
		if other, hit := FindClipCollision(c, c.StartTime, clips[:i]); hit {
			return fmt.Errorf("clip %s overlaps %s: %w", c.ID, other.ID, ErrCollision)
		}
	}

	t.clips = make([]editor.Clip, len(clips))
	copy(t.clips, clips)
	t.sort()
	t.clampPlayhead()
	return nil
}

// AddClip stores the clip at its requested start time when that slot is
// free, otherwise at the first safe position.
func (t *Timeline) AddClip(c editor.Clip) (editor.Clip, error) {
	if err := c.Validate(); err != nil {
		return editor.Clip{}, err
	}
	if t.indexOf(c.ID) >= 0 {
		return editor.Clip{}, ErrDuplicateClip
	}

	if _, hit := FindClipCollision(c, c.StartTime, t.clips); hit {
		c.StartTime = FindSafePosition(c, t.clips)
	}

	t.clips = append(t.clips, c)
	t.sort()
	return c, nil
}

// MoveClip repositions a dragged clip. A colliding drop falls back to the
// first safe position. The final start time is returned.
func (t *Timeline) MoveClip(id string, candidateStart float64) (float64, error) {
	idx := t.indexOf(id)
	if idx < 0 {
		return 0, ErrClipNotFound
	}
	if candidateStart < 0 {
		candidateStart = 0
	}

	c := t.clips[idx]
	if _, hit := FindClipCollision(c, candidateStart, t.clips); hit {
		candidateStart = FindSafePosition(c, t.clips)
	}

	t.clips[idx].StartTime = candidateStart
	t.sort()
	return candidateStart, nil
}

// MoveClipToPixel is MoveClip driven by a drop position in track pixels.
func (t *Timeline) MoveClipToPixel(id string, x float64) (float64, error) {
	return t.MoveClip(id, t.PixelsToTime(x))
}

// UpdateClip applies fn to a copy of the clip and stores the result when it
// is still valid and collision free. The ID cannot change.
func (t *Timeline) UpdateClip(id string, fn func(c *editor.Clip)) (editor.Clip, error) {
	idx := t.indexOf(id)
	if idx < 0 {
		return editor.Clip{}, ErrClipNotFound
	}

	updated := t.clips[idx]
	fn(&updated)
	updated.ID = id

	if err := updated.Validate(); err != nil {
		return editor.Clip{}, err
	}
	if other, hit := FindClipCollision(updated, updated.StartTime, t.clips); hit {
		return editor.Clip{}, fmt.Errorf("overlaps %s: %w", other.ID, ErrCollision)
	}

	t.clips[idx] = updated
	t.sort()
	t.clampPlayhead()
	return updated, nil
}

// TrimClip changes the clip duration in place.
func (t *Timeline) TrimClip(id string, duration float64) (editor.Clip, error) {
	return t.UpdateClip(id, func(c *editor.Clip) {
		c.Duration = duration
	})
}

func (t *Timeline) RemoveClip(id string) error {
	idx := t.indexOf(id)
	if idx < 0 {
		return ErrClipNotFound
	}
	t.clips = append(t.clips[:idx], t.clips[idx+1:]...)
	t.clampPlayhead()
	return nil
}

// ClipAt returns the clip of the given type under time at.
func (t *Timeline) ClipAt(typ editor.ClipType, at float64) (editor.Clip, bool) {
	for _, c := range t.clips {
		if c.Type == typ && at >= c.StartTime && at < c.End() {
			return c, true
		}
	}
	return editor.Clip{}, false
}

// Duration is the end of the furthest clip.
func (t *Timeline) Duration() float64 {
	var end float64
	for _, c := range t.clips {
		if c.End() > end {
			end = c.End()
		}
	}
	return end
}

func (t *Timeline) CurrentTime() float64 {
	return t.currentTime
}

// SetCurrentTime moves the playhead, clamped to [0, Duration()].
func (t *Timeline) SetCurrentTime(at float64) float64 {
	t.currentTime = at
	t.clampPlayhead()
	return t.currentTime
}

func (t *Timeline) PixelsPerSecond() float64 {
	return t.pixelsPerSecond
}

// SetPixelsPerSecond sets the track scale within its allowed range.
func (t *Timeline) SetPixelsPerSecond(pps float64) float64 {
	if pps < MinPixelsPerSecond {
		pps = MinPixelsPerSecond
	}
	if pps > MaxPixelsPerSecond {
		pps = MaxPixelsPerSecond
	}
	t.pixelsPerSecond = pps
	return pps
}

// Zoom multiplies the current scale by factor.
func (t *Timeline) Zoom(factor float64) float64 {
	if factor <= 0 {
		return t.pixelsPerSecond
	}
	return t.SetPixelsPerSecond(t.pixelsPerSecond * factor)
}

func (t *Timeline) TimeToPixels(seconds float64) float64 {
	return seconds * t.pixelsPerSecond
}

func (t *Timeline) PixelsToTime(px float64) float64 {
	return px / t.pixelsPerSecond
}

func (t *Timeline) indexOf(id string) int {
	for i, c := range t.clips {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (t *Timeline) sort() {
	sort.SliceStable(t.clips, func(i, j int) bool {
		return t.clips[i].StartTime < t.clips[j].StartTime
	})
}

func (t *Timeline) clampPlayhead() {
	if t.currentTime < 0 {
		t.currentTime = 0
	}
	if d := t.Duration(); t.currentTime > d {
		t.currentTime = d
	}
}
