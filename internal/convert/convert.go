// Package convert translates between server script parts, timeline clips
// and the payload the render service accepts.
package convert

import (
	"context"
	"fmt"
	"sort"

	"github.com/reelcut/reelcut/internal/editor"
	"github.com/reelcut/reelcut/internal/media"
)

// DefaultClipDuration is used when a part has no duration and its audio
// cannot be probed.
const DefaultClipDuration = 5.0

// ClipsFromScript lays out one video clip per script part, back to back
// from zero.
func ClipsFromScript(ctx context.Context, parts []editor.ScriptPart, prober media.Prober) ([]editor.Clip, error) {
	clips := make([]editor.Clip, 0, len(parts))
	var cursor float64
	for i, p := range parts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id := p.ID
		if id == "" {
			id = editor.NewID()
		}
		c := editor.Clip{
			ID:        id,
			Name:      fmt.Sprintf("Part %d", i+1),
			Type:      editor.ClipTypeVideo,
			ImagePath: p.ImagePath,
			AudioPath: p.AudioPath,
			Text:      p.Text,
			StartTime: cursor,
			Duration:  partDuration(ctx, p, prober),
		}
		clips = append(clips, c)
		cursor = c.End()
	}
	return clips, nil
}

func partDuration(ctx context.Context, p editor.ScriptPart, prober media.Prober) float64 {
	if p.Duration > 0 {
		return p.Duration
	}
	if p.AudioPath != "" && prober != nil {
		if d, err := prober.Duration(ctx, p.AudioPath); err == nil && d > 0 {
			return d
		}
	}
	return DefaultClipDuration
}

// EffectLookup resolves the effective effect of a clip.
type EffectLookup interface {
	Lookup(clipID string) editor.EffectSetting
}

// MusicLookup resolves the effective music of a clip.
type MusicLookup interface {
	Lookup(clipID string) editor.MusicSetting
}

// State is the editing state a payload is built from.
type State struct {
	Clips   []editor.Clip
	Texts   []editor.TextItem
	Effects EffectLookup
	Music   MusicLookup
}

type Part struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	Type       editor.ClipType      `json:"type"`
	ImagePath  string               `json:"imagePath,omitempty"`
	AudioPath  string               `json:"audioPath,omitempty"`
	Text       string               `json:"text,omitempty"`
	StartTime  float64              `json:"startTime"`
	Duration   float64              `json:"duration"`
	Transition string               `json:"transition,omitempty"`
	Effect     editor.EffectSetting `json:"effect"`
	Music      editor.MusicSetting  `json:"music"`
	TextItems  []editor.TextItem    `json:"textItems"`
}

// Payload is the body of save-edits and create-edited-video requests.
type Payload struct {
	SessionID string `json:"sessionId"`
	Parts     []Part `json:"parts"`
}

// BuildPayload converts the state into render parts ordered by start time.
// Each part carries the text items whose window overlaps the clip.
func BuildPayload(sessionID string, st State) Payload {
	clips := make([]editor.Clip, len(st.Clips))
	copy(clips, st.Clips)
	sort.SliceStable(clips, func(i, j int) bool { return clips[i].StartTime < clips[j].StartTime })

	parts := make([]Part, 0, len(clips))
	for _, c := range clips {
		p := Part{
			ID:         c.ID,
			Name:       c.Name,
			Type:       c.Type,
			ImagePath:  c.ImagePath,
			AudioPath:  c.AudioPath,
			Text:       c.Text,
			StartTime:  c.StartTime,
			Duration:   c.Duration,
			Transition: c.Transition,
			Effect:     editor.NoEffect,
			Music:      editor.NoMusic,
			TextItems:  []editor.TextItem{},
		}
		if st.Effects != nil {
			p.Effect = st.Effects.Lookup(c.ID)
		}
		if st.Music != nil {
			p.Music = st.Music.Lookup(c.ID)
		}
		for _, t := range st.Texts {
			if c.Overlaps(t.StartTime, t.Duration) {
				p.TextItems = append(p.TextItems, t)
			}
		}
		parts = append(parts, p)
	}
	return Payload{SessionID: sessionID, Parts: parts}
}
