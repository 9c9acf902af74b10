package api

import (
	"time"

	"github.com/reelcut/reelcut/internal/editor"
	"github.com/reelcut/reelcut/internal/media"
	"github.com/reelcut/reelcut/internal/music"
	"github.com/reelcut/reelcut/internal/session"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	UptimeS  int64  `json:"uptime_s"`
	Sessions int    `json:"sessions"`
	Clients  int    `json:"clients"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type TokenRequest struct {
	APIKey    string `json:"apiKey"`
	Subject   string `json:"subject,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

type CreateSessionRequest struct {
	Title string `json:"title"`
}

type UpdateSessionRequest struct {
	Title *string `json:"title"`
}

type SessionResponse struct {
	ID              string                          `json:"id"`
	Title           string                          `json:"title"`
	CreatedAt       string                          `json:"createdAt"`
	UpdatedAt       string                          `json:"updatedAt"`
	Duration        float64                         `json:"duration"`
	CurrentTime     float64                         `json:"currentTime"`
	PixelsPerSecond float64                         `json:"pixelsPerSecond"`
	Playing         bool                            `json:"playing"`
	Clips           []editor.Clip                   `json:"clips"`
	Texts           []editor.TextItem               `json:"texts"`
	SelectedText    string                          `json:"selectedText,omitempty"`
	Effects         map[string]editor.EffectSetting `json:"effects"`
	GlobalEffect    *editor.EffectSetting           `json:"globalEffect,omitempty"`
	Music           map[string]editor.MusicSetting  `json:"music"`
	GlobalMusic     *editor.MusicSetting            `json:"globalMusic,omitempty"`
	PreviewTrack    string                          `json:"previewTrack,omitempty"`
}

type SessionSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	ClipCount int    `json:"clipCount"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type SessionsResponse struct {
	Sessions []SessionSummary `json:"sessions"`
}

// ImportScriptRequest replaces the timeline with one clip per script part.
type ImportScriptRequest struct {
	Parts   []editor.ScriptPart `json:"parts"`
	Texts   []editor.TextItem   `json:"texts,omitempty"`
	Preload bool                `json:"preload,omitempty"`
}

type ImportScriptResponse struct {
	Session SessionResponse `json:"session"`
	Media   *media.Report   `json:"media,omitempty"`
}

type AddClipRequest struct {
	ID         string          `json:"id,omitempty"`
	Name       string          `json:"name"`
	Type       editor.ClipType `json:"type"`
	ImagePath  string          `json:"imagePath,omitempty"`
	AudioPath  string          `json:"audioPath,omitempty"`
	Text       string          `json:"text,omitempty"`
	StartTime  float64         `json:"startTime"`
	Duration   float64         `json:"duration"`
	Transition string          `json:"transition,omitempty"`
}

// MoveClipRequest carries either a start time in seconds or a drop
// position in track pixels.
type MoveClipRequest struct {
	StartTime *float64 `json:"startTime"`
	X         *float64 `json:"x"`
}

type MoveClipResponse struct {
	ID        string  `json:"id"`
	StartTime float64 `json:"startTime"`
}

type UpdateClipRequest struct {
	Name       *string  `json:"name"`
	Text       *string  `json:"text"`
	ImagePath  *string  `json:"imagePath"`
	AudioPath  *string  `json:"audioPath"`
	Duration   *float64 `json:"duration"`
	Transition *string  `json:"transition"`
}

type TextRequest struct {
	Content   *string  `json:"content"`
	Font      *string  `json:"font"`
	Size      *int     `json:"size"`
	Color     *string  `json:"color"`
	X         *float64 `json:"x"`
	Y         *float64 `json:"y"`
	StartTime *float64 `json:"startTime"`
	Duration  *float64 `json:"duration"`
	Animation *bool    `json:"animation"`
}

func (r TextRequest) apply(it *editor.TextItem) {
	if r.Content != nil {
		it.Content = *r.Content
	}
	if r.Font != nil {
		it.Font = *r.Font
	}
	if r.Size != nil {
		it.Size = *r.Size
	}
	if r.Color != nil {
		it.Color = *r.Color
	}
	if r.X != nil {
		it.X = *r.X
	}
	if r.Y != nil {
		it.Y = *r.Y
	}
	if r.StartTime != nil {
		it.StartTime = *r.StartTime
	}
	if r.Duration != nil {
		it.Duration = *r.Duration
	}
	if r.Animation != nil {
		it.Animation = *r.Animation
	}
}

type TextStateResponse struct {
	Item        editor.TextItem `json:"item"`
	State       string          `json:"state"`
	Interactive bool            `json:"interactive"`
}

// DragRequest drives the drag state machine: start, move, end.
type DragRequest struct {
	Phase  string  `json:"phase"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type NudgeRequest struct {
	Direction string `json:"direction"`
	Fast      bool   `json:"fast"`
}

// EffectRequest selects an effect. A missing value uses the effect default.
type EffectRequest struct {
	Type  string `json:"type"`
	Value *int   `json:"value"`
}

type MusicRequest struct {
	Track  *string  `json:"track"`
	Volume *float64 `json:"volume"`
}

type PreviewTrackRequest struct {
	Track string `json:"track"`
}

type PreviewTrackResponse struct {
	Track    string `json:"track"`
	Previous string `json:"previous,omitempty"`
	AudioURL string `json:"audioUrl"`
}

type TracksResponse struct {
	Tracks []music.Track `json:"tracks"`
}

type PlayheadRequest struct {
	Time float64 `json:"time"`
}

type PlayheadResponse struct {
	Time    float64 `json:"time"`
	Playing bool    `json:"playing"`
}

type ZoomRequest struct {
	PixelsPerSecond *float64 `json:"pixelsPerSecond"`
	Factor          *float64 `json:"factor"`
}

type ZoomResponse struct {
	PixelsPerSecond float64 `json:"pixelsPerSecond"`
}

type ExportsResponse struct {
	Exports []*session.ExportRecord `json:"exports"`
}

func SessionToResponse(s *session.Session, playing bool) SessionResponse {
	resp := SessionResponse{
		ID:        s.ID,
		Title:     s.Title(),
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
		UpdatedAt: s.UpdatedAt().Format(time.RFC3339),
		Playing:   playing,
	}
	s.Read(func(st *session.State) {
		resp.Duration = st.Timeline.Duration()
		resp.CurrentTime = st.Timeline.CurrentTime()
		resp.PixelsPerSecond = st.Timeline.PixelsPerSecond()
		resp.Clips = st.Timeline.Clips()
		resp.Texts = st.Overlay.Items()
		resp.SelectedText = st.Overlay.Selected()
		resp.Effects = st.Effects.Snapshot()
		if g, ok := st.Effects.Global(); ok {
			resp.GlobalEffect = &g
		}
		resp.Music, resp.GlobalMusic = st.Music.Snapshot()
		resp.PreviewTrack = st.Music.Previewing()
	})
	if resp.Clips == nil {
		resp.Clips = []editor.Clip{}
	}
	if resp.Texts == nil {
		resp.Texts = []editor.TextItem{}
	}
	return resp
}

func SessionToSummary(s *session.Session) SessionSummary {
	return SessionSummary{
		ID:        s.ID,
		Title:     s.Title(),
		ClipCount: len(s.Clips()),
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
		UpdatedAt: s.UpdatedAt().Format(time.RFC3339),
	}
}
