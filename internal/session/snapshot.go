package session

import (
	"context"
	"fmt"
	"time"

	"github.com/reelcut/reelcut/internal/editor"
)

// Snapshot is the persisted form of a session.
type Snapshot struct {
	SessionID       string                          `json:"sessionId"`
	Title           string                          `json:"title"`
	Clips           []editor.Clip                   `json:"clips"`
	Texts           []editor.TextItem               `json:"texts"`
	Effects         map[string]editor.EffectSetting `json:"effects"`
	GlobalEffect    *editor.EffectSetting           `json:"globalEffect,omitempty"`
	Music           map[string]editor.MusicSetting  `json:"music"`
	GlobalMusic     *editor.MusicSetting            `json:"globalMusic,omitempty"`
	PixelsPerSecond float64                         `json:"pixelsPerSecond"`
	CurrentTime     float64                         `json:"currentTime"`
	SavedAt         time.Time                       `json:"savedAt"`
}

// SnapshotStore persists the latest snapshot of each session.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap Snapshot) error
	LoadSnapshot(ctx context.Context, sessionID string) (Snapshot, error)
	DeleteSnapshot(ctx context.Context, sessionID string) error
}

// Snapshot captures the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	snap := Snapshot{
		SessionID:       s.ID,
		Title:           s.title,
		Clips:           st.Timeline.Clips(),
		Texts:           st.Overlay.Items(),
		PixelsPerSecond: st.Timeline.PixelsPerSecond(),
		CurrentTime:     st.Timeline.CurrentTime(),
		SavedAt:         time.Now().UTC(),
	}
	snap.Effects = st.Effects.Snapshot()
	if g, ok := st.Effects.Global(); ok {
		snap.GlobalEffect = &g
	}
	snap.Music, snap.GlobalMusic = st.Music.Snapshot()
	return snap
}

// Restore replaces the state with snap. On error the session is left
// unchanged.
func (s *Session) Restore(snap Snapshot) error {
	if snap.SessionID != "" && snap.SessionID != s.ID {
		return fmt.Errorf("snapshot belongs to session %s", snap.SessionID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	prevClips := st.Timeline.Clips()
	if err := st.Timeline.Replace(snap.Clips); err != nil {
		return fmt.Errorf("restore clips: %w", err)
	}
	if err := st.Overlay.Load(snap.Texts); err != nil {
		_ = st.Timeline.Replace(prevClips)
		return fmt.Errorf("restore text items: %w", err)
	}
	st.Effects.Restore(snap.Effects, snap.GlobalEffect)
	st.Music.Restore(snap.Music, snap.GlobalMusic)
	if snap.PixelsPerSecond > 0 {
		st.Timeline.SetPixelsPerSecond(snap.PixelsPerSecond)
	}
	st.Timeline.SetCurrentTime(snap.CurrentTime)

	s.title = snap.Title
	s.updatedAt = time.Now().UTC()
	return nil
}
