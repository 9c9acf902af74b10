// Package session holds the editing state of one open project and the
// registry and stores that keep sessions alive across requests and
// restarts.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/reelcut/reelcut/internal/convert"
	"github.com/reelcut/reelcut/internal/editor"
	"github.com/reelcut/reelcut/internal/effects"
	"github.com/reelcut/reelcut/internal/media"
	"github.com/reelcut/reelcut/internal/music"
	"github.com/reelcut/reelcut/internal/overlay"
	"github.com/reelcut/reelcut/internal/timeline"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// State groups the mutable editing components. It is only handed out while
// the session lock is held.
type State struct {
	Timeline *timeline.Timeline
	Effects  *effects.Manager
	Music    *music.Manager
	Overlay  *overlay.TextOverlay
}

// Session is the application context of one editing project. All state
// changes go through Update so they are applied one at a time.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	title     string
	state     State
	media     *media.Cache
	updatedAt time.Time
}

func New(id, title string, catalog *music.Catalog) *Session {
	if id == "" {
		id = editor.NewID()
	}
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		CreatedAt: now,
		title:     title,
		state: State{
			Timeline: timeline.New(),
			Effects:  effects.NewManager(),
			Music:    music.NewManager(catalog),
			Overlay:  overlay.New(),
		},
		media:     media.NewCache(),
		updatedAt: now,
	}
}

func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

func (s *Session) SetTitle(title string) {
	s.mu.Lock()
	s.title = title
	s.updatedAt = time.Now().UTC()
	s.mu.Unlock()
}

func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// Media is the asset cache used to render previews of this session.
func (s *Session) Media() *media.Cache {
	return s.media
}

// OverlayReady is closed once text items have been loaded.
func (s *Session) OverlayReady() <-chan struct{} {
	return s.state.Overlay.Ready()
}

// Update runs fn with exclusive access to the state. A nil error marks the
// session as modified.
func (s *Session) Update(fn func(st *State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(&s.state); err != nil {
		return err
	}
	s.updatedAt = time.Now().UTC()
	return nil
}

// Read runs fn with exclusive access to the state without marking it
// modified.
func (s *Session) Read(fn func(st *State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// Clips returns the current clip list.
func (s *Session) Clips() []editor.Clip {
	var clips []editor.Clip
	s.Read(func(st *State) { clips = st.Timeline.Clips() })
	return clips
}

// Payload builds the render payload of the current state. Text items are
// left out when includeText is false.
func (s *Session) Payload(includeText bool) convert.Payload {
	var p convert.Payload
	s.Read(func(st *State) {
		cs := convert.State{
			Clips:   st.Timeline.Clips(),
			Effects: st.Effects,
			Music:   st.Music,
		}
		if includeText {
			cs.Texts = st.Overlay.Items()
		}
		p = convert.BuildPayload(s.ID, cs)
	})
	return p
}
