package music

import (
	"errors"
	"fmt"
	"sync"

	"github.com/reelcut/reelcut/internal/editor"
)

// NoneID selects no background music.
const NoneID = "none"

var ErrUnknownTrack = errors.New("unknown music track")

// Manager keeps per-clip and global music settings along with the track
// currently being previewed.
type Manager struct {
	catalog *Catalog

	mu         sync.Mutex
	perClip    map[string]editor.MusicSetting
	global     *editor.MusicSetting
	previewing string
}

func NewManager(catalog *Catalog) *Manager {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Manager{catalog: catalog, perClip: make(map[string]editor.MusicSetting)}
}

func (m *Manager) Catalog() *Catalog {
	return m.catalog
}

func (m *Manager) validate(s editor.MusicSetting) (editor.MusicSetting, error) {
	s = s.Normalize()
	if s.HasTrack() {
		if _, ok := m.catalog.Track(s.Track); !ok {
			return editor.MusicSetting{}, fmt.Errorf("%w: %s", ErrUnknownTrack, s.Track)
		}
	}
	return s, nil
}

// Set stores the music setting for one clip.
func (m *Manager) Set(clipID string, s editor.MusicSetting) (editor.MusicSetting, error) {
	s, err := m.validate(s)
	if err != nil {
		return editor.MusicSetting{}, err
	}
	m.mu.Lock()
	m.perClip[clipID] = s
	m.mu.Unlock()
	return s, nil
}

// SetTrack changes the track of a clip, keeping its effective volume.
func (m *Manager) SetTrack(clipID, trackID string) (editor.MusicSetting, error) {
	s := m.Lookup(clipID)
	s.Track = trackID
	return m.Set(clipID, s)
}

// SetVolume changes the volume of a clip, keeping its effective track.
func (m *Manager) SetVolume(clipID string, volume float64) (editor.MusicSetting, error) {
	s := m.Lookup(clipID)
	s.Volume = volume
	return m.Set(clipID, s)
}

func (m *Manager) SetGlobal(s editor.MusicSetting) (editor.MusicSetting, error) {
	s, err := m.validate(s)
	if err != nil {
		return editor.MusicSetting{}, err
	}
	m.mu.Lock()
	m.global = &s
	m.mu.Unlock()
	return s, nil
}

func (m *Manager) Clear(clipID string) {
	m.mu.Lock()
	delete(m.perClip, clipID)
	m.mu.Unlock()
}

// Lookup returns the clip setting, else the global setting, else no music.
func (m *Manager) Lookup(clipID string) editor.MusicSetting {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.perClip[clipID]; ok {
		return s
	}
	if m.global != nil {
		return *m.global
	}
	return editor.NoMusic
}

func (m *Manager) Global() (editor.MusicSetting, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.global == nil {
		return editor.MusicSetting{}, false
	}
	return *m.global, true
}

// Snapshot copies the stored settings.
func (m *Manager) Snapshot() (map[string]editor.MusicSetting, *editor.MusicSetting) {
	m.mu.Lock()
	defer m.mu.Unlock()
	perClip := make(map[string]editor.MusicSetting, len(m.perClip))
	for k, v := range m.perClip {
		perClip[k] = v
	}
	var global *editor.MusicSetting
	if m.global != nil {
		g := *m.global
		global = &g
	}
	return perClip, global
}

// Restore replaces the stored settings. Settings naming tracks missing from
// the catalog are dropped.
func (m *Manager) Restore(perClip map[string]editor.MusicSetting, global *editor.MusicSetting) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.perClip = make(map[string]editor.MusicSetting, len(perClip))
	for k, v := range perClip {
		if s, err := m.validate(v); err == nil {
			m.perClip[k] = s
		}
	}
	m.global = nil
	if global != nil {
		if s, err := m.validate(*global); err == nil {
			m.global = &s
		}
	}
}
