// Package effects keeps the per-clip and global effect selections and
// applies them to RGBA frames.
package effects

import "github.com/reelcut/reelcut/internal/editor"

// Manager stores effect descriptors per clip plus one global default.
// It is not safe for concurrent use; the owning session serializes access.
type Manager struct {
	perClip map[string]editor.EffectSetting
	global  *editor.EffectSetting
}

func NewManager() *Manager {
	return &Manager{perClip: make(map[string]editor.EffectSetting)}
}

// Set assigns an effect to one clip.
func (m *Manager) Set(clipID string, s editor.EffectSetting) editor.EffectSetting {
	s = s.Normalize()
	m.perClip[clipID] = s
	return s
}

func (m *Manager) SetGlobal(s editor.EffectSetting) editor.EffectSetting {
	s = s.Normalize()
	m.global = &s
	return s
}

// Clear drops the clip specific setting so the clip falls back to global.
func (m *Manager) Clear(clipID string) {
	delete(m.perClip, clipID)
}

func (m *Manager) ClearGlobal() {
	m.global = nil
}

// Lookup returns the clip setting, else the global one, else none.
func (m *Manager) Lookup(clipID string) editor.EffectSetting {
	if s, ok := m.perClip[clipID]; ok {
		return s
	}
	if m.global != nil {
		return *m.global
	}
	return editor.NoEffect
}

func (m *Manager) Global() (editor.EffectSetting, bool) {
	if m.global == nil {
		return editor.EffectSetting{}, false
	}
	return *m.global, true
}

// Snapshot copies the per-clip settings.
func (m *Manager) Snapshot() map[string]editor.EffectSetting {
	out := make(map[string]editor.EffectSetting, len(m.perClip))
	for k, v := range m.perClip {
		out[k] = v
	}
	return out
}

// Restore replaces all settings, used when a session is reopened.
func (m *Manager) Restore(perClip map[string]editor.EffectSetting, global *editor.EffectSetting) {
	m.perClip = make(map[string]editor.EffectSetting, len(perClip))
	for k, v := range perClip {
		m.perClip[k] = v.Normalize()
	}
	m.global = nil
	if global != nil {
		g := global.Normalize()
		m.global = &g
	}
}
