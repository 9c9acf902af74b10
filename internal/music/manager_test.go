package music

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelcut/reelcut/internal/editor"
)

func TestLookupFallback(t *testing.T) {
	m := NewManager(nil)

	assert.Equal(t, editor.NoMusic, m.Lookup("c1"))

	_, err := m.SetGlobal(editor.MusicSetting{Track: "calm", Volume: 0.3})
	require.NoError(t, err)
	_, err = m.Set("c1", editor.MusicSetting{Track: "upbeat", Volume: 0.8})
	require.NoError(t, err)

	assert.Equal(t, "upbeat", m.Lookup("c1").Track)
	assert.Equal(t, "calm", m.Lookup("c2").Track)
	assert.Equal(t, 0.3, m.Lookup("c2").Volume)

	m.Clear("c1")
	assert.Equal(t, "calm", m.Lookup("c1").Track)
}

func TestSetValidatesTrack(t *testing.T) {
	m := NewManager(nil)

	_, err := m.Set("c1", editor.MusicSetting{Track: "missing"})
	assert.ErrorIs(t, err, ErrUnknownTrack)

	s, err := m.Set("c1", editor.MusicSetting{Track: NoneID, Volume: 2})
	require.NoError(t, err)
	assert.False(t, s.HasTrack())
	assert.Equal(t, 1.0, s.Volume)
}

func TestSetTrackAndVolumeKeepOtherField(t *testing.T) {
	m := NewManager(nil)
	_, _ = m.SetGlobal(editor.MusicSetting{Track: "lofi", Volume: 0.2})

	s, err := m.SetVolume("c1", 0.9)
	require.NoError(t, err)
	assert.Equal(t, editor.MusicSetting{Track: "lofi", Volume: 0.9}, s)

	s, err = m.SetTrack("c1", "cinematic")
	require.NoError(t, err)
	assert.Equal(t, editor.MusicSetting{Track: "cinematic", Volume: 0.9}, s)

	_, err = m.SetTrack("c1", "nope")
	assert.Error(t, err)
	assert.Equal(t, "cinematic", m.Lookup("c1").Track)
}

func TestSnapshotRestore(t *testing.T) {
	m := NewManager(nil)
	_, _ = m.Set("c1", editor.MusicSetting{Track: "calm", Volume: 0.4})
	_, _ = m.SetGlobal(editor.MusicSetting{Track: "upbeat", Volume: 0.6})

	perClip, global := m.Snapshot()
	perClip["c2"] = editor.MusicSetting{Track: "gone", Volume: 0.5}

	other := NewManager(nil)
	other.Restore(perClip, global)

	assert.Equal(t, "calm", other.Lookup("c1").Track)
	assert.Equal(t, "upbeat", other.Lookup("c2").Track, "unknown track is dropped on restore")
	g, ok := other.Global()
	assert.True(t, ok)
	assert.Equal(t, 0.6, g.Volume)
}

func TestPreviewSupersedes(t *testing.T) {
	m := NewManager(nil)
	assert.Empty(t, m.Previewing())
	assert.False(t, m.StopPreview())

	prev, err := m.StartPreview("calm")
	require.NoError(t, err)
	assert.Empty(t, prev)

	prev, err = m.StartPreview("lofi")
	require.NoError(t, err)
	assert.Equal(t, "calm", prev)
	assert.Equal(t, "lofi", m.Previewing())

	_, err = m.StartPreview("missing")
	assert.ErrorIs(t, err, ErrUnknownTrack)
	assert.Equal(t, "lofi", m.Previewing())

	assert.True(t, m.StopPreview())
	assert.Empty(t, m.Previewing())
}
