package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelcut/reelcut/internal/editor"
	"github.com/reelcut/reelcut/internal/session"
)

func shortSession(t *testing.T, id string, dur float64) *session.Session {
	t.Helper()
	s := session.New(id, "", nil)
	require.NoError(t, s.Update(func(st *session.State) error {
		if err := st.Timeline.Replace([]editor.Clip{
			{ID: "c1", Name: "c1", Type: editor.ClipTypeVideo, StartTime: 0, Duration: dur},
		}); err != nil {
			return err
		}
		return st.Overlay.Load([]editor.TextItem{
			{ID: "t1", Content: "hello", X: 0.5, Y: 0.5, StartTime: 0, Duration: dur},
		})
	}))
	return s
}

func currentTime(s *session.Session) float64 {
	var at float64
	s.Read(func(st *session.State) { at = st.Timeline.CurrentTime() })
	return at
}

func TestPlayerPlaysToEnd(t *testing.T) {
	hub, _ := startHub(t)
	srv := hubServer(t, hub)
	conn := dial(t, srv, "p1")

	s := shortSession(t, "p1", 0.2)
	p := NewPlayer(hub, 10*time.Millisecond, testLogger())
	t.Cleanup(p.Stop)

	p.Play(context.Background(), s)
	assert.True(t, p.Playing("p1"))

	var last map[string]any
	for {
		last = readJSON(t, conn)
		if last["type"] == "ended" {
			break
		}
		assert.Equal(t, "tick", last["type"])
		assert.Equal(t, true, last["playing"])
		assert.Equal(t, "c1", last["clipId"])
		assert.Equal(t, []any{"t1"}, last["textIds"])
	}

	assert.Equal(t, 0.2, last["time"])
	assert.Equal(t, false, last["playing"])
	assert.Eventually(t, func() bool { return !p.Playing("p1") }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0.2, currentTime(s))
}

func TestPlayerPauseAndResume(t *testing.T) {
	s := shortSession(t, "p2", 60)
	p := NewPlayer(nil, 5*time.Millisecond, testLogger())
	t.Cleanup(p.Stop)

	p.Play(context.Background(), s)
	p.Play(context.Background(), s)
	assert.Eventually(t, func() bool { return currentTime(s) > 0 }, time.Second, 5*time.Millisecond)

	require.True(t, p.Pause("p2"))
	assert.False(t, p.Pause("p2"))
	assert.False(t, p.Playing("p2"))

	time.Sleep(10 * time.Millisecond)
	paused := currentTime(s)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, paused, currentTime(s))
}

func TestPlayerPauseAll(t *testing.T) {
	p := NewPlayer(nil, time.Hour, testLogger())
	t.Cleanup(p.Stop)

	p.Play(context.Background(), shortSession(t, "a", 5))
	p.Play(context.Background(), shortSession(t, "b", 5))
	assert.Equal(t, 2, p.Active())

	assert.Equal(t, 2, p.PauseAll())
	assert.Equal(t, 0, p.Active())
	assert.False(t, p.Playing("a"))
}

func TestPlayerRestartsFromZeroAtEnd(t *testing.T) {
	s := shortSession(t, "p3", 10)
	p := NewPlayer(nil, time.Hour, testLogger())
	t.Cleanup(p.Stop)

	assert.Equal(t, 10.0, p.Seek(context.Background(), s, 99))
	p.Play(context.Background(), s)
	assert.Equal(t, 0.0, currentTime(s))
}

func TestPlayerSeekPublishesTick(t *testing.T) {
	hub, _ := startHub(t)
	srv := hubServer(t, hub)
	conn := dial(t, srv, "p4")

	s := shortSession(t, "p4", 10)
	p := NewPlayer(hub, time.Hour, testLogger())

	assert.Equal(t, 0.0, p.Seek(context.Background(), s, -3))
	m := readJSON(t, conn)
	assert.Equal(t, "tick", m["type"])
	assert.Equal(t, 0.0, m["time"])
	assert.Equal(t, false, m["playing"])

	p.Seek(context.Background(), s, 4.5)
	m = readJSON(t, conn)
	assert.Equal(t, 4.5, m["time"])
}
