package session

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/reelcut/reelcut/internal/editor"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func clip(id string, start, dur float64) editor.Clip {
	return editor.Clip{ID: id, Name: id, Type: editor.ClipTypeVideo, StartTime: start, Duration: dur}
}

func populated(t *testing.T) *Session {
	t.Helper()
	s := New("s1", "demo", nil)
	err := s.Update(func(st *State) error {
		if err := st.Timeline.Replace([]editor.Clip{clip("a", 0, 5), clip("b", 5, 5)}); err != nil {
			return err
		}
		if err := st.Overlay.Load([]editor.TextItem{{ID: "t1", Content: "hi", X: 0.5, Y: 0.5, StartTime: 1, Duration: 2}}); err != nil {
			return err
		}
		st.Effects.Set("a", editor.EffectSetting{Type: editor.EffectGrayscale, Value: 100})
		st.Effects.SetGlobal(editor.EffectSetting{Type: editor.EffectBlur, Value: 20})
		if _, err := st.Music.SetGlobal(editor.MusicSetting{Track: "calm", Volume: 0.4}); err != nil {
			return err
		}
		st.Timeline.SetPixelsPerSecond(80)
		st.Timeline.SetCurrentTime(3)
		return nil
	})
	if err != nil {
		t.Fatalf("populate: %v", err)
	}
	return s
}

func TestUpdateErrorKeepsUpdatedAt(t *testing.T) {
	s := New("", "", nil)
	if s.ID == "" {
		t.Fatal("expected generated id")
	}
	before := s.UpdatedAt()
	boom := errors.New("boom")
	if err := s.Update(func(*State) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("Update() error = %v", err)
	}
	if !s.UpdatedAt().Equal(before) {
		t.Error("failed update should not touch updatedAt")
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	src := populated(t)
	snap := src.Snapshot()

	if snap.SessionID != "s1" || snap.Title != "demo" || len(snap.Clips) != 2 || len(snap.Texts) != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.GlobalEffect == nil || snap.GlobalMusic == nil {
		t.Fatal("global settings missing from snapshot")
	}

	dst := New("s1", "", nil)
	if err := dst.Restore(snap); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if dst.Title() != "demo" {
		t.Errorf("title = %q", dst.Title())
	}

	select {
	case <-dst.OverlayReady():
	default:
		t.Error("restored overlay should be ready")
	}

	dst.Read(func(st *State) {
		if st.Timeline.Len() != 2 {
			t.Errorf("clips = %d", st.Timeline.Len())
		}
		if st.Effects.Lookup("a").Type != editor.EffectGrayscale || st.Effects.Lookup("b").Type != editor.EffectBlur {
			t.Errorf("effects not restored")
		}
		if st.Music.Lookup("b").Track != "calm" {
			t.Errorf("music not restored")
		}
		if st.Timeline.PixelsPerSecond() != 80 || st.Timeline.CurrentTime() != 3 {
			t.Errorf("view = %v px/s at %v", st.Timeline.PixelsPerSecond(), st.Timeline.CurrentTime())
		}
	})
}

func TestRestoreRejectsForeignOrInvalidSnapshot(t *testing.T) {
	s := populated(t)

	if err := s.Restore(Snapshot{SessionID: "other"}); err == nil {
		t.Error("expected error for snapshot of another session")
	}

	bad := s.Snapshot()
	bad.Texts = []editor.TextItem{{ID: "x", Content: ""}}
	bad.Clips = []editor.Clip{clip("z", 0, 1)}
	if err := s.Restore(bad); err == nil {
		t.Fatal("expected invalid text to be rejected")
	}
	if got := s.Clips(); len(got) != 2 || got[0].ID != "a" {
		t.Errorf("clips changed after failed restore: %v", got)
	}

	overlapping := s.Snapshot()
	overlapping.Clips = []editor.Clip{clip("x", 0, 5), clip("y", 2, 5)}
	if err := s.Restore(overlapping); err == nil {
		t.Error("expected overlapping clips to be rejected")
	}
}

func TestPayload(t *testing.T) {
	s := populated(t)

	p := s.Payload(true)
	if p.SessionID != "s1" || len(p.Parts) != 2 {
		t.Fatalf("payload = %+v", p)
	}
	if len(p.Parts[0].TextItems) != 1 {
		t.Errorf("text items = %v", p.Parts[0].TextItems)
	}
	if p.Parts[1].Effect.Type != editor.EffectBlur {
		t.Errorf("effect fallback not applied: %v", p.Parts[1].Effect)
	}

	p = s.Payload(false)
	if len(p.Parts[0].TextItems) != 0 {
		t.Error("text items should be omitted")
	}
}
