package timeline

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/reelcut/reelcut/internal/editor"
)

func videoClip(id string, start, dur float64) editor.Clip {
	return editor.Clip{ID: id, Type: editor.ClipTypeVideo, StartTime: start, Duration: dur}
}

func TestFindSafePosition_AppendsAfterLastClip(t *testing.T) {
	clips := []editor.Clip{videoClip("A", 0, 5), videoClip("B", 5, 5)}

	got := FindSafePosition(videoClip("C", 0, 3), clips)
	if got != 10 {
		t.Fatalf("FindSafePosition() = %v, want 10", got)
	}
}

func TestFindSafePosition(t *testing.T) {
	tests := []struct {
		name  string
		clips []editor.Clip
		clip  editor.Clip
		want  float64
	}{
		{name: "empty track", clips: nil, clip: videoClip("C", 7, 3), want: 0},
		{name: "fits before first", clips: []editor.Clip{videoClip("A", 4, 2)}, clip: videoClip("C", 9, 3), want: 0},
		{name: "exact fit before first", clips: []editor.Clip{videoClip("A", 3, 2)}, clip: videoClip("C", 9, 3), want: 0},
		{
			name:  "first gap large enough",
			clips: []editor.Clip{videoClip("A", 0, 2), videoClip("B", 3, 2), videoClip("D", 9, 1)},
			clip:  videoClip("C", 0, 3),
			want:  5,
		},
		{
			name:  "unsorted input",
			clips: []editor.Clip{videoClip("D", 9, 1), videoClip("A", 0, 2), videoClip("B", 3, 2)},
			clip:  videoClip("C", 0, 3),
			want:  5,
		},
		{
			name:  "other types ignored",
			clips: []editor.Clip{{ID: "M", Type: editor.ClipTypeAudio, StartTime: 0, Duration: 30}},
			clip:  videoClip("C", 4, 3),
			want:  0,
		},
		{
			name:  "self excluded",
			clips: []editor.Clip{videoClip("C", 0, 3), videoClip("A", 3, 2)},
			clip:  videoClip("C", 0, 3),
			want:  0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FindSafePosition(tc.clip, tc.clips); got != tc.want {
				t.Fatalf("FindSafePosition() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFindClipCollision(t *testing.T) {
	clips := []editor.Clip{
		videoClip("A", 0, 5),
		videoClip("B", 5, 5),
		{ID: "M", Type: editor.ClipTypeAudio, StartTime: 0, Duration: 20},
	}
	c := videoClip("C", 0, 3)

	if other, hit := FindClipCollision(c, 4, clips); !hit || other.ID != "A" {
		t.Fatalf("FindClipCollision(4) = %v, %v; want A", other.ID, hit)
	}
	if other, hit := FindClipCollision(c, 6, clips); !hit || other.ID != "B" {
		t.Fatalf("FindClipCollision(6) = %v, %v; want B", other.ID, hit)
	}
	if _, hit := FindClipCollision(c, 10, clips); hit {
		t.Fatal("placement touching the end of B must not collide")
	}
	if _, hit := FindClipCollision(editor.Clip{ID: "A", Type: editor.ClipTypeVideo, Duration: 5}, 0, clips); hit {
		t.Fatal("a clip must not collide with itself")
	}
}

// Random same-type layouts: collision is reported iff some interval
// intersects, and every safe position is collision free.
func TestPlacement_RandomLayouts(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 500; round++ {
		var clips []editor.Clip
		cursor := 0.0
		n := rng.Intn(8)
		for i := 0; i < n; i++ {
			cursor += float64(rng.Intn(4))
			dur := float64(1 + rng.Intn(5))
			clips = append(clips, videoClip(fmt.Sprintf("c%d", i), cursor, dur))
			cursor += dur
		}
		rng.Shuffle(len(clips), func(i, j int) { clips[i], clips[j] = clips[j], clips[i] })

		candidate := videoClip("new", 0, float64(1+rng.Intn(5)))
		start := float64(rng.Intn(30))

		want := false
		for _, c := range clips {
			if start < c.End() && c.StartTime < start+candidate.Duration {
				want = true
			}
		}
		if _, got := FindClipCollision(candidate, start, clips); got != want {
			t.Fatalf("round %d: FindClipCollision(%v) = %v, want %v (%+v)", round, start, got, want, clips)
		}

		safe := FindSafePosition(candidate, clips)
		if other, hit := FindClipCollision(candidate, safe, clips); hit {
			t.Fatalf("round %d: safe position %v collides with %s", round, safe, other.ID)
		}
	}
}
