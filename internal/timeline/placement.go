package timeline

import (
	"math"
	"sort"

	"github.com/reelcut/reelcut/internal/editor"
)

// FindClipCollision returns the first clip of the same type whose interval
// intersects [candidateStart, candidateStart+clip.Duration). The clip itself
// (matched by ID) is never reported.
func FindClipCollision(clip editor.Clip, candidateStart float64, allClips []editor.Clip) (editor.Clip, bool) {
	for _, other := range allClips {
		if other.ID == clip.ID || other.Type != clip.Type {
			continue
		}
		if other.Overlaps(candidateStart, clip.Duration) {
			return other, true
		}
	}
	return editor.Clip{}, false
}

// FindSafePosition returns a start time where clip fits without overlapping
// any other clip of the same type: 0 when it fits before the first clip,
// otherwise the first gap large enough, otherwise the end of the track.
// First fit, no optimality guarantee.
func FindSafePosition(clip editor.Clip, allClips []editor.Clip) float64 {
	sameType := make([]editor.Clip, 0, len(allClips))
	for _, other := range allClips {
		if other.ID == clip.ID || other.Type != clip.Type {
			continue
		}
		sameType = append(sameType, other)
	}
	if len(sameType) == 0 {
		return 0
	}

	sort.SliceStable(sameType, func(i, j int) bool {
		return sameType[i].StartTime < sameType[j].StartTime
	})

	if clip.Duration <= sameType[0].StartTime {
		return 0
	}

	// trackEnd is the furthest end seen so far; it guards against
	// pre-existing overlaps hiding part of an earlier clip.
	trackEnd := sameType[0].End()
	for _, next := range sameType[1:] {
		if next.StartTime-trackEnd >= clip.Duration {
			return trackEnd
		}
		trackEnd = math.Max(trackEnd, next.End())
	}
	return trackEnd
}
