package export

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/reelcut/reelcut/internal/editor"
)

// GenerateEDL renders clips as a CMX3600 edit decision list. Record times
// follow the timeline position so gaps are preserved; each source starts at
// zero.
func GenerateEDL(clips []editor.Clip, title string, frameRate float64) string {
	fps := int(math.Round(frameRate))
	if fps <= 0 {
		fps = 30
	}

	isDropFrame := math.Abs(frameRate-29.97) < 0.01 || math.Abs(frameRate-59.94) < 0.01

	lines := []string{fmt.Sprintf("TITLE: %s", title)}
	if isDropFrame {
		lines = append(lines, "FCM: DROP FRAME")
	} else {
		lines = append(lines, "FCM: NON-DROP FRAME")
	}
	lines = append(lines, "")

	for i, clip := range clips {
		track := "V"
		media := clip.ImagePath
		if clip.Type == editor.ClipTypeAudio {
			track = "A"
			media = clip.AudioPath
		}
		srcIn := secondsToTimecode(0, fps)
		srcOut := secondsToTimecode(clip.Duration, fps)
		recIn := secondsToTimecode(clip.StartTime, fps)
		recOut := secondsToTimecode(clip.End(), fps)

		lines = append(lines,
			fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s", i+1, "AX", track, srcIn, srcOut, recIn, recOut),
			fmt.Sprintf("* FROM CLIP NAME:  %s", clip.Name),
		)
		if media != "" {
			lines = append(lines, fmt.Sprintf("* MEDIA PATH:  %s", media))
		}
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func secondsToTimecode(seconds float64, fps int) string {
	totalFrames := int(math.Round(seconds * float64(fps)))
	frames := totalFrames % fps
	totalSeconds := totalFrames / fps
	s := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60

	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, s, frames)
}

// WriteEDL stores edl as <title>.edl inside dir and returns the path.
func WriteEDL(dir, title, edl string) (string, error) {
	if err := ValidateOutputDir(dir); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fileName(title, ".edl"))
	if err := os.WriteFile(path, []byte(edl), 0o644); err != nil {
		return "", fmt.Errorf("write edl: %w", err)
	}
	return path, nil
}
