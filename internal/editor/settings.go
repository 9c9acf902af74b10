package editor

import "fmt"

type EffectType string

const (
	EffectNone       EffectType = "none"
	EffectGrayscale  EffectType = "grayscale"
	EffectSepia      EffectType = "sepia"
	EffectBrightness EffectType = "brightness"
	EffectContrast   EffectType = "contrast"
	EffectBlur       EffectType = "blur"
)

// EffectSetting is an effect descriptor: a pixel transform plus its value.
// Value is kept within [0,100].
type EffectSetting struct {
	Type  EffectType `json:"type"`
	Value int        `json:"value"`
}

// NoEffect is the identity setting used when nothing else applies.
var NoEffect = EffectSetting{Type: EffectNone}

// ParseEffectType validates a user supplied effect name.
func ParseEffectType(s string) (EffectType, error) {
	switch t := EffectType(s); t {
	case EffectNone, EffectGrayscale, EffectSepia, EffectBrightness, EffectContrast, EffectBlur:
		return t, nil
	case "":
		return EffectNone, nil
	default:
		return "", fmt.Errorf("unknown effect type %q", s)
	}
}

// DefaultValue is the value an effect starts with when selected without one.
func DefaultValue(t EffectType) int {
	switch t {
	case EffectGrayscale, EffectSepia:
		return 100
	case EffectBrightness, EffectContrast:
		return 50
	case EffectBlur:
		return 20
	default:
		return 0
	}
}

// Normalize clamps the value and maps an empty type to none.
func (s EffectSetting) Normalize() EffectSetting {
	if s.Type == "" {
		s.Type = EffectNone
	}
	if s.Value < 0 {
		s.Value = 0
	}
	if s.Value > 100 {
		s.Value = 100
	}
	return s
}

// MusicSetting assigns a background track and its volume.
type MusicSetting struct {
	Track  string  `json:"track"`
	Volume float64 `json:"volume"`
}

const DefaultMusicVolume = 0.5

// NoMusic is the fallback when neither a clip nor a global setting exists.
var NoMusic = MusicSetting{Track: "", Volume: DefaultMusicVolume}

func (m MusicSetting) Normalize() MusicSetting {
	if m.Volume < 0 {
		m.Volume = 0
	}
	if m.Volume > 1 {
		m.Volume = 1
	}
	if m.Track == "none" {
		m.Track = ""
	}
	return m
}

// HasTrack reports whether a track is assigned.
func (m MusicSetting) HasTrack() bool {
	return m.Track != ""
}
