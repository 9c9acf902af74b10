// Package music holds the background music catalog and the per-clip and
// global music assignments of a session.
package music

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Track is one selectable background music track.
type Track struct {
	ID       string  `yaml:"id" json:"id"`
	Name     string  `yaml:"name" json:"name"`
	File     string  `yaml:"file" json:"file"`
	Duration float64 `yaml:"duration" json:"duration"`
}

type catalogFile struct {
	Tracks []Track `yaml:"tracks"`
}

// Catalog is the read-only set of known tracks, keyed by id.
type Catalog struct {
	tracks map[string]Track
}

func defaultTracks() []Track {
	return []Track{
		{ID: "calm", Name: "Calm Piano", File: "music/calm.mp3", Duration: 120},
		{ID: "upbeat", Name: "Upbeat Pop", File: "music/upbeat.mp3", Duration: 95},
		{ID: "cinematic", Name: "Cinematic Rise", File: "music/cinematic.mp3", Duration: 150},
		{ID: "lofi", Name: "Lo-Fi Beats", File: "music/lofi.mp3", Duration: 180},
	}
}

func NewCatalog(tracks []Track) (*Catalog, error) {
	c := &Catalog{tracks: make(map[string]Track, len(tracks))}
	for _, t := range tracks {
		if t.ID == "" || t.ID == NoneID {
			return nil, fmt.Errorf("invalid track id %q", t.ID)
		}
		if t.File == "" {
			return nil, fmt.Errorf("track %s has no file", t.ID)
		}
		if _, ok := c.tracks[t.ID]; ok {
			return nil, fmt.Errorf("duplicate track id %q", t.ID)
		}
		c.tracks[t.ID] = t
	}
	return c, nil
}

// DefaultCatalog returns the built-in track list.
func DefaultCatalog() *Catalog {
	c, _ := NewCatalog(defaultTracks())
	return c
}

// LoadCatalog reads tracks from a YAML file. An empty path or a missing file
// yields the built-in catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultCatalog(), nil
		}
		return nil, err
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse music catalog: %w", err)
	}
	if len(f.Tracks) == 0 {
		return DefaultCatalog(), nil
	}
	return NewCatalog(f.Tracks)
}

func (c *Catalog) Track(id string) (Track, bool) {
	t, ok := c.tracks[id]
	return t, ok
}

// Tracks returns all tracks sorted by name.
func (c *Catalog) Tracks() []Track {
	out := make([]Track, 0, len(c.tracks))
	for _, t := range c.tracks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
