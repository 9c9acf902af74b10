package music

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
)

// StartPreview marks trackID as the previewed track, replacing any earlier
// preview. It returns the previous track, empty when none.
func (m *Manager) StartPreview(trackID string) (string, error) {
	if _, ok := m.catalog.Track(trackID); !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTrack, trackID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.previewing
	m.previewing = trackID
	return prev, nil
}

// StopPreview ends the current preview and reports whether one was running.
func (m *Manager) StopPreview() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	was := m.previewing != ""
	m.previewing = ""
	return was
}

func (m *Manager) Previewing() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.previewing
}

// ServePreview streams the audio file of trackID from root with range
// support.
func (c *Catalog) ServePreview(w http.ResponseWriter, r *http.Request, root, trackID string) {
	t, ok := c.Track(trackID)
	if !ok {
		http.Error(w, "track not found", http.StatusNotFound)
		return
	}

	path := t.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, filepath.FromSlash(path))
	}
	f, err := os.Open(path)
	if err != nil {
		http.Error(w, "track audio unavailable", http.StatusNotFound)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.Error(w, "track audio unavailable", http.StatusNotFound)
		return
	}
	http.ServeContent(w, r, filepath.Base(path), info.ModTime(), f)
}
