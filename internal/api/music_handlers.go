package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/reelcut/reelcut/internal/editor"
	"github.com/reelcut/reelcut/internal/music"
	"github.com/reelcut/reelcut/internal/session"
)

func listTracksHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, TracksResponse{Tracks: cfg.Catalog.Tracks()})
	}
}

func trackAudioHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg.Catalog.ServePreview(w, r, cfg.MusicDir, chi.URLParam(r, "trackID"))
	}
}

func trackAudioURL(trackID string) string {
	return "/music/tracks/" + url.PathEscape(trackID) + "/audio"
}

func setGlobalMusicHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MusicRequest
		if !decodeJSON(w, r, &req, false) {
			return
		}
		if req.Track == nil && req.Volume == nil {
			WriteError(w, http.StatusBadRequest, "track or volume is required", "BAD_REQUEST")
			return
		}

		s := sessionFrom(r)
		var setting editor.MusicSetting
		err := s.Update(func(st *session.State) error {
			next := editor.NoMusic
			if g, ok := st.Music.Global(); ok {
				next = g
			}
			if req.Track != nil {
				next.Track = *req.Track
			}
			if req.Volume != nil {
				next.Volume = *req.Volume
			}
			var err error
			setting, err = st.Music.SetGlobal(next)
			return err
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, setting)
	}
}

func startPreviewHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PreviewTrackRequest
		if !decodeJSON(w, r, &req, false) {
			return
		}
		if req.Track == "" || req.Track == music.NoneID {
			WriteError(w, http.StatusBadRequest, "track is required", "BAD_REQUEST")
			return
		}

		s := sessionFrom(r)
		var prev string
		err := s.Update(func(st *session.State) error {
			var err error
			prev, err = st.Music.StartPreview(req.Track)
			return err
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, PreviewTrackResponse{
			Track:    req.Track,
			Previous: prev,
			AudioURL: trackAudioURL(req.Track),
		})
	}
}

func stopPreviewHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := sessionFrom(r)
		var stopped bool
		_ = s.Update(func(st *session.State) error {
			stopped = st.Music.StopPreview()
			return nil
		})
		WriteJSON(w, http.StatusOK, map[string]bool{"stopped": stopped})
	}
}
