package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/reelcut/reelcut/internal/editor"
	"github.com/reelcut/reelcut/internal/session"
)

func addClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddClipRequest
		if !decodeJSON(w, r, &req, false) {
			return
		}
		c := editor.Clip{
			ID:         req.ID,
			Name:       req.Name,
			Type:       req.Type,
			ImagePath:  req.ImagePath,
			AudioPath:  req.AudioPath,
			Text:       req.Text,
			StartTime:  req.StartTime,
			Duration:   req.Duration,
			Transition: req.Transition,
		}
		if c.ID == "" {
			c.ID = editor.NewID()
		}
		if c.Type == "" {
			c.Type = editor.ClipTypeVideo
		}

		s := sessionFrom(r)
		var stored editor.Clip
		err := s.Update(func(st *session.State) error {
			var err error
			stored, err = st.Timeline.AddClip(c)
			return err
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, stored)
	}
}

func moveClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MoveClipRequest
		if !decodeJSON(w, r, &req, false) {
			return
		}
		if (req.StartTime == nil) == (req.X == nil) {
			WriteError(w, http.StatusBadRequest, "exactly one of startTime or x is required", "BAD_REQUEST")
			return
		}

		id := chi.URLParam(r, "clipID")
		s := sessionFrom(r)
		var start float64
		err := s.Update(func(st *session.State) error {
			var err error
			if req.X != nil {
				start, err = st.Timeline.MoveClipToPixel(id, *req.X)
			} else {
				start, err = st.Timeline.MoveClip(id, *req.StartTime)
			}
			return err
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, MoveClipResponse{ID: id, StartTime: start})
	}
}

func updateClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateClipRequest
		if !decodeJSON(w, r, &req, false) {
			return
		}
		id := chi.URLParam(r, "clipID")
		s := sessionFrom(r)
		var updated editor.Clip
		err := s.Update(func(st *session.State) error {
			var err error
			updated, err = st.Timeline.UpdateClip(id, func(c *editor.Clip) {
				if req.Name != nil {
					c.Name = *req.Name
				}
				if req.Text != nil {
					c.Text = *req.Text
				}
				if req.ImagePath != nil {
					c.ImagePath = *req.ImagePath
				}
				if req.AudioPath != nil {
					c.AudioPath = *req.AudioPath
				}
				if req.Duration != nil {
					c.Duration = *req.Duration
				}
				if req.Transition != nil {
					c.Transition = *req.Transition
				}
			})
			return err
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, updated)
	}
}

func deleteClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "clipID")
		s := sessionFrom(r)
		err := s.Update(func(st *session.State) error {
			if err := st.Timeline.RemoveClip(id); err != nil {
				return err
			}
			st.Effects.Clear(id)
			st.Music.Clear(id)
			return nil
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// effectSetting resolves an effect request, filling in the effect's
// default value when none is given.
func effectSetting(req EffectRequest) (editor.EffectSetting, error) {
	t, err := editor.ParseEffectType(req.Type)
	if err != nil {
		return editor.EffectSetting{}, err
	}
	value := editor.DefaultValue(t)
	if req.Value != nil {
		value = *req.Value
	}
	return editor.EffectSetting{Type: t, Value: value}.Normalize(), nil
}

func setClipEffectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req EffectRequest
		if !decodeJSON(w, r, &req, false) {
			return
		}
		setting, err := effectSetting(req)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		id := chi.URLParam(r, "clipID")
		s := sessionFrom(r)
		err = s.Update(func(st *session.State) error {
			if _, err := st.Timeline.Clip(id); err != nil {
				return err
			}
			setting = st.Effects.Set(id, setting)
			return nil
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, setting)
	}
}

func clearClipEffectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "clipID")
		s := sessionFrom(r)
		var effective editor.EffectSetting
		err := s.Update(func(st *session.State) error {
			if _, err := st.Timeline.Clip(id); err != nil {
				return err
			}
			st.Effects.Clear(id)
			effective = st.Effects.Lookup(id)
			return nil
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, effective)
	}
}

func setGlobalEffectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req EffectRequest
		if !decodeJSON(w, r, &req, false) {
			return
		}
		setting, err := effectSetting(req)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		s := sessionFrom(r)
		_ = s.Update(func(st *session.State) error {
			setting = st.Effects.SetGlobal(setting)
			return nil
		})
		WriteJSON(w, http.StatusOK, setting)
	}
}

func clearGlobalEffectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := sessionFrom(r)
		_ = s.Update(func(st *session.State) error {
			st.Effects.ClearGlobal()
			return nil
		})
		w.WriteHeader(http.StatusNoContent)
	}
}

func setClipMusicHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MusicRequest
		if !decodeJSON(w, r, &req, false) {
			return
		}
		if req.Track == nil && req.Volume == nil {
			WriteError(w, http.StatusBadRequest, "track or volume is required", "BAD_REQUEST")
			return
		}

		id := chi.URLParam(r, "clipID")
		s := sessionFrom(r)
		var setting editor.MusicSetting
		err := s.Update(func(st *session.State) error {
			if _, err := st.Timeline.Clip(id); err != nil {
				return err
			}
			var err error
			switch {
			case req.Track != nil && req.Volume != nil:
				setting, err = st.Music.Set(id, editor.MusicSetting{Track: *req.Track, Volume: *req.Volume})
			case req.Track != nil:
				setting, err = st.Music.SetTrack(id, *req.Track)
			default:
				setting, err = st.Music.SetVolume(id, *req.Volume)
			}
			return err
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, setting)
	}
}

func clearClipMusicHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "clipID")
		s := sessionFrom(r)
		var effective editor.MusicSetting
		err := s.Update(func(st *session.State) error {
			if _, err := st.Timeline.Clip(id); err != nil {
				return err
			}
			st.Music.Clear(id)
			effective = st.Music.Lookup(id)
			return nil
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, effective)
	}
}
