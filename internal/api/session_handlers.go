package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/reelcut/reelcut/internal/convert"
	"github.com/reelcut/reelcut/internal/logging"
	"github.com/reelcut/reelcut/internal/media"
	"github.com/reelcut/reelcut/internal/preview"
	"github.com/reelcut/reelcut/internal/session"
)

func playing(cfg ServerConfig, id string) bool {
	return cfg.Player != nil && cfg.Player.Playing(id)
}

func listSessionsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions := cfg.Registry.List()
		resp := SessionsResponse{Sessions: make([]SessionSummary, len(sessions))}
		for i, s := range sessions {
			resp.Sessions[i] = SessionToSummary(s)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func createSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateSessionRequest
		if !decodeJSON(w, r, &req, true) {
			return
		}
		s := cfg.Registry.Create(req.Title)
		WriteJSON(w, http.StatusCreated, SessionToResponse(s, false))
	}
}

func getSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := sessionFrom(r)
		WriteJSON(w, http.StatusOK, SessionToResponse(s, playing(cfg, s.ID)))
	}
}

func updateSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateSessionRequest
		if !decodeJSON(w, r, &req, false) {
			return
		}
		s := sessionFrom(r)
		if req.Title != nil {
			s.SetTitle(*req.Title)
		}
		WriteJSON(w, http.StatusOK, SessionToResponse(s, playing(cfg, s.ID)))
	}
}

func deleteSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := sessionFrom(r)
		if cfg.Player != nil {
			cfg.Player.Pause(s.ID)
		}
		if err := cfg.Registry.Delete(r.Context(), s.ID); err != nil && !errors.Is(err, session.ErrSessionNotFound) {
			cfg.Logger.Error("failed to delete session", "session_id", s.ID, "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to delete session", "INTERNAL_ERROR")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func importScriptHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ImportScriptRequest
		if !decodeJSON(w, r, &req, false) {
			return
		}
		if len(req.Parts) == 0 {
			WriteError(w, http.StatusBadRequest, "parts must not be empty", "BAD_REQUEST")
			return
		}

		s := sessionFrom(r)
		clips, err := convert.ClipsFromScript(r.Context(), req.Parts, cfg.Prober)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		err = s.Update(func(st *session.State) error {
			previous := st.Timeline.Clips()
			if err := st.Timeline.Replace(clips); err != nil {
				return err
			}
			if req.Texts != nil {
				if err := st.Overlay.Load(req.Texts); err != nil {
					_ = st.Timeline.Replace(previous)
					return err
				}
			}
			st.Overlay.MarkReady()
			return nil
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := ImportScriptResponse{}
		if req.Preload {
			report := preload(cfg, r, s)
			resp.Media = &report
		}
		resp.Session = SessionToResponse(s, playing(cfg, s.ID))
		WriteJSON(w, http.StatusOK, resp)
	}
}

func preloadMediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, preload(cfg, r, sessionFrom(r)))
	}
}

// preload fills the session asset cache and streams progress to the
// session's websocket subscribers.
func preload(cfg ServerConfig, r *http.Request, s *session.Session) media.Report {
	logger := logging.WithSessionID(logging.WithComponent(cfg.Logger, "media"), s.ID)
	loader := media.NewLoader(s.Media(), cfg.MediaStore, cfg.MediaOptions, logger)
	ctx := r.Context()
	return loader.Preload(ctx, s.Clips(), func(p media.Progress) {
		if cfg.Hub == nil {
			return
		}
		ev := map[string]any{"type": "media", "done": p.Done, "total": p.Total}
		if p.Asset != nil {
			ev["path"] = p.Asset.Path
			ev["placeholder"] = p.Asset.Placeholder
		}
		_ = cfg.Hub.Publish(ctx, s.ID, ev)
	})
}

func seekHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PlayheadRequest
		if !decodeJSON(w, r, &req, false) {
			return
		}
		s := sessionFrom(r)
		var at float64
		if cfg.Player != nil {
			at = cfg.Player.Seek(r.Context(), s, req.Time)
		} else {
			_ = s.Update(func(st *session.State) error {
				at = st.Timeline.SetCurrentTime(req.Time)
				return nil
			})
		}
		WriteJSON(w, http.StatusOK, PlayheadResponse{Time: at, Playing: playing(cfg, s.ID)})
	}
}

func playHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Player == nil {
			WriteError(w, http.StatusServiceUnavailable, "playback disabled", "UNAVAILABLE")
			return
		}
		s := sessionFrom(r)
		if len(s.Clips()) == 0 {
			writeDomainError(w, errNothingToPlay)
			return
		}
		cfg.Player.Play(r.Context(), s)
		WriteJSON(w, http.StatusOK, PlayheadResponse{Time: currentTime(s), Playing: true})
	}
}

var errNothingToPlay = errors.New("timeline has no clips to play")

func pauseHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := sessionFrom(r)
		if cfg.Player != nil {
			cfg.Player.Pause(s.ID)
		}
		WriteJSON(w, http.StatusOK, PlayheadResponse{Time: currentTime(s), Playing: false})
	}
}

func currentTime(s *session.Session) float64 {
	var at float64
	s.Read(func(st *session.State) { at = st.Timeline.CurrentTime() })
	return at
}

func zoomHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ZoomRequest
		if !decodeJSON(w, r, &req, false) {
			return
		}
		if (req.PixelsPerSecond == nil) == (req.Factor == nil) {
			WriteError(w, http.StatusBadRequest, "exactly one of pixelsPerSecond or factor is required", "BAD_REQUEST")
			return
		}
		s := sessionFrom(r)
		var pps float64
		_ = s.Update(func(st *session.State) error {
			if req.Factor != nil {
				pps = st.Timeline.Zoom(*req.Factor)
			} else {
				pps = st.Timeline.SetPixelsPerSecond(*req.PixelsPerSecond)
			}
			return nil
		})
		WriteJSON(w, http.StatusOK, ZoomResponse{PixelsPerSecond: pps})
	}
}

func previewFrameHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := sessionFrom(r)
		at := currentTime(s)
		if v := r.URL.Query().Get("t"); v != "" {
			t, err := strconv.ParseFloat(v, 64)
			if err != nil || t < 0 {
				WriteError(w, http.StatusBadRequest, "t must be a non-negative number of seconds", "BAD_REQUEST")
				return
			}
			at = t
		}

		renderer := cfg.Renderer
		if renderer == nil {
			renderer = preview.NewRenderer(0, 0)
		}
		var buf bytes.Buffer
		info, err := renderer.RenderPNG(&buf, s, at)
		if err != nil {
			cfg.Logger.Error("preview render failed", "session_id", s.ID, "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to render preview", "INTERNAL_ERROR")
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("X-Reelcut-Clip-Id", info.ClipID)
		w.Header().Set("X-Reelcut-Effect", string(info.Effect.Type))
		w.Header().Set("X-Reelcut-Text-Count", strconv.Itoa(info.Texts))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}
