package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/reelcut/reelcut/internal/auth"
	"github.com/reelcut/reelcut/internal/config"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(CORSAllowlist(cfg.AllowedOrigins...))

	r.Get("/health", healthHandler(cfg))
	r.Post("/auth/token", tokenHandler(cfg))
	r.With(LoopbackGuard()).Get("/music/tracks/{trackID}/audio", trackAudioHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Tokens, cfg.Logger))

		r.Get("/music/tracks", listTracksHandler(cfg))
		r.Get("/sessions", listSessionsHandler(cfg))
		r.Post("/sessions", createSessionHandler(cfg))

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Use(SessionContext(cfg.Registry))

			r.Get("/", getSessionHandler(cfg))
			r.Patch("/", updateSessionHandler(cfg))
			r.Delete("/", deleteSessionHandler(cfg))
			r.Post("/script", importScriptHandler(cfg))
			r.Post("/media/preload", preloadMediaHandler(cfg))

			r.Post("/clips", addClipHandler(cfg))
			r.Patch("/clips/{clipID}", updateClipHandler(cfg))
			r.Delete("/clips/{clipID}", deleteClipHandler(cfg))
			r.Put("/clips/{clipID}/position", moveClipHandler(cfg))
			r.Put("/clips/{clipID}/effect", setClipEffectHandler(cfg))
			r.Delete("/clips/{clipID}/effect", clearClipEffectHandler(cfg))
			r.Put("/clips/{clipID}/music", setClipMusicHandler(cfg))
			r.Delete("/clips/{clipID}/music", clearClipMusicHandler(cfg))

			r.Put("/effects/global", setGlobalEffectHandler(cfg))
			r.Delete("/effects/global", clearGlobalEffectHandler(cfg))
			r.Put("/music/global", setGlobalMusicHandler(cfg))
			r.Post("/music/preview", startPreviewHandler(cfg))
			r.Delete("/music/preview", stopPreviewHandler(cfg))

			r.Post("/texts", addTextHandler(cfg))
			r.Post("/texts/deselect", deselectTextHandler(cfg))
			r.Patch("/texts/{textID}", updateTextHandler(cfg))
			r.Delete("/texts/{textID}", deleteTextHandler(cfg))
			r.Post("/texts/{textID}/select", selectTextHandler(cfg))
			r.Post("/texts/{textID}/drag", dragTextHandler(cfg))
			r.Post("/texts/{textID}/nudge", nudgeTextHandler(cfg))

			r.Put("/playhead", seekHandler(cfg))
			r.Post("/play", playHandler(cfg))
			r.Post("/pause", pauseHandler(cfg))
			r.Put("/zoom", zoomHandler(cfg))
			r.Get("/preview.png", previewFrameHandler(cfg))
			r.Get("/ws", websocketHandler(cfg))

			r.Post("/save", saveHandler(cfg))
			r.Post("/export", exportVideoHandler(cfg))
			r.Get("/exports", listExportsHandler(cfg))
			r.Post("/edl", exportEDLHandler(cfg))
		})
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:  "ok",
			Version: config.Version,
			UptimeS: int64(time.Since(cfg.StartTime).Seconds()),
		}
		if cfg.Registry != nil {
			resp.Sessions = cfg.Registry.Len()
		}
		if cfg.Hub != nil {
			resp.Clients = cfg.Hub.Clients(r.Context())
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func tokenHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TokenRequest
		if !decodeJSON(w, r, &req, false) {
			return
		}
		subject := req.Subject
		if subject == "" {
			subject = "editor"
		}

		token, expires, err := cfg.Tokens.Exchange(req.APIKey, subject, req.SessionID)
		if errors.Is(err, auth.ErrInvalidKey) {
			cfg.Logger.Warn("rejected token exchange", "remote_addr", r.RemoteAddr)
			WriteError(w, http.StatusUnauthorized, "invalid api key", "UNAUTHORIZED")
			return
		}
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to issue token", "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, TokenResponse{Token: token, ExpiresAt: expires.UTC().Format(time.RFC3339)})
	}
}

func websocketHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Hub == nil {
			WriteError(w, http.StatusServiceUnavailable, "realtime updates disabled", "UNAVAILABLE")
			return
		}
		s := sessionFrom(r)
		cfg.Hub.Serve(w, r, s.ID, func(origin string) bool {
			return isAllowedOrigin(origin, cfg.AllowedOrigins...)
		})
	}
}
