package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/reelcut/reelcut/internal/export"
	"github.com/reelcut/reelcut/internal/session"
)

func saveHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := sessionFrom(r)
		result := cfg.Exporter.SaveChanges(r.Context(), s)
		if !result.Saved {
			WriteError(w, http.StatusBadGateway, result.Error, "SAVE_FAILED")
			return
		}
		WriteJSON(w, http.StatusOK, result)
	}
}

// exportVideoHandler returns the export result and also pushes it to the
// session's websocket subscribers.
func exportVideoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := sessionFrom(r)
		ctx := r.Context()
		result, err := cfg.Exporter.ExportVideo(ctx, s, func(res export.ExportResult) {
			if cfg.Hub == nil {
				return
			}
			_ = cfg.Hub.Publish(ctx, s.ID, struct {
				Type string `json:"type"`
				export.ExportResult
			}{"export", res})
		})
		if err != nil {
			if errors.Is(err, export.ErrNoClips) || errors.Is(err, export.ErrNoSession) {
				writeDomainError(w, err)
				return
			}
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, result)
	}
}

func listExportsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 500 {
				WriteError(w, http.StatusBadRequest, "limit must be between 1 and 500", "BAD_REQUEST")
				return
			}
			limit = n
		}

		resp := ExportsResponse{Exports: []*session.ExportRecord{}}
		if cfg.Repository != nil {
			recs, err := cfg.Repository.ListExports(r.Context(), sessionFrom(r).ID, limit)
			if err != nil {
				WriteError(w, http.StatusInternalServerError, "failed to list exports", "INTERNAL_ERROR")
				return
			}
			if recs != nil {
				resp.Exports = recs
			}
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func exportEDLHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req export.EDLRequest
		if !decodeJSON(w, r, &req, true) {
			return
		}
		if req.FrameRate < 0 || req.FrameRate > 240 {
			WriteError(w, http.StatusBadRequest, "frameRate must be between 0 and 240", "BAD_REQUEST")
			return
		}

		resp, err := cfg.Exporter.ExportEDL(r.Context(), sessionFrom(r), req)
		if errors.Is(err, export.ErrNoClips) || errors.Is(err, export.ErrNoArtifacts) || errors.Is(err, export.ErrInvalidOutputDir) {
			writeDomainError(w, err)
			return
		}
		if err != nil {
			cfg.Logger.Error("edl export failed", "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to store export file", "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}
