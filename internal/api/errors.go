package api

import (
	"errors"
	"net/http"

	"github.com/reelcut/reelcut/internal/export"
	"github.com/reelcut/reelcut/internal/music"
	"github.com/reelcut/reelcut/internal/overlay"
	"github.com/reelcut/reelcut/internal/session"
	"github.com/reelcut/reelcut/internal/timeline"
)

// writeDomainError maps editing errors to responses. Anything unrecognized
// is treated as rejected input.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		WriteError(w, http.StatusNotFound, "session not found", "SESSION_NOT_FOUND")
	case errors.Is(err, timeline.ErrClipNotFound):
		WriteError(w, http.StatusNotFound, "clip not found", "CLIP_NOT_FOUND")
	case errors.Is(err, overlay.ErrItemNotFound):
		WriteError(w, http.StatusNotFound, "text item not found", "TEXT_NOT_FOUND")
	case errors.Is(err, timeline.ErrDuplicateClip), errors.Is(err, timeline.ErrCollision):
		WriteError(w, http.StatusConflict, err.Error(), "CONFLICT")
	case errors.Is(err, overlay.ErrNotSelected), errors.Is(err, overlay.ErrNotDragging):
		WriteError(w, http.StatusConflict, err.Error(), "INVALID_STATE")
	case errors.Is(err, music.ErrUnknownTrack):
		WriteError(w, http.StatusBadRequest, err.Error(), "UNKNOWN_TRACK")
	case errors.Is(err, export.ErrNoClips):
		WriteError(w, http.StatusBadRequest, err.Error(), "NO_CLIPS")
	case errors.Is(err, export.ErrNoArtifacts):
		WriteError(w, http.StatusBadRequest, err.Error(), "UPLOAD_UNAVAILABLE")
	case errors.Is(err, export.ErrNoSession):
		WriteError(w, http.StatusBadRequest, err.Error(), "NO_SESSION")
	default:
		WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
	}
}

var errInvalidPhase = errors.New(`drag phase must be "start", "move" or "end"`)
