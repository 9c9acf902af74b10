package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/reelcut/reelcut/internal/editor"
	"github.com/reelcut/reelcut/internal/overlay"
	"github.com/reelcut/reelcut/internal/session"
)

func textState(st *session.State, it editor.TextItem) TextStateResponse {
	return TextStateResponse{
		Item:        it,
		State:       st.Overlay.State(it.ID).String(),
		Interactive: st.Overlay.Interactive(),
	}
}

func addTextHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TextRequest
		if !decodeJSON(w, r, &req, false) {
			return
		}
		it := editor.TextItem{X: 0.5, Y: 0.5}
		req.apply(&it)

		s := sessionFrom(r)
		var stored editor.TextItem
		err := s.Update(func(st *session.State) error {
			var err error
			stored, err = st.Overlay.Add(it)
			return err
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, stored)
	}
}

func updateTextHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TextRequest
		if !decodeJSON(w, r, &req, false) {
			return
		}
		id := chi.URLParam(r, "textID")
		s := sessionFrom(r)
		var updated editor.TextItem
		err := s.Update(func(st *session.State) error {
			var err error
			updated, err = st.Overlay.Update(id, req.apply)
			return err
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, updated)
	}
}

func deleteTextHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "textID")
		s := sessionFrom(r)
		if err := s.Update(func(st *session.State) error { return st.Overlay.Remove(id) }); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func selectTextHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "textID")
		s := sessionFrom(r)
		var resp TextStateResponse
		err := s.Update(func(st *session.State) error {
			it, err := st.Overlay.Select(id)
			if err != nil {
				return err
			}
			resp = textState(st, it)
			return nil
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func deselectTextHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := sessionFrom(r)
		_ = s.Update(func(st *session.State) error {
			st.Overlay.Deselect()
			return nil
		})
		w.WriteHeader(http.StatusNoContent)
	}
}

func dragTextHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DragRequest
		if !decodeJSON(w, r, &req, false) {
			return
		}
		id := chi.URLParam(r, "textID")
		s := sessionFrom(r)
		var resp TextStateResponse
		err := s.Update(func(st *session.State) error {
			if _, err := st.Overlay.Item(id); err != nil {
				return err
			}
			if st.Overlay.Selected() != id {
				return overlay.ErrNotSelected
			}

			var it editor.TextItem
			var err error
			switch req.Phase {
			case "start":
				if err = st.Overlay.BeginDrag(id, req.X, req.Y, req.Width, req.Height); err == nil {
					it, err = st.Overlay.Item(id)
				}
			case "move":
				it, err = st.Overlay.DragTo(req.X, req.Y)
			case "end":
				it, err = st.Overlay.EndDrag()
			default:
				return errInvalidPhase
			}
			if err != nil {
				return err
			}
			resp = textState(st, it)
			return nil
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func nudgeTextHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req NudgeRequest
		if !decodeJSON(w, r, &req, false) {
			return
		}
		id := chi.URLParam(r, "textID")
		s := sessionFrom(r)
		var resp TextStateResponse
		err := s.Update(func(st *session.State) error {
			if _, err := st.Overlay.Item(id); err != nil {
				return err
			}
			it, err := st.Overlay.Nudge(id, overlay.Direction(req.Direction), req.Fast)
			if err != nil {
				return err
			}
			resp = textState(st, it)
			return nil
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}
