// Package export saves session edits to the render service and requests
// the final video, plus EDL export of the timeline.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/reelcut/reelcut/internal/editor"
	"github.com/reelcut/reelcut/internal/render"
	"github.com/reelcut/reelcut/internal/session"
)

var (
	ErrNoSession   = errors.New("no session to export")
	ErrNoClips     = errors.New("no clips to export")
	ErrNoArtifacts = errors.New("object storage not configured for uploads")
)

const (
	DefaultSaveAttempts = 3
	DefaultSaveDelay    = 1 * time.Second
	DefaultReadyTimeout = 5 * time.Second
	DefaultLinkExpiry   = 24 * time.Hour
)

// ExportLog records export attempts.
type ExportLog interface {
	CreateExport(ctx context.Context, rec *session.ExportRecord) error
	FinishExport(ctx context.Context, id, status, videoURL, errMsg string) error
}

// ArtifactStore keeps exported files in object storage.
type ArtifactStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	DownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

type Options struct {
	SaveAttempts int
	SaveDelay    time.Duration
	ReadyTimeout time.Duration
}

type Manager struct {
	render    render.Client
	store     session.SnapshotStore
	exports   ExportLog
	artifacts ArtifactStore
	opts      Options
	logger    *slog.Logger
}

// NewManager builds a manager. store and exports may be nil.
func NewManager(client render.Client, store session.SnapshotStore, exports ExportLog, opts Options, logger *slog.Logger) *Manager {
	if opts.SaveAttempts <= 0 {
		opts.SaveAttempts = DefaultSaveAttempts
	}
	if opts.SaveDelay < 0 {
		opts.SaveDelay = 0
	}
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = DefaultReadyTimeout
	}
	return &Manager{render: client, store: store, exports: exports, opts: opts, logger: logger}
}

// SetArtifactStore enables EDL uploads.
func (m *Manager) SetArtifactStore(a ArtifactStore) {
	m.artifacts = a
}

// SaveChanges writes a local snapshot and then posts the edits, retrying
// transport and server failures with a fixed delay. When the service stays
// unreachable the save counts as done locally.
func (m *Manager) SaveChanges(ctx context.Context, s *session.Session) SaveResult {
	if s == nil {
		return SaveResult{Error: ErrNoSession.Error()}
	}
	logger := m.logger.With("session_id", s.ID)

	localSaved := m.store == nil
	if m.store != nil {
		if err := m.store.SaveSnapshot(ctx, s.Snapshot()); err != nil {
			logger.Warn("local snapshot failed", "error", err)
		} else {
			localSaved = true
		}
	}

	payload := s.Payload(true)
	resp, attempts, err := m.post(ctx, "save", func(ctx context.Context) (render.Response, error) {
		return m.render.SaveEdits(ctx, payload)
	})
	switch {
	case err == nil && !resp.Success:
		msg := resp.Error
		if msg == "" {
			msg = "save rejected by render service"
		}
		logger.Warn("save rejected", "error", msg)
		return SaveResult{Attempts: attempts, Error: msg}
	case err == nil:
		logger.Info("edits saved", "attempts", attempts, "part_count", len(payload.Parts))
		return SaveResult{Saved: true, Attempts: attempts}
	case !errors.Is(err, errUnreachable):
		logger.Warn("save failed", "error", err, "attempt", attempts)
		return SaveResult{Attempts: attempts, Error: err.Error()}
	}

	if !localSaved {
		return SaveResult{Attempts: attempts, Error: err.Error()}
	}
	logger.Warn("render service unreachable, edits kept locally", "attempts", attempts, "error", err)
	return SaveResult{Saved: true, LocalOnly: true, Attempts: attempts}
}

// errUnreachable wraps the last error once every attempt failed with a
// retryable error.
var errUnreachable = errors.New("render service unreachable")

// post runs call up to SaveAttempts times with a fixed delay in between.
// Only retryable failures are repeated; a response, even an unsuccessful
// one, ends the loop.
func (m *Manager) post(ctx context.Context, op string, call func(context.Context) (render.Response, error)) (render.Response, int, error) {
	var lastErr error
	for attempt := 1; attempt <= m.opts.SaveAttempts; attempt++ {
		resp, err := call(ctx)
		if err == nil {
			return resp, attempt, nil
		}
		if !render.IsRetryable(err) {
			return render.Response{}, attempt, err
		}
		lastErr = err
		m.logger.Debug("render request failed", "op", op, "attempt", attempt, "error", err)

		if attempt < m.opts.SaveAttempts {
			select {
			case <-time.After(m.opts.SaveDelay):
			case <-ctx.Done():
				return render.Response{}, attempt, ctx.Err()
			}
		}
	}
	return render.Response{}, m.opts.SaveAttempts, fmt.Errorf("%w: %w", errUnreachable, lastErr)
}

// ExportVideo saves the session and requests the final video, retrying the
// render request like SaveChanges does. A missing session or empty timeline
// is rejected before anything else. It then waits a bounded time for the
// text overlay; on timeout the export goes ahead without text items. The
// save outcome does not block the export. cb, when non-nil, receives the
// same result that is returned.
func (m *Manager) ExportVideo(ctx context.Context, s *session.Session, cb func(ExportResult)) (ExportResult, error) {
	if s == nil || s.ID == "" {
		return ExportResult{}, ErrNoSession
	}
	if len(s.Clips()) == 0 {
		return ExportResult{}, ErrNoClips
	}
	logger := m.logger.With("session_id", s.ID)

	includeText := true
	timer := time.NewTimer(m.opts.ReadyTimeout)
	select {
	case <-s.OverlayReady():
	case <-timer.C:
		includeText = false
		logger.Warn("text overlay not ready, exporting without text items", "timeout", m.opts.ReadyTimeout.String())
	case <-ctx.Done():
		timer.Stop()
		return ExportResult{}, ctx.Err()
	}
	timer.Stop()

	if saved := m.SaveChanges(ctx, s); !saved.Saved {
		logger.Warn("save before export failed, exporting anyway", "error", saved.Error)
	}

	rec := &session.ExportRecord{ID: editor.NewID(), SessionID: s.ID, Status: session.ExportRunning}
	if m.exports != nil {
		if err := m.exports.CreateExport(ctx, rec); err != nil {
			logger.Warn("failed to record export", "error", err)
		}
	}

	result := ExportResult{ExportID: rec.ID, TextIncluded: includeText}
	payload := s.Payload(includeText)
	resp, attempts, err := m.post(ctx, "export", func(ctx context.Context) (render.Response, error) {
		return m.render.CreateEditedVideo(ctx, payload)
	})
	result.Attempts = attempts
	switch {
	case err != nil:
		result.Error = err.Error()
	case !resp.Success:
		result.Error = resp.Error
		if result.Error == "" {
			result.Error = "export rejected by render service"
		}
	default:
		result.Success = true
		result.VideoURL = resp.VideoURL
	}

	status := session.ExportSucceeded
	if !result.Success {
		status = session.ExportFailed
		logger.Error("export failed", "export_id", rec.ID, "error", result.Error)
	} else {
		logger.Info("export complete", "export_id", rec.ID, "video_url", result.VideoURL)
	}
	if m.exports != nil {
		if err := m.exports.FinishExport(context.WithoutCancel(ctx), rec.ID, status, result.VideoURL, result.Error); err != nil {
			logger.Warn("failed to record export result", "error", err)
		}
	}

	if cb != nil {
		cb(result)
	}
	return result, nil
}

// ExportEDL builds the EDL of the session timeline. When OutputDir is set
// it is written to disk, and when Upload is set it is stored in object
// storage behind a presigned link.
func (m *Manager) ExportEDL(ctx context.Context, s *session.Session, req EDLRequest) (EDLResponse, error) {
	if s == nil {
		return EDLResponse{}, ErrNoSession
	}
	clips := s.Clips()
	if len(clips) == 0 {
		return EDLResponse{}, ErrNoClips
	}
	if req.Upload && m.artifacts == nil {
		return EDLResponse{}, ErrNoArtifacts
	}
	title := req.Title
	if title == "" {
		title = s.Title()
	}
	if title == "" {
		title = s.ID
	}

	edl := GenerateEDL(clips, title, req.FrameRate)
	resp := EDLResponse{Status: "ok", Format: "edl", ClipCount: len(clips), EDL: edl}
	if req.OutputDir != "" {
		path, err := WriteEDL(req.OutputDir, title, edl)
		if err != nil {
			return EDLResponse{}, err
		}
		resp.OutputPath = path
	}
	if req.Upload {
		url, err := m.uploadEDL(ctx, s.ID, title, edl)
		if err != nil {
			return EDLResponse{}, err
		}
		resp.DownloadURL = url
	}
	return resp, nil
}

func (m *Manager) uploadEDL(ctx context.Context, sessionID, title, edl string) (string, error) {
	key := fmt.Sprintf("exports/%s/%s", sessionID, fileName(title, ".edl"))
	if err := m.artifacts.Put(ctx, key, []byte(edl), "text/plain; charset=utf-8"); err != nil {
		return "", fmt.Errorf("upload edl: %w", err)
	}
	url, err := m.artifacts.DownloadURL(ctx, key, DefaultLinkExpiry)
	if err != nil {
		return "", fmt.Errorf("presign edl: %w", err)
	}
	m.logger.Info("edl uploaded", "session_id", sessionID, "key", key)
	return url, nil
}
