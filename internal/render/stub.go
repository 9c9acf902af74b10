package render

import (
	"context"
	"log/slog"
	"sync"

	"github.com/reelcut/reelcut/internal/convert"
)

// StubClient answers locally. It is used when no render service is
// configured and as a scripted fake in tests.
type StubClient struct {
	logger *slog.Logger

	mu         sync.Mutex
	saves      []convert.Payload
	exports    []convert.Payload
	saveErrs   []error
	saveResp   Response
	exportErrs []error
	exportErr  error
	exportResp Response
}

func NewStubClient(logger *slog.Logger) *StubClient {
	return &StubClient{
		logger:     logger,
		saveResp:   Response{Success: true},
		exportResp: Response{Success: true},
	}
}

// FailSaves makes the next saves fail with errs, one per attempt.
func (s *StubClient) FailSaves(errs ...error) {
	s.mu.Lock()
	s.saveErrs = append(s.saveErrs, errs...)
	s.mu.Unlock()
}

// FailExports makes the next export requests fail with errs, one per
// attempt, before the configured export result applies.
func (s *StubClient) FailExports(errs ...error) {
	s.mu.Lock()
	s.exportErrs = append(s.exportErrs, errs...)
	s.mu.Unlock()
}

func (s *StubClient) SetSaveResponse(r Response) {
	s.mu.Lock()
	s.saveResp = r
	s.mu.Unlock()
}

func (s *StubClient) SetExportResult(r Response, err error) {
	s.mu.Lock()
	s.exportResp, s.exportErr = r, err
	s.mu.Unlock()
}

func (s *StubClient) SaveEdits(_ context.Context, payload convert.Payload) (Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves = append(s.saves, payload)
	if len(s.saveErrs) > 0 {
		err := s.saveErrs[0]
		s.saveErrs = s.saveErrs[1:]
		return Response{}, err
	}
	s.logger.Info("render stub: save requested", "session_id", payload.SessionID, "part_count", len(payload.Parts))
	return s.saveResp, nil
}

func (s *StubClient) CreateEditedVideo(_ context.Context, payload convert.Payload) (Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exports = append(s.exports, payload)
	if len(s.exportErrs) > 0 {
		err := s.exportErrs[0]
		s.exportErrs = s.exportErrs[1:]
		return Response{}, err
	}
	s.logger.Info("render stub: export requested", "session_id", payload.SessionID, "part_count", len(payload.Parts))
	return s.exportResp, s.exportErr
}

func (s *StubClient) Saves() []convert.Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]convert.Payload(nil), s.saves...)
}

func (s *StubClient) Exports() []convert.Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]convert.Payload(nil), s.exports...)
}
