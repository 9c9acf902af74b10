package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/reelcut/reelcut/internal/auth"
	"github.com/reelcut/reelcut/internal/export"
	"github.com/reelcut/reelcut/internal/media"
	"github.com/reelcut/reelcut/internal/music"
	"github.com/reelcut/reelcut/internal/preview"
	"github.com/reelcut/reelcut/internal/realtime"
	"github.com/reelcut/reelcut/internal/session"
)

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger

	mu       sync.Mutex
	listener net.Listener
}

type ServerConfig struct {
	Port           int
	Registry       *session.Registry
	Repository     session.Repository
	Catalog        *music.Catalog
	MusicDir       string
	Exporter       *export.Manager
	Prober         media.Prober
	MediaStore     media.ObjectStore
	MediaOptions   media.Options
	Renderer       *preview.Renderer
	Hub            *realtime.Hub
	Player         *realtime.Player
	Tokens         *auth.Tokens
	AllowedOrigins []string
	Logger         *slog.Logger
	StartTime      time.Time
}

func NewServer(cfg ServerConfig) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("127.0.0.1:%d", cfg.Port),
			Handler:           NewRouter(cfg),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			// Websocket streams and long exports hold responses open.
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

// Start listens on the loopback address and serves until Shutdown. With
// port 0 the chosen port is reported by Addr once listening.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.httpServer.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("starting HTTP server", "addr", ln.Addr().String())
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Addr is the bound address while listening, else the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}
