package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/reelcut/reelcut/internal/api"
	"github.com/reelcut/reelcut/internal/auth"
	"github.com/reelcut/reelcut/internal/config"
	"github.com/reelcut/reelcut/internal/db"
	"github.com/reelcut/reelcut/internal/export"
	"github.com/reelcut/reelcut/internal/logging"
	"github.com/reelcut/reelcut/internal/media"
	"github.com/reelcut/reelcut/internal/music"
	"github.com/reelcut/reelcut/internal/preview"
	"github.com/reelcut/reelcut/internal/realtime"
	"github.com/reelcut/reelcut/internal/render"
	"github.com/reelcut/reelcut/internal/session"
	"github.com/reelcut/reelcut/internal/storage"
	"github.com/reelcut/reelcut/internal/ui"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read .env: %w", err)
	}

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting reelcut", "version", config.Version, "data_dir", cfg.DataDir())

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := session.NewRepository(database.Conn())

	jwtSecret, err := ensureSetting(repo, "jwt_secret", cfg.JWTSecret())
	if err != nil {
		return fmt.Errorf("failed to ensure jwt secret: %w", err)
	}
	apiKey, err := ensureSetting(repo, "api_key", cfg.APIKey())
	if err != nil {
		return fmt.Errorf("failed to ensure api key: %w", err)
	}
	tokens, err := auth.New(jwtSecret, apiKey, auth.DefaultTokenTTL)
	if err != nil {
		return fmt.Errorf("failed to set up auth: %w", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Printf("║  %-57s║\n", "REELCUT v"+config.Version)
	fmt.Println("╠═══════════════════════════════════════════════════════════╣")
	fmt.Printf("║  API URL:  http://127.0.0.1:%-30d║\n", cfg.Port())
	fmt.Printf("║  API Key:  %-47s║\n", apiKey)
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snapshots, closeSnapshots, err := snapshotStore(cfg, repo, logger)
	if err != nil {
		return err
	}
	defer closeSnapshots()

	catalog, err := music.LoadCatalog(cfg.MusicCatalog())
	if err != nil {
		return fmt.Errorf("failed to load music catalog: %w", err)
	}

	var objects *storage.Storage
	if s3cfg := cfg.S3(); s3cfg.Enabled() {
		objects, err = storage.New(ctx, storage.Config{
			Endpoint:       s3cfg.Endpoint,
			PublicEndpoint: s3cfg.PublicEndpoint,
			Bucket:         s3cfg.Bucket,
			AccessKey:      s3cfg.AccessKey,
			SecretKey:      s3cfg.SecretKey,
			Region:         s3cfg.Region,
		})
		if err != nil {
			return fmt.Errorf("failed to set up object storage: %w", err)
		}
		logger.Info("object storage enabled", "bucket", objects.Bucket())
	}

	var renderClient render.Client
	if cfg.RenderBaseURL() != "" {
		renderClient = render.NewHTTPClient(cfg.RenderBaseURL(), cfg.RenderToken(), logger)
		logger.Info("render service configured", "base_url", cfg.RenderBaseURL())
	} else {
		renderClient = render.NewStubClient(logger)
		logger.Warn("no render service configured, saves and exports are answered locally")
	}

	exporter := export.NewManager(renderClient, snapshots, repo, export.Options{}, logger)
	var mediaStore media.ObjectStore
	if objects != nil {
		exporter.SetArtifactStore(objects)
		mediaStore = objects
	}

	registry := session.NewRegistry(catalog, snapshots, logger)

	hub := realtime.NewHub(logging.WithComponent(logger, "realtime"))
	go hub.Run(ctx)
	player := realtime.NewPlayer(hub, realtime.DefaultTickInterval, logger)

	width, height := cfg.PreviewSize()

	apiServer := api.NewServer(api.ServerConfig{
		Port:       cfg.Port(),
		Registry:   registry,
		Repository: repo,
		Catalog:    catalog,
		MusicDir:   cfg.MusicDir(),
		Exporter:   exporter,
		Prober:     media.FFProber{},
		MediaStore: mediaStore,
		MediaOptions: media.Options{
			Timeout:  cfg.MediaTimeout(),
			Attempts: cfg.MediaRetries(),
			Root:     cfg.MediaRoot(),
		},
		Renderer:       preview.NewRenderer(width, height),
		Hub:            hub,
		Player:         player,
		Tokens:         tokens,
		AllowedOrigins: cfg.AllowedOrigins(),
		Logger:         logger,
		StartTime:      startTime,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	quitCh := make(chan struct{})
	var quitOnce sync.Once
	quit := func() { quitOnce.Do(func() { close(quitCh) }) }

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			quit()
		case <-quitCh:
		}
	}()

	if cfg.Headless() {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray := ui.NewTray(ui.TrayConfig{
			Status: func(ctx context.Context) ui.Status {
				return ui.Status{
					Addr:     apiServer.Addr(),
					Sessions: registry.Len(),
					Playing:  player.Active(),
					Clients:  hub.Clients(ctx),
				}
			},
			PauseAll: player.PauseAll,
			Logger:   logger,
			OnOpen: func() error {
				return openFolder(cfg.DataDir())
			},
			OnQuit: quit,
		})
		go tray.Run()
	}

	<-quitCh

	logger.Info("initiating graceful shutdown")
	player.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}
	cancel()

	logger.Info("shutdown complete")
	return nil
}

// snapshotStore picks where session snapshots live. Export history always
// stays in SQLite.
func snapshotStore(cfg config.Config, repo *session.SQLiteRepository, logger *slog.Logger) (session.SnapshotStore, func(), error) {
	if cfg.SnapshotBackend() != config.BackendRedis {
		return repo, func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL())
	if err != nil {
		return nil, nil, fmt.Errorf("invalid redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("session snapshots stored in redis", "addr", opts.Addr, "ttl", cfg.SnapshotTTL().String())
	return session.NewRedisStore(rdb, cfg.SnapshotTTL()), func() { _ = rdb.Close() }, nil
}

// ensureSetting returns configured when set, otherwise the persisted value,
// generating and storing one on first run.
func ensureSetting(repo session.Repository, key, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, key)
	if err == nil && existing != "" {
		return existing, nil
	}

	value, err := auth.GenerateSecret()
	if err != nil {
		return "", err
	}
	if err := repo.SetConfig(ctx, key, value); err != nil {
		return "", err
	}
	return value, nil
}

func openFolder(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("explorer", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	return cmd.Start()
}
