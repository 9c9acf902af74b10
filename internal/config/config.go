// Package config provides configuration management for reelcut.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// Default values
	DefaultPort            = 8787
	DefaultLogLevel        = "info"
	DefaultDataDir         = ".reelcut"
	DefaultSnapshotBackend = BackendSQLite
	DefaultSnapshotTTL     = 24 * time.Hour
	DefaultMediaTimeout    = 10 * time.Second
	DefaultMediaRetries    = 3
	DefaultPreviewWidth    = 640
	DefaultPreviewHeight   = 360
	DefaultS3Region        = "us-east-1"

	BackendSQLite = "sqlite"
	BackendRedis  = "redis"

	// Environment variable names
	EnvPort            = "REELCUT_PORT"
	EnvLogLevel        = "REELCUT_LOG_LEVEL"
	EnvDataDir         = "REELCUT_DATA_DIR"
	EnvRenderBaseURL   = "REELCUT_RENDER_BASE_URL"
	EnvRenderToken     = "REELCUT_RENDER_TOKEN"
	EnvSnapshotBackend = "REELCUT_SNAPSHOT_BACKEND"
	EnvSnapshotTTL     = "REELCUT_SNAPSHOT_TTL"
	EnvRedisURL        = "REELCUT_REDIS_URL"
	EnvS3Endpoint      = "REELCUT_S3_ENDPOINT"
	EnvS3PublicURL     = "REELCUT_S3_PUBLIC_ENDPOINT"
	EnvS3Bucket        = "REELCUT_S3_BUCKET"
	EnvS3AccessKey     = "REELCUT_S3_ACCESS_KEY"
	EnvS3SecretKey     = "REELCUT_S3_SECRET_KEY"
	EnvS3Region        = "REELCUT_S3_REGION"
	EnvMusicCatalog    = "REELCUT_MUSIC_CATALOG"
	EnvMusicDir        = "REELCUT_MUSIC_DIR"
	EnvMediaRoot       = "REELCUT_MEDIA_ROOT"
	EnvMediaTimeout    = "REELCUT_MEDIA_TIMEOUT"
	EnvMediaRetries    = "REELCUT_MEDIA_RETRIES"
	EnvHeadless        = "REELCUT_HEADLESS"
	EnvJWTSecret       = "REELCUT_JWT_SECRET"
	EnvAPIKey          = "REELCUT_API_KEY"
	EnvPreviewWidth    = "REELCUT_PREVIEW_WIDTH"
	EnvPreviewHeight   = "REELCUT_PREVIEW_HEIGHT"
	EnvAllowedOrigins  = "REELCUT_ALLOWED_ORIGINS"

	// Database filename
	DBFilename = "reelcut.db"
)

// S3Config holds the object storage settings for s3:// assets.
type S3Config struct {
	Endpoint       string
	PublicEndpoint string
	Bucket         string
	AccessKey      string
	SecretKey      string
	Region         string
}

// Enabled reports whether a bucket is configured.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	RenderBaseURL() string
	RenderToken() string
	SnapshotBackend() string
	SnapshotTTL() time.Duration
	RedisURL() string
	S3() S3Config
	MusicCatalog() string
	MusicDir() string
	MediaRoot() string
	MediaTimeout() time.Duration
	MediaRetries() int
	Headless() bool
	JWTSecret() string
	APIKey() string
	PreviewSize() (width, height int)
	AllowedOrigins() []string
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port     int
	logLevel string
	dataDir  string

	renderBaseURL string
	renderToken   string

	snapshotBackend string
	snapshotTTL     time.Duration
	redisURL        string
	s3              S3Config

	musicCatalog string
	musicDir     string
	mediaRoot    string
	mediaTimeout time.Duration
	mediaRetries int

	headless       bool
	jwtSecret      string
	apiKey         string
	previewWidth   int
	previewHeight  int
	allowedOrigins []string
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:            DefaultPort,
		logLevel:        DefaultLogLevel,
		dataDir:         defaultDataDir(),
		snapshotBackend: DefaultSnapshotBackend,
		snapshotTTL:     DefaultSnapshotTTL,
		mediaTimeout:    DefaultMediaTimeout,
		mediaRetries:    DefaultMediaRetries,
		previewWidth:    DefaultPreviewWidth,
		previewHeight:   DefaultPreviewHeight,
		s3:              S3Config{Region: DefaultS3Region},
	}

	var err error
	if cfg.port, err = intEnv(EnvPort, cfg.port, 1, 65535); err != nil {
		return nil, err
	}
	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	cfg.renderBaseURL = strings.TrimRight(os.Getenv(EnvRenderBaseURL), "/")
	cfg.renderToken = os.Getenv(EnvRenderToken)

	if b := strings.ToLower(os.Getenv(EnvSnapshotBackend)); b != "" {
		if b != BackendSQLite && b != BackendRedis {
			return nil, fmt.Errorf("invalid %s: must be %q or %q", EnvSnapshotBackend, BackendSQLite, BackendRedis)
		}
		cfg.snapshotBackend = b
	}
	if cfg.snapshotTTL, err = durationEnv(EnvSnapshotTTL, cfg.snapshotTTL); err != nil {
		return nil, err
	}
	cfg.redisURL = os.Getenv(EnvRedisURL)
	if cfg.snapshotBackend == BackendRedis && cfg.redisURL == "" {
		return nil, fmt.Errorf("%s is required when %s=%s", EnvRedisURL, EnvSnapshotBackend, BackendRedis)
	}

	cfg.s3.Endpoint = os.Getenv(EnvS3Endpoint)
	cfg.s3.PublicEndpoint = os.Getenv(EnvS3PublicURL)
	cfg.s3.Bucket = os.Getenv(EnvS3Bucket)
	cfg.s3.AccessKey = os.Getenv(EnvS3AccessKey)
	cfg.s3.SecretKey = os.Getenv(EnvS3SecretKey)
	if r := os.Getenv(EnvS3Region); r != "" {
		cfg.s3.Region = r
	}

	cfg.musicCatalog = os.Getenv(EnvMusicCatalog)
	cfg.musicDir = os.Getenv(EnvMusicDir)
	cfg.mediaRoot = os.Getenv(EnvMediaRoot)
	if cfg.mediaTimeout, err = durationEnv(EnvMediaTimeout, cfg.mediaTimeout); err != nil {
		return nil, err
	}
	if cfg.mediaRetries, err = intEnv(EnvMediaRetries, cfg.mediaRetries, 1, 10); err != nil {
		return nil, err
	}

	if cfg.headless, err = boolEnv(EnvHeadless, false); err != nil {
		return nil, err
	}
	cfg.jwtSecret = os.Getenv(EnvJWTSecret)
	cfg.apiKey = os.Getenv(EnvAPIKey)
	if cfg.previewWidth, err = intEnv(EnvPreviewWidth, cfg.previewWidth, 16, 3840); err != nil {
		return nil, err
	}
	if cfg.previewHeight, err = intEnv(EnvPreviewHeight, cfg.previewHeight, 16, 2160); err != nil {
		return nil, err
	}
	for _, o := range strings.Split(os.Getenv(EnvAllowedOrigins), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.allowedOrigins = append(cfg.allowedOrigins, o)
		}
	}

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// RenderBaseURL is the base URL of the render service. Empty means the
// stub client is used.
func (c *EnvConfig) RenderBaseURL() string {
	return c.renderBaseURL
}

func (c *EnvConfig) RenderToken() string {
	return c.renderToken
}

func (c *EnvConfig) SnapshotBackend() string {
	return c.snapshotBackend
}

func (c *EnvConfig) SnapshotTTL() time.Duration {
	return c.snapshotTTL
}

func (c *EnvConfig) RedisURL() string {
	return c.redisURL
}

func (c *EnvConfig) S3() S3Config {
	return c.s3
}

// MusicCatalog is the path of the optional YAML track catalog.
func (c *EnvConfig) MusicCatalog() string {
	return c.musicCatalog
}

// MusicDir is the directory music track files are served from. Defaults to
// <data dir>/music.
func (c *EnvConfig) MusicDir() string {
	if c.musicDir != "" {
		return c.musicDir
	}
	return filepath.Join(c.dataDir, "music")
}

// MediaRoot resolves relative clip asset paths.
func (c *EnvConfig) MediaRoot() string {
	return c.mediaRoot
}

func (c *EnvConfig) MediaTimeout() time.Duration {
	return c.mediaTimeout
}

func (c *EnvConfig) MediaRetries() int {
	return c.mediaRetries
}

// Headless disables the system tray.
func (c *EnvConfig) Headless() bool {
	return c.headless
}

func (c *EnvConfig) JWTSecret() string {
	return c.jwtSecret
}

func (c *EnvConfig) APIKey() string {
	return c.apiKey
}

func (c *EnvConfig) PreviewSize() (int, int) {
	return c.previewWidth, c.previewHeight
}

// AllowedOrigins lists browser origins allowed on the websocket. Empty
// allows any origin.
func (c *EnvConfig) AllowedOrigins() []string {
	return c.allowedOrigins
}

func intEnv(name string, def, min, max int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if n < min || n > max {
		return 0, fmt.Errorf("invalid %s: must be between %d and %d", name, min, max)
	}
	return n, nil
}

// durationEnv accepts Go durations ("1m30s") or plain seconds.
func durationEnv(name string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("invalid %s: must be positive", name)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", name)
	}
	return d, nil
}

func boolEnv(name string, def bool) (bool, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", name, err)
	}
	return b, nil
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
