// Package media preloads the images and audio referenced by timeline clips
// so previews and exports never wait on the network.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/reelcut/reelcut/internal/editor"
	"github.com/reelcut/reelcut/internal/logging"
	"github.com/reelcut/reelcut/internal/storage"
)

const (
	DefaultTimeout     = 10 * time.Second
	DefaultAttempts    = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultConcurrency = 4

	maxAssetBytes = 64 << 20

	placeholderWidth  = 320
	placeholderHeight = 180
)

// ObjectStore opens assets addressed by s3:// paths.
type ObjectStore interface {
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, int64, error)
}

type Options struct {
	Timeout     time.Duration
	Attempts    int
	RetryDelay  time.Duration
	Concurrency int
	// Root resolves relative local paths.
	Root string
}

// Loader fetches clip assets with a per-attempt timeout and fixed-delay
// retry. A failed asset is replaced by a placeholder and never fails the
// batch.
type Loader struct {
	http   *http.Client
	store  ObjectStore
	cache  *Cache
	opts   Options
	logger *slog.Logger
}

func NewLoader(cache *Cache, store ObjectStore, opts Options, logger *slog.Logger) *Loader {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Attempts <= 0 {
		opts.Attempts = DefaultAttempts
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = 0
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if cache == nil {
		cache = NewCache()
	}
	return &Loader{
		http:   &http.Client{},
		store:  store,
		cache:  cache,
		opts:   opts,
		logger: logger,
	}
}

func (l *Loader) Cache() *Cache {
	return l.cache
}

// Report summarizes one preload run.
type Report struct {
	Total  int   `json:"total"`
	Loaded int   `json:"loaded"`
	Failed int   `json:"failed"`
	Bytes  int64 `json:"bytes"`
}

// Progress is delivered after each asset settles.
type Progress struct {
	Done  int
	Total int
	Asset *Asset
	Err   error
}

type job struct {
	path   string
	kind   Kind
	clipID string
}

var errOutsideRoot = errors.New("path escapes media root")

func collectJobs(clips []editor.Clip) []job {
	seen := make(map[string]bool)
	var jobs []job
	add := func(path string, kind Kind, clipID string) {
		if path == "" || seen[path] {
			return
		}
		seen[path] = true
		jobs = append(jobs, job{path: path, kind: kind, clipID: clipID})
	}
	for _, c := range clips {
		add(c.ImagePath, KindImage, c.ID)
		add(c.AudioPath, KindAudio, c.ID)
	}
	return jobs
}

// Preload loads every distinct image and audio path referenced by clips.
// progress may be nil and is called serially.
func (l *Loader) Preload(ctx context.Context, clips []editor.Clip, progress func(Progress)) Report {
	jobs := collectJobs(clips)
	report := Report{Total: len(jobs)}
	if len(jobs) == 0 {
		return report
	}

	start := time.Now()
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Concurrency)

	for _, j := range jobs {
		g.Go(func() error {
			asset, err := l.loadWithRetry(gctx, j)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				logging.WithClipID(l.logger, j.clipID).Warn("asset load failed, using placeholder",
					"path", logging.SanitizeSource(j.path), "kind", string(j.kind), "error", err)
			} else {
				report.Loaded++
				report.Bytes += asset.Size
			}
			l.cache.Put(asset)
			if progress != nil {
				progress(Progress{Done: report.Loaded + report.Failed, Total: report.Total, Asset: asset, Err: err})
			}
			return nil
		})
	}
	_ = g.Wait()

	l.logger.Info("media preload complete",
		"total", report.Total,
		"loaded", report.Loaded,
		"failed", report.Failed,
		"bytes", humanize.Bytes(uint64(report.Bytes)),
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)
	return report
}

// Load fetches one asset, bypassing the cache.
func (l *Loader) Load(ctx context.Context, path string, kind Kind) (*Asset, error) {
	return l.loadWithRetry(ctx, job{path: path, kind: kind})
}

func (l *Loader) loadWithRetry(ctx context.Context, j job) (*Asset, error) {
	var lastErr error
	for attempt := 1; attempt <= l.opts.Attempts; attempt++ {
		asset, err := l.loadOnce(ctx, j)
		if err == nil {
			return asset, nil
		}
		lastErr = err
		l.logger.Debug("asset load attempt failed",
			"path", logging.SanitizeSource(j.path), "attempt", attempt, "error", err)

		if attempt < l.opts.Attempts {
			select {
			case <-time.After(l.opts.RetryDelay):
			case <-ctx.Done():
				return placeholder(j), ctx.Err()
			}
		}
	}
	return placeholder(j), lastErr
}

func (l *Loader) loadOnce(ctx context.Context, j job) (*Asset, error) {
	ctx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
	defer cancel()

	data, err := l.fetch(ctx, j.path)
	if err != nil {
		return nil, err
	}

	asset := &Asset{Path: j.path, Kind: j.kind, Size: int64(len(data))}
	switch j.kind {
	case KindImage:
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode image %s: %w", j.path, err)
		}
		asset.Image = img
	case KindAudio:
		if len(data) == 0 {
			return nil, fmt.Errorf("empty audio %s", j.path)
		}
		asset.Audio = data
	}
	return asset, nil
}

func (l *Loader) fetch(ctx context.Context, path string) ([]byte, error) {
	switch {
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		return l.fetchHTTP(ctx, path)
	case strings.HasPrefix(path, storage.Scheme+"://"):
		return l.fetchObject(ctx, path)
	default:
		return l.fetchLocal(path)
	}
}

func (l *Loader) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := l.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", logging.SanitizeSource(url), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("get %s: status %d", logging.SanitizeSource(url), resp.StatusCode)
	}
	return readLimited(resp.Body)
}

func (l *Loader) fetchObject(ctx context.Context, uri string) ([]byte, error) {
	if l.store == nil {
		return nil, storage.ErrNotConfigured
	}
	bucket, key, err := storage.ParseURI(uri)
	if err != nil {
		return nil, err
	}
	rc, _, err := l.store.Open(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return readLimited(rc)
}

// fetchLocal reads a file from disk. With a Root configured, relative paths
// resolve against it and any path that lands outside it is refused.
func (l *Loader) fetchLocal(path string) ([]byte, error) {
	full := filepath.FromSlash(strings.TrimPrefix(path, "file://"))
	if l.opts.Root != "" {
		var err error
		if full, err = confine(l.opts.Root, full); err != nil {
			return nil, err
		}
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return readLimited(f)
}

func confine(root, path string) (string, error) {
	root = filepath.Clean(root)
	full := filepath.Clean(path)
	if !filepath.IsAbs(full) {
		full = filepath.Join(root, full)
	}
	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", errOutsideRoot, logging.SanitizeSource(path))
	}
	return full, nil
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxAssetBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxAssetBytes {
		return nil, fmt.Errorf("asset exceeds %s", humanize.Bytes(maxAssetBytes))
	}
	return data, nil
}

func placeholder(j job) *Asset {
	a := &Asset{Path: j.path, Kind: j.kind, Placeholder: true}
	if j.kind == KindImage {
		a.Image = PlaceholderImage(placeholderWidth, placeholderHeight)
	}
	return a
}
