// Package assets downloads sticker source images and keeps a local byte
// cache keyed by asset id. A fresh download is written to the cache and read
// back before being returned, so callers see exactly the bytes a later
// cache hit would produce.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// cacheNamespace is the directory all cached assets live under; ClearCache
// wipes it wholesale.
const cacheNamespace = "sticker_cache"

// DefaultTimeout bounds a single image download
const DefaultTimeout = 30 * time.Second

// ErrFetch indicates an asset download failed (including timeouts)
var ErrFetch = errors.New("asset fetch failed")

// Retry is the cross-cutting retry policy applied uniformly to every
// acquisition. Attempts counts total tries, not extra ones.
type Retry struct {
	Attempts int
	Delay    time.Duration
}

// DefaultRetry allows one retry with a short fixed delay
var DefaultRetry = Retry{Attempts: 2, Delay: 500 * time.Millisecond}

// Fetcher downloads and caches sticker assets
type Fetcher struct {
	client   *http.Client
	cacheDir string // empty disables caching
	retry    Retry
	log      zerolog.Logger
}

// NewFetcher creates a fetcher. cacheDir may be empty to disable the local
// cache (every Acquire then goes to the network).
func NewFetcher(cacheDir string, timeout time.Duration, retry Retry, log zerolog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if retry.Attempts < 1 {
		retry.Attempts = 1
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		cacheDir: cacheDir,
		retry:    retry,
		log:      log,
	}
}

// Acquire returns the bytes of the asset at url. A cached copy is returned
// without touching the network; otherwise the asset is downloaded, written
// to the cache, and re-read from it.
func (f *Fetcher) Acquire(ctx context.Context, id string, url string) ([]byte, error) {
	path := f.cachePath(id)

	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			f.log.Debug().Str("id", id).Msg("asset cache hit")
			return data, nil
		}
	}

	data, err := f.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	if path == "" {
		return data, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		f.log.Warn().Err(err).Str("id", id).Msg("cache dir create failed, skipping cache")
		return data, nil
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		f.log.Warn().Err(err).Str("id", id).Msg("cache write failed, skipping cache")
		return data, nil
	}

	// Read back so the returned bytes are byte-identical to a later cache hit
	cached, err := os.ReadFile(path)
	if err != nil {
		return data, nil
	}
	return cached, nil
}

// fetch downloads url, applying the retry policy
func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= f.retry.Attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.retry.Delay):
			}
			f.log.Debug().Int("attempt", attempt).Str("url", url).Msg("retrying fetch")
		}

		data, err := f.fetchOnce(ctx, url)
		if err == nil {
			return data, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}

	return nil, lastErr
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d for %s", ErrFetch, resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	return data, nil
}

// ClearCache removes the entire cache namespace. Nothing is evicted
// automatically; this is the only cleanup path.
func (f *Fetcher) ClearCache() error {
	if f.cacheDir == "" {
		return nil
	}
	dir := filepath.Join(f.cacheDir, cacheNamespace)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// cachePath returns the on-disk location for an asset id, or "" when
// caching is disabled
func (f *Fetcher) cachePath(id string) string {
	if f.cacheDir == "" || id == "" {
		return ""
	}
	return filepath.Join(f.cacheDir, cacheNamespace, fmt.Sprintf("sticker_%s.webp", id))
}
