package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/folioview/folioview/pkg/logger"
	"github.com/folioview/folioview/pkg/metrics"
)

// ErrAssetNotFound is returned when neither the cache nor the origin has
// the requested path.
var ErrAssetNotFound = fmt.Errorf("asset not found")

// prefetchConcurrency bounds parallel origin fetches during warmup.
const prefetchConcurrency = 4

// manifest is the origin's asset listing.
type manifest struct {
	Version string   `json:"version"`
	Assets  []string `json:"assets"`
}

// cachedAsset is the stored form of one shell asset.
type cachedAsset struct {
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

// CacheBackend stores shell asset bodies by path.
type CacheBackend interface {
	Get(ctx context.Context, path string) (body []byte, contentType string, ok bool, err error)
	Put(ctx context.Context, path string, body []byte, contentType string) error
}

// Service serves the viewer shell cache-first so it stays usable when the
// origin is unreachable. Assets land in the cache either at startup via
// Prefetch or on first request.
type Service struct {
	origin       string
	manifestPath string
	cache        CacheBackend
	client       *http.Client
}

func NewService(origin, manifestPath string, cache CacheBackend) *Service {
	return &Service{
		origin:       strings.TrimRight(origin, "/"),
		manifestPath: manifestPath,
		cache:        cache,
		client:       &http.Client{Timeout: 10 * time.Second},
	}
}

func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}

func (s *Service) fetchOrigin(ctx context.Context, path string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.origin+path, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, "", ErrAssetNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("origin returned %d for %s", resp.StatusCode, path)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// Manifest fetches and parses the origin's asset manifest.
func (s *Service) Manifest(ctx context.Context) ([]string, error) {
	body, _, err := s.fetchOrigin(ctx, normalizePath(s.manifestPath))
	if err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}
	var m manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	paths := make([]string, 0, len(m.Assets))
	for _, a := range m.Assets {
		paths = append(paths, normalizePath(a))
	}
	return paths, nil
}

// Prefetch warms the cache with every manifest asset. Individual asset
// failures are logged and skipped so a flaky origin cannot block startup;
// only a missing manifest is an error.
func (s *Service) Prefetch(ctx context.Context) error {
	paths, err := s.Manifest(ctx)
	if err != nil {
		return err
	}
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(prefetchConcurrency)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			body, ctype, err := s.fetchOrigin(gCtx, path)
			if err != nil {
				logger.Warnf("asset prefetch %s: %v", path, err)
				return nil
			}
			if err := s.cache.Put(gCtx, path, body, ctype); err != nil {
				logger.Warnf("asset cache put %s: %v", path, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Infof("asset cache warmed with %d entries", len(paths))
	return nil
}

// Serve returns the asset at path, cache first. On a miss it falls back
// to the origin and refills the cache with the response.
func (s *Service) Serve(ctx context.Context, path string) ([]byte, string, error) {
	path = normalizePath(path)

	body, ctype, ok, err := s.cache.Get(ctx, path)
	if err != nil {
		logger.Warnf("asset cache read %s: %v", path, err)
	}
	if ok {
		metrics.AssetCacheHits.Inc()
		return body, ctype, nil
	}
	metrics.AssetCacheMisses.Inc()

	body, ctype, err = s.fetchOrigin(ctx, path)
	if err != nil {
		return nil, "", err
	}
	if err := s.cache.Put(ctx, path, body, ctype); err != nil {
		logger.Warnf("asset cache put %s: %v", path, err)
	}
	return body, ctype, nil
}

// MemoryCache is the in-process CacheBackend.
type MemoryCache struct {
	mu     sync.RWMutex
	assets map[string]cachedAsset
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{assets: map[string]cachedAsset{}}
}

func (c *MemoryCache) Get(ctx context.Context, path string) ([]byte, string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.assets[path]
	if !ok {
		return nil, "", false, nil
	}
	return a.Body, a.ContentType, true, nil
}

func (c *MemoryCache) Put(ctx context.Context, path string, body []byte, contentType string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.assets[path] = cachedAsset{ContentType: contentType, Body: body}
	return nil
}
