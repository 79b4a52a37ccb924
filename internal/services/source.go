package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"autosales-dashboard/internal/config"
)

const (
	cacheVersion = "v1"
	maxBodyBytes = 64 << 20
)

// Source locates and fetches the raw sales CSV, either from a local file or
// from a remote URL with an on-disk cache in front of it.
type Source struct {
	url      string
	file     string
	cacheDir string
	cacheTTL time.Duration
	client   *http.Client
	logger   *slog.Logger
}

func NewSource(cfg config.DatasetConfig, logger *slog.Logger) *Source {
	return &Source{
		url:      cfg.URL,
		file:     cfg.File,
		cacheDir: cfg.CacheDir,
		cacheTTL: cfg.CacheTTL,
		client:   &http.Client{Timeout: cfg.FetchTimeout},
		logger:   logger,
	}
}

// Origin describes where Fetch reads from, for logs and stats.
func (s *Source) Origin() string {
	if s.file != "" {
		return s.file
	}
	return s.url
}

// Fetch returns the CSV body. Remote bodies are served from the cache while
// the cached copy is younger than the TTL.
func (s *Source) Fetch(ctx context.Context) ([]byte, error) {
	if s.file != "" {
		data, err := os.ReadFile(s.file)
		if err != nil {
			return nil, fmt.Errorf("read dataset file: %w", err)
		}
		return data, nil
	}

	if data, ok := s.loadFromCache(); ok {
		s.logger.Info("dataset loaded from cache", "url", s.url, "bytes", len(data))
		return data, nil
	}

	data, err := s.download(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.saveToCache(data); err != nil {
		s.logger.Warn("failed to save dataset cache", "error", err)
	}

	return data, nil
}

func (s *Source) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, text/plain, */*")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("download dataset: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read dataset body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("download dataset: %w", ErrEmptyDataset)
	}

	s.logger.Info("dataset downloaded",
		"url", s.url,
		"bytes", len(data),
		"duration", time.Since(start),
	)
	return data, nil
}

// Cache management
func (s *Source) cacheFilename() string {
	sum := sha256.Sum256([]byte(s.url))
	base := strings.TrimSuffix(path.Base(s.url), path.Ext(s.url))
	base = strings.NewReplacer("%20", "_", " ", "_").Replace(base)
	return filepath.Join(s.cacheDir, fmt.Sprintf("%s_%s_%s.csv", base, hex.EncodeToString(sum[:6]), cacheVersion))
}

func (s *Source) loadFromCache() ([]byte, bool) {
	if s.cacheTTL <= 0 || s.cacheDir == "" {
		return nil, false
	}

	filename := s.cacheFilename()
	info, err := os.Stat(filename)
	if err != nil || time.Since(info.ModTime()) > s.cacheTTL {
		return nil, false
	}

	data, err := os.ReadFile(filename)
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

func (s *Source) saveToCache(data []byte) error {
	if s.cacheTTL <= 0 || s.cacheDir == "" {
		return nil
	}

	if err := os.MkdirAll(s.cacheDir, 0755); err != nil {
		return err
	}

	filename := s.cacheFilename()
	tmp := filename + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, filename)
}
