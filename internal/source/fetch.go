// Package source loads raw template text from a URL or a local file.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	DefaultTimeout  = 30 * time.Second
	DefaultMaxBytes = 10 << 20
)

// ErrTooLarge is returned when a template is bigger than the configured cap.
var ErrTooLarge = errors.New("template exceeds size limit")

// IsURL reports whether s is an http(s) URL rather than a file path.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Fetcher reads templates from http(s) URLs or the local filesystem.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewFetcher creates a fetcher. Non-positive arguments select the defaults.
func NewFetcher(timeout time.Duration, maxBytes int64) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

// Fetch returns the template text at src.
func (f *Fetcher) Fetch(ctx context.Context, src string) (string, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", errors.New("empty template source")
	}
	if IsURL(src) {
		return f.fetchURL(ctx, src)
	}
	return f.readFile(src)
}

func (f *Fetcher) fetchURL(ctx context.Context, u string) (string, error) {
	slog.Info("source: fetching template", "url", u)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("fetch template: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch template: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch template: HTTP %d from %s", resp.StatusCode, u)
	}
	body, err := f.readCapped(resp.Body)
	if err != nil {
		return "", fmt.Errorf("fetch template: %w", err)
	}
	slog.Info("source: fetched template", "url", u, "bytes", len(body))
	return body, nil
}

func (f *Fetcher) readFile(path string) (string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("read template: %w", err)
	}
	defer fh.Close()
	body, err := f.readCapped(fh)
	if err != nil {
		return "", fmt.Errorf("read template %s: %w", path, err)
	}
	return body, nil
}

func (f *Fetcher) readCapped(r io.Reader) (string, error) {
	b, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(b)) > f.maxBytes {
		return "", fmt.Errorf("%w (%d bytes)", ErrTooLarge, f.maxBytes)
	}
	return string(b), nil
}
