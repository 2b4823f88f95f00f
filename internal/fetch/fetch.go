// Package fetch retrieves rendered page bodies through a splash render
// endpoint. The endpoint is treated as an opaque HTML renderer: it deals with
// JavaScript-heavy pages so patterns can be matched against the final markup.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

const (
	defaultRenderURL  = "http://splash:8050"
	defaultTimeout    = 10 * time.Second
	maxBodyBytes      = 8 << 20 // renderer output, not arbitrary downloads
	renderTimeoutSecs = 10
)

type Config struct {
	// RenderURL is the splash base URL (default http://splash:8050).
	RenderURL string
	// Timeout bounds each request end to end (default 10s).
	Timeout time.Duration
}

// Fetcher is a reusable HTTP client shared across all worker tasks.
// Compressed transfer decoding is handled by the transport; cookies persist
// across requests for the process lifetime.
type Fetcher struct {
	client    *http.Client
	renderURL string
}

func New(cfg Config) (*Fetcher, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.RenderURL), "/")
	if base == "" {
		base = defaultRenderURL
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid render url: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &Fetcher{
		client:    &http.Client{Timeout: timeout, Jar: jar},
		renderURL: base,
	}, nil
}

// Fetch GETs the rendered body of target via the render endpoint and returns
// it as text. Transport errors, timeouts and 5xx responses are ordinary
// errors: the caller retries on the next polling cycle, nothing here is
// permanent.
func (f *Fetcher) Fetch(ctx context.Context, target string) (string, error) {
	u := fmt.Sprintf("%s/render.html?url=%s&timeout=%d",
		f.renderURL, url.QueryEscape(target), renderTimeoutSecs)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("render endpoint returned %s for %s", resp.Status, target)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
