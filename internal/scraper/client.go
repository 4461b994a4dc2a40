// Package scraper fetches and dissects Mediavida forum pages: one rate-limited
// HTTP session per crawl, goquery documents out, and the post/pagination
// extraction the rehydration pipeline is built on.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// Config holds the knobs shared by every scraping command.
type Config struct {
	UserAgent string
	// SleepSeconds is the politeness delay between page fetches.
	SleepSeconds float64
	// TimeoutSeconds bounds a single request, transport included.
	TimeoutSeconds int
}

// Client is a scraping session: a fixed User-Agent, a request timeout and a
// rate limiter pacing all fetches. It is owned by a single crawl and not safe
// for concurrent use.
type Client struct {
	http      *http.Client
	userAgent string
	limiter   *rate.Limiter
}

// NewClient builds a session from config. A zero or negative sleep disables
// pacing; a zero timeout falls back to 30s.
func NewClient(cfg Config) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	limit := rate.Inf
	if cfg.SleepSeconds > 0 {
		limit = rate.Limit(1.0 / cfg.SleepSeconds)
	}

	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: cfg.UserAgent,
		limiter:   rate.NewLimiter(limit, 1),
	}
}

// Get performs one rate-limited GET and parses the body into a goquery
// document. Any transport error or non-2xx status is returned to the caller;
// there is no retry.
func (c *Client) Get(ctx context.Context, url string) (*goquery.Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: HTTP %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return doc, nil
}
