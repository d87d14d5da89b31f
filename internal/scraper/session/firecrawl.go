package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mendableai/firecrawl-go"

	"jobharvest/internal/config"
	"jobharvest/internal/logging"
	"jobharvest/internal/logging/types"
)

// FirecrawlSession fetches pages through the remote rendering API. The
// service handles anti-bot measures on its side, so challenge dismissal
// is a no-op and no cookie jar exists to share.
type FirecrawlSession struct {
	cfg        *config.Config
	app        *firecrawl.FirecrawlApp
	logger     types.Logger
	maxRetries int

	lastHTML string
}

// NewFirecrawlSession builds a session against the configured API.
func NewFirecrawlSession(cfg *config.Config) (*FirecrawlSession, error) {
	if cfg.Firecrawl.APIKey == "" {
		return nil, fmt.Errorf("firecrawl API key is required")
	}

	app, err := firecrawl.NewFirecrawlApp(cfg.Firecrawl.APIKey, cfg.Firecrawl.APIURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firecrawl client: %w", err)
	}

	retries := cfg.Firecrawl.MaxRetries
	if retries <= 0 {
		retries = 1
	}

	return &FirecrawlSession{
		cfg:        cfg,
		app:        app,
		logger:     logging.GetGlobalLogger(),
		maxRetries: retries,
	}, nil
}

// Navigate scrapes the URL through the API with a small retry ladder and
// caches the returned HTML as the current document.
func (s *FirecrawlSession) Navigate(ctx context.Context, url string, waitFullLoad bool, timeout time.Duration) error {
	params := &firecrawl.ScrapeParams{
		Formats: []string{"html"},
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		doc, err := s.app.ScrapeURL(url, params)
		if err == nil && doc != nil && doc.HTML != "" {
			s.lastHTML = doc.HTML
			s.logger.Debug("Firecrawl scrape succeeded", map[string]interface{}{
				"url":     url,
				"attempt": attempt,
			})
			return nil
		}

		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("firecrawl returned empty HTML for %s", url)
		}
		s.logger.Warn("Firecrawl scrape attempt failed", map[string]interface{}{
			"url":     url,
			"attempt": attempt,
			"error":   lastErr.Error(),
		})

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 2 * time.Second):
		}
	}

	return fmt.Errorf("firecrawl scrape failed after %d attempts: %w", s.maxRetries, lastErr)
}

// HTML returns the last scraped document.
func (s *FirecrawlSession) HTML() (string, error) {
	if s.lastHTML == "" {
		return "", fmt.Errorf("no page loaded")
	}
	return s.lastHTML, nil
}

// Title parses the cached document's title element.
func (s *FirecrawlSession) Title() (string, error) {
	if s.lastHTML == "" {
		return "", fmt.Errorf("no page loaded")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s.lastHTML))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(doc.Find("title").First().Text()), nil
}

// CookieHeader is empty: the remote service owns the cookie jar.
func (s *FirecrawlSession) CookieHeader() string { return "" }

// UserAgent reports the configured agent for parity with direct fetches.
func (s *FirecrawlSession) UserAgent() string { return s.cfg.Scraper.UserAgent }

// DismissChallenge is a no-op; the rendering service resolves challenges
// before returning content.
func (s *FirecrawlSession) DismissChallenge(ctx context.Context) error { return nil }

// Close releases nothing; the API client is stateless.
func (s *FirecrawlSession) Close() {}
