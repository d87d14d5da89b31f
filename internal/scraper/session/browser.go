package session

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"jobharvest/internal/config"
	"jobharvest/internal/logging"
	"jobharvest/internal/logging/types"
)

// BrowserSession drives a single stealth Chrome page for the lifetime of
// one run.
type BrowserSession struct {
	cfg      *config.Config
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	logger   types.Logger
}

// NewBrowserSession launches a browser and prepares a stealth page with
// the configured proxy, user agent and human-looking request headers.
func NewBrowserSession(cfg *config.Config) (*BrowserSession, error) {
	logger := logging.GetGlobalLogger()

	l := launcher.New().
		Headless(cfg.Scraper.HeadlessMode).
		NoSandbox(true).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-web-security").
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-gpu").
		Set("disable-dev-shm-usage")

	if chromePath := systemChromePath(); chromePath != "" {
		l = l.Bin(chromePath)
		logger.Info("Using system Chrome browser", map[string]interface{}{
			"chrome_path": chromePath,
		})
	} else {
		logger.Warn("System Chrome not found, Rod will download browser", map[string]interface{}{})
	}

	if cfg.Scraper.Proxy != "" {
		l = l.Proxy(cfg.Scraper.Proxy)
	}
	if cfg.Scraper.UserAgent != "" {
		l = l.Set("user-agent", cfg.Scraper.UserAgent)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := newStealthPage(browser, cfg, logger)
	if err != nil {
		browser.Close()
		l.Cleanup()
		return nil, err
	}

	return &BrowserSession{
		cfg:      cfg,
		launcher: l,
		browser:  browser,
		page:     page,
		logger:   logger,
	}, nil
}

func newStealthPage(browser *rod.Browser, cfg *config.Config, logger types.Logger) (*rod.Page, error) {
	page, err := stealth.Page(browser)
	if err != nil {
		return nil, fmt.Errorf("failed to create stealth page: %w", err)
	}

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             1920,
		Height:            1080,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		logger.Warn("Failed to set viewport", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if cfg.Scraper.UserAgent != "" {
		err = page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent: cfg.Scraper.UserAgent,
		})
		if err != nil {
			logger.Warn("Failed to set user agent", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	headers := map[string]string{
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.9",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "none",
		"Sec-Fetch-User":            "?1",
		"Upgrade-Insecure-Requests": "1",
	}
	for name, value := range headers {
		if _, err := page.SetExtraHeaders([]string{name, value}); err != nil {
			logger.Debug("Failed to set header", map[string]interface{}{
				"error":  err.Error(),
				"header": name,
			})
		}
	}

	return page, nil
}

// Navigate loads the URL. Parse-only navigation returns as soon as the
// DOM settles; full-load navigation waits for the load event, which the
// site's lazily rendered listings require.
func (s *BrowserSession) Navigate(ctx context.Context, url string, waitFullLoad bool, timeout time.Duration) error {
	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := rod.Try(func() {
		page := s.page.Context(navCtx)
		page.MustNavigate(url)
		if waitFullLoad {
			page.MustWaitLoad()
		} else {
			page.MustWaitDOMStable()
		}
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	s.logger.Debug("Successfully navigated to URL", map[string]interface{}{
		"url":       url,
		"full_load": waitFullLoad,
	})
	return nil
}

// HTML returns the current document's serialized markup.
func (s *BrowserSession) HTML() (string, error) {
	html, err := s.page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get page HTML: %w", err)
	}
	return html, nil
}

// Title returns the current document title.
func (s *BrowserSession) Title() (string, error) {
	info, err := s.page.Info()
	if err != nil {
		return "", fmt.Errorf("failed to get page info: %w", err)
	}
	return info.Title, nil
}

// CookieHeader serializes the page's cookies so plain HTTP requests can
// ride on the browser's anti-bot clearance.
func (s *BrowserSession) CookieHeader() string {
	cookies, err := s.page.Cookies(nil)
	if err != nil || len(cookies) == 0 {
		return ""
	}

	pairs := make([]string, 0, len(cookies))
	for _, c := range cookies {
		pairs = append(pairs, c.Name+"="+c.Value)
	}
	return strings.Join(pairs, "; ")
}

// UserAgent reports the user agent the page presents.
func (s *BrowserSession) UserAgent() string {
	if s.cfg.Scraper.UserAgent != "" {
		return s.cfg.Scraper.UserAgent
	}
	ua := ""
	_ = rod.Try(func() {
		ua = s.page.MustEval(`() => navigator.userAgent`).String()
	})
	return ua
}

// DismissChallenge tries to clear a verification widget by moving the
// mouse through the page and clicking into the challenge frame. Callers
// must re-check the page afterwards.
func (s *BrowserSession) DismissChallenge(ctx context.Context) error {
	return rod.Try(func() {
		page := s.page.Context(ctx)

		// Wander before interacting; instant clicks get flagged.
		page.Mouse.MustMoveTo(240, 180)
		time.Sleep(350 * time.Millisecond)
		page.Mouse.MustMoveTo(620, 410)
		time.Sleep(250 * time.Millisecond)

		frame, err := page.Timeout(3 * time.Second).Element(`iframe[src*="challenges.cloudflare.com"]`)
		if err != nil || frame == nil {
			return
		}
		shape, err := frame.Shape()
		if err != nil || len(shape.Quads) == 0 {
			return
		}
		box := shape.Box()
		// The checkbox sits near the left edge of the widget.
		page.Mouse.MustMoveTo(box.X+28, box.Y+box.Height/2)
		time.Sleep(200 * time.Millisecond)
		page.Mouse.MustClick(proto.InputMouseButtonLeft)
	})
}

// Close shuts the page, browser and launcher down.
func (s *BrowserSession) Close() {
	if s.page != nil {
		_ = s.page.Close()
	}
	if s.browser != nil {
		_ = s.browser.Close()
	}
	if s.launcher != nil {
		s.launcher.Cleanup()
	}
}

// systemChromePath finds an installed Chrome/Chromium binary, honoring
// the CHROME_BIN override used in containers.
func systemChromePath() string {
	if chromeBin := os.Getenv("CHROME_BIN"); chromeBin != "" {
		if _, err := os.Stat(chromeBin); err == nil {
			return chromeBin
		}
	}

	candidates := []string{
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
