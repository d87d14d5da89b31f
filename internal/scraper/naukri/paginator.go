package naukri

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobharvest/internal/config"
	"jobharvest/internal/logging"
	"jobharvest/internal/logging/types"
	"jobharvest/internal/scraper/session"
	"jobharvest/internal/storage"
	"jobharvest/pkg/models"
)

// Paginator drives one run across listing pages: load, clear challenges,
// extract, hand records to the controller, and decide whether and where
// to continue.
type Paginator struct {
	cfg        *config.Config
	sess       session.PageSession
	controller *Controller
	store      storage.Store
	state      *RunState
	quota      int
	logger     types.Logger

	// queued guards against pagination loops: a url|page pair is visited
	// at most once per run.
	queued map[string]struct{}
}

// NewPaginator wires the state machine for one run.
func NewPaginator(cfg *config.Config, sess session.PageSession, controller *Controller, store storage.Store, state *RunState, quota int) *Paginator {
	return &Paginator{
		cfg:        cfg,
		sess:       sess,
		controller: controller,
		store:      store,
		state:      state,
		quota:      quota,
		logger:     logging.GetGlobalLogger(),
		queued:     make(map[string]struct{}),
	}
}

// pageCeiling bounds the run's page count: quota-driven runs stop at the
// page count the quota could possibly need, unbounded runs at the
// configured maximum.
func (p *Paginator) pageCeiling() int {
	if p.quota == 0 {
		return p.cfg.Scraper.MaxPages
	}
	pageSize := p.cfg.Scraper.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	return (p.quota + pageSize - 1) / pageSize
}

// Run walks listing pages starting at startURL until the quota is met,
// the ceiling is reached, a page yields nothing, or loading fails.
func (p *Paginator) Run(ctx context.Context, runID, startURL string) error {
	pageCtx := ParsePageContext(startURL)
	url := startURL
	page := pageCtx.Page
	ceiling := p.pageCeiling()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		key := fmt.Sprintf("%s|%d", url, page)
		if _, dup := p.queued[key]; dup {
			p.logger.Warn("Pagination revisited a page, stopping", map[string]interface{}{
				"run_id": runID,
				"url":    url,
				"page":   page,
			})
			return nil
		}
		p.queued[key] = struct{}{}

		doc, ok := p.loadPage(ctx, runID, url, page)
		if !ok {
			return nil
		}
		p.state.IncPages()

		records, method := p.extract(doc)
		if len(records) == 0 {
			p.logger.Warn("Page yielded no records", map[string]interface{}{
				"run_id": runID,
				"url":    url,
				"page":   page,
			})
			p.dumpDebugHTML(ctx, runID, page, doc)
			return nil
		}
		p.state.SetMethod(method)

		saved, err := p.controller.Process(ctx, runID, records)
		if err != nil {
			return fmt.Errorf("failed to persist page %d: %w", page, err)
		}
		p.logger.Info("Processed listing page", map[string]interface{}{
			"run_id":    runID,
			"page":      page,
			"extracted": len(records),
			"saved":     saved,
			"method":    method,
		})

		if p.quota > 0 && p.state.Saved() >= p.quota {
			return nil
		}
		// A page whose records were all duplicates or over-quota means
		// the listing has gone stale; continuing would only repeat it.
		if saved == 0 {
			return nil
		}

		next := page + 1
		if next > ceiling {
			p.logger.Info("Page ceiling reached", map[string]interface{}{
				"run_id":  runID,
				"ceiling": ceiling,
			})
			return nil
		}

		url = p.nextPageURL(doc, url, page, next)
		page = next
	}
}

// loadPage navigates with a two-attempt ladder (parse-only, then full
// load) and clears interstitial challenges before returning the parsed
// document.
func (p *Paginator) loadPage(ctx context.Context, runID, url string, page int) (*goquery.Document, bool) {
	var navErr error
	loaded := false
	for attempt := 1; attempt <= 2; attempt++ {
		fullLoad := attempt > 1
		if navErr = p.sess.Navigate(ctx, url, fullLoad, p.cfg.Scraper.RequestTimeout); navErr == nil {
			loaded = true
			break
		}
		p.logger.Warn("Page navigation failed", map[string]interface{}{
			"run_id":  runID,
			"url":     url,
			"attempt": attempt,
			"error":   navErr.Error(),
		})
	}
	if !loaded {
		p.logger.Error("Abandoning run, page would not load", map[string]interface{}{
			"run_id": runID,
			"url":    url,
			"page":   page,
		})
		return nil, false
	}

	if !p.clearChallenge(ctx, runID, url) {
		return nil, false
	}

	html, err := p.sess.HTML()
	if err != nil {
		p.logger.Error("Failed to read page HTML", map[string]interface{}{
			"run_id": runID,
			"url":    url,
			"error":  err.Error(),
		})
		return nil, false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		p.logger.Error("Failed to parse page HTML", map[string]interface{}{
			"run_id": runID,
			"url":    url,
			"error":  err.Error(),
		})
		return nil, false
	}
	return doc, true
}

// clearChallenge detects interstitial pages by title and early body text
// and retries through a fixed ladder: wait, poke the widget, wait,
// re-check. Gives up after the configured attempts.
func (p *Paginator) clearChallenge(ctx context.Context, runID, url string) bool {
	for attempt := 1; attempt <= p.cfg.Scraper.ChallengeAttempts; attempt++ {
		challenged, err := p.pageIsChallenged()
		if err != nil {
			return false
		}
		if !challenged {
			return true
		}

		p.logger.Warn("Challenge page detected", map[string]interface{}{
			"run_id":  runID,
			"url":     url,
			"attempt": attempt,
		})

		select {
		case <-ctx.Done():
			return false
		case <-time.After(p.cfg.Scraper.ChallengeBackoff):
		}

		if err := p.sess.DismissChallenge(ctx); err != nil {
			p.logger.Debug("Challenge interaction failed", map[string]interface{}{
				"error": err.Error(),
			})
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(p.cfg.Scraper.ChallengeBackoff / 2):
		}
	}

	p.logger.Error("Challenge did not clear, abandoning page", map[string]interface{}{
		"run_id": runID,
		"url":    url,
	})
	return false
}

func (p *Paginator) pageIsChallenged() (bool, error) {
	title, err := p.sess.Title()
	if err != nil {
		return false, err
	}
	if matchesAny(title, challengeSignatures) {
		return true, nil
	}

	html, err := p.sess.HTML()
	if err != nil {
		return false, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false, err
	}
	bodyText := cleanText(doc.Find("body").Text())
	if len(bodyText) > 500 {
		bodyText = bodyText[:500]
	}
	return matchesAny(bodyText, challengeSignatures), nil
}

// extract runs the markup extractor first and falls back to structured
// data only when the markup pass produces nothing.
func (p *Paginator) extract(doc *goquery.Document) ([]models.JobRecord, string) {
	if records := ExtractMarkup(doc, p.cfg.Scraper.BaseURL); len(records) > 0 {
		return records, "markup"
	}
	if records := ExtractStructured(doc, p.cfg.Scraper.BaseURL); len(records) > 0 {
		return records, "structured"
	}
	return nil, ""
}

// dumpDebugHTML snapshots a zero-extraction page for offline diagnosis.
// Best effort: failures are logged and swallowed.
func (p *Paginator) dumpDebugHTML(ctx context.Context, runID string, page int, doc *goquery.Document) {
	html, err := doc.Html()
	if err != nil {
		return
	}
	if err := p.store.SaveDebugHTML(ctx, runID, page, html); err != nil {
		p.logger.Warn("Failed to save debug snapshot", map[string]interface{}{
			"run_id": runID,
			"page":   page,
			"error":  err.Error(),
		})
	}
}

// nextPageURL prefers the page's own next link and falls back to
// rewriting the current URL's page number.
func (p *Paginator) nextPageURL(doc *goquery.Document, current string, currentPage, next int) string {
	if href := firstAttr(doc.Selection, nextLinkSelectors, "href"); href != "" {
		return resolveURL(p.cfg.Scraper.BaseURL, href)
	}
	return RewritePageURL(current, currentPage, next)
}
