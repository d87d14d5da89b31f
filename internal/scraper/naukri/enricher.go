package naukri

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"jobharvest/internal/config"
	"jobharvest/internal/logging"
	"jobharvest/internal/logging/types"
	"jobharvest/internal/scraper/session"
	"jobharvest/pkg/models"
)

// Statuses that mean the fetch was refused by an anti-bot layer rather
// than answered with content.
var blockedStatuses = map[int]bool{403: true, 503: true, 429: true}

const minDescriptionTextLen = 80

// Enricher fetches a listing's detail page and recovers the full
// description plus secondary fields. The fast path is a plain HTTP
// request riding the browser session's cookies; when that yields nothing
// usable the page is re-rendered through the session itself.
type Enricher struct {
	cfg     *config.Config
	client  *resty.Client
	session session.PageSession
	logger  types.Logger
}

// NewEnricher builds the enricher. session may be nil, in which case the
// browser re-render fallback is skipped.
func NewEnricher(cfg *config.Config, sess session.PageSession) *Enricher {
	client := resty.New().
		SetTimeout(cfg.Scraper.DetailTimeout).
		SetRetryCount(0)

	return &Enricher{
		cfg:     cfg,
		client:  client,
		session: sess,
		logger:  logging.GetGlobalLogger(),
	}
}

// Enrich fetches and classifies the record's detail page. Blocked and
// NotFound outcomes are data: the caller keeps the listing-derived
// record either way.
func (e *Enricher) Enrich(ctx context.Context, rec *models.JobRecord) models.DetailResult {
	if rec.URL == "" {
		return models.DetailResult{Outcome: models.DetailEmpty}
	}

	body, blocked, notFound := e.fetchFast(ctx, rec.URL)
	if blocked {
		return models.DetailResult{Outcome: models.DetailBlocked}
	}
	if notFound {
		return models.DetailResult{Outcome: models.DetailNotFound}
	}

	result := e.extractDetail(body)

	// The fast path often gets a skeleton page; a full browser render is
	// the last resort before giving up on the description.
	if result.DescriptionHTML == "" && e.session != nil {
		if rendered := e.renderWithSession(ctx, rec.URL); rendered != "" {
			if r := e.extractDetail(rendered); r.DescriptionHTML != "" {
				result = r
			}
		}
	}

	if result.DescriptionHTML == "" {
		return models.DetailResult{Outcome: models.DetailEmpty}
	}
	result.Outcome = models.DetailOK
	return result
}

// fetchFast issues the plain HTTP request and classifies the response.
func (e *Enricher) fetchFast(ctx context.Context, url string) (body string, blocked, notFound bool) {
	req := e.client.R().
		SetContext(ctx).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.9").
		SetHeader("Referer", e.cfg.Scraper.BaseURL+"/").
		SetHeader("Sec-Fetch-Dest", "document").
		SetHeader("Sec-Fetch-Mode", "navigate").
		SetHeader("Upgrade-Insecure-Requests", "1")

	if e.session != nil {
		if cookies := e.session.CookieHeader(); cookies != "" {
			req.SetHeader("Cookie", cookies)
		}
		if ua := e.session.UserAgent(); ua != "" {
			req.SetHeader("User-Agent", ua)
		}
	} else if e.cfg.Scraper.UserAgent != "" {
		req.SetHeader("User-Agent", e.cfg.Scraper.UserAgent)
	}

	resp, err := req.Get(url)
	if err != nil {
		e.logger.Debug("Detail fetch failed", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
		return "", false, false
	}

	status := resp.StatusCode()
	if blockedStatuses[status] {
		e.logger.Warn("Detail fetch blocked", map[string]interface{}{
			"url":    url,
			"status": status,
		})
		return "", true, false
	}

	body = string(resp.Body())

	// A challenge page is Blocked no matter what status it rode in on.
	if title := pageTitle(body); matchesAny(title, challengeSignatures) {
		return "", true, false
	}

	if status < 200 || status >= 300 {
		return "", false, true
	}
	if title := pageTitle(body); matchesAny(title, notFoundSignatures) {
		return "", false, true
	}

	return body, false, false
}

func (e *Enricher) renderWithSession(ctx context.Context, url string) string {
	if err := e.session.Navigate(ctx, url, true, e.cfg.Scraper.RequestTimeout); err != nil {
		e.logger.Debug("Detail page render failed", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
		return ""
	}
	html, err := e.session.HTML()
	if err != nil {
		return ""
	}
	if title := pageTitle(html); matchesAny(title, challengeSignatures) {
		return ""
	}
	return html
}

// extractDetail pulls the description and secondary fields out of a
// detail page document. The description comes from the primary container
// cascade first, then the page's structured data, then broader selectors.
func (e *Enricher) extractDetail(body string) models.DetailResult {
	var result models.DetailResult
	if body == "" {
		return result
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return result
	}

	html, text := ExtractCleanSection(doc, detailPrimarySelectors, minDescriptionTextLen)
	if html == "" {
		html, text = structuredDescription(doc)
	}
	if html == "" {
		html, text = ExtractCleanSection(doc, detailDescriptionSelectors, minDescriptionTextLen)
	}
	result.DescriptionHTML = html
	result.DescriptionText = text

	result.Experience = normalizeExperience(firstText(doc.Selection, detailExperienceSelectors))
	if result.Experience == models.NotSpecified {
		result.Experience = ""
	}
	result.Salary = firstText(doc.Selection, detailSalarySelectors)
	result.JobType = firstText(doc.Selection, detailJobTypeSelectors)
	result.Tags = detailTags(doc)

	return result
}

// structuredDescription mines the detail page's own JSON-LD for a
// description when the markup containers are missing.
func structuredDescription(doc *goquery.Document) (string, string) {
	var html, text string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return true
		}
		var payload interface{}
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return true
		}
		for _, posting := range flattenPostings(payload) {
			desc, _ := posting["description"].(string)
			if desc == "" {
				continue
			}
			var rec models.JobRecord
			applyDescription(&rec, desc)
			if rec.DescriptionText != "" && len(rec.DescriptionText) >= minDescriptionTextLen {
				html, text = rec.DescriptionHTML, rec.DescriptionText
				return false
			}
		}
		return true
	})
	return html, text
}

func detailTags(doc *goquery.Document) []string {
	var tags []string
	doc.Find(".styles_key-skill__GIPn_ a span, .key-skill a, .keySkills a").Each(func(_ int, s *goquery.Selection) {
		if text := cleanText(s.Text()); text != "" {
			tags = append(tags, text)
		}
	})
	return tags
}

// pageTitle reads the document title without a full goquery parse cost
// when the body is obviously empty.
func pageTitle(body string) string {
	if body == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
