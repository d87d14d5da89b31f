package naukri

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobharvest/internal/logging"
	"jobharvest/pkg/models"
)

// ExtractMarkup walks the listing page's card markup and returns one
// record per recognizable job card. Card discovery degrades through
// three strategies: known card selectors, fallback container groups
// with nested-card probing, and finally climbing from detail-page
// anchors. URLs are deduplicated within the page; a record is kept when
// it has at least a title or a URL.
func ExtractMarkup(doc *goquery.Document, baseURL string) []models.JobRecord {
	cards := findCards(doc)
	if cards == nil {
		return nil
	}

	logger := logging.GetGlobalLogger()
	now := time.Now()
	seenURLs := make(map[string]struct{})
	var records []models.JobRecord

	cards.Each(func(i int, card *goquery.Selection) {
		rec, ok := extractCard(card, baseURL, now)
		if !ok {
			logger.Debug("skipping unusable job card", map[string]interface{}{"index": i})
			return
		}
		if rec.URL != "" {
			if _, dup := seenURLs[rec.URL]; dup {
				return
			}
			seenURLs[rec.URL] = struct{}{}
		}
		records = append(records, rec)
	})

	return records
}

// findCards tries the card discovery strategies in priority order and
// returns the first non-empty selection.
func findCards(doc *goquery.Document) *goquery.Selection {
	for _, selector := range cardSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			return sel
		}
	}

	for _, group := range fallbackGroups {
		containers := doc.Find(group.container)
		if containers.Length() == 0 {
			continue
		}
		for _, cardSel := range group.cards {
			if nested := containers.Find(cardSel); nested.Length() > 0 {
				return nested
			}
		}
		return containers
	}

	// Last resort: every detail-page anchor marks a card; climb to the
	// nearest block ancestor so field probes have context to work with.
	anchors := doc.Find("a[href*='" + detailURLMarker + "']")
	if anchors.Length() == 0 {
		return nil
	}
	if parents := anchors.Closest("article, li, div"); parents.Length() > 0 {
		return parents
	}
	// No block ancestor at all: the immediate parent still gives field
	// probes a node the anchor is a descendant of.
	return anchors.Parent()
}

func extractCard(card *goquery.Selection, baseURL string, now time.Time) (rec models.JobRecord, ok bool) {
	// A single malformed card must never abort the page.
	defer func() {
		if r := recover(); r != nil {
			logging.GetGlobalLogger().Warn("job card extraction panicked", map[string]interface{}{"panic": r})
			ok = false
		}
	}()

	rec = models.JobRecord{
		Title:      firstText(card, titleSelectors),
		Company:    firstText(card, companySelectors),
		Location:   firstText(card, locationSelectors),
		Experience: firstText(card, experienceSelectors),
		Salary:     firstText(card, salarySelectors),
		PostedDate: firstText(card, postedDateSelectors),
		ScrapedAt:  now,
	}

	rec.URL = cardURL(card, baseURL)
	rec.Tags = cardTags(card)

	if snippet := firstText(card, snippetSelectors); snippet != "" {
		rec.DescriptionText = snippet
	}

	NormalizeRecord(&rec)
	return rec, rec.Keep()
}

// cardURL resolves the card's detail link. Title anchors win; any
// detail-marker anchor inside the card is next; data attributes carrying
// the URL are the last resort.
func cardURL(card *goquery.Selection, baseURL string) string {
	if href := firstAttr(card, titleSelectors, "href"); href != "" {
		return resolveURL(baseURL, href)
	}

	if href, ok := card.Find("a[href*='" + detailURLMarker + "']").First().Attr("href"); ok {
		if href = strings.TrimSpace(href); href != "" {
			return resolveURL(baseURL, href)
		}
	}

	for _, attr := range []string{"data-href", "data-url", "data-jdurl"} {
		if val, ok := card.Attr(attr); ok {
			if val = strings.TrimSpace(val); val != "" {
				return resolveURL(baseURL, val)
			}
		}
	}

	return ""
}

func cardTags(card *goquery.Selection) []string {
	var tags []string
	for _, selector := range tagSelectors {
		card.Find(selector).Each(func(_ int, tag *goquery.Selection) {
			if text := cleanText(tag.Text()); text != "" {
				tags = append(tags, text)
			}
		})
		if len(tags) > 0 {
			return tags
		}
	}
	return nil
}
