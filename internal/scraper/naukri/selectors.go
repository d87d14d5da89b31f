package naukri

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selector cascades for the site's listing markup. Each logical field has
// an ordered list tried first-match-wins; the order encodes priority
// across the markup generations the site has shipped.

var cardSelectors = []string{
	"div.srp-jobtuple-wrapper",
	"article.jobTuple",
	"div.jobTuple.bgWhite",
}

// fallbackGroup pairs a container selector with the nested card probes
// tried inside it. Containers-of-cards take precedence over treating the
// container itself as one record.
type fallbackGroup struct {
	container string
	cards     []string
}

var fallbackGroups = []fallbackGroup{
	{container: "div.list", cards: []string{"article", "div.srp-jobtuple-wrapper", "div.jobTuple"}},
	{container: "div.styles_job-listing-container__OCfZC", cards: []string{"div.srp-jobtuple-wrapper", "article"}},
	{container: "section.listContainer", cards: []string{"article", "div[data-job-id]"}},
}

// detailURLMarker is the site's detail-page path convention; the anchor
// fallback scans for it when no card structure is recognized.
const detailURLMarker = "job-listings"

var titleSelectors = []string{
	"a.title",
	".title a",
	"a.jobTitle",
	"h2 a[href*='job-listings']",
	".title",
}

var companySelectors = []string{
	"a.comp-name",
	".comp-name",
	"a.subTitle",
	".companyInfo a",
	".comp-dtls a",
}

var locationSelectors = []string{
	".locWdth",
	".loc-wrap span",
	".loc span",
	".location span",
	".location",
}

var experienceSelectors = []string{
	".expwdth",
	".exp-wrap span",
	".exp span",
	".experience",
}

var salarySelectors = []string{
	".sal-wrap span",
	".sal span",
	".salary",
}

var snippetSelectors = []string{
	".job-desc",
	".job-description",
	".jobDescription",
}

var postedDateSelectors = []string{
	".job-post-day",
	".postedDate",
	".freshness",
	".type span",
}

var tagSelectors = []string{
	".tags-gt li",
	".tag-li",
	".chip",
}

// Detail-page cascades.

var detailPrimarySelectors = []string{
	"section.styles_job-desc-container__txpYf",
	"div.styles_JDC__dang-inner-html__h0K4t",
	"div.dang-inner-html",
}

var detailDescriptionSelectors = []string{
	"section.job-desc",
	"div.jd-desc",
	"div.job-description",
	"article.jd",
	"section[class*='job-desc']",
	"div[class*='jobDescription']",
	"main",
}

var detailExperienceSelectors = []string{
	"div.styles_jhc__exp__k_giM span",
	".exp-container span",
	".exp span",
}

var detailSalarySelectors = []string{
	"div.styles_jhc__salary__jdfEC span",
	".salary-container span",
	".salary span",
}

var detailJobTypeSelectors = []string{
	"div.styles_details__Y424J span[title*='time']",
	".employment-type span",
	".job-type",
}

var nextLinkSelectors = []string{
	"a.styles_btn-secondary__2AsIP[href]",
	"a[rel='next']",
	".pagination a.fright",
	".pagination a:last-child[href]",
}

// Signatures of interstitial/challenge pages, matched case-insensitively
// against titles and early body text.
var challengeSignatures = []string{
	"just a moment",
	"cloudflare",
	"security check",
	"checking your browser",
	"attention required",
}

var notFoundSignatures = []string{
	"page could not be found",
	"page not found",
	"404",
	"job you are looking for is no longer available",
	"this job has expired",
}

// Interstitial phrases that disqualify an extracted description section;
// their presence means the selector matched an error or challenge shell.
var interstitialPhrases = []string{
	"page could not be found",
	"checking your browser",
	"just a moment",
}

// Markers of framework bundle metadata leaking into a selector match;
// sections containing these are echoes of the page scaffold, not content.
var bundleMarkers = []string{
	"static.naukimg.com",
	"img1.naukimg.com",
	"__NEXT_DATA__",
	"webpack",
}

// firstText returns the first non-empty trimmed text produced by the
// ordered selector cascade.
func firstText(s *goquery.Selection, selectors []string) string {
	for _, selector := range selectors {
		if text := cleanText(s.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// firstAttr returns the first non-empty attribute value produced by the
// ordered selector cascade.
func firstAttr(s *goquery.Selection, selectors []string, attr string) string {
	for _, selector := range selectors {
		if val, ok := s.Find(selector).First().Attr(attr); ok {
			if val = strings.TrimSpace(val); val != "" {
				return val
			}
		}
	}
	return ""
}

func matchesAny(text string, signatures []string) bool {
	lower := strings.ToLower(text)
	for _, sig := range signatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}

func containsBundleMarker(html string) bool {
	return matchesAny(html, bundleMarkers)
}
