package naukri

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobharvest/internal/config"
	"jobharvest/pkg/models"
)

// fakeSession serves canned pages keyed by URL.
type fakeSession struct {
	pages        map[string]string
	current      string
	navigations  []string
	dismissCalls int
	// challengeHTML is served until dismissCalls reaches clearAfter.
	challengeHTML string
	clearAfter    int
}

func (f *fakeSession) Navigate(_ context.Context, url string, _ bool, _ time.Duration) error {
	f.navigations = append(f.navigations, url)
	html, ok := f.pages[url]
	if !ok {
		return fmt.Errorf("no route for %s", url)
	}
	if f.challengeHTML != "" && f.dismissCalls < f.clearAfter {
		f.current = f.challengeHTML
		return nil
	}
	f.current = html
	return nil
}

func (f *fakeSession) HTML() (string, error) { return f.current, nil }

func (f *fakeSession) Title() (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(f.current))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(doc.Find("title").First().Text()), nil
}

func (f *fakeSession) CookieHeader() string { return "" }
func (f *fakeSession) UserAgent() string    { return "test-agent" }

func (f *fakeSession) DismissChallenge(context.Context) error {
	f.dismissCalls++
	if f.dismissCalls >= f.clearAfter {
		// Challenge cleared: the real page is visible now.
		if html, ok := f.pages[f.navigations[len(f.navigations)-1]]; ok {
			f.current = html
		}
	}
	return nil
}

func (f *fakeSession) Close() {}

const challengePage = `<html><head><title>Just a moment...</title></head><body>Checking your browser</body></html>`

func listingPageWithNext(nextHref string, firstID, count int) string {
	var sb strings.Builder
	sb.WriteString("<html><head><title>Jobs</title></head><body>")
	for i := 0; i < count; i++ {
		sb.WriteString(cardHTML(firstID + i))
	}
	if nextHref != "" {
		sb.WriteString(`<a rel="next" href="` + nextHref + `">Next</a>`)
	}
	sb.WriteString("</body></html>")
	return sb.String()
}

func paginatorConfig() *config.Config {
	cfg, _ := config.LoadConfig("")
	cfg.Scraper.ChallengeBackoff = time.Millisecond
	return cfg
}

func newTestPaginator(cfg *config.Config, sess *fakeSession, store *memStore, quota int) (*Paginator, *RunState) {
	state := NewRunState()
	controller := NewController(state, nil, store, nil, quota, 2)
	return NewPaginator(cfg, sess, controller, store, state, quota), state
}

func TestPaginatorWalksPagesViaNextLink(t *testing.T) {
	cfg := paginatorConfig()
	start := "https://www.naukri.com/golang-jobs"
	sess := &fakeSession{pages: map[string]string{
		start:                                 listingPageWithNext("/golang-jobs-2", 0, 20),
		"https://www.naukri.com/golang-jobs-2": listingPageWithNext("", 100, 5),
	}}
	store := newMemStore()
	p, state := newTestPaginator(cfg, sess, store, 0)

	err := p.Run(context.Background(), "run1", start)
	require.NoError(t, err)

	// Page 3 was attempted (twice, per the navigation ladder) and failed,
	// which ends the run without an error.
	assert.Equal(t, 2, state.Pages())
	assert.Equal(t, 25, state.Saved())
	assert.Len(t, store.records["run1"], 25)
	assert.Equal(t, "markup", state.Stats("r", "", "").ExtractionMethod)
}

func TestPaginatorQuotaStopsRun(t *testing.T) {
	cfg := paginatorConfig()
	start := "https://www.naukri.com/golang-jobs"
	sess := &fakeSession{pages: map[string]string{
		start:                                 listingPageWithNext("/golang-jobs-2", 0, 20),
		"https://www.naukri.com/golang-jobs-2": listingPageWithNext("/golang-jobs-3", 100, 20),
		"https://www.naukri.com/golang-jobs-3": listingPageWithNext("", 200, 20),
	}}
	store := newMemStore()
	p, state := newTestPaginator(cfg, sess, store, 25)

	err := p.Run(context.Background(), "run1", start)
	require.NoError(t, err)

	// ceil(25/20) = 2 pages; the second page saves only the 5 the quota
	// still allows.
	assert.Equal(t, 2, state.Pages())
	assert.Equal(t, 25, state.Saved())
}

func TestPaginatorPageCeilingForUnboundedRuns(t *testing.T) {
	cfg := paginatorConfig()
	cfg.Scraper.MaxPages = 1
	start := "https://www.naukri.com/golang-jobs"
	sess := &fakeSession{pages: map[string]string{
		start: listingPageWithNext("/golang-jobs-2", 0, 20),
	}}
	store := newMemStore()
	p, state := newTestPaginator(cfg, sess, store, 0)

	err := p.Run(context.Background(), "run1", start)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Pages())
	assert.Equal(t, 20, state.Saved())
}

func TestPaginatorChallengeClears(t *testing.T) {
	cfg := paginatorConfig()
	start := "https://www.naukri.com/golang-jobs"
	sess := &fakeSession{
		pages:         map[string]string{start: listingPageWithNext("", 0, 3)},
		challengeHTML: challengePage,
		clearAfter:    2,
	}
	store := newMemStore()
	p, state := newTestPaginator(cfg, sess, store, 0)

	err := p.Run(context.Background(), "run1", start)
	require.NoError(t, err)
	assert.Equal(t, 2, sess.dismissCalls)
	assert.Equal(t, 1, state.Pages())
	assert.Equal(t, 3, state.Saved())
}

func TestPaginatorChallengeNeverClears(t *testing.T) {
	cfg := paginatorConfig()
	start := "https://www.naukri.com/golang-jobs"
	sess := &fakeSession{
		pages:         map[string]string{start: listingPageWithNext("", 0, 3)},
		challengeHTML: challengePage,
		clearAfter:    100,
	}
	store := newMemStore()
	p, state := newTestPaginator(cfg, sess, store, 0)

	err := p.Run(context.Background(), "run1", start)
	require.NoError(t, err)
	assert.Equal(t, cfg.Scraper.ChallengeAttempts, sess.dismissCalls)
	assert.Equal(t, 0, state.Pages())
	assert.Equal(t, 0, state.Saved())
}

func TestPaginatorZeroExtractionDumpsDebugHTML(t *testing.T) {
	cfg := paginatorConfig()
	start := "https://www.naukri.com/golang-jobs"
	sess := &fakeSession{pages: map[string]string{
		start: "<html><head><title>Jobs</title></head><body><p>no listings today</p></body></html>",
	}}
	store := newMemStore()
	p, state := newTestPaginator(cfg, sess, store, 0)

	err := p.Run(context.Background(), "run1", start)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Pages())
	assert.Equal(t, 0, state.Saved())
	assert.Contains(t, store.debug["run1:1"], "no listings today")
}

func TestPaginatorStructuredFallback(t *testing.T) {
	cfg := paginatorConfig()
	start := "https://www.naukri.com/golang-jobs"
	sess := &fakeSession{pages: map[string]string{
		start: ldPage(posting),
	}}
	store := newMemStore()
	p, state := newTestPaginator(cfg, sess, store, 0)

	err := p.Run(context.Background(), "run1", start)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Saved())
	assert.Equal(t, "structured", state.Stats("r", "", "").ExtractionMethod)
}

func TestQuotaMetOnFirstPageStopsWithoutPagination(t *testing.T) {
	cfg := paginatorConfig()
	req := &models.SearchRequest{SearchQuery: "sales", Location: "mumbai", MaxJobs: 5}
	start := BuildSearchURL(cfg.Scraper.BaseURL, req)
	sess := &fakeSession{pages: map[string]string{
		start: listingPageWithNext("", 0, 5),
	}}
	store := newMemStore()
	p, state := newTestPaginator(cfg, sess, store, 5)

	err := p.Run(context.Background(), "run1", start)
	require.NoError(t, err)

	assert.Equal(t, 5, state.Saved())
	for _, rec := range store.records["run1"] {
		assert.NotEqual(t, models.NotSpecified, rec.Title)
	}
	// Quota met on page one: no further navigation happened.
	assert.Equal(t, []string{start}, sess.navigations)
}

func TestShortPageContinuesToPageTwo(t *testing.T) {
	cfg := paginatorConfig()
	cfg.Scraper.PageSize = 3
	req := &models.SearchRequest{SearchQuery: "sales", Location: "mumbai", MaxJobs: 5}
	start := BuildSearchURL(cfg.Scraper.BaseURL, req)

	// Three cards, two of them sharing a URL: only two unique candidates.
	page1 := "<html><head><title>Jobs</title></head><body>" +
		cardHTML(1) + cardHTML(1) + cardHTML(2) + "</body></html>"
	sess := &fakeSession{pages: map[string]string{start: page1}}
	store := newMemStore()
	p, state := newTestPaginator(cfg, sess, store, 5)

	err := p.Run(context.Background(), "run1", start)
	require.NoError(t, err)

	assert.Equal(t, 2, state.Saved())
	// Quota not met and the page was not zero-yield, so page 2 was
	// requested (and failed to load, ending the run).
	require.Greater(t, len(sess.navigations), 1)
	assert.Equal(t, start+"-2", sess.navigations[1])
}

func TestPageCeilingLaw(t *testing.T) {
	cfg := paginatorConfig()
	tests := []struct {
		quota    int
		expected int
	}{
		{0, cfg.Scraper.MaxPages},
		{1, 1},
		{20, 1},
		{21, 2},
		{25, 2},
		{41, 3},
	}
	for _, tt := range tests {
		p := &Paginator{cfg: cfg, quota: tt.quota}
		assert.Equal(t, tt.expected, p.pageCeiling(), "quota %d", tt.quota)
	}
}
