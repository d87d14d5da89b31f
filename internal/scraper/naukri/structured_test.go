package naukri

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseURL = "https://www.naukri.com"

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func ldPage(blocks ...string) string {
	var sb strings.Builder
	sb.WriteString("<html><head>")
	for _, b := range blocks {
		sb.WriteString(`<script type="application/ld+json">` + b + `</script>`)
	}
	sb.WriteString("</head><body></body></html>")
	return sb.String()
}

const posting = `{
	"@type": "JobPosting",
	"title": "Backend Engineer",
	"url": "/job-listings-backend-engineer-acme-111",
	"hiringOrganization": {"@type": "Organization", "name": "Acme Corp"},
	"jobLocation": {"@type": "Place", "address": {"addressLocality": "Bangalore", "addressRegion": "Karnataka", "addressCountry": "IN"}},
	"baseSalary": {"@type": "MonetaryAmount", "currency": "INR", "value": {"minValue": 500000, "maxValue": 900000}},
	"employmentType": "FULL_TIME",
	"datePosted": "2026-08-20",
	"description": "<p>Build services in Go.</p>"
}`

func TestExtractStructuredSingleObject(t *testing.T) {
	records := ExtractStructured(docFromHTML(t, ldPage(posting)), baseURL)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "Backend Engineer", rec.Title)
	assert.Equal(t, "Acme Corp", rec.Company)
	assert.Equal(t, "Bangalore, Karnataka, IN", rec.Location)
	assert.Equal(t, "500000-900000 INR", rec.Salary)
	assert.Equal(t, "Full-Time", rec.JobType)
	assert.Equal(t, "2026-08-20", rec.PostedDate)
	assert.Equal(t, baseURL+"/job-listings-backend-engineer-acme-111", rec.URL)
	assert.Equal(t, "<p>Build services in Go.</p>", rec.DescriptionHTML)
	assert.Equal(t, "Build services in Go.", rec.DescriptionText)
}

func TestExtractStructuredArray(t *testing.T) {
	records := ExtractStructured(docFromHTML(t, ldPage("["+posting+","+posting+"]")), baseURL)
	assert.Len(t, records, 2)
}

func TestExtractStructuredGraph(t *testing.T) {
	page := ldPage(`{"@context": "https://schema.org", "@graph": [` + posting + `, {"@type": "WebSite", "name": "x"}]}`)
	records := ExtractStructured(docFromHTML(t, page), baseURL)
	assert.Len(t, records, 1)
}

func TestExtractStructuredItemList(t *testing.T) {
	page := ldPage(`{"@type": "ItemList", "itemListElement": [{"@type": "ListItem", "position": 1, "item": ` + posting + `}]}`)
	records := ExtractStructured(docFromHTML(t, page), baseURL)
	assert.Len(t, records, 1)
}

func TestExtractStructuredSkipsMalformedBlocks(t *testing.T) {
	page := ldPage(`{not json`, posting)
	records := ExtractStructured(docFromHTML(t, page), baseURL)
	assert.Len(t, records, 1)
}

func TestExtractStructuredIgnoresOtherTypes(t *testing.T) {
	page := ldPage(`{"@type": "Organization", "name": "Acme"}`)
	records := ExtractStructured(docFromHTML(t, page), baseURL)
	assert.Empty(t, records)
}

func TestStructuredLocationMultiple(t *testing.T) {
	loc := structuredLocation([]interface{}{
		map[string]interface{}{"address": map[string]interface{}{"addressLocality": "Pune"}},
		map[string]interface{}{"address": map[string]interface{}{"addressLocality": "Mumbai"}},
		map[string]interface{}{"address": map[string]interface{}{"addressLocality": "Pune"}},
	})
	assert.Equal(t, "Pune | Mumbai", loc)
}

func TestStructuredLocationStringAddress(t *testing.T) {
	loc := structuredLocation(map[string]interface{}{
		"@type":   "Place",
		"address": "Mumbai, Maharashtra, India",
	})
	assert.Equal(t, "Mumbai, Maharashtra, India", loc)
}

func TestStructuredSalaryShapes(t *testing.T) {
	full := map[string]interface{}{
		"currency": "INR",
		"value":    map[string]interface{}{"minValue": float64(100000), "maxValue": float64(200000)},
	}
	assert.Equal(t, "100000-200000 INR", structuredSalary(full))

	single := map[string]interface{}{
		"currency": "USD",
		"value":    map[string]interface{}{"value": float64(95000)},
	}
	assert.Equal(t, "95000 USD", structuredSalary(single))

	assert.Equal(t, "", structuredSalary("not a map"))
}

func TestStructuredExperienceMonths(t *testing.T) {
	exp := map[string]interface{}{"monthsOfExperience": float64(30)}
	assert.Equal(t, "2.5 years", structuredExperience(exp))
}

func TestStructuredPlainTextDescriptionWrapped(t *testing.T) {
	page := ldPage(`{"@type": "JobPosting", "title": "T", "description": "Plain text role summary."}`)
	records := ExtractStructured(docFromHTML(t, page), baseURL)
	require.Len(t, records, 1)
	assert.Equal(t, "<p>Plain text role summary.</p>", records[0].DescriptionHTML)
	assert.Equal(t, "Plain text role summary.", records[0].DescriptionText)
}
