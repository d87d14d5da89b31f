package naukri

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobharvest/pkg/models"
)

var htmlTagRe = regexp.MustCompile(`<[a-zA-Z][^>]*>`)

// ExtractStructured parses every JSON-LD block on the page and returns a
// record per job posting found. Malformed blocks are skipped; the four
// shapes the site has shipped (single object, array, @graph, ItemList)
// are all flattened before type filtering.
func ExtractStructured(doc *goquery.Document, baseURL string) []models.JobRecord {
	var records []models.JobRecord
	now := time.Now()

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}

		var payload interface{}
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return
		}

		for _, posting := range flattenPostings(payload) {
			rec := postingToRecord(posting, baseURL, now)
			NormalizeRecord(&rec)
			if rec.Keep() {
				records = append(records, rec)
			}
		}
	})

	return records
}

// flattenPostings walks a decoded JSON-LD payload and collects every
// object whose @type is exactly JobPosting.
func flattenPostings(v interface{}) []map[string]interface{} {
	var out []map[string]interface{}

	switch node := v.(type) {
	case []interface{}:
		for _, item := range node {
			out = append(out, flattenPostings(item)...)
		}
	case map[string]interface{}:
		if t, _ := node["@type"].(string); t == "JobPosting" {
			out = append(out, node)
			return out
		}
		if graph, ok := node["@graph"].([]interface{}); ok {
			for _, item := range graph {
				out = append(out, flattenPostings(item)...)
			}
		}
		if t, _ := node["@type"].(string); t == "ItemList" {
			if elements, ok := node["itemListElement"].([]interface{}); ok {
				for _, el := range elements {
					entry, ok := el.(map[string]interface{})
					if !ok {
						continue
					}
					if item, ok := entry["item"]; ok {
						out = append(out, flattenPostings(item)...)
					} else {
						out = append(out, flattenPostings(entry)...)
					}
				}
			}
		}
	}

	return out
}

func postingToRecord(posting map[string]interface{}, baseURL string, now time.Time) models.JobRecord {
	rec := models.JobRecord{
		Title:      stringField(posting, "title"),
		Company:    organizationName(posting["hiringOrganization"]),
		Location:   structuredLocation(posting["jobLocation"]),
		Salary:     structuredSalary(posting["baseSalary"]),
		Experience: structuredExperience(posting["experienceRequirements"]),
		JobType:    employmentType(posting["employmentType"]),
		PostedDate: stringField(posting, "datePosted"),
		ScrapedAt:  now,
	}

	if u := stringField(posting, "url"); u != "" {
		rec.URL = resolveURL(baseURL, u)
	}
	if id, ok := posting["identifier"].(map[string]interface{}); ok {
		rec.JobID = stringField(id, "value")
	}

	if desc := stringField(posting, "description"); desc != "" {
		applyDescription(&rec, desc)
	}

	return rec
}

// applyDescription routes a raw description through the sanitizer when it
// carries markup, or wraps plain text in a single paragraph otherwise.
func applyDescription(rec *models.JobRecord, desc string) {
	if htmlTagRe.MatchString(desc) {
		clean := SanitizeFragment(desc)
		rec.DescriptionHTML = clean
		rec.DescriptionText = ReadableText(clean)
		return
	}
	text := cleanText(desc)
	rec.DescriptionHTML = "<p>" + text + "</p>"
	rec.DescriptionText = text
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return cleanText(s)
}

func organizationName(v interface{}) string {
	switch org := v.(type) {
	case string:
		return cleanText(org)
	case map[string]interface{}:
		return stringField(org, "name")
	}
	return ""
}

// structuredLocation joins a single place's locality, region and country
// with ", "; multiple jobLocation entries are joined with " | " after
// dropping duplicates.
func structuredLocation(v interface{}) string {
	switch loc := v.(type) {
	case string:
		return cleanText(loc)
	case map[string]interface{}:
		return placeString(loc)
	case []interface{}:
		seen := make(map[string]struct{})
		var parts []string
		for _, item := range loc {
			part := structuredLocation(item)
			if part == "" {
				continue
			}
			if _, dup := seen[part]; dup {
				continue
			}
			seen[part] = struct{}{}
			parts = append(parts, part)
		}
		return strings.Join(parts, " | ")
	}
	return ""
}

func placeString(place map[string]interface{}) string {
	switch addr := place["address"].(type) {
	case string:
		// A plain string address is used verbatim.
		return cleanText(addr)
	case map[string]interface{}:
		var parts []string
		for _, key := range []string{"addressLocality", "addressRegion", "addressCountry"} {
			if val := stringField(addr, key); val != "" {
				parts = append(parts, val)
			}
		}
		return strings.Join(parts, ", ")
	}
	return stringField(place, "name")
}

// structuredSalary renders a MonetaryAmount as "{min}-{max} {currency}",
// degrading to whichever bound or single value is present.
func structuredSalary(v interface{}) string {
	amount, ok := v.(map[string]interface{})
	if !ok {
		return ""
	}
	currency := stringField(amount, "currency")

	value, ok := amount["value"].(map[string]interface{})
	if !ok {
		return ""
	}
	min := numericField(value, "minValue")
	max := numericField(value, "maxValue")
	single := numericField(value, "value")

	var amountStr string
	switch {
	case min != "" && max != "":
		amountStr = min + "-" + max
	case single != "":
		amountStr = single
	case min != "":
		amountStr = min
	case max != "":
		amountStr = max
	default:
		return ""
	}

	if currency != "" {
		return amountStr + " " + currency
	}
	return amountStr
}

func numericField(m map[string]interface{}, key string) string {
	switch n := m[key].(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case string:
		return cleanText(n)
	}
	return ""
}

func structuredExperience(v interface{}) string {
	switch exp := v.(type) {
	case string:
		return cleanText(exp)
	case map[string]interface{}:
		if months, ok := exp["monthsOfExperience"].(float64); ok && months > 0 {
			return monthsToYears(int(months))
		}
		return stringField(exp, "description")
	}
	return ""
}

func employmentType(v interface{}) string {
	switch t := v.(type) {
	case string:
		return prettifyEmploymentType(t)
	case []interface{}:
		var parts []string
		for _, item := range t {
			if s, ok := item.(string); ok && s != "" {
				parts = append(parts, prettifyEmploymentType(s))
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

// prettifyEmploymentType rewrites schema.org constants like FULL_TIME
// into human-readable form.
func prettifyEmploymentType(s string) string {
	s = cleanText(s)
	if s == strings.ToUpper(s) && strings.Contains(s, "_") {
		words := strings.Split(strings.ToLower(s), "_")
		for i, w := range words {
			if w == "" {
				continue
			}
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
		return strings.Join(words, "-")
	}
	return s
}
