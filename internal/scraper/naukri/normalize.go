package naukri

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"jobharvest/pkg/models"
)

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	fresherRe     = regexp.MustCompile(`(?i)\bfresher(s)?\b`)
	yearsRangeRe  = regexp.MustCompile(`(\d+)\s*[-–]\s*(\d+)\s*(?:\+\s*)?(?:years?|yrs?)`)
	yearsRe       = regexp.MustCompile(`(\d+)\s*\+?\s*(?:years?|yrs?)`)
	monthsRe      = regexp.MustCompile(`(\d+)\s*\+?\s*months?`)
	trailingNumRe = regexp.MustCompile(`-(\d+)$`)
)

// cleanText trims and collapses internal whitespace runs to single spaces.
func cleanText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// orNotSpecified substitutes the sentinel for empty secondary fields.
func orNotSpecified(s string) string {
	if s = cleanText(s); s == "" {
		return models.NotSpecified
	}
	return s
}

// NormalizeRecord applies field-level cleanup so downstream consumers see
// a uniform shape: trimmed text, sentinel-filled secondary fields, and
// experience rewritten into a year range.
func NormalizeRecord(rec *models.JobRecord) {
	rec.Title = cleanText(rec.Title)
	rec.Company = orNotSpecified(rec.Company)
	rec.Location = orNotSpecified(rec.Location)
	rec.Salary = orNotSpecified(rec.Salary)
	rec.Experience = normalizeExperience(rec.Experience)
	if rec.Experience == models.NotSpecified && rec.DescriptionText != "" {
		if exp := experienceFromText(rec.DescriptionText); exp != "" {
			rec.Experience = exp
		}
	}
	rec.JobType = orNotSpecified(rec.JobType)
	rec.PostedDate = orNotSpecified(rec.PostedDate)

	for i, tag := range rec.Tags {
		rec.Tags[i] = cleanText(tag)
	}
	rec.Tags = dropEmpty(rec.Tags)

	if rec.URL != "" && rec.JobID == "" {
		rec.JobID = extractJobID(rec.URL)
	}
}

func dropEmpty(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// normalizeExperience maps the site's experience phrasings onto a year
// range. "Fresher" listings become "0-1 years"; month-denominated
// requirements are converted to years rounded to one decimal.
func normalizeExperience(raw string) string {
	raw = cleanText(raw)
	if raw == "" {
		return models.NotSpecified
	}
	if fresherRe.MatchString(raw) {
		return "0-1 years"
	}
	if m := yearsRangeRe.FindStringSubmatch(strings.ToLower(raw)); m != nil {
		return fmt.Sprintf("%s-%s years", m[1], m[2])
	}
	if m := yearsRe.FindStringSubmatch(strings.ToLower(raw)); m != nil {
		return fmt.Sprintf("%s years", m[1])
	}
	if m := monthsRe.FindStringSubmatch(strings.ToLower(raw)); m != nil {
		months, _ := strconv.Atoi(m[1])
		return monthsToYears(months)
	}
	return raw
}

// experienceFromText scans free text for an experience requirement. Only
// explicit patterns count; no match returns empty rather than a guess.
func experienceFromText(text string) string {
	lower := strings.ToLower(text)
	if m := yearsRangeRe.FindStringSubmatch(lower); m != nil {
		return fmt.Sprintf("%s-%s years", m[1], m[2])
	}
	if m := yearsRe.FindStringSubmatch(lower); m != nil {
		return fmt.Sprintf("%s years", m[1])
	}
	if fresherRe.MatchString(lower) {
		return "0-1 years"
	}
	return ""
}

// monthsToYears renders a month count as years rounded to one decimal,
// dropping the fraction when it is whole.
func monthsToYears(months int) string {
	years := math.Round(float64(months)/12*10) / 10
	return strconv.FormatFloat(years, 'f', -1, 64) + " years"
}

// extractJobID pulls the site's numeric listing identifier from a detail
// URL. The convention puts it as the trailing hyphenated token of the
// path.
func extractJobID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	if id := u.Query().Get("jobId"); id != "" {
		return id
	}
	path := strings.TrimSuffix(u.Path, "/")
	if idx := strings.LastIndex(path, "-"); idx >= 0 && idx < len(path)-1 {
		tail := path[idx+1:]
		if _, err := strconv.ParseUint(tail, 10, 64); err == nil {
			return tail
		}
	}
	return ""
}

// resolveURL makes card hrefs absolute against the site origin.
func resolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(ref).String()
}
