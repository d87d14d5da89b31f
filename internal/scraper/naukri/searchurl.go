package naukri

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"jobharvest/pkg/models"
)

var slugCleanRe = regexp.MustCompile(`[^a-z0-9]+`)

// slugify lowercases a search term and rewrites separator runs to single
// hyphens, matching the site's URL convention.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugCleanRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// BuildSearchURL composes the listing URL for a query-driven run:
// "{base}/{query}-jobs" with "-in-{location}" appended when a location
// is given, plus experience/jobType filters as query parameters.
func BuildSearchURL(base string, req *models.SearchRequest) string {
	slug := slugify(req.SearchQuery) + "-jobs"
	if loc := slugify(req.Location); loc != "" {
		slug += "-in-" + loc
	}
	searchURL := strings.TrimRight(base, "/") + "/" + slug

	params := url.Values{}
	if req.Experience != "" {
		params.Set("experience", req.Experience)
	}
	if req.JobType != "" {
		params.Set("jobType", req.JobType)
	}
	if len(params) > 0 {
		searchURL += "?" + params.Encode()
	}
	return searchURL
}

// RewritePageURL produces the URL of page next from the current page's
// URL. A page-number query parameter is updated in place when present;
// otherwise the path slug's trailing page suffix is replaced or
// appended.
func RewritePageURL(current string, currentPage, next int) string {
	u, err := url.Parse(current)
	if err != nil {
		return current
	}

	q := u.Query()
	for _, param := range []string{"pageNo", "page"} {
		if q.Get(param) != "" {
			q.Set(param, strconv.Itoa(next))
			u.RawQuery = q.Encode()
			return u.String()
		}
	}

	path := strings.TrimRight(u.Path, "/")
	if m := trailingNumRe.FindStringSubmatch(path); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n == currentPage {
			path = strings.TrimSuffix(path, m[0])
		}
	}
	u.Path = path + "-" + strconv.Itoa(next)
	return u.String()
}
