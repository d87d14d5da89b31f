package naukri

import (
	"net/url"
	"strconv"
	"strings"
)

// PageContext describes one listing page inside a run.
type PageContext struct {
	URL      string
	Page     int
	Query    string
	Location string
}

// ParsePageContext derives the page number and search terms from a
// listing URL. The site encodes the page either as a query parameter or
// as a trailing "-N" path suffix; the search query and location live in
// the last path segment as "{query}-jobs[-in-{location}]".
func ParsePageContext(rawURL string) PageContext {
	ctx := PageContext{URL: rawURL, Page: 1}

	u, err := url.Parse(rawURL)
	if err != nil {
		return ctx
	}

	for _, param := range []string{"pageNo", "page"} {
		if v := u.Query().Get(param); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				ctx.Page = n
				break
			}
		}
	}

	segment := lastPathSegment(u.Path)
	if segment == "" {
		return ctx
	}

	// A trailing "-N" on the slug is the path-style page number.
	if m := trailingNumRe.FindStringSubmatch(segment); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 1 {
			if ctx.Page == 1 {
				ctx.Page = n
			}
			segment = strings.TrimSuffix(segment, m[0])
		}
	}

	ctx.Query, ctx.Location = splitSearchSlug(segment)
	return ctx
}

func lastPathSegment(path string) string {
	path = strings.Trim(path, "/")
	if path == "" {
		return ""
	}
	parts := strings.Split(path, "/")
	return parts[len(parts)-1]
}

// splitSearchSlug decodes "{query}-jobs-in-{location}" and the shorter
// "{query}-jobs" form back into human-readable terms.
func splitSearchSlug(segment string) (query, location string) {
	const marker = "-jobs"
	idx := strings.Index(segment, marker)
	if idx < 0 {
		return "", ""
	}

	query = strings.ReplaceAll(segment[:idx], "-", " ")

	rest := segment[idx+len(marker):]
	if strings.HasPrefix(rest, "-in-") {
		location = strings.ReplaceAll(rest[len("-in-"):], "-", " ")
	}
	return query, location
}
