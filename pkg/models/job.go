package models

import "time"

// NotSpecified is the sentinel used for descriptive fields the site did
// not provide. Descriptive fields are never null/absent once a record
// exists.
const NotSpecified = "Not specified"

// JobRecord represents one harvested job listing. It is created by a
// listing-page extractor, optionally enriched once from its detail page,
// and immutable after persistence.
type JobRecord struct {
	URL             string    `json:"url"`
	JobID           string    `json:"job_id,omitempty"`
	Title           string    `json:"title"`
	Company         string    `json:"company"`
	Location        string    `json:"location"`
	Salary          string    `json:"salary"`
	Experience      string    `json:"experience"`
	JobType         string    `json:"job_type"`
	PostedDate      string    `json:"posted_date"`
	Tags            []string  `json:"tags,omitempty"`
	DescriptionHTML string    `json:"description_html"`
	DescriptionText string    `json:"description_text"`
	ScrapedAt       time.Time `json:"scraped_at"`
}

// Keep reports whether the record satisfies the retention invariant:
// a record is kept only if it carries a title or a URL.
func (r *JobRecord) Keep() bool {
	return r.Title != "" || r.URL != ""
}

// DetailOutcome tags the result of one detail-page fetch. Blocked and
// NotFound are data, not errors: callers keep the listing-derived record
// and move on.
type DetailOutcome int

const (
	DetailEmpty DetailOutcome = iota
	DetailOK
	DetailBlocked
	DetailNotFound
)

// String returns the label used in logs and stats.
func (o DetailOutcome) String() string {
	switch o {
	case DetailOK:
		return "ok"
	case DetailBlocked:
		return "blocked"
	case DetailNotFound:
		return "not_found"
	default:
		return "empty"
	}
}

// DetailResult carries the fields recovered from a detail page. Secondary
// fields only fill listing fields that are still empty or sentinel.
type DetailResult struct {
	Outcome         DetailOutcome
	DescriptionHTML string
	DescriptionText string
	Experience      string
	Salary          string
	JobType         string
	JobID           string
	Tags            []string
}

// Merge applies an Ok result onto the record, field by field. Enrichment
// never blanks a field the listing extraction already populated.
func (r *JobRecord) Merge(d DetailResult) {
	if d.Outcome != DetailOK {
		return
	}
	if d.DescriptionHTML != "" {
		r.DescriptionHTML = d.DescriptionHTML
	}
	if d.DescriptionText != "" {
		r.DescriptionText = d.DescriptionText
	}
	if d.JobID != "" && r.JobID == "" {
		r.JobID = d.JobID
	}
	if len(d.Tags) > 0 && len(r.Tags) == 0 {
		r.Tags = d.Tags
	}
	if d.Experience != "" && emptyOrSentinel(r.Experience) {
		r.Experience = d.Experience
	}
	if d.Salary != "" && emptyOrSentinel(r.Salary) {
		r.Salary = d.Salary
	}
	if d.JobType != "" && emptyOrSentinel(r.JobType) {
		r.JobType = d.JobType
	}
}

func emptyOrSentinel(s string) bool {
	return s == "" || s == NotSpecified
}

// RunStats summarizes one scraping run. Written once at run end.
type RunStats struct {
	RunID            string        `json:"run_id"`
	Query            string        `json:"query,omitempty"`
	Location         string        `json:"location,omitempty"`
	TotalRecords     int           `json:"total_records"`
	PagesProcessed   int           `json:"pages_processed"`
	BlockedFetches   int           `json:"blocked_fetches"`
	ExtractionMethod string        `json:"extraction_method"`
	Duration         time.Duration `json:"duration"`
	StartedAt        time.Time     `json:"started_at"`
	CompletedAt      time.Time     `json:"completed_at"`
}
