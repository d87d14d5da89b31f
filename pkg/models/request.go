package models

// SearchRequest carries the run parameters for one scraping run. Either
// SearchURL or SearchQuery must be set, not both; the XOR rule is
// enforced by Validate in internal/config alongside the struct tags.
type SearchRequest struct {
	SearchURL   string `json:"search_url,omitempty" validate:"omitempty,url"`
	SearchQuery string `json:"search_query,omitempty"`
	Location    string `json:"location,omitempty"`
	Experience  string `json:"experience,omitempty"`
	JobType     string `json:"job_type,omitempty"`
	MaxJobs     int    `json:"max_jobs" validate:"gte=0,lte=10000"`
	Proxy       string `json:"proxy,omitempty"`
}
