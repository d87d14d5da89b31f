package naukri

import (
	"context"
	"sync"
	"time"

	"jobharvest/internal/logging"
	"jobharvest/internal/logging/types"
	"jobharvest/internal/scraper/workers"
	"jobharvest/internal/storage"
	"jobharvest/pkg/models"
)

// RunState carries one run's mutable progress: the cross-page seen-set,
// counters, and the extraction method label. All access is mutex-guarded
// because enrichment runs concurrently.
type RunState struct {
	mu        sync.Mutex
	seen      map[string]struct{}
	saved     int
	pages     int
	blocked   int
	method    string
	startedAt time.Time
}

// NewRunState starts a fresh run.
func NewRunState() *RunState {
	return &RunState{
		seen:      make(map[string]struct{}),
		startedAt: time.Now(),
	}
}

// MarkSeen records a URL and reports whether it was new. Check and
// insert happen under one lock so concurrent callers cannot both claim
// a URL.
func (s *RunState) MarkSeen(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.seen[url]; dup {
		return false
	}
	s.seen[url] = struct{}{}
	return true
}

// AddSaved bumps the persisted-record counter.
func (s *RunState) AddSaved(n int) {
	s.mu.Lock()
	s.saved += n
	s.mu.Unlock()
}

// Saved returns how many records the run has persisted.
func (s *RunState) Saved() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved
}

// IncPages counts a successfully loaded listing page.
func (s *RunState) IncPages() {
	s.mu.Lock()
	s.pages++
	s.mu.Unlock()
}

// Pages returns the processed page count.
func (s *RunState) Pages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages
}

// RecordBlocked counts a blocked detail fetch.
func (s *RunState) RecordBlocked() {
	s.mu.Lock()
	s.blocked++
	s.mu.Unlock()
}

// SetMethod records which extractor produced the run's records. The
// first successful method wins the label.
func (s *RunState) SetMethod(method string) {
	s.mu.Lock()
	if s.method == "" {
		s.method = method
	}
	s.mu.Unlock()
}

// Stats snapshots the run into its final summary.
func (s *RunState) Stats(runID, query, location string) *models.RunStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	return &models.RunStats{
		RunID:            runID,
		Query:            query,
		Location:         location,
		TotalRecords:     s.saved,
		PagesProcessed:   s.pages,
		BlockedFetches:   s.blocked,
		ExtractionMethod: s.method,
		Duration:         now.Sub(s.startedAt),
		StartedAt:        s.startedAt,
		CompletedAt:      now,
	}
}

// DetailEnricher is the seam the controller enriches through.
type DetailEnricher interface {
	Enrich(ctx context.Context, rec *models.JobRecord) models.DetailResult
}

// Controller filters one page's candidate records against the run's
// quota and seen-set, enriches the survivors, and persists the batch.
type Controller struct {
	state       *RunState
	enricher    DetailEnricher
	store       storage.Store
	limiter     *workers.Limiter
	quota       int
	concurrency int
	logger      types.Logger
}

// NewController wires a controller for one run. quota zero means
// unbounded.
func NewController(state *RunState, enricher DetailEnricher, store storage.Store, limiter *workers.Limiter, quota, concurrency int) *Controller {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Controller{
		state:       state,
		enricher:    enricher,
		store:       store,
		limiter:     limiter,
		quota:       quota,
		concurrency: concurrency,
		logger:      logging.GetGlobalLogger(),
	}
}

// Process runs one page's candidates through quota truncation, dedup,
// enrichment and persistence, returning how many records were saved.
func (c *Controller) Process(ctx context.Context, runID string, candidates []models.JobRecord) (int, error) {
	if len(candidates) == 0 {
		return 0, nil
	}

	// Quota truncation happens before dedup so a page never overshoots.
	if c.quota > 0 {
		remaining := c.quota - c.state.Saved()
		if remaining <= 0 {
			return 0, nil
		}
		if len(candidates) > remaining {
			candidates = candidates[:remaining]
		}
	}

	batch := make([]models.JobRecord, 0, len(candidates))
	for _, rec := range candidates {
		// URL-less records cannot collide; they always pass.
		if rec.URL != "" && !c.state.MarkSeen(rec.URL) {
			continue
		}
		batch = append(batch, rec)
	}
	if len(batch) == 0 {
		return 0, nil
	}

	c.enrichBatch(ctx, batch)

	if err := c.store.AppendRecords(ctx, runID, batch); err != nil {
		return 0, err
	}
	c.state.AddSaved(len(batch))
	return len(batch), nil
}

// enrichBatch fans enrichment out across a bounded worker set while
// keeping the batch's listing order: results land by index.
func (c *Controller) enrichBatch(ctx context.Context, batch []models.JobRecord) {
	if c.enricher == nil {
		return
	}

	sem := make(chan struct{}, c.concurrency)
	var wg sync.WaitGroup

	for i := range batch {
		if batch[i].URL == "" {
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(rec *models.JobRecord) {
			defer wg.Done()
			defer func() { <-sem }()

			if c.limiter != nil {
				if err := c.limiter.Wait(ctx); err != nil {
					return
				}
			}

			result := c.enricher.Enrich(ctx, rec)
			if result.Outcome == models.DetailBlocked {
				c.state.RecordBlocked()
				c.logger.Warn("Detail enrichment blocked", map[string]interface{}{
					"url": rec.URL,
				})
			}
			rec.Merge(result)
		}(&batch[i])
	}

	wg.Wait()
}
