package runner

import (
	"context"
	"fmt"

	"jobharvest/internal/config"
	"jobharvest/internal/logging"
	"jobharvest/internal/scraper/naukri"
	"jobharvest/internal/scraper/session"
	"jobharvest/internal/scraper/workers"
	"jobharvest/internal/storage"
	"jobharvest/pkg/models"
	"jobharvest/pkg/utils"
)

// quota clamps MaxJobs into the supported range; validation rejects
// out-of-range values at the API boundary, this is the belt for callers
// that construct requests programmatically.
func quota(maxJobs int) int {
	if maxJobs < 0 {
		return 0
	}
	if maxJobs > 10000 {
		return 10000
	}
	return maxJobs
}

// newSession picks the fetch engine from configuration.
func newSession(cfg *config.Config) (session.PageSession, error) {
	switch cfg.Scraper.Engine {
	case "firecrawl":
		return session.NewFirecrawlSession(cfg)
	case "browser", "":
		return session.NewBrowserSession(cfg)
	default:
		return nil, utils.NewSetupError(fmt.Sprintf("unknown scraper engine: %s", cfg.Scraper.Engine))
	}
}

// Execute performs one scraping run end to end and returns its stats.
// Setup failures (bad parameters, unreachable store, engine startup) are
// errors; a run that completes with zero records is not.
func Execute(ctx context.Context, cfg *config.Config, store storage.Store, req *models.SearchRequest) (*models.RunStats, error) {
	return ExecuteWithID(ctx, cfg, store, req, utils.GenerateRunID())
}

// ExecuteWithID runs with a caller-assigned run id, letting the API
// return the id before the run completes.
func ExecuteWithID(ctx context.Context, cfg *config.Config, store storage.Store, req *models.SearchRequest, runID string) (*models.RunStats, error) {
	logger := logging.GetGlobalLogger()

	if err := config.ValidateSearchRequest(req); err != nil {
		return nil, utils.NewValidationError(err.Error())
	}

	if req.Proxy != "" {
		cfg = cloneWithProxy(cfg, req.Proxy)
	}

	startURL := req.SearchURL
	if startURL == "" {
		startURL = naukri.BuildSearchURL(cfg.Scraper.BaseURL, req)
	}
	pageCtx := naukri.ParsePageContext(startURL)
	query := utils.GetStringOrDefault(req.SearchQuery, pageCtx.Query)
	location := utils.GetStringOrDefault(req.Location, pageCtx.Location)

	logger.Info("Starting scraping run", map[string]interface{}{
		"run_id":   runID,
		"url":      startURL,
		"query":    query,
		"location": location,
		"max_jobs": req.MaxJobs,
		"engine":   cfg.Scraper.Engine,
	})

	sess, err := newSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to start scraper engine: %w", err)
	}
	defer sess.Close()

	state := naukri.NewRunState()
	enricher := naukri.NewEnricher(cfg, sess)
	limiter := workers.NewLimiter(cfg.Scraper.RateLimit)
	q := quota(req.MaxJobs)
	controller := naukri.NewController(state, enricher, store, limiter, q, cfg.Scraper.EnrichConcurrency)
	paginator := naukri.NewPaginator(cfg, sess, controller, store, state, q)

	runErr := paginator.Run(ctx, runID, startURL)

	stats := state.Stats(runID, query, location)
	if err := store.SaveRunStats(ctx, stats); err != nil {
		logger.Error("Failed to persist run stats", map[string]interface{}{
			"run_id": runID,
			"error":  err.Error(),
		})
	}

	if runErr != nil {
		return stats, runErr
	}

	if stats.TotalRecords == 0 {
		logger.Warn("Run completed with zero records", map[string]interface{}{
			"run_id": runID,
			"url":    startURL,
		})
	} else {
		logger.Info("Run completed", map[string]interface{}{
			"run_id":   runID,
			"records":  stats.TotalRecords,
			"pages":    stats.PagesProcessed,
			"blocked":  stats.BlockedFetches,
			"method":   stats.ExtractionMethod,
			"duration": utils.FormatDuration(stats.Duration),
		})
	}

	return stats, nil
}

// cloneWithProxy copies the config with a per-run proxy override so the
// shared config is never mutated.
func cloneWithProxy(cfg *config.Config, proxy string) *config.Config {
	clone := *cfg
	clone.Scraper.Proxy = proxy
	return &clone
}
