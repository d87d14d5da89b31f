package storage

import (
	"context"

	"jobharvest/pkg/models"
)

// Store persists run output: record batches as they are produced, debug
// page snapshots for zero-extraction diagnosis, and final run stats.
type Store interface {
	// AppendRecords adds a page's enriched records to the run's output.
	AppendRecords(ctx context.Context, runID string, records []models.JobRecord) error

	// GetRecords returns every record saved for the run so far.
	GetRecords(ctx context.Context, runID string) ([]models.JobRecord, error)

	// SaveDebugHTML stores a page snapshot with a short TTL for
	// inspecting pages that produced no records.
	SaveDebugHTML(ctx context.Context, runID string, page int, html string) error

	// SaveRunStats writes the run's final summary.
	SaveRunStats(ctx context.Context, stats *models.RunStats) error

	// GetRunStats loads a run summary; ErrNotFound when absent.
	GetRunStats(ctx context.Context, runID string) (*models.RunStats, error)

	// Ping verifies connectivity.
	Ping(ctx context.Context) error

	Close() error
}
