package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"jobharvest/internal/config"
	"jobharvest/internal/logging"
	"jobharvest/internal/logging/types"
	"jobharvest/pkg/models"
)

// ErrNotFound is returned when a requested run has no stored stats.
var ErrNotFound = errors.New("not found")

const (
	recordsKeyPrefix = "jobs:run:"
	statsKeyPrefix   = "stats:run:"
	debugKeyPrefix   = "debug:page:"

	debugTTL = 24 * time.Hour
	statsTTL = 7 * 24 * time.Hour
)

// RedisStore implements Store on redis: records as a list per run, stats
// as a JSON blob, debug snapshots under a short TTL.
type RedisStore struct {
	client *redis.Client
	cfg    *config.Config
	logger types.Logger
}

// NewRedisStore connects using the configured URL, falling back to
// host:port parsing when the URL scheme is absent.
func NewRedisStore(cfg *config.Config) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		// Accept bare host:port values.
		opts = &redis.Options{
			Addr: strings.TrimPrefix(cfg.Redis.URL, "redis://"),
		}
	}

	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	opts.DialTimeout = cfg.Redis.Timeout
	opts.ReadTimeout = cfg.Redis.Timeout
	opts.WriteTimeout = cfg.Redis.Timeout

	return &RedisStore{
		client: redis.NewClient(opts),
		cfg:    cfg,
		logger: logging.GetGlobalLogger(),
	}, nil
}

// Ping verifies the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// AppendRecords pushes a page's records onto the run's output list.
func (s *RedisStore) AppendRecords(ctx context.Context, runID string, records []models.JobRecord) error {
	if len(records) == 0 {
		return nil
	}

	values := make([]interface{}, 0, len(records))
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal job record: %w", err)
		}
		values = append(values, data)
	}

	key := recordsKeyPrefix + runID
	if err := s.client.RPush(ctx, key, values...).Err(); err != nil {
		return fmt.Errorf("failed to append records for run %s: %w", runID, err)
	}

	s.logger.Debug("Appended records to run output", map[string]interface{}{
		"run_id": runID,
		"count":  len(records),
	})
	return nil
}

// GetRecords loads the run's full output list.
func (s *RedisStore) GetRecords(ctx context.Context, runID string) ([]models.JobRecord, error) {
	raw, err := s.client.LRange(ctx, recordsKeyPrefix+runID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load records for run %s: %w", runID, err)
	}

	records := make([]models.JobRecord, 0, len(raw))
	for _, item := range raw {
		var rec models.JobRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			s.logger.Warn("Skipping unreadable stored record", map[string]interface{}{
				"run_id": runID,
				"error":  err.Error(),
			})
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// SaveDebugHTML stores a page snapshot for 24 hours.
func (s *RedisStore) SaveDebugHTML(ctx context.Context, runID string, page int, html string) error {
	key := debugKeyPrefix + runID + ":" + strconv.Itoa(page)
	if err := s.client.Set(ctx, key, html, debugTTL).Err(); err != nil {
		return fmt.Errorf("failed to save debug snapshot: %w", err)
	}
	return nil
}

// SaveRunStats writes the run summary as JSON.
func (s *RedisStore) SaveRunStats(ctx context.Context, stats *models.RunStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal run stats: %w", err)
	}
	key := statsKeyPrefix + stats.RunID
	if err := s.client.Set(ctx, key, data, statsTTL).Err(); err != nil {
		return fmt.Errorf("failed to save run stats: %w", err)
	}
	return nil
}

// GetRunStats loads a run summary.
func (s *RedisStore) GetRunStats(ctx context.Context, runID string) (*models.RunStats, error) {
	data, err := s.client.Get(ctx, statsKeyPrefix+runID).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run stats: %w", err)
	}

	var stats models.RunStats
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		return nil, fmt.Errorf("failed to decode run stats: %w", err)
	}
	return &stats, nil
}

// Close releases the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
