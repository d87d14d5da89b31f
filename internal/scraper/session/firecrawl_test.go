package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobharvest/internal/config"
)

func TestNewFirecrawlSessionRequiresAPIKey(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	_, err = NewFirecrawlSession(cfg)
	assert.Error(t, err)
}

func TestNewFirecrawlSessionFloorsRetries(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	cfg.Firecrawl.APIKey = "fc-test-key"
	cfg.Firecrawl.MaxRetries = 0

	s, err := NewFirecrawlSession(cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, s.maxRetries)
}

func TestNewFirecrawlSessionKeepsConfiguredRetries(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	cfg.Firecrawl.APIKey = "fc-test-key"
	cfg.Firecrawl.MaxRetries = 5

	s, err := NewFirecrawlSession(cfg)
	require.NoError(t, err)
	assert.Equal(t, 5, s.maxRetries)
}
