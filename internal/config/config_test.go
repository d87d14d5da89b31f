package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobharvest/pkg/models"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "browser", cfg.Scraper.Engine)
	assert.Equal(t, "https://www.naukri.com", cfg.Scraper.BaseURL)
	assert.Equal(t, 20, cfg.Scraper.PageSize)
	assert.Equal(t, 50, cfg.Scraper.MaxPages)
	assert.Equal(t, 3, cfg.Scraper.ChallengeAttempts)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestValidateSearchRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     models.SearchRequest
		wantErr bool
	}{
		{"query only", models.SearchRequest{SearchQuery: "golang"}, false},
		{"url only", models.SearchRequest{SearchURL: "https://www.naukri.com/golang-jobs"}, false},
		{"neither", models.SearchRequest{}, true},
		{"both", models.SearchRequest{SearchQuery: "golang", SearchURL: "https://www.naukri.com/golang-jobs"}, true},
		{"bad url", models.SearchRequest{SearchURL: "not a url"}, true},
		{"negative max jobs", models.SearchRequest{SearchQuery: "golang", MaxJobs: -1}, true},
		{"max jobs too large", models.SearchRequest{SearchQuery: "golang", MaxJobs: 10001}, true},
		{"max jobs at limit", models.SearchRequest{SearchQuery: "golang", MaxJobs: 10000}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSearchRequest(&tt.req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("JH_TEST_VALUE", "expanded")
	assert.Equal(t, "a expanded b", expandEnvVars("a ${JH_TEST_VALUE} b"))
	assert.Equal(t, "expanded", expandEnvVars("$JH_TEST_VALUE"))
	// Unset variables stay verbatim.
	assert.Equal(t, "${JH_TEST_UNSET}", expandEnvVars("${JH_TEST_UNSET}"))
}
