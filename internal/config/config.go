package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"jobharvest/pkg/models"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port         int           `yaml:"port" default:"8080"`
		Host         string        `yaml:"host" default:"0.0.0.0"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"30s"`
	} `yaml:"server"`

	Scraper struct {
		Engine            string        `yaml:"engine" default:"browser"` // browser or firecrawl
		BaseURL           string        `yaml:"base_url" default:"https://www.naukri.com"`
		UserAgent         string        `yaml:"user_agent"`
		Proxy             string        `yaml:"proxy"`
		HeadlessMode      bool          `yaml:"headless_mode" default:"true"`
		RequestTimeout    time.Duration `yaml:"request_timeout" default:"30s"`
		DetailTimeout     time.Duration `yaml:"detail_timeout" default:"12s"`
		PageSize          int           `yaml:"page_size" default:"20"`
		MaxPages          int           `yaml:"max_pages" default:"50"` // ceiling for unbounded runs
		ChallengeAttempts int           `yaml:"challenge_attempts" default:"3"`
		ChallengeBackoff  time.Duration `yaml:"challenge_backoff" default:"8s"`
		EnrichConcurrency int           `yaml:"enrich_concurrency" default:"4"`
		RateLimit         int           `yaml:"rate_limit" default:"30"` // detail fetches per minute
	} `yaml:"scraper"`

	Firecrawl struct {
		APIKey     string        `yaml:"api_key"`
		APIURL     string        `yaml:"api_url" default:"https://api.firecrawl.dev"`
		Timeout    time.Duration `yaml:"timeout" default:"60s"`
		MaxRetries int           `yaml:"max_retries" default:"3"`
	} `yaml:"firecrawl"`

	Redis struct {
		URL      string        `yaml:"url" default:"redis://localhost:6379"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db" default:"0"`
		Timeout  time.Duration `yaml:"timeout" default:"5s"`
	} `yaml:"redis"`

	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`

		Adapters []struct {
			Name    string                 `yaml:"name"`
			Type    string                 `yaml:"type"`
			Enabled bool                   `yaml:"enabled"`
			Options map[string]interface{} `yaml:"options"`
		} `yaml:"adapters"`
	} `yaml:"logging"`
}

// expandEnvVars expands environment variables in a string using ${VAR} or $VAR syntax
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return s
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := &Config{}

	// Set defaults
	config.Server.Port = 8080
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 30 * time.Second

	config.Scraper.Engine = "browser"
	config.Scraper.BaseURL = "https://www.naukri.com"
	config.Scraper.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	config.Scraper.HeadlessMode = true
	config.Scraper.RequestTimeout = 30 * time.Second
	config.Scraper.DetailTimeout = 12 * time.Second
	config.Scraper.PageSize = 20
	config.Scraper.MaxPages = 50
	config.Scraper.ChallengeAttempts = 3
	config.Scraper.ChallengeBackoff = 8 * time.Second
	config.Scraper.EnrichConcurrency = 4
	config.Scraper.RateLimit = 30

	config.Firecrawl.APIURL = "https://api.firecrawl.dev"
	config.Firecrawl.Timeout = 60 * time.Second
	config.Firecrawl.MaxRetries = 3

	config.Redis.URL = "redis://localhost:6379"
	config.Redis.DB = 0
	config.Redis.Timeout = 5 * time.Second

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	// Load from YAML file if it exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			yamlContent := expandEnvVars(string(data))
			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	// Override with environment variables
	config.loadFromEnv()

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if engine := os.Getenv("SCRAPER_ENGINE"); engine != "" {
		c.Scraper.Engine = engine
	}

	if baseURL := os.Getenv("SCRAPER_BASE_URL"); baseURL != "" {
		c.Scraper.BaseURL = baseURL
	}

	if proxy := os.Getenv("SCRAPER_PROXY"); proxy != "" {
		c.Scraper.Proxy = proxy
	}

	if userAgent := os.Getenv("SCRAPER_USER_AGENT"); userAgent != "" {
		c.Scraper.UserAgent = userAgent
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	if firecrawlAPIKey := os.Getenv("FIRECRAWL_API_KEY"); firecrawlAPIKey != "" {
		c.Firecrawl.APIKey = firecrawlAPIKey
	}

	if firecrawlAPIURL := os.Getenv("FIRECRAWL_API_URL"); firecrawlAPIURL != "" {
		c.Firecrawl.APIURL = firecrawlAPIURL
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
	}

	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		c.Redis.Password = redisPassword
	}

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			c.Redis.DB = db
		}
	}

	if redisTimeout := os.Getenv("REDIS_TIMEOUT"); redisTimeout != "" {
		if timeout, err := time.ParseDuration(redisTimeout); err == nil {
			c.Redis.Timeout = timeout
		}
	}
}

var validate = validator.New()

// ValidateSearchRequest checks run parameters before any network activity.
// Either SearchURL or SearchQuery must be provided, never both; MaxJobs
// must be inside [0, 10000].
func ValidateSearchRequest(req *models.SearchRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("invalid run parameters: %w", err)
	}

	hasURL := req.SearchURL != ""
	hasQuery := req.SearchQuery != ""
	if hasURL == hasQuery {
		return fmt.Errorf("exactly one of search_url or search_query must be set")
	}

	return nil
}
