// Package config provides configuration management for the poster.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvAccessToken = "LINKEDIN_ACCESS_TOKEN"
	EnvNewsAPIKey  = "NEWSAPI_KEY"
	EnvProfileURN  = "PROFILE_URN"
	EnvLogLevel    = "LOG_LEVEL"
	EnvConfigPath  = "AIPOST_CONFIG"
)

// Configuration validation errors.
var (
	ErrMissingLinkedInURL   = errors.New("linkedin.api_base_url is required")
	ErrInvalidLinkedInTO    = errors.New("linkedin.timeout_sec must be at least 1")
	ErrMissingNewsEndpoint  = errors.New("newsapi.endpoint is required")
	ErrMissingNewsQuery     = errors.New("newsapi.query is required")
	ErrInvalidPageSize      = errors.New("newsapi.page_size must be between 1 and 100")
	ErrInvalidNewsTimeout   = errors.New("newsapi.timeout_sec must be at least 1")
	ErrNoFeeds              = errors.New("at least one feed URL is required")
	ErrInvalidFeedTimeout   = errors.New("feeds.timeout_sec must be at least 1")
	ErrInvalidFeedBodyLimit = errors.New("feeds.max_body_kb must be at least 1")
	ErrInvalidLogLevel      = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Config represents the complete run configuration.
type Config struct {
	LinkedIn LinkedInConfig `yaml:"linkedin"`
	NewsAPI  NewsAPIConfig  `yaml:"newsapi"`
	Logging  LoggingConfig  `yaml:"logging"`
	Feeds    FeedsConfig    `yaml:"feeds"`
}

// LinkedInConfig contains the social API settings and member credentials.
type LinkedInConfig struct {
	AccessToken string `yaml:"-"`
	ProfileURN  string `yaml:"-"`
	APIBaseURL  string `yaml:"api_base_url"`
	TimeoutSec  int    `yaml:"timeout_sec"`
}

// NewsAPIConfig contains the primary news source settings.
type NewsAPIConfig struct {
	APIKey     string `yaml:"-"`
	Endpoint   string `yaml:"endpoint"`
	Query      string `yaml:"query"`
	Language   string `yaml:"language"`
	SortBy     string `yaml:"sort_by"`
	PageSize   int    `yaml:"page_size"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// FeedsConfig contains the fallback RSS/Atom sources, tried in order.
type FeedsConfig struct {
	UserAgent  string   `yaml:"user_agent"`
	URLs       []string `yaml:"urls"`
	TimeoutSec int      `yaml:"timeout_sec"`
	MaxBodyKb  int      `yaml:"max_body_kb"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultFeeds is the fallback feed list.
var DefaultFeeds = []string{
	"https://www.technologyreview.com/feed/",
	"https://rss.nytimes.com/services/xml/rss/nyt/Technology.xml",
	"https://www.theverge.com/rss/index.xml",
	"https://feeds.feedburner.com/TechCrunch/",
}

// Default returns the built-in configuration with no credentials set.
func Default() *Config {
	feeds := make([]string, len(DefaultFeeds))
	copy(feeds, DefaultFeeds)

	return &Config{
		LinkedIn: LinkedInConfig{
			APIBaseURL: "https://api.linkedin.com/v2",
			TimeoutSec: 15,
		},
		NewsAPI: NewsAPIConfig{
			Endpoint:   "https://newsapi.org/v2/everything",
			Query:      "artificial intelligence OR AI OR machine learning",
			Language:   "en",
			SortBy:     "publishedAt",
			PageSize:   5,
			TimeoutSec: 15,
		},
		Feeds: FeedsConfig{
			URLs:       feeds,
			TimeoutSec: 10,
			MaxBodyKb:  4096,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the run configuration: defaults, then the optional YAML file,
// then environment variables.
func Load(filepath string) (*Config, error) {
	cfg := Default()

	if filepath != "" {
		data, err := os.ReadFile(filepath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	cfg.ApplyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overlays credentials and the log level from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAccessToken); ok {
		c.LinkedIn.AccessToken = strings.TrimSpace(v)
	}

	if v, ok := lookup(EnvProfileURN); ok {
		c.LinkedIn.ProfileURN = strings.TrimSpace(v)
	}

	if v, ok := lookup(EnvNewsAPIKey); ok {
		c.NewsAPI.APIKey = strings.TrimSpace(v)
	}

	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = strings.ToLower(strings.TrimSpace(v))
	}
}

// Validate validates the configuration.
// A missing access token is not a validation error; identity resolution reports it.
func (c *Config) Validate() error {
	if c.LinkedIn.APIBaseURL == "" {
		return ErrMissingLinkedInURL
	}

	if c.LinkedIn.TimeoutSec < 1 {
		return ErrInvalidLinkedInTO
	}

	if c.NewsAPI.Endpoint == "" {
		return ErrMissingNewsEndpoint
	}

	if c.NewsAPI.Query == "" {
		return ErrMissingNewsQuery
	}

	if c.NewsAPI.PageSize < 1 || c.NewsAPI.PageSize > 100 {
		return ErrInvalidPageSize
	}

	if c.NewsAPI.TimeoutSec < 1 {
		return ErrInvalidNewsTimeout
	}

	if len(c.Feeds.URLs) == 0 {
		return ErrNoFeeds
	}

	for i, u := range c.Feeds.URLs {
		if strings.TrimSpace(u) == "" {
			return fmt.Errorf("%w: feeds.urls[%d] is empty", ErrNoFeeds, i)
		}
	}

	if c.Feeds.TimeoutSec < 1 {
		return ErrInvalidFeedTimeout
	}

	if c.Feeds.MaxBodyKb < 1 {
		return ErrInvalidFeedBodyLimit
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	return nil
}

// LinkedInTimeout returns the per-call timeout for the social API.
func (c *Config) LinkedInTimeout() time.Duration {
	return time.Duration(c.LinkedIn.TimeoutSec) * time.Second
}

// NewsAPITimeout returns the per-call timeout for the news search API.
func (c *Config) NewsAPITimeout() time.Duration {
	return time.Duration(c.NewsAPI.TimeoutSec) * time.Second
}

// FeedTimeout returns the per-feed fetch timeout.
func (c *Config) FeedTimeout() time.Duration {
	return time.Duration(c.Feeds.TimeoutSec) * time.Second
}

// FeedBodyLimit returns the maximum number of feed bytes read.
func (c *Config) FeedBodyLimit() int64 {
	return int64(c.Feeds.MaxBodyKb) * 1024
}

// String returns a string representation of the config with credentials redacted.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{LinkedIn: %s, Token: %s, ProfileURN: %t, NewsAPI: %t, Feeds: %d, Level: %s}",
		c.LinkedIn.APIBaseURL,
		redact(c.LinkedIn.AccessToken),
		c.LinkedIn.ProfileURN != "",
		c.NewsAPI.APIKey != "",
		len(c.Feeds.URLs),
		c.Logging.Level,
	)
}

func redact(secret string) string {
	if secret == "" {
		return "<unset>"
	}

	return "<redacted>"
}
