package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Politeness floor towards the catalog site.
const (
	MinListingDelayMs = 2000
	MinDetailDelayMs  = 1000
)

// Config holds the recommender configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Index     IndexConfig     `yaml:"index"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Insights  InsightsConfig  `yaml:"insights"`
	Scraper   ScraperConfig   `yaml:"scraper"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Resolver  ResolverConfig  `yaml:"resolver"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Redis/Valkey connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IndexConfig holds vector index settings.
type IndexConfig struct {
	Collection      string `yaml:"collection"`
	HNSWM           int    `yaml:"hnsw_m"`
	HNSWEFConstruct int    `yaml:"hnsw_ef_construction"`
	BatchSize       int    `yaml:"batch_size"`
}

// EmbeddingConfig holds the embedding endpoint settings. Any OpenAI-compatible
// server works; the default model is a small sentence-transformer.
type EmbeddingConfig struct {
	Provider      string `yaml:"provider"`
	APIKey        string `yaml:"api_key"`
	BaseURL       string `yaml:"base_url"`
	Model         string `yaml:"model"`
	Dimensions    int    `yaml:"dimensions"`
	MaxBatch      int    `yaml:"max_batch"`
	TimeoutSec    int    `yaml:"timeout_sec"`
	CacheTTLHours int    `yaml:"cache_ttl_hours"` // 0 = no expiry
	// Prefixes for e5/bge-style models, e.g. "passage: " and "query: ".
	// Empty means no prefix.
	DocumentInstruction string `yaml:"document_instruction"`
	QueryInstruction    string `yaml:"query_instruction"`
}

// InsightsConfig holds the text-generation settings. An empty APIKey
// disables insights.
type InsightsConfig struct {
	Provider           string  `yaml:"provider"` // openai, gemini
	APIKey             string  `yaml:"api_key"`
	BaseURL            string  `yaml:"base_url"`
	Model              string  `yaml:"model"`
	MaxTokens          int     `yaml:"max_tokens"`
	Temperature        float32 `yaml:"temperature"`
	TimeoutSec         int     `yaml:"timeout_sec"`
	RatePerSec         float64 `yaml:"rate_per_sec"` // 0 = unlimited
	Burst              int     `yaml:"burst"`
	BreakerFailures    uint32  `yaml:"breaker_failures"`
	BreakerCooldownSec int     `yaml:"breaker_cooldown_sec"`
	Concurrency        int     `yaml:"concurrency"` // parallel calls per request
}

// Enabled reports whether a credential is configured.
func (c InsightsConfig) Enabled() bool { return c.APIKey != "" }

// ScraperConfig holds catalog crawl settings.
type ScraperConfig struct {
	BaseURL        string   `yaml:"base_url"`
	ListingURLs    []string `yaml:"listing_urls"` // empty = compiled-in pages
	ListingDelayMs int      `yaml:"listing_delay_ms"`
	DetailDelayMs  int      `yaml:"detail_delay_ms"`
	ListingTimeout int      `yaml:"listing_timeout_sec"`
	DetailTimeout  int      `yaml:"detail_timeout_sec"`
	UserAgent      string   `yaml:"user_agent"`
}

// CatalogConfig holds the snapshot location.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// ResolverConfig holds job-posting fetch settings.
type ResolverConfig struct {
	TimeoutSec int    `yaml:"timeout_sec"`
	UserAgent  string `yaml:"user_agent"`
}

// ScheduleConfig holds scheduled refresh settings.
type ScheduleConfig struct {
	Cron       string `yaml:"cron"`
	RunOnStart bool   `yaml:"run_on_start"`
}

// Seconds converts a config value to a duration.
func Seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file is loaded first if present. A missing config file yields the defaults.
func Load(env string) (Config, error) {
	_ = godotenv.Load() // optional

	var cfg Config
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// defaults only
	case err != nil:
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	default:
		// Substitute env variables of the form ${VAR}
		data = expandEnvVars(data)
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
//
//nolint:gocyclo // flat list of defaults
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// URL queries fetch a page, then insights call an LLM per result
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if len(c.Database.Addrs) == 0 {
		c.Database.Addrs = []string{"localhost:6379"}
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Index.Collection == "" {
		c.Index.Collection = "shl_assessments"
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 16
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 200
	}
	if c.Index.BatchSize <= 0 {
		c.Index.BatchSize = 100
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "local"
	}
	if c.Embedding.BaseURL == "" {
		c.Embedding.BaseURL = "http://localhost:7997/v1"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "sentence-transformers/all-MiniLM-L6-v2"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 384
	}
	if c.Embedding.MaxBatch <= 0 {
		c.Embedding.MaxBatch = 64
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}
	if c.Insights.Provider == "" {
		c.Insights.Provider = "openai"
	}
	if c.Insights.Model == "" {
		c.Insights.Model = defaultInsightModel(c.Insights.Provider)
	}
	if c.Insights.MaxTokens <= 0 {
		c.Insights.MaxTokens = 50
	}
	if c.Insights.Temperature == 0 {
		c.Insights.Temperature = 0.5
	}
	if c.Insights.TimeoutSec <= 0 {
		c.Insights.TimeoutSec = 10
	}
	if c.Insights.BreakerFailures == 0 {
		c.Insights.BreakerFailures = 5
	}
	if c.Insights.BreakerCooldownSec <= 0 {
		c.Insights.BreakerCooldownSec = 60
	}
	if c.Insights.Concurrency <= 0 {
		c.Insights.Concurrency = 4
	}
	if c.Scraper.ListingDelayMs == 0 {
		c.Scraper.ListingDelayMs = MinListingDelayMs
	}
	if c.Scraper.DetailDelayMs == 0 {
		c.Scraper.DetailDelayMs = MinDetailDelayMs
	}
	if c.Scraper.ListingTimeout <= 0 {
		c.Scraper.ListingTimeout = 15
	}
	if c.Scraper.DetailTimeout <= 0 {
		c.Scraper.DetailTimeout = 10
	}
	if c.Catalog.Path == "" {
		c.Catalog.Path = "data/shl_assessments_complete.json"
	}
	if c.Resolver.TimeoutSec <= 0 {
		c.Resolver.TimeoutSec = 50
	}
}

func defaultInsightModel(provider string) string {
	if provider == "gemini" {
		return "gemini-2.0-flash"
	}
	return "gpt-4o-mini"
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive, got %d", c.Embedding.Dimensions)
	}
	switch c.Insights.Provider {
	case "openai", "gemini":
		// ok
	default:
		return fmt.Errorf("insights.provider must be \"openai\" or \"gemini\", got %q", c.Insights.Provider)
	}
	if c.Insights.Temperature < 0 || c.Insights.Temperature > 2 {
		return fmt.Errorf("insights.temperature must be between 0 and 2, got %v", c.Insights.Temperature)
	}
	if c.Scraper.ListingDelayMs < MinListingDelayMs {
		return fmt.Errorf("scraper listing_delay_ms must be at least %d, got %d",
			MinListingDelayMs, c.Scraper.ListingDelayMs)
	}
	if c.Scraper.DetailDelayMs < MinDetailDelayMs {
		return fmt.Errorf("scraper detail_delay_ms must be at least %d, got %d",
			MinDetailDelayMs, c.Scraper.DetailDelayMs)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
