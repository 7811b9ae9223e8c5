// Package config loads and validates the service configuration from a YAML
// file with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultReadTimeoutSeconds is the default HTTP read timeout in seconds
	DefaultReadTimeoutSeconds = 10
	// DefaultWriteTimeoutSeconds is the default HTTP write timeout in seconds
	DefaultWriteTimeoutSeconds = 30
	// DefaultShutdownTimeoutSeconds is the default graceful shutdown timeout in seconds
	DefaultShutdownTimeoutSeconds = 30
)

type Config struct {
	Debug         bool                `yaml:"debug"` // Application debug mode (controls log level and format)
	Server        ServerConfig        `yaml:"server"`
	Auth          AuthConfig          `yaml:"auth"`
	Store         StoreConfig         `yaml:"store"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	WebSearch     WebSearchConfig     `yaml:"web_search"`
	Redis         RedisConfig         `yaml:"redis"`
	LLM           LLMConfig           `yaml:"llm"`
	ImageGen      ImageGenConfig      `yaml:"image_gen"`
	CMS           CMSConfig           `yaml:"cms"`
	Research      ResearchConfig      `yaml:"research"`
}

type ServerConfig struct {
	Address      string        `yaml:"address"`       // e.g., ":8090"
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout"` // Default: 30s
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"` // Shared secret required on /api/v1 routes
}

type StoreConfig struct {
	SnapshotPath string `yaml:"snapshot_path"` // Draft store snapshot file (default: data/drafts.json)
}

type ElasticsearchConfig struct {
	URL      string `yaml:"url"` // Optional: empty disables the index research tier
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Index    string `yaml:"index"` // Index pattern to search (default: knowledge)
}

type WebSearchConfig struct {
	URL     string        `yaml:"url"` // Optional: empty disables the web research tier
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"` // Default: 10s
}

type RedisConfig struct {
	URL      string        `yaml:"url"` // Optional: empty disables the research cache
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	CacheTTL time.Duration `yaml:"cache_ttl"` // Research cache TTL (default: 1h)
}

type LLMConfig struct {
	URL         string        `yaml:"url"` // Chat-completion endpoint base URL
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`       // Default: gpt-4o-mini
	Timeout     time.Duration `yaml:"timeout"`     // Default: 120s
	Temperature float64       `yaml:"temperature"` // Default: 0.7
}

type ImageGenConfig struct {
	URL     string        `yaml:"url"` // Optional: empty disables featured image generation
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"` // Default: 120s
}

type CMSConfig struct {
	URL           string        `yaml:"url"`
	Token         string        `yaml:"token"`
	SpaceID       string        `yaml:"space_id"`        // Content space/site identifier on the CMS
	Timeout       time.Duration `yaml:"timeout"`         // Default: 30s
	SkipTLSVerify bool          `yaml:"skip_tls_verify"` // Development only
}

type ResearchConfig struct {
	MaxResults int `yaml:"max_results"` // Sources requested per tier (default: 8)
}

// Validate checks if the server configuration is valid and sets defaults.
func (c *ServerConfig) Validate() error {
	if c.Address == "" {
		c.Address = ":8090"
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeoutSeconds * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = DefaultWriteTimeoutSeconds * time.Second
	}
	return nil
}

// Validate checks if the configuration is valid and returns an error if not.
// Capabilities the pipeline cannot run without (LLM, CMS, the shared secret)
// are required here so misconfiguration fails at startup, not mid-pipeline.
func (c *Config) Validate() error {
	if c.Auth.APIKey == "" {
		return errors.New("auth.api_key is required")
	}
	if c.LLM.URL == "" {
		return errors.New("llm.url is required")
	}
	if c.CMS.URL == "" {
		return errors.New("cms.url is required")
	}
	if c.CMS.Token == "" {
		return errors.New("cms.token is required")
	}
	if c.Research.MaxResults < 0 {
		return fmt.Errorf("research.max_results must not be negative, got %d", c.Research.MaxResults)
	}
	return nil
}

// setDefaults sets default values for configuration fields
func setDefaults(cfg *Config) {
	if cfg.Store.SnapshotPath == "" {
		cfg.Store.SnapshotPath = "data/drafts.json"
	}
	if cfg.Elasticsearch.Index == "" {
		cfg.Elasticsearch.Index = "knowledge"
	}
	if cfg.WebSearch.Timeout == 0 {
		cfg.WebSearch.Timeout = 10 * time.Second
	}
	if cfg.Redis.CacheTTL == 0 {
		cfg.Redis.CacheTTL = time.Hour
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 120 * time.Second
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.7
	}
	if cfg.ImageGen.Timeout == 0 {
		cfg.ImageGen.Timeout = 120 * time.Second
	}
	if cfg.CMS.Timeout == 0 {
		cfg.CMS.Timeout = 30 * time.Second
	}
	if cfg.Research.MaxResults == 0 {
		cfg.Research.MaxResults = 8
	}
}

// overrideWithEnvVars overrides configuration with environment variables
func overrideWithEnvVars(cfg *Config) {
	if apiKey := os.Getenv("BLOGSMITH_API_KEY"); apiKey != "" {
		cfg.Auth.APIKey = apiKey
	}
	if esURL := os.Getenv("ES_URL"); esURL != "" {
		cfg.Elasticsearch.URL = esURL
	}
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cfg.Redis.URL = redisURL
	}
	if llmURL := os.Getenv("LLM_URL"); llmURL != "" {
		cfg.LLM.URL = llmURL
	}
	if llmKey := os.Getenv("LLM_API_KEY"); llmKey != "" {
		cfg.LLM.APIKey = llmKey
	}
	if cmsURL := os.Getenv("CMS_URL"); cmsURL != "" {
		cfg.CMS.URL = cmsURL
	}
	if cmsToken := os.Getenv("CMS_TOKEN"); cmsToken != "" {
		cfg.CMS.Token = cmsToken
	}
	if snapshotPath := os.Getenv("STORE_SNAPSHOT_PATH"); snapshotPath != "" {
		cfg.Store.SnapshotPath = snapshotPath
	}
	if appDebug := os.Getenv("APP_DEBUG"); appDebug != "" {
		cfg.Debug = parseBool(appDebug)
	}
	if port := os.Getenv("BLOGSMITH_PORT"); port != "" {
		cfg.Server.Address = ":" + port
	}
}

// parseBool parses common truthy string representations.
func parseBool(s string) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return parsed
}

// loadDotEnv loads .env files into the process environment so the env
// overrides below pick them up. Missing files are fine.
func loadDotEnv() error {
	if err := godotenv.Load(".env.local"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env.local: %w", err)
	}
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func Load(path string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaults(&cfg)
	overrideWithEnvVars(&cfg)

	if err := cfg.Server.Validate(); err != nil {
		return nil, fmt.Errorf("server config validation: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
