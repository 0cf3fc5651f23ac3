package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the mirrordex service configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Repository RepositoryConfig `yaml:"repository"`
	Engine     EngineConfig     `yaml:"engine"`
	Indexer    IndexerConfig    `yaml:"indexer"`
	ACL        ACLConfig        `yaml:"acl"`
	Cursor     CursorConfig     `yaml:"cursor"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// RepositoryConfig holds connection settings for the content repository
// tracking and content APIs.
type RepositoryConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIPath    string `yaml:"api_path"` // tracking API mount point under base_url
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// EngineConfig holds connection settings for the search engine.
type EngineConfig struct {
	BaseURL    string `yaml:"base_url"`
	IndexName  string `yaml:"index_name"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// IndexerConfig holds change-detection loop settings.
type IndexerConfig struct {
	IntervalSec    int      `yaml:"interval_sec"`
	MaxResults     int      `yaml:"max_results"`
	IndexableTypes []string `yaml:"indexable_types"`
	SegmentChars   int      `yaml:"segment_chars"`
}

// ACLConfig holds access-control propagation settings.
type ACLConfig struct {
	// EveryoneRead grants the universal sentinel read access on every
	// document even without an explicit grant. Matches the upstream
	// repository's public-visibility default; disable for closed sites.
	EveryoneRead  *bool  `yaml:"everyone_read"`
	EveryoneGroup string `yaml:"everyone_group"`
}

// CursorConfig holds cursor store settings.
type CursorConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	Key              string   `yaml:"key"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds optional query-side embedding settings. When
// Model is empty, vector queries use the engine's neural pipeline.
type EmbeddingConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// EveryoneRead resolves the configured sentinel policy, defaulting to true.
func (c *Config) EveryoneRead() bool {
	if c.ACL.EveryoneRead == nil {
		return true
	}
	return *c.ACL.EveryoneRead
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Repository.APIPath == "" {
		c.Repository.APIPath = "/alfresco/service/api/solr/"
	}
	if c.Repository.TimeoutSec <= 0 {
		c.Repository.TimeoutSec = 30
	}
	if c.Engine.IndexName == "" {
		c.Engine.IndexName = "alfresco"
	}
	if c.Engine.TimeoutSec <= 0 {
		c.Engine.TimeoutSec = 30
	}
	if c.Indexer.IntervalSec <= 0 {
		c.Indexer.IntervalSec = 60
	}
	if c.Indexer.MaxResults <= 0 {
		c.Indexer.MaxResults = 100
	}
	if len(c.Indexer.IndexableTypes) == 0 {
		c.Indexer.IndexableTypes = []string{"cm:content"}
	}
	if c.Indexer.SegmentChars <= 0 {
		c.Indexer.SegmentChars = 512
	}
	if c.ACL.EveryoneGroup == "" {
		c.ACL.EveryoneGroup = "GROUP_EVERYONE"
	}
	if c.Cursor.Key == "" {
		c.Cursor.Key = "mirrordex:cursor"
	}
	if c.Cursor.ReadinessTimeout <= 0 {
		c.Cursor.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Repository.BaseURL == "" {
		return fmt.Errorf("repository.base_url is required")
	}
	if c.Engine.BaseURL == "" {
		return fmt.Errorf("engine.base_url is required")
	}
	if len(c.Cursor.Addrs) == 0 {
		return fmt.Errorf("cursor.addrs is required")
	}
	if c.Embedding.Model != "" && c.Embedding.APIKey == "" {
		return fmt.Errorf("embedding.api_key is required when embedding.model is set")
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
