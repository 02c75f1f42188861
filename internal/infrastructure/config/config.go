// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dchaplinsky/edrdr/internal/domain/services"
)

const (
	// DefaultConfigDir is the directory name for edrdr configuration.
	DefaultConfigDir = ".edrdr"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultDatabaseFile is the default SQLite file name inside the config directory.
	DefaultDatabaseFile = "edrdr.db"
	// EnvFile is loaded from the base path before environment overrides apply.
	EnvFile = ".env"
)

var (
	// reNonAlphanumeric matches characters that aren't alphanumeric or underscore.
	reNonAlphanumeric = regexp.MustCompile(`[^a-z0-9_]`)
	// reMultipleUnderscores matches consecutive underscores.
	reMultipleUnderscores = regexp.MustCompile(`_+`)
)

// Config holds static infrastructure configuration (read-only after init).
type Config struct {
	SQLite   SQLiteConfig            `yaml:"sqlite,omitempty"`
	Matching services.MatchingConfig `yaml:"matching"`
	Snapshot SnapshotConfig          `yaml:"snapshot"`
	LLM      LLMConfig               `yaml:"llm,omitempty"`
	Embedder EmbedderConfig          `yaml:"embedder,omitempty"`
	Qdrant   QdrantConfig            `yaml:"qdrant,omitempty"`
	Redis    RedisConfig             `yaml:"redis,omitempty"`
	Log      LogConfig               `yaml:"log,omitempty"`
	HTTP     HTTPConfig              `yaml:"http,omitempty"`
}

// SQLiteConfig holds configuration for the SQLite fact and snapshot store.
type SQLiteConfig struct {
	// Path is the database file. Relative paths resolve against the base path.
	Path string `yaml:"path,omitempty"`
}

// SnapshotConfig holds batch computation settings.
type SnapshotConfig struct {
	MassCutoff         int `yaml:"mass_cutoff"`
	Workers            int `yaml:"workers"`
	MassCacheSize      int `yaml:"mass_cache_size"`
	MinRevisionRecords int `yaml:"min_revision_records"`
}

// LLMConfig holds configuration for the person extraction model.
type LLMConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
	// BaseURL points at an OpenAI-compatible endpoint. Empty means api.openai.com.
	BaseURL string `yaml:"base_url,omitempty"`
}

// EmbedderConfig holds configuration for the embedding provider.
type EmbedderConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
}

// QdrantConfig holds configuration for the Qdrant search index.
type QdrantConfig struct {
	Host       string `yaml:"host,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	Collection string `yaml:"collection,omitempty"`
	APIKey     string `yaml:"api_key,omitempty"`
}

// RedisConfig holds configuration for the extraction cache. An empty URL
// disables the cache.
type RedisConfig struct {
	URL string `yaml:"url,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
}

// HTTPConfig holds settings of the read API.
type HTTPConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		SQLite: SQLiteConfig{
			Path: filepath.Join(DefaultConfigDir, DefaultDatabaseFile),
		},
		Matching: services.DefaultMatchingConfig(),
		Snapshot: SnapshotConfig{
			MassCutoff:         100,
			Workers:            4,
			MassCacheSize:      8,
			MinRevisionRecords: 1000,
		},
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
		},
		Embedder: EmbedderConfig{
			Provider: "openai",
			Model:    "text-embedding-3-small",
		},
		Qdrant: QdrantConfig{
			Host: "localhost",
			Port: 6334,
		},
		Log: LogConfig{
			Level: "info",
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
	}
}

// Load loads configuration from the .edrdr directory in the given path.
func Load(basePath string) (*Config, error) {
	configFile := ConfigFilePath(basePath)

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s (run 'edrdr init' first)", configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Start with defaults
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := godotenv.Load(filepath.Join(basePath, EnvFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", EnvFile, err)
	}
	cfg.applyEnvOverrides()

	if cfg.SQLite.Path != "" && cfg.SQLite.Path != ":memory:" && !filepath.IsAbs(cfg.SQLite.Path) {
		cfg.SQLite.Path = filepath.Join(basePath, cfg.SQLite.Path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = key
		}
		if c.Embedder.APIKey == "" {
			c.Embedder.APIKey = key
		}
	}
	if key := os.Getenv("QDRANT_API_KEY"); key != "" {
		if c.Qdrant.APIKey == "" {
			c.Qdrant.APIKey = key
		}
	}
	if url := os.Getenv("EDRDR_REDIS_URL"); url != "" {
		c.Redis.URL = url
	}
	if level := os.Getenv("EDRDR_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if path := os.Getenv("EDRDR_DB_PATH"); path != "" {
		c.SQLite.Path = path
	}
	if workers, err := strconv.Atoi(os.Getenv("EDRDR_WORKERS")); err == nil && workers > 0 {
		c.Snapshot.Workers = workers
	}
}

// Validate rejects thresholds outside their meaningful ranges.
func (c *Config) Validate() error {
	m := c.Matching
	for name, v := range map[string]float64{
		"reject_below":       m.RejectBelow,
		"smart_limit":        m.SmartLimit,
		"straight_limit":     m.StraightLimit,
		"min_pair_limit":     m.MinPairLimit,
		"list_cutoff":        m.ListCutoff,
		"declaration_cutoff": m.DeclarationCutoff,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("matching.%s must be within [0, 1], got %v", name, v)
		}
	}
	if m.MaxVariants <= 0 {
		return fmt.Errorf("matching.max_variants must be positive, got %d", m.MaxVariants)
	}
	if m.MaxSplits < 1 || m.MaxSplits > 10 {
		return fmt.Errorf("matching.max_splits must be within [1, 10], got %d", m.MaxSplits)
	}
	if m.NoiseRatio < 0 || m.NoiseRatio > 100 {
		return fmt.Errorf("matching.noise_ratio must be within [0, 100], got %d", m.NoiseRatio)
	}
	if c.Snapshot.MassCutoff <= 0 {
		return fmt.Errorf("snapshot.mass_cutoff must be positive, got %d", c.Snapshot.MassCutoff)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// ConfigDir returns the path to the .edrdr config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// SanitizeName converts a dataset name to a valid collection suffix.
func SanitizeName(name string) string {
	name = strings.ToLower(name)

	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")

	name = reNonAlphanumeric.ReplaceAllString(name, "")
	name = reMultipleUnderscores.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")

	if name == "" {
		return "default"
	}

	return name
}

// CollectionName returns the configured search collection, or one derived
// from the dataset name.
func (c *Config) CollectionName(dataset string) string {
	if c.Qdrant.Collection != "" {
		return c.Qdrant.Collection
	}
	return "edrdr_" + SanitizeName(dataset)
}
