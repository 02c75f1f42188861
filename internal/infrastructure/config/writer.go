package config

import (
	"fmt"
	"os"
)

// DefaultConfigYAML is the default configuration content.
const DefaultConfigYAML = `# edrdr configuration

sqlite:
  path: .edrdr/edrdr.db

# Name matcher thresholds. Change with care: snapshots computed with
# different thresholds are not comparable.
matching:
  reject_below: 0.6
  smart_limit: 0.95
  straight_limit: 0.93
  min_pair_limit: 0.8
  list_cutoff: 0.93
  max_variants: 1000
  min_prefix_len: 10
  max_splits: 7
  noise_ratio: 90
  declaration_cutoff: 0.93

snapshot:
  mass_cutoff: 100
  workers: 4
  mass_cache_size: 8
  min_revision_records: 1000

llm:
  provider: openai
  model: gpt-4o-mini
  # api_key: your-api-key (or set OPENAI_API_KEY env var)

embedder:
  provider: openai
  model: text-embedding-3-small
  # api_key: your-api-key (or set OPENAI_API_KEY env var)

qdrant:
  host: localhost
  port: 6334
  # collection: edrdr_edr
  # api_key: your-api-key (for Qdrant Cloud)

redis:
  # url: redis://localhost:6379/0 (or set EDRDR_REDIS_URL env var)

log:
  level: info

http:
  addr: ":8080"
`

// WriteDefault creates the .edrdr directory and writes a default config file.
func WriteDefault(basePath string) error {
	configDir := ConfigDir(basePath)
	configFile := ConfigFilePath(basePath)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists: %s", configFile)
	}

	if err := os.WriteFile(configFile, []byte(DefaultConfigYAML), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Exists checks if an edrdr config exists in the given path.
func Exists(basePath string) bool {
	_, err := os.Stat(ConfigFilePath(basePath))
	return err == nil
}
