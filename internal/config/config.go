package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/friedrich-daniel/calendar-time-analysis/internal/classify"
)

// SourceConfig describes one ICS input: a local path or a subscription URL.
type SourceConfig struct {
	URL  string `yaml:"url" json:"url"`
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Config is the top-level application configuration.
type Config struct {
	// Timezone is the IANA display zone used when rendering event starts.
	Timezone string `yaml:"timezone" json:"timezone"`

	// CategoryRegex extracts category labels from title prefixes.
	CategoryRegex string `yaml:"category_regex" json:"category_regex"`

	// Listen is the HTTP listen address for serve mode.
	Listen string `yaml:"listen" json:"listen"`

	// RefreshCron is the cron schedule for serve-mode report refresh.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// CacheDir backs the HTTP conditional-request cache for URL sources.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// Sources are the configured ICS inputs for serve mode; one-shot runs
	// usually pass a file on the command line instead.
	Sources []SourceConfig `yaml:"sources" json:"sources"`
}

// DefaultConfig returns the in-memory defaults.
func DefaultConfig() *Config {
	return &Config{
		Timezone:      "Europe/Berlin",
		CategoryRegex: classify.DefaultPattern,
		Listen:        "127.0.0.1:8080",
		RefreshCron:   "*/15 * * * *",
		CacheDir:      "./.caltime-cache",
		Sources:       []SourceConfig{},
	}
}

// Normalize fills missing values so partially-filled configs still behave.
func (c *Config) Normalize() {
	if c.Timezone == "" {
		c.Timezone = "Europe/Berlin"
	}
	if c.CategoryRegex == "" {
		c.CategoryRegex = classify.DefaultPattern
	}
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}
	if c.CacheDir == "" {
		c.CacheDir = "./.caltime-cache"
	}
	if c.Sources == nil {
		c.Sources = []SourceConfig{}
	}
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults and writes them to disk (0600) for the next run.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes the configuration atomically (temp file + rename, 0600).
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".caltime-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
