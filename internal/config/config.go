// Package config loads the pagebuilder process configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file LoadFromDir looks for.
const FileName = "pagebuilder.yaml"

// Config is the process configuration. Zero fields keep their defaults.
type Config struct {
	PageID   string         `yaml:"page_id"`
	Debug    bool           `yaml:"debug"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Sections SectionsConfig `yaml:"sections"`
	Storage  StorageConfig  `yaml:"storage"`
	Server   ServerConfig   `yaml:"server"`
	Preview  PreviewConfig  `yaml:"preview"`
	History  HistoryConfig  `yaml:"history"`
}

// CatalogConfig points the picker at a remote section catalog. An empty URL
// uses the registered section types.
type CatalogConfig struct {
	URL             string `yaml:"url"`
	Timeout         string `yaml:"timeout"`          // e.g. "5s"
	RefreshInterval string `yaml:"refresh_interval"` // minimum time between fetches
}

// SectionsConfig adds section schemas to the built-in set.
type SectionsConfig struct {
	Dir     string `yaml:"dir"`
	OpenAPI string `yaml:"openapi"`
}

type StorageConfig struct {
	Path string `yaml:"path"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type PreviewConfig struct {
	Theme        string `yaml:"theme"`
	Variant      string `yaml:"variant"`
	Minify       bool   `yaml:"minify"`
	TemplatesDir string `yaml:"templates_dir"`
}

type HistoryConfig struct {
	Limit int `yaml:"limit"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		PageID: "default",
		Catalog: CatalogConfig{
			Timeout:         "10s",
			RefreshInterval: "1s",
		},
		Storage: StorageConfig{Path: "pagebuilder.db"},
		Server:  ServerConfig{Addr: "127.0.0.1:8080"},
		Preview: PreviewConfig{Theme: "default", Variant: "light"},
	}
}

// Load reads path on top of the defaults. An empty path or a missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.resolvePaths(filepath.Dir(path))
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromDir loads dir/pagebuilder.yaml, or the defaults when it is absent.
func LoadFromDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, FileName))
}

// Validate checks durations and limits.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.PageID) == "" {
		return errors.New("page_id must not be empty")
	}
	if _, err := parseDuration(c.Catalog.Timeout); err != nil {
		return fmt.Errorf("catalog.timeout: %w", err)
	}
	if _, err := parseDuration(c.Catalog.RefreshInterval); err != nil {
		return fmt.Errorf("catalog.refresh_interval: %w", err)
	}
	if c.History.Limit < 0 {
		return fmt.Errorf("history.limit must be >= 0, got %d", c.History.Limit)
	}
	return nil
}

// CatalogTimeout returns the parsed catalog.timeout, zero when unset.
func (c *Config) CatalogTimeout() time.Duration {
	d, _ := parseDuration(c.Catalog.Timeout)
	return d
}

// CatalogRefreshInterval returns the parsed catalog.refresh_interval.
func (c *Config) CatalogRefreshInterval() time.Duration {
	d, _ := parseDuration(c.Catalog.RefreshInterval)
	return d
}

// Relative file paths in the file are taken relative to the file itself.
func (c *Config) resolvePaths(base string) {
	for _, p := range []*string{
		&c.Sections.Dir,
		&c.Sections.OpenAPI,
		&c.Preview.TemplatesDir,
		&c.Storage.Path,
	} {
		if *p == "" || *p == ":memory:" || filepath.IsAbs(*p) {
			continue
		}
		*p = filepath.Join(base, *p)
	}
}

func parseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", raw)
	}
	return d, nil
}
