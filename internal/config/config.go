// Package config holds the YAML configuration of epubtext.
package config

import (
	"errors"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/yuanying/epubtext/internal/epub"
	"github.com/yuanying/epubtext/internal/extract"
)

const (
	defaultCoverWidth   = 300
	defaultCoverQuality = 85
	defaultWorkers      = 4
	defaultStorePath    = "epubtext.db"
)

type (
	TocConfig struct {
		// LabelPairing is "structural" or "positional".
		LabelPairing string `yaml:"label_pairing"`
	}

	ChapterConfig struct {
		// Format is "text" or "markdown".
		Format string `yaml:"format"`
	}

	CoverConfig struct {
		Width   int `yaml:"width"`
		Quality int `yaml:"quality"`
	}

	StoreConfig struct {
		Path string `yaml:"path"`
	}

	ImportConfig struct {
		Workers int `yaml:"workers"`
	}

	Config struct {
		Logging LoggingConfig `yaml:"logging"`
		Toc     TocConfig     `yaml:"toc"`
		Chapter ChapterConfig `yaml:"chapter"`
		Cover   CoverConfig   `yaml:"cover"`
		Store   StoreConfig   `yaml:"store"`
		Import  ImportConfig  `yaml:"import"`
	}
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{ConsoleLogger: LoggerConfig{Level: "normal"}},
		Toc:     TocConfig{LabelPairing: "structural"},
		Chapter: ChapterConfig{Format: "text"},
		Cover:   CoverConfig{Width: defaultCoverWidth, Quality: defaultCoverQuality},
		Store:   StoreConfig{Path: defaultStorePath},
		Import:  ImportConfig{Workers: defaultWorkers},
	}
}

// Load reads the YAML file at path on top of the defaults. An empty path or a
// missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("unable to read configuration %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unable to parse configuration %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated values and ranges.
func (c *Config) Validate() error {
	switch c.Logging.ConsoleLogger.Level {
	case "none", "debug", "normal":
	default:
		return fmt.Errorf("logging.console.level must be none, debug or normal, got %q", c.Logging.ConsoleLogger.Level)
	}
	if _, err := epub.ParseLabelPairing(c.Toc.LabelPairing); err != nil {
		return fmt.Errorf("toc.label_pairing: %w", err)
	}
	if _, err := extract.ParseFormat(c.Chapter.Format); err != nil {
		return fmt.Errorf("chapter.format: %w", err)
	}
	if c.Cover.Width <= 0 {
		return fmt.Errorf("cover.width must be positive, got %d", c.Cover.Width)
	}
	if c.Cover.Quality < 1 || c.Cover.Quality > 100 {
		return fmt.Errorf("cover.quality must be within 1..100, got %d", c.Cover.Quality)
	}
	if c.Import.Workers <= 0 {
		return fmt.Errorf("import.workers must be positive, got %d", c.Import.Workers)
	}
	return nil
}

// LabelPairing returns the configured TOC label pairing.
func (c *Config) LabelPairing() epub.LabelPairing {
	p, _ := epub.ParseLabelPairing(c.Toc.LabelPairing)
	return p
}
