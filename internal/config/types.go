// Package config loads sqlscope configuration from defaults, a project
// config file, environment variables and command-line flags.
package config

import (
	"fmt"

	"github.com/leapstack-labs/sqlscope/pkg/catalog"
	"github.com/leapstack-labs/sqlscope/pkg/format"
)

// IndexConfig holds settings for the workspace symbol index.
type IndexConfig struct {
	Path    string `koanf:"path"`
	Workers int    `koanf:"workers"`
}

// Config holds all configuration options.
type Config struct {
	Format        format.Options `koanf:"format"`
	Naming        catalog.Naming `koanf:"naming"`
	DefaultSchema string         `koanf:"default_schema"`
	LibraryList   []string       `koanf:"library_list"`
	Index         IndexConfig    `koanf:"index"`
	CacheSize     int            `koanf:"cache_size"`
	Output        string         `koanf:"output"`
	Verbose       bool           `koanf:"verbose"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// Validate checks values that decoding alone cannot reject.
func (c *Config) Validate() error {
	if c.Format.TabWidth < 0 {
		return fmt.Errorf("format.tab_width must not be negative, got %d", c.Format.TabWidth)
	}
	if c.Index.Workers < 0 {
		return fmt.Errorf("index.workers must not be negative, got %d", c.Index.Workers)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be positive, got %d", c.CacheSize)
	}
	switch c.Output {
	case "", OutputAuto, OutputText, OutputJSON, OutputYAML, OutputMarkdown:
	default:
		return fmt.Errorf("invalid output %q: expected auto, text, json, yaml or markdown", c.Output)
	}
	return nil
}

// ResolverOptions returns the catalog options implied by the naming
// settings.
func (c *Config) ResolverOptions() []catalog.Option {
	return []catalog.Option{
		catalog.WithNaming(c.Naming),
		catalog.WithDefaultSchema(c.DefaultSchema),
		catalog.WithLibraryList(c.LibraryList),
	}
}
