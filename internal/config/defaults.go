package config

import (
	"github.com/leapstack-labs/sqlscope/pkg/catalog"
	"github.com/leapstack-labs/sqlscope/pkg/format"
)

// Config file names, searched in this order.
const (
	ConfigFileName    = "sqlscope.yaml"
	ConfigFileNameAlt = "sqlscope.yml"
)

// EnvPrefix prefixes environment variables that override config keys.
const EnvPrefix = "SQLSCOPE_"

// Output modes.
const (
	OutputAuto     = "auto"
	OutputText     = "text"
	OutputJSON     = "json"
	OutputYAML     = "yaml"
	OutputMarkdown = "markdown"
)

// Default configuration values.
const (
	DefaultIndexPath = ".sqlscope/index.db"
	DefaultTabWidth  = 4
	DefaultCacheSize = 1024
	DefaultOutput    = OutputAuto
	DefaultNaming    = "sql"
)

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"format.use_tabs":        false,
		"format.tab_width":       DefaultTabWidth,
		"format.identifier_case": "preserve",
		"format.keyword_case":    "preserve",
		"format.add_semicolon":   false,
		"naming":                 DefaultNaming,
		"default_schema":         "",
		"library_list":           []string{},
		"index.path":             DefaultIndexPath,
		"index.workers":          0,
		"cache_size":             DefaultCacheSize,
		"output":                 DefaultOutput,
		"verbose":                false,
	}
}

// Default returns the configuration used when nothing is loaded.
func Default() *Config {
	return &Config{
		Format:    format.DefaultOptions(),
		Naming:    catalog.NamingSQL,
		Index:     IndexConfig{Path: DefaultIndexPath},
		CacheSize: DefaultCacheSize,
		Output:    DefaultOutput,
	}
}
