package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/leapstack-labs/sqlscope/internal/config"
)

// generateConfigDocs generates the configuration file reference.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating config docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := generateConfigurationDoc(outDir); err != nil {
		return fmt.Errorf("failed to generate configuration.md: %w", err)
	}
	log.Printf("  Generated configuration.md")

	return nil
}

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Description string
	Category    string // "general", "format", "naming", "index"
}

// getConfigSchema returns the configuration schema definition.
// This is based on internal/config/types.go Config.
func getConfigSchema() []ConfigField {
	return []ConfigField{
		{Name: "output", Type: "string", Default: config.DefaultOutput, Description: "Output format: auto, text, markdown, json, yaml", Category: "general"},
		{Name: "verbose", Type: "bool", Default: "false", Description: "Log debug messages to stderr", Category: "general"},
		{Name: "cache_size", Type: "int", Default: strconv.Itoa(config.DefaultCacheSize), Description: "Entries kept by the object resolution cache", Category: "general"},

		{Name: "format.use_tabs", Type: "bool", Default: "false", Description: "Indent with tabs instead of spaces", Category: "format"},
		{Name: "format.tab_width", Type: "int", Default: strconv.Itoa(config.DefaultTabWidth), Description: "Spaces per indent level", Category: "format"},
		{Name: "format.identifier_case", Type: "string", Default: "preserve", Description: "Identifier case: preserve, upper, lower", Category: "format"},
		{Name: "format.keyword_case", Type: "string", Default: "preserve", Description: "Keyword case: preserve, upper, lower", Category: "format"},
		{Name: "format.add_semicolon", Type: "bool", Default: "false", Description: "Terminate formatted statements with a semicolon", Category: "format"},

		{Name: "naming", Type: "string", Default: config.DefaultNaming, Description: "Object naming: sql (schema.name) or system (library/name)", Category: "naming"},
		{Name: "default_schema", Type: "string", Description: "Schema used for unqualified names", Category: "naming"},
		{Name: "library_list", Type: "[]string", Description: "Libraries searched in order for unqualified names with system naming", Category: "naming"},

		{Name: "index.path", Type: "string", Default: config.DefaultIndexPath, Description: "Symbol index database, relative to the project root", Category: "index"},
		{Name: "index.workers", Type: "int", Default: "0", Description: "Parallel file parsers (0 uses the CPU count)", Category: "index"},
	}
}

var configSections = []struct {
	category string
	title    string
	intro    string
}{
	{"general", "General", "Top-level settings that apply to every command:"},
	{"format", "Formatting", "Options used by `sqlscope format` and the language server:"},
	{"naming", "Object Naming", "How unqualified object names are resolved against the index:"},
	{"index", "Symbol Index", "Where `sqlscope index` stores the objects a workspace defines:"},
}

// generateConfigurationDoc generates the configuration reference page.
func generateConfigurationDoc(outDir string) error {
	w := NewMarkdownWriter()

	w.Frontmatter("Configuration", "sqlscope configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph(fmt.Sprintf("sqlscope reads %s (or %s) from the project root. "+
		"The project root is the nearest parent directory holding a config file.",
		InlineCode(config.ConfigFileName), InlineCode(config.ConfigFileNameAlt)))

	fields := getConfigSchema()
	for _, section := range configSections {
		w.Header(2, section.title)
		w.Paragraph(section.intro)

		headers := []string{"Field", "Type", "Default", "Description"}
		var rows [][]string
		for _, f := range fields {
			if f.Category != section.category {
				continue
			}
			defVal := f.Default
			if defVal == "" {
				defVal = "-"
			}
			rows = append(rows, []string{
				InlineCode(f.Name),
				f.Type,
				InlineCode(defVal),
				f.Description,
			})
		}
		w.Table(headers, rows)
	}

	w.Header(2, "Example")
	w.CodeBlock("yaml", `output: text
naming: system
library_list: [APPLIB, COMMON]

format:
  keyword_case: upper
  tab_width: 2

index:
  path: .sqlscope/index.db`)

	w.Header(2, "Precedence")
	w.BulletList([]string{
		"Command-line flags",
		fmt.Sprintf("Environment variables prefixed with %s", InlineCode(config.EnvPrefix)),
		"The config file",
		"Built-in defaults",
	})

	filename := filepath.Join(outDir, "configuration.md")
	return os.WriteFile(filename, w.Bytes(), 0600)
}
