package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlscope/pkg/catalog"
	"github.com/leapstack-labs/sqlscope/pkg/format"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "", "")
	flags.String("naming", "", "")
	flags.String("schema", "", "")
	flags.String("output", "", "")
	flags.Bool("verbose", false, "")
	flags.Int("tab-width", 0, "")
	flags.Bool("use-tabs", false, "")
	flags.String("keyword-case", "", "")
	flags.StringSlice("library-list", nil, "")
	return flags
}

func TestLoadFromDir_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)

	assert.Equal(t, DefaultTabWidth, cfg.Format.TabWidth)
	assert.False(t, cfg.Format.UseTabs)
	assert.Equal(t, format.CasePreserve, cfg.Format.KeywordCase)
	assert.Equal(t, catalog.NamingSQL, cfg.Naming)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, DefaultCacheSize, cfg.CacheSize)
	assert.Equal(t, filepath.Join(dir, DefaultIndexPath), cfg.Index.Path)
	assert.Empty(t, cfg.LibraryList)
	assert.Empty(t, cfg.File)
	assert.Equal(t, dir, cfg.ProjectRoot)
}

func TestLoadFromDir_File(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, ConfigFileName, `
format:
  use_tabs: true
  identifier_case: lower
  keyword_case: upper
  add_semicolon: true
naming: system
library_list:
  - QGPL
  - MYLIB
index:
  path: /tmp/idx.db
  workers: 3
output: json
`)

	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)

	assert.True(t, cfg.Format.UseTabs)
	assert.Equal(t, DefaultTabWidth, cfg.Format.TabWidth)
	assert.Equal(t, format.CaseLower, cfg.Format.IdentifierCase)
	assert.Equal(t, format.CaseUpper, cfg.Format.KeywordCase)
	assert.True(t, cfg.Format.AddSemiColon)
	assert.Equal(t, catalog.NamingSystem, cfg.Naming)
	assert.Equal(t, []string{"QGPL", "MYLIB"}, cfg.LibraryList)
	assert.Equal(t, "/tmp/idx.db", cfg.Index.Path)
	assert.Equal(t, 3, cfg.Index.Workers)
	assert.Equal(t, OutputJSON, cfg.Output)
	assert.Equal(t, path, cfg.File)
}

func TestLoadFromDir_AltFileAndUpwardSearch(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, ConfigFileNameAlt, "default_schema: sales\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, err := LoadFromDir(nested)
	require.NoError(t, err)

	assert.Equal(t, "sales", cfg.DefaultSchema)
	assert.Equal(t, root, cfg.ProjectRoot)
}

func TestLoadFromDir_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{name: "bad case", content: "format:\n  keyword_case: shout\n", errSubstr: "invalid case"},
		{name: "bad naming", content: "naming: dotted\n", errSubstr: "invalid naming"},
		{name: "bad output", content: "output: html\n", errSubstr: "invalid output"},
		{name: "negative tab width", content: "format:\n  tab_width: -2\n", errSubstr: "tab_width"},
		{name: "zero cache", content: "cache_size: 0\n", errSubstr: "cache_size"},
		{name: "broken yaml", content: "format: [\n", errSubstr: "error reading config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, ConfigFileName, tt.content)

			_, err := LoadFromDir(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ConfigFileName, "format:\n  tab_width: 8\nnaming: sql\n")
	t.Setenv("SQLSCOPE_FORMAT_TAB_WIDTH", "2")
	t.Setenv("SQLSCOPE_NAMING", "system")
	t.Setenv("SQLSCOPE_LIBRARY_LIST", "LIB1, LIB2")
	t.Setenv("SQLSCOPE_INDEX_WORKERS", "5")

	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Format.TabWidth)
	assert.Equal(t, catalog.NamingSystem, cfg.Naming)
	assert.Equal(t, []string{"LIB1", "LIB2"}, cfg.LibraryList)
	assert.Equal(t, 5, cfg.Index.Workers)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	dir := t.TempDir()
	cfgFile := writeConfig(t, dir, ConfigFileName, "default_schema: filed\noutput: yaml\n")
	t.Setenv("SQLSCOPE_DEFAULT_SCHEMA", "envd")

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{
		"--config", cfgFile,
		"--schema", "flagged",
		"--tab-width", "3",
		"--keyword-case", "lower",
		"--library-list", "A,B",
	}))

	cfg, err := Load(cfgFile, flags)
	require.NoError(t, err)

	assert.Equal(t, "flagged", cfg.DefaultSchema)
	assert.Equal(t, 3, cfg.Format.TabWidth)
	assert.Equal(t, format.CaseLower, cfg.Format.KeywordCase)
	assert.Equal(t, []string{"A", "B"}, cfg.LibraryList)
	// Unchanged flags leave the file value alone.
	assert.Equal(t, OutputYAML, cfg.Output)
	assert.Equal(t, dir, cfg.ProjectRoot)
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SQLSCOPE_OUTPUT", "output"},
		{"SQLSCOPE_DEFAULT_SCHEMA", "default_schema"},
		{"SQLSCOPE_FORMAT_KEYWORD_CASE", "format.keyword_case"},
		{"SQLSCOPE_INDEX_PATH", "index.path"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, envKey(tt.in))
		})
	}
}

func TestFlagKey(t *testing.T) {
	assert.Equal(t, "default_schema", flagKey("schema"))
	assert.Equal(t, "format.add_semicolon", flagKey("add-semicolon"))
	assert.Equal(t, "library_list", flagKey("library-list"))
	assert.Equal(t, "verbose", flagKey("verbose"))
}

func TestResolverOptions(t *testing.T) {
	cfg := &Config{Naming: catalog.NamingSystem, LibraryList: []string{"L1"}, DefaultSchema: "S"}
	assert.Len(t, cfg.ResolverOptions(), 3)
}

func TestGetLogger(t *testing.T) {
	fallback := GetLogger(context.Background())
	require.NotNil(t, fallback)

	logger := slog.New(slog.DiscardHandler)
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))
	assert.Equal(t, loggerKey{}, LoggerKey())
}

func TestGetConfig(t *testing.T) {
	assert.Equal(t, Default(), GetConfig(context.Background()))

	cfg := Default()
	cfg.DefaultSchema = "LIB"
	ctx := WithConfig(context.Background(), cfg)
	assert.Same(t, cfg, GetConfig(ctx))
}

func TestDefaultMatchesEmptyLoad(t *testing.T) {
	dir := t.TempDir()
	loaded, err := LoadFromDir(dir)
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Format, loaded.Format)
	assert.Equal(t, def.Naming, loaded.Naming)
	assert.Equal(t, def.CacheSize, loaded.CacheSize)
	assert.Equal(t, def.Output, loaded.Output)
	assert.NoError(t, def.Validate())
}
