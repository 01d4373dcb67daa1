package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/FarhamAghdasi/send-ai/internal/filter"
	"github.com/FarhamAghdasi/send-ai/internal/projects"
	"github.com/FarhamAghdasi/send-ai/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "1M", cfg.MaxRead)
	assert.Equal(t, string(filter.PolicyAncestor), cfg.FolderPolicy)
	assert.Equal(t, 0, cfg.Workers)
	assert.Empty(t, cfg.ExcludeFolders)
	assert.False(t, cfg.Split)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("SENDAI_WORKERS", "3")
	t.Setenv("SENDAI_KEYWORD", "import")
	t.Setenv("SENDAI_EXCLUDE_FOLDERS", ".git,dist")
	t.Setenv("SENDAI_SPLIT", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "import", cfg.Keyword)
	assert.Equal(t, []string{".git", "dist"}, cfg.ExcludeFolders)
	assert.True(t, cfg.Split)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sendai.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
exclude_folders: [".git", "node_modules"]
regex: "func \\w+"
regex_required: true
max_read: 512K
format: md
`), 0644))

	t.Setenv("SENDAI_FORMAT", "json")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{".git", "node_modules"}, cfg.ExcludeFolders)
	assert.Equal(t, `func \w+`, cfg.Regex)
	assert.True(t, cfg.RegexRequired)
	assert.Equal(t, "json", cfg.Format, "environment wins over the file")

	n, err := cfg.MaxReadBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(512*1024), n)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApplyProject(t *testing.T) {
	cfg := &Config{Keyword: "keep", ExcludeExtensions: []string{".tmp"}}
	cfg.ApplyProject(projects.Defaults{
		ExcludeFolders:    []string{".git", "vendor"},
		ExcludeExtensions: []string{".svg"},
		FilterFolder:      "app",
		Keyword:           "ignored",
		OutputFormat:      "md",
	})

	assert.Equal(t, []string{".git", "vendor"}, cfg.ExcludeFolders)
	assert.Equal(t, []string{".tmp"}, cfg.ExcludeExtensions, "explicit values win")
	assert.Equal(t, "app", cfg.FilterFolder)
	assert.Equal(t, "keep", cfg.Keyword)
	assert.Equal(t, "md", cfg.Format)
}

func TestApplyProject_ExplicitEmptyValues(t *testing.T) {
	d := projects.Defaults{
		ExcludeFolders: []string{".git", "node_modules"},
		FilterFolder:   "src",
		OutputFormat:   "md",
	}

	cfg := &Config{}
	cfg.ApplyProject(d, "filter_folder", "exclude_folders")

	assert.Empty(t, cfg.FilterFolder, "an explicitly cleared filter stays cleared")
	assert.Empty(t, cfg.ExcludeFolders)
	assert.Equal(t, "md", cfg.Format)
}

func TestResolveProject_ClearsFolderFilter(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "package.json"), []byte(`{"name":"lib"}`), 0644))

	cfg := &Config{}
	name, err := cfg.ResolveProject(root, "filter_folder")
	require.NoError(t, err)
	assert.Equal(t, "nodejs", name)
	assert.Empty(t, cfg.FilterFolder)
	assert.Contains(t, cfg.ExcludeFolders, "node_modules")
}

func TestResolveProject(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module x\n"), 0644))

	cfg := &Config{}
	name, err := cfg.ResolveProject(root)
	require.NoError(t, err)
	assert.Equal(t, "go", name)
	assert.Contains(t, cfg.ExcludeFolders, "vendor")

	cfg = &Config{ProjectType: "laravel"}
	name, err = cfg.ResolveProject(root)
	require.NoError(t, err)
	assert.Equal(t, "laravel", name)
	assert.Equal(t, "app", cfg.FilterFolder)

	cfg = &Config{ProjectType: "cobol"}
	_, err = cfg.ResolveProject(root)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestFilterOptions_ExcludesDefaultOutput(t *testing.T) {
	root := t.TempDir()
	cfg := &Config{ExcludeFolders: []string{".git"}}
	assert.Equal(t, []string{".git", "output/"}, cfg.FilterOptions(root).ExcludeFolders)

	dir, auto := cfg.OutputPath(root)
	assert.True(t, auto)
	assert.Equal(t, filepath.Join(root, "output"), dir)

	outside := t.TempDir()
	cfg.OutputDir = outside
	assert.Equal(t, []string{".git"}, cfg.FilterOptions(root).ExcludeFolders)
	dir, auto = cfg.OutputPath(root)
	assert.False(t, auto)
	assert.Equal(t, outside, dir)
}

func TestFilterOptions_ExcludesOutputInsideRoot(t *testing.T) {
	root := t.TempDir()

	cfg := &Config{OutputDir: filepath.Join(root, "docs", "reports")}
	opts := cfg.FilterOptions(root)
	assert.Equal(t, []string{"docs/reports/"}, opts.ExcludeFolders)
	assert.Empty(t, opts.ExcludeFiles)

	cfg = &Config{OutputDir: t.TempDir(), OutputFile: filepath.Join(root, "snapshot.md")}
	opts = cfg.FilterOptions(root)
	assert.Empty(t, opts.ExcludeFolders)
	assert.Equal(t, []string{"snapshot.md"}, opts.ExcludeFiles)

	// The root itself and paths beside it are never excluded
	cfg = &Config{OutputDir: root, OutputFile: filepath.Join(filepath.Dir(root), "elsewhere.md")}
	opts = cfg.FilterOptions(root)
	assert.Empty(t, opts.ExcludeFolders)
	assert.Empty(t, opts.ExcludeFiles)

	fc, err := (&Config{MaxRead: "1M", OutputFile: filepath.Join(root, "snapshot.md")}).Validate(root)
	require.NoError(t, err)
	assert.Contains(t, fc.ExcludedFolders(), "output")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{MaxRead: "1M", FolderPolicy: "ancestor"}
	}

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"negative workers", func(c *Config) { c.Workers = -1 }},
		{"bad format", func(c *Config) { c.Format = "xml" }},
		{"bad max read", func(c *Config) { c.MaxRead = "lots" }},
		{"zero max read", func(c *Config) { c.MaxRead = "0" }},
		{"bad regex", func(c *Config) { c.Regex = "(" }},
		{"bad date", func(c *Config) { c.ModifiedAfter = "yesterday" }},
		{"bad policy", func(c *Config) { c.FolderPolicy = "sometimes" }},
		{"split to stdout", func(c *Config) { c.Split, c.Stdout = true, true }},
		{"file and stdout", func(c *Config) { c.OutputFile, c.Stdout = "out.md", true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(cfg)
			_, err := cfg.Validate(t.TempDir())
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
		})
	}

	fc, err := valid().Validate(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, filter.PolicyAncestor, fc.FolderPolicy())
}

func TestReportFormat(t *testing.T) {
	f, err := (&Config{}).ReportFormat()
	require.NoError(t, err)
	assert.Equal(t, report.FormatText, f)

	f, err = (&Config{Format: "markdown"}).ReportFormat()
	require.NoError(t, err)
	assert.Equal(t, report.FormatMarkdown, f)
}
