// Package config loads the run configuration from defaults, SENDAI_*
// environment variables and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/FarhamAghdasi/send-ai/internal/filesystem"
	"github.com/FarhamAghdasi/send-ai/internal/filter"
	"github.com/FarhamAghdasi/send-ai/internal/output"
	"github.com/FarhamAghdasi/send-ai/internal/projects"
	"github.com/FarhamAghdasi/send-ai/internal/report"
	"github.com/FarhamAghdasi/send-ai/internal/tokens"
	"github.com/spf13/viper"
)

// ErrInvalidConfig is wrapped by every validation error
var ErrInvalidConfig = errors.New("invalid configuration")

// EnvPrefix is the prefix of configuration environment variables
const EnvPrefix = "SENDAI"

// Config represents the run configuration
type Config struct {
	// Filter settings
	ExcludeFolders    []string `mapstructure:"exclude_folders"`    // folder names, or root-relative paths containing "/"
	ExcludeExtensions []string `mapstructure:"exclude_extensions"` // extensions, compound suffixes allowed
	FilterFolder      string   `mapstructure:"filter_folder"`      // required folder-name substring
	FolderPolicy      string   `mapstructure:"folder_policy"`      // ancestor, every-level
	Keyword           string   `mapstructure:"keyword"`            // case-sensitive
	KeywordRequired   bool     `mapstructure:"keyword_required"`   // drop content of files without the keyword
	Regex             string   `mapstructure:"regex"`              // RE2 syntax
	RegexRequired     bool     `mapstructure:"regex_required"`     // drop content of files without a match
	MinSize           int64    `mapstructure:"min_size"`           // bytes
	ModifiedAfter     string   `mapstructure:"modified_after"`     // YYYY-MM-DD

	// Project settings
	ProjectType  string `mapstructure:"project_type"`  // detected when empty
	ProjectsFile string `mapstructure:"projects_file"` // YAML overrides for project defaults

	// Loader settings
	Workers          int    `mapstructure:"workers"`           // 0 means CPU cores * 2
	MaxRead          string `mapstructure:"max_read"`          // per-file read ceiling
	FallbackEncoding string `mapstructure:"fallback_encoding"` // charset for non-UTF-8 text
	Tokens           bool   `mapstructure:"tokens"`            // count tokens per file
	TokensModel      string `mapstructure:"tokens_model"`      // model whose encoding is used

	// Report settings
	Format     string `mapstructure:"format"`      // txt, json, md, html
	OutputDir  string `mapstructure:"output_dir"`  // <root>/output when empty
	OutputFile string `mapstructure:"output_file"` // explicit report file, replaces numbered output
	Split      bool   `mapstructure:"split"`       // split large reports into parts
	Stdout     bool   `mapstructure:"stdout"`      // print the report instead of saving it
}

// Load loads configuration from defaults, environment variables and, when
// configFile is set, a YAML file. Environment variables win over the file.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("exclude_folders", []string{})
	v.SetDefault("exclude_extensions", []string{})
	v.SetDefault("filter_folder", "")
	v.SetDefault("folder_policy", string(filter.PolicyAncestor))
	v.SetDefault("keyword", "")
	v.SetDefault("keyword_required", false)
	v.SetDefault("regex", "")
	v.SetDefault("regex_required", false)
	v.SetDefault("min_size", 0)
	v.SetDefault("modified_after", "")
	v.SetDefault("project_type", "")
	v.SetDefault("projects_file", "")
	v.SetDefault("workers", 0)
	v.SetDefault("max_read", "1M")
	v.SetDefault("fallback_encoding", "")
	v.SetDefault("tokens", false)
	v.SetDefault("tokens_model", tokens.DefaultModel)
	v.SetDefault("format", "")
	v.SetDefault("output_dir", "")
	v.SetDefault("output_file", "")
	v.SetDefault("split", false)
	v.SetDefault("stdout", false)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	// Read environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyProject fills every unset filter and report setting from project
// defaults. Keys listed in explicit (mapstructure names) were set on purpose,
// possibly to an empty value, and are left alone.
func (c *Config) ApplyProject(d projects.Defaults, explicit ...string) {
	set := make(map[string]bool, len(explicit))
	for _, key := range explicit {
		set[key] = true
	}
	fill := func(key string, empty bool) bool {
		return empty && !set[key]
	}

	if fill("exclude_folders", len(c.ExcludeFolders) == 0) {
		c.ExcludeFolders = d.ExcludeFolders
	}
	if fill("exclude_extensions", len(c.ExcludeExtensions) == 0) {
		c.ExcludeExtensions = d.ExcludeExtensions
	}
	if fill("filter_folder", c.FilterFolder == "") {
		c.FilterFolder = d.FilterFolder
	}
	if fill("keyword", c.Keyword == "") {
		c.Keyword = d.Keyword
	}
	if fill("regex", c.Regex == "") {
		c.Regex = d.Regex
	}
	if fill("min_size", c.MinSize == 0) {
		c.MinSize = d.MinSize
	}
	if fill("modified_after", c.ModifiedAfter == "") {
		c.ModifiedAfter = d.ModifiedAfter
	}
	if fill("format", c.Format == "") {
		c.Format = d.OutputFormat
	}
}

// ResolveProject picks the project type for root (explicit or detected),
// applies its defaults and returns the type name. explicit is passed on to
// ApplyProject.
func (c *Config) ResolveProject(root string, explicit ...string) (string, error) {
	table, err := projects.LoadFile(c.ProjectsFile)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	name := c.ProjectType
	if name == "" {
		name = projects.Detect(root)
	}

	d, err := table.Get(name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	c.ApplyProject(d, explicit...)
	c.ProjectType = name
	return name, nil
}

// OutputPath returns the directory reports are saved to. auto is true when it
// is the default location inside the scan root.
func (c *Config) OutputPath(root string) (dir string, auto bool) {
	if c.OutputDir != "" {
		return c.OutputDir, false
	}
	return filepath.Join(root, output.DefaultDirName), true
}

// FilterOptions converts the settings into raw filter options for a scan of
// root. Report destinations inside root are excluded so earlier reports are
// never scanned.
func (c *Config) FilterOptions(root string) filter.Options {
	folders := append([]string(nil), c.ExcludeFolders...)
	dir, _ := c.OutputPath(root)
	if rel, ok := underRoot(root, dir); ok {
		// A slash makes it match only that path, not every folder of that name
		folders = append(folders, rel+"/")
	}

	var files []string
	if c.OutputFile != "" {
		if rel, ok := underRoot(root, c.OutputFile); ok {
			files = append(files, rel)
		}
	}

	return filter.Options{
		ExcludeFolders:    folders,
		ExcludeExtensions: c.ExcludeExtensions,
		ExcludeFiles:      files,
		FolderFilter:      c.FilterFolder,
		FolderPolicy:      filter.FolderPolicy(c.FolderPolicy),
		Keyword:           c.Keyword,
		KeywordRequired:   c.KeywordRequired,
		Regex:             c.Regex,
		RegexRequired:     c.RegexRequired,
		MinSize:           c.MinSize,
		ModifiedAfter:     c.ModifiedAfter,
	}
}

// underRoot returns the slash-separated path of p relative to root when p
// lies strictly below root
func underRoot(root, p string) (string, bool) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	absPath, err := filepath.Abs(p)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// ReportFormat returns the parsed output format, txt when unset
func (c *Config) ReportFormat() (report.Format, error) {
	if c.Format == "" {
		return report.FormatText, nil
	}
	f, err := report.ParseFormat(c.Format)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return f, nil
}

// MaxReadBytes returns the parsed read ceiling
func (c *Config) MaxReadBytes() (int64, error) {
	n, err := filesystem.ParseSize(c.MaxRead)
	if err != nil {
		return 0, fmt.Errorf("%w: max_read: %v", ErrInvalidConfig, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: max_read must be positive", ErrInvalidConfig)
	}
	return n, nil
}

// Validate checks the settings and builds the immutable filter configuration
// for a scan of root
func (c *Config) Validate(root string) (*filter.Config, error) {
	if c.Workers < 0 {
		return nil, fmt.Errorf("%w: workers must not be negative (got %d)", ErrInvalidConfig, c.Workers)
	}
	if _, err := c.ReportFormat(); err != nil {
		return nil, err
	}
	if _, err := c.MaxReadBytes(); err != nil {
		return nil, err
	}
	if c.Split && c.Stdout {
		return nil, fmt.Errorf("%w: split and stdout cannot be combined", ErrInvalidConfig)
	}
	if c.OutputFile != "" && c.Stdout {
		return nil, fmt.Errorf("%w: output file and stdout cannot be combined", ErrInvalidConfig)
	}

	fc, err := c.FilterOptions(root).Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return fc, nil
}

// String summarizes the effective filter settings for verbose logs
func (c *Config) String() string {
	var parts []string
	add := func(k, v string) {
		if v != "" {
			parts = append(parts, k+"="+v)
		}
	}
	add("project", c.ProjectType)
	add("exclude_folders", strings.Join(c.ExcludeFolders, ","))
	add("exclude_extensions", strings.Join(c.ExcludeExtensions, ","))
	add("filter_folder", c.FilterFolder)
	add("folder_policy", c.FolderPolicy)
	add("keyword", c.Keyword)
	add("regex", c.Regex)
	add("format", c.Format)
	return strings.Join(parts, " ")
}
