// Package filter holds the immutable filter configuration of a pipeline run
// and the pure path predicates derived from it.
package filter

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// ErrInvalidConfig is wrapped by every configuration error returned from Build
var ErrInvalidConfig = errors.New("invalid filter configuration")

// FolderPolicy selects how the required folder-name filter is applied
type FolderPolicy string

const (
	// PolicyAncestor admits a file only when some directory on its path below
	// the root has a name containing the filter. Other directories are still
	// descended so deeper matches are found.
	PolicyAncestor FolderPolicy = "ancestor"
	// PolicyEveryLevel requires every directory below the root to contain the
	// filter in its name. Non-matching directories are pruned without descent.
	PolicyEveryLevel FolderPolicy = "every-level"
)

// DateLayout is the accepted short form for ModifiedAfter
const DateLayout = "2006-01-02"

// Options is the raw, unvalidated form of a filter configuration
type Options struct {
	ExcludeFolders    []string
	ExcludeExtensions []string
	ExcludeFiles      []string // Root-relative, slash-separated file paths
	FolderFilter      string
	FolderPolicy      FolderPolicy
	Keyword           string
	KeywordRequired   bool
	Regex             string
	RegexRequired     bool
	MinSize           int64
	ModifiedAfter     string // YYYY-MM-DD (local time) or RFC 3339
}

// Config is the validated filter configuration. It is never mutated after Build
// and is safe to share between goroutines.
type Config struct {
	excludeFolders    map[string]bool
	excludePaths      map[string]bool
	excludeExtensions map[string]bool
	excludeFiles      map[string]bool
	folderFilter      string
	folderPolicy      FolderPolicy
	keyword           string
	keywordRequired   bool
	regex             *regexp.Regexp
	regexRequired     bool
	minSize           int64
	modifiedAfter     time.Time
}

// Build validates the options and returns an immutable Config
func (o Options) Build() (*Config, error) {
	cfg := &Config{
		excludeFolders:    make(map[string]bool),
		excludePaths:      make(map[string]bool),
		excludeExtensions: make(map[string]bool),
		excludeFiles:      make(map[string]bool),
		folderFilter:      o.FolderFilter,
		folderPolicy:      o.FolderPolicy,
		keyword:           o.Keyword,
		keywordRequired:   o.KeywordRequired,
		regexRequired:     o.RegexRequired,
		minSize:           o.MinSize,
	}

	for _, name := range o.ExcludeFolders {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		// Entries with a separator match the relative path, not a single name
		if strings.Contains(name, "/") {
			cfg.excludePaths[strings.Trim(name, "/")] = true
			continue
		}
		cfg.excludeFolders[name] = true
	}

	for _, ext := range o.ExcludeExtensions {
		if ext = NormalizeExtension(ext); ext != "" {
			cfg.excludeExtensions[ext] = true
		}
	}

	for _, p := range o.ExcludeFiles {
		if p = strings.Trim(strings.TrimSpace(p), "/"); p != "" {
			cfg.excludeFiles[p] = true
		}
	}

	switch cfg.folderPolicy {
	case "":
		cfg.folderPolicy = PolicyAncestor
	case PolicyAncestor, PolicyEveryLevel:
	default:
		return nil, fmt.Errorf("%w: unknown folder policy %q (want %s or %s)",
			ErrInvalidConfig, o.FolderPolicy, PolicyAncestor, PolicyEveryLevel)
	}

	if o.Regex != "" {
		re, err := regexp.Compile(o.Regex)
		if err != nil {
			return nil, fmt.Errorf("%w: regex %q: %v", ErrInvalidConfig, o.Regex, err)
		}
		cfg.regex = re
	}
	if cfg.regexRequired && cfg.regex == nil {
		return nil, fmt.Errorf("%w: regex inclusion requested without a regex", ErrInvalidConfig)
	}
	if cfg.keywordRequired && cfg.keyword == "" {
		return nil, fmt.Errorf("%w: keyword inclusion requested without a keyword", ErrInvalidConfig)
	}

	if o.MinSize < 0 {
		return nil, fmt.Errorf("%w: minimum size must not be negative (got %d)", ErrInvalidConfig, o.MinSize)
	}

	if o.ModifiedAfter != "" {
		t, err := ParseDate(o.ModifiedAfter)
		if err != nil {
			return nil, fmt.Errorf("%w: modified-after: %v", ErrInvalidConfig, err)
		}
		cfg.modifiedAfter = t
	}

	return cfg, nil
}

// ParseDate accepts YYYY-MM-DD in local time or a full RFC 3339 timestamp
func ParseDate(value string) (time.Time, error) {
	if t, err := time.ParseInLocation(DateLayout, value, time.Local); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected %s", value, DateLayout)
	}
	return t, nil
}

// NormalizeExtension lower-cases an extension and ensures a single leading dot
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	ext = strings.TrimLeft(ext, ".")
	if ext == "" {
		return ""
	}
	return "." + ext
}

// ExcludedFolders returns the excluded names (and relative paths) in sorted order
func (c *Config) ExcludedFolders() []string {
	out := make([]string, 0, len(c.excludeFolders)+len(c.excludePaths))
	for name := range c.excludeFolders {
		out = append(out, name)
	}
	for path := range c.excludePaths {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// ExcludedExtensions returns the normalized excluded extensions in sorted order
func (c *Config) ExcludedExtensions() []string {
	out := make([]string, 0, len(c.excludeExtensions))
	for ext := range c.excludeExtensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

func (c *Config) FolderFilter() string       { return c.folderFilter }
func (c *Config) FolderPolicy() FolderPolicy { return c.folderPolicy }
func (c *Config) Keyword() string            { return c.keyword }
func (c *Config) KeywordRequired() bool      { return c.keywordRequired }
func (c *Config) Regex() *regexp.Regexp      { return c.regex }
func (c *Config) RegexRequired() bool        { return c.regexRequired }
func (c *Config) MinSize() int64             { return c.minSize }
func (c *Config) ModifiedAfter() time.Time   { return c.modifiedAfter }
