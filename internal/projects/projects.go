// Package projects maps project types to default filter settings and detects
// the type of a directory from its marker files.
package projects

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Generic is the fallback project type
const Generic = "generic"

// ErrUnknownType is returned for a project type missing from the table
var ErrUnknownType = errors.New("unknown project type")

//go:embed defaults.yaml
var builtinYAML []byte

// Defaults are the filter values a project type starts from
type Defaults struct {
	ExcludeFolders    []string `yaml:"exclude_folders"`
	ExcludeExtensions []string `yaml:"exclude_extensions"`
	FilterFolder      string   `yaml:"filter_folder"`
	Keyword           string   `yaml:"keyword"`
	Regex             string   `yaml:"regex"`
	OutputFormat      string   `yaml:"output_format"`
	MinSize           int64    `yaml:"min_size"`
	ModifiedAfter     string   `yaml:"modified_after"`
}

// projectsFile is the YAML layout of defaults.yaml and override files
type projectsFile struct {
	Projects map[string]Defaults `yaml:"projects"`
}

// Table is an immutable lookup from project type to defaults
type Table struct {
	types map[string]Defaults
}

var (
	builtinOnce  sync.Once
	builtinTable *Table
	builtinErr   error
)

// Builtin returns the built-in table, parsed once and shared
func Builtin() (*Table, error) {
	builtinOnce.Do(func() {
		builtinTable, builtinErr = parse(builtinYAML)
		if builtinErr != nil {
			builtinErr = fmt.Errorf("invalid built-in project defaults: %w", builtinErr)
		}
	})
	return builtinTable, builtinErr
}

// LoadFile returns the built-in table with the types from a YAML file
// replacing or adding entries. An empty path gives the built-in table.
func LoadFile(path string) (*Table, error) {
	if path == "" {
		return Builtin()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read projects file: %w", err)
	}
	overrides, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse projects file %s: %w", path, err)
	}

	builtin, err := Builtin()
	if err != nil {
		return nil, err
	}
	t := &Table{types: make(map[string]Defaults, len(builtin.types)+len(overrides.types))}
	for name, d := range builtin.types {
		t.types[name] = d
	}
	for name, d := range overrides.types {
		t.types[name] = d
	}
	return t, nil
}

func parse(data []byte) (*Table, error) {
	var f projectsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	t := &Table{types: make(map[string]Defaults, len(f.Projects))}
	for name, d := range f.Projects {
		if name == "" {
			return nil, errors.New("project type with empty name")
		}
		t.types[name] = d
	}
	return t, nil
}

// Get returns the defaults for a project type. Slices are copies.
func (t *Table) Get(name string) (Defaults, error) {
	d, ok := t.types[name]
	if !ok {
		return Defaults{}, fmt.Errorf("%w: %q (known: %v)", ErrUnknownType, name, t.Names())
	}
	d.ExcludeFolders = append([]string(nil), d.ExcludeFolders...)
	d.ExcludeExtensions = append([]string(nil), d.ExcludeExtensions...)
	return d, nil
}

// Names returns the known project types, sorted
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.types))
	for name := range t.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
