package signatures

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sync"

	"github.com/FarhamAghdasi/send-ai/pkg/models"
	"gopkg.in/yaml.v3"
)

//go:embed patterns.yaml
var builtinFS embed.FS

// Loader loads signatures from YAML files
type Loader struct {
	fsys fs.FS
}

// NewLoader creates a new signature loader over a filesystem of YAML files
func NewLoader(fsys fs.FS) *Loader {
	return &Loader{
		fsys: fsys,
	}
}

// SignatureFile represents a YAML signature file
type SignatureFile struct {
	Signatures []*models.Signature `yaml:"signatures"`
}

// Load loads all signatures from the filesystem, in lexical file order
func (l *Loader) Load() (*models.SignatureDatabase, error) {
	db := models.NewSignatureDatabase()

	err := fs.WalkDir(l.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip directories and non-YAML files
		if d.IsDir() || (path.Ext(p) != ".yaml" && path.Ext(p) != ".yml") {
			return nil
		}

		if err := l.loadFile(p, db); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}

		return nil
	})

	return db, err
}

// loadFile loads signatures from a single YAML file
func (l *Loader) loadFile(p string, db *models.SignatureDatabase) error {
	data, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return err
	}

	var sigFile SignatureFile
	if err := yaml.Unmarshal(data, &sigFile); err != nil {
		return err
	}

	for _, sig := range sigFile.Signatures {
		if sig.ID == "" || sig.Pattern == "" {
			return fmt.Errorf("signature %q: id and pattern are required", sig.Name)
		}
		if err := db.AddSignature(sig); err != nil {
			return fmt.Errorf("failed to add signature %s: %w", sig.ID, err)
		}
	}

	return nil
}

var (
	builtinOnce sync.Once
	builtinDB   *models.SignatureDatabase
	builtinErr  error
)

// Builtin returns the compiled built-in heuristics table. The table is fixed at
// build time; the result is shared and must not be modified.
func Builtin() (*models.SignatureDatabase, error) {
	builtinOnce.Do(func() {
		builtinDB, builtinErr = NewLoader(builtinFS).Load()
	})
	return builtinDB, builtinErr
}
