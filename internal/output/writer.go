// Package output saves rendered reports as numbered files in an output
// directory.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	// DefaultDirName is the output directory created under the scan root
	DefaultDirName = "output"
	// SplitSize is the maximum number of characters per part when splitting
	SplitSize = 12000

	baseName = "project_structure"
	lockName = ".sendai.lock"
)

var numbered = regexp.MustCompile(`^` + baseName + `_(\d+)\.`)

// Writer saves reports into one directory
type Writer struct {
	dir    string
	logger *zap.Logger
}

// NewWriter creates a writer for dir. The directory is created on first write.
func NewWriter(dir string, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{dir: dir, logger: logger}
}

// Dir returns the output directory
func (w *Writer) Dir() string {
	return w.dir
}

// Write saves content with the given extension and returns the paths written.
// Without split, or when content fits in one part, the report goes to the next
// free project_structure_N.<ext>. With split, larger content is saved as
// project_structure_partK.<ext>, replacing parts of an earlier split.
func (w *Writer) Write(content, ext string, split bool) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", w.dir, err)
	}

	lock := newDirLock(w.dir)
	if err := lock.Lock(); err != nil {
		return nil, err
	}
	defer lock.Unlock()

	if split && utf8.RuneCountInString(content) > SplitSize {
		parts := Split(content, SplitSize)
		paths := make([]string, 0, len(parts))
		for i, part := range parts {
			path := filepath.Join(w.dir, fmt.Sprintf("%s_part%d.%s", baseName, i+1, ext))
			if err := atomicWrite(path, []byte(part)); err != nil {
				return paths, err
			}
			paths = append(paths, path)
		}
		w.logger.Info("Saved split report", zap.Int("parts", len(paths)), zap.String("dir", w.dir))
		return paths, nil
	}

	n, err := w.nextNumber()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(w.dir, fmt.Sprintf("%s_%d.%s", baseName, n, ext))
	if err := atomicWrite(path, []byte(content)); err != nil {
		return nil, err
	}
	w.logger.Info("Saved report", zap.String("path", path))
	return []string{path}, nil
}

// nextNumber returns one past the highest existing report number. The caller
// holds the directory lock.
func (w *Writer) nextNumber() (int, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to list output directory: %w", err)
	}

	highest := 0
	for _, e := range entries {
		m := numbered.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > highest {
			highest = n
		}
	}
	return highest + 1, nil
}

// Split cuts content into chunks of at most size characters. Chunks never
// break a UTF-8 sequence.
func Split(content string, size int) []string {
	if size <= 0 || content == "" {
		return []string{content}
	}

	var parts []string
	start, count := 0, 0
	for i := range content {
		if count == size {
			parts = append(parts, content[start:i])
			start, count = i, 0
		}
		count++
	}
	return append(parts, content[start:])
}

// WriteFile saves content to an explicit path, creating parent directories.
// The file is replaced atomically.
func WriteFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	return atomicWrite(path, []byte(content))
}
