// Package report renders a ScanResult as txt, json, md or html.
package report

import (
	"fmt"
	"strings"

	"github.com/FarhamAghdasi/send-ai/pkg/models"
)

// Format is an output format name
type Format string

const (
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
)

// Formats lists the supported formats in display order
var Formats = []Format{FormatText, FormatJSON, FormatMarkdown, FormatHTML}

// ParseFormat resolves a format name. "text" and "markdown" are accepted as
// aliases.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "txt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unknown report format: %s", name)
	}
}

// Extension returns the file extension for the format, without dot
func (f Format) Extension() string {
	return string(f)
}

// Renderer serializes a scan result. Output depends only on the result, so
// rendering the same result twice yields identical bytes.
type Renderer interface {
	Render(result *models.ScanResult) (string, error)
}

// NewRenderer returns the renderer for a format
func NewRenderer(format Format) (Renderer, error) {
	switch format {
	case FormatText:
		return &TextRenderer{}, nil
	case FormatJSON:
		return &JSONRenderer{}, nil
	case FormatMarkdown:
		return &MarkdownRenderer{}, nil
	case FormatHTML:
		return NewHTMLRenderer(), nil
	default:
		return nil, fmt.Errorf("unknown report format: %s", format)
	}
}

// sensitiveWarning is the disclosure marker placed next to a flagged file
func sensitiveWarning(rec *models.FileRecord) string {
	return "WARNING: sensitive content (" + strings.Join(rec.Matches.Sensitive, ", ") + ")"
}

// annotations returns the keyword and regex notes for a record, if any
func annotations(rec *models.FileRecord) []string {
	var notes []string
	m := rec.Matches
	if len(m.KeywordPositions) > 0 {
		notes = append(notes, fmt.Sprintf("Keyword matches: %d%s", len(m.KeywordPositions), truncatedSuffix(m)))
	}
	if len(m.RegexMatches) > 0 {
		lines := make([]string, 0, len(m.RegexMatches))
		last := 0
		for _, span := range m.RegexMatches {
			if span.Line != last {
				lines = append(lines, fmt.Sprint(span.Line))
				last = span.Line
			}
		}
		notes = append(notes, fmt.Sprintf("Regex matches: %d%s (lines %s)",
			len(m.RegexMatches), truncatedSuffix(m), strings.Join(lines, ", ")))
	}
	return notes
}

func truncatedSuffix(m models.MatchResult) string {
	if m.Truncated {
		return "+"
	}
	return ""
}

// summaryRows is the shared summary table
func summaryRows(s models.Summary) [][2]string {
	rows := [][2]string{
		{"Files scanned", fmt.Sprint(s.FilesScanned)},
		{"Files admitted", fmt.Sprint(s.FilesAdmitted)},
		{"Files loaded", fmt.Sprint(s.FilesLoaded)},
		{"Binary files", fmt.Sprint(s.FilesBinary)},
		{"Filtered by content", fmt.Sprint(s.FilesFiltered)},
		{"Failed", fmt.Sprint(s.FilesFailed)},
		{"Sensitive", fmt.Sprint(s.FilesSensitive)},
		{"Total bytes", fmt.Sprint(s.TotalBytes)},
	}
	if s.TotalTokens > 0 {
		rows = append(rows, [2]string{"Total tokens", fmt.Sprint(s.TotalTokens)})
	}
	return rows
}
