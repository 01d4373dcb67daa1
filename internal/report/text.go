package report

import (
	"fmt"
	"strings"

	"github.com/FarhamAghdasi/send-ai/pkg/models"
)

// TextRenderer renders the plain text report
type TextRenderer struct{}

// Render implements Renderer
func (r *TextRenderer) Render(result *models.ScanResult) (string, error) {
	var sb strings.Builder
	separator := strings.Repeat("-", 40)

	sb.WriteString("Folder Structure:\n")
	sb.WriteString(renderTree(result.Tree))
	sb.WriteString("\n\n")

	sb.WriteString("Summary:\n")
	for _, row := range summaryRows(result.Summary) {
		sb.WriteString(fmt.Sprintf("  %-20s %s\n", row[0]+":", row[1]))
	}
	sb.WriteString("\n")

	if len(result.Skipped) > 0 {
		sb.WriteString("Skipped Entries:\n")
		for _, s := range result.Skipped {
			sb.WriteString(fmt.Sprintf("  [%s] %s", s.Reason, s.Path))
			if s.Detail != "" {
				sb.WriteString(": " + s.Detail)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("File Contents:\n")
	for _, rec := range result.Files {
		sb.WriteString("\n" + separator + "\n")
		sb.WriteString("File: " + rec.RelPath + "\n")
		if rec.IsSensitive() {
			sb.WriteString(sensitiveWarning(rec) + "\n")
		}
		for _, note := range annotations(rec) {
			sb.WriteString(note + "\n")
		}
		sb.WriteString(separator + "\n")

		if !rec.HasContent() {
			sb.WriteString("[" + rec.Describe() + "]\n")
			continue
		}
		sb.WriteString(rec.Content)
		if !strings.HasSuffix(rec.Content, "\n") {
			sb.WriteString("\n")
		}
	}

	return sb.String(), nil
}
