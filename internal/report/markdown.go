package report

import (
	"fmt"
	"path"
	"strings"

	"github.com/FarhamAghdasi/send-ai/pkg/models"
)

// MarkdownRenderer renders the Markdown report
type MarkdownRenderer struct{}

// Render implements Renderer
func (r *MarkdownRenderer) Render(result *models.ScanResult) (string, error) {
	var sb strings.Builder

	sb.WriteString("# Project Structure\n\n")
	writeFenced(&sb, renderTree(result.Tree), "text")

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	for _, row := range summaryRows(result.Summary) {
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", row[0], row[1]))
	}
	sb.WriteString("\n")

	if len(result.Skipped) > 0 {
		sb.WriteString("## Skipped Entries\n\n")
		for _, s := range result.Skipped {
			sb.WriteString(fmt.Sprintf("- **%s** %s", s.Reason, escapeMarkdown(s.Path)))
			if s.Detail != "" {
				sb.WriteString(": " + escapeMarkdown(s.Detail))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("# File Contents\n\n")
	for _, rec := range result.Files {
		sb.WriteString("## " + escapeMarkdown(rec.RelPath) + "\n\n")
		if rec.IsSensitive() {
			sb.WriteString("> **" + escapeMarkdown(sensitiveWarning(rec)) + "**\n\n")
		}
		for _, note := range annotations(rec) {
			sb.WriteString("- " + escapeMarkdown(note) + "\n")
		}
		if len(annotations(rec)) > 0 {
			sb.WriteString("\n")
		}

		if !rec.HasContent() {
			sb.WriteString("*" + escapeMarkdown(rec.Describe()) + "*\n\n")
			continue
		}
		writeFenced(&sb, rec.Content, languageHint(rec.RelPath))
	}

	return sb.String(), nil
}

// writeFenced writes a code block whose fence is longer than any backtick run
// in content, so content can never close it
func writeFenced(sb *strings.Builder, content, lang string) {
	fence := strings.Repeat("`", max(3, longestRun(content, '`')+1))
	sb.WriteString(fence + lang + "\n")
	sb.WriteString(content)
	if !strings.HasSuffix(content, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString(fence + "\n\n")
}

func longestRun(s string, c byte) int {
	longest, current := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] != c {
			current = 0
			continue
		}
		current++
		longest = max(longest, current)
	}
	return longest
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"{", `\{`,
	"}", `\}`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"#", `\#`,
	"|", `\|`,
	"!", `\!`,
	"~", `\~`,
	"&", `\&`,
	"\r", " ",
	"\n", " ",
)

// escapeMarkdown makes inline text literal: no emphasis, links, HTML, entities
// or line breaks
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// languageHint derives a fence info string from the file extension
func languageHint(rel string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(rel)), ".")
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
