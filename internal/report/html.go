package report

import (
	"bytes"
	"html"
	"strings"

	"github.com/FarhamAghdasi/send-ai/pkg/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// HTMLRenderer renders the Markdown report to a standalone HTML page
type HTMLRenderer struct {
	markdown goldmark.Markdown
	source   MarkdownRenderer
}

// NewHTMLRenderer creates an HTML renderer. Raw HTML in the Markdown source is
// never passed through, so file content always ends up escaped.
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{
		markdown: goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

// Render implements Renderer
func (r *HTMLRenderer) Render(result *models.ScanResult) (string, error) {
	md, err := r.source.Render(result)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	if err := r.markdown.Convert([]byte(md), &body); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Project Structure: `)
	sb.WriteString(html.EscapeString(result.Tree.Name))
	sb.WriteString(`</title>
    <style>
        :root {
            --bg: #fafafa;
            --fg: #1f2328;
            --muted: #656d76;
            --code-bg: #f0f2f4;
            --warn: #b35900;
        }
        body {
            margin: 0 auto;
            max-width: 1100px;
            padding: 32px 24px;
            background: var(--bg);
            color: var(--fg);
            font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif;
            line-height: 1.5;
        }
        h1 { border-bottom: 1px solid #d0d7de; padding-bottom: 8px; }
        h2 { margin-top: 32px; font-family: ui-monospace, "JetBrains Mono", monospace; font-size: 1.05em; }
        pre {
            background: var(--code-bg);
            padding: 12px 16px;
            overflow-x: auto;
            border-radius: 6px;
        }
        code { font-family: ui-monospace, "JetBrains Mono", monospace; font-size: 0.9em; }
        blockquote { margin: 0; padding: 4px 12px; border-left: 4px solid var(--warn); color: var(--warn); }
        table { border-collapse: collapse; }
        th, td { border: 1px solid #d0d7de; padding: 4px 12px; text-align: left; }
        em { color: var(--muted); }
    </style>
</head>
<body>
`)
	sb.Write(body.Bytes())
	sb.WriteString("</body>\n</html>\n")

	return sb.String(), nil
}
