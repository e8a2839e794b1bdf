package renderer

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"io/fs"
	"strings"
	"text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed *.md
var templates embed.FS

// Markdown renders the dashboard to a markdown string.
func Markdown(d *Dashboard) string {
	partials := map[string]string{
		"dashboard_title":      "dashboard_title.md",
		"dashboard_metrics":    "dashboard_metrics.md",
		"dashboard_allocation": "dashboard_allocation.md",
		"dashboard_holdings":   "dashboard_holdings.md",
		"dashboard_chart":      "dashboard_chart.md",
		"dashboard_notes":      "dashboard_notes.md",
	}
	return renderTemplate("dashboard", "dashboard.md", partials, d)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			content, err = fs.ReadFile(templates, file)
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}

// HTML converts markdown, tables included, to an HTML fragment.
func HTML(markdown string) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("cannot convert markdown: %w", err)
	}
	return buf.String(), nil
}

// Page wraps an HTML fragment in a standalone document. When refresh is
// positive the browser reloads the page every refresh seconds.
func Page(title, body string, refresh int) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	if refresh > 0 {
		fmt.Fprintf(&b, "<meta http-equiv=\"refresh\" content=\"%d\">\n", refresh)
	}
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	b.WriteString("<style>body{font-family:sans-serif;max-width:960px;margin:auto}table{border-collapse:collapse}th,td{padding:4px 8px;border-bottom:1px solid #ddd}</style>\n")
	b.WriteString("</head>\n<body>\n")
	b.WriteString(body)
	b.WriteString("</body>\n</html>\n")
	return b.String()
}
