package analysis

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// RenderHTML converts the model's markdown analysis to an HTML fragment.
func RenderHTML(markdown string) (string, error) {
	var out bytes.Buffer
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(markdown), &out); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	return out.String(), nil
}

// RenderPage wraps a rendered analysis in a standalone HTML document.
func RenderPage(projectName string, result *Result) (string, error) {
	body, err := RenderHTML(result.Analysis)
	if err != nil {
		return "", err
	}
	title := html.EscapeString(projectName)
	return "<!doctype html><html><head><meta charset='utf-8'><title>Clash Analysis - " + title + "</title>" +
		"<style>body{font-family:system-ui,sans-serif;max-width:900px;margin:2rem auto;color:#1e293b;} " +
		".meta{color:#64748b;font-size:0.9rem;} table{border-collapse:collapse;} th,td{border:1px solid #cbd5e1;padding:0.3rem 0.5rem;}</style>" +
		"</head><body><h1>" + title + "</h1>" +
		fmt.Sprintf("<p class='meta'>Analyzed %d of %d clashes</p>", result.AnalyzedClashes, result.TotalClashes) +
		"<section>" + body + "</section></body></html>", nil
}
