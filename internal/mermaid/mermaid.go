// Package mermaid cleans model output into renderable Mermaid source.
package mermaid

import (
	"errors"
	"strings"
)

// ErrEmptyDiagram is returned when no diagram text is left after cleaning
var ErrEmptyDiagram = errors.New("empty mermaid diagram")

// ThemeDirective is the init block prepended before rendering: a neutral theme
// with white nodes, black text, borders, lines and arrowheads, set in Arial.
const ThemeDirective = `%%{init: {
  "theme": "neutral",
  "themeVariables": {
    "primaryColor": "#ffffff",
    "primaryTextColor": "#000000",
    "primaryBorderColor": "#000000",
    "lineColor": "#000000",
    "arrowheadColor": "#000000",
    "fontFamily": "Arial"
  }
}}%%`

var diagramKeywords = []string{"graph ", "graph\t", "flowchart ", "flowchart\t"}

// Clean strips Markdown fences, any chatter before the diagram header and all
// parentheses from code. Parentheses are node-shape syntax in Mermaid and the
// model uses them freely inside labels, which breaks parsing.
func Clean(code string) string {
	code = strings.ReplaceAll(code, "\r\n", "\n")
	code = stripFences(code)
	code = dropPreamble(code)
	code = strings.ReplaceAll(code, "(", "")
	code = strings.ReplaceAll(code, ")", "")
	return strings.TrimSpace(code)
}

// CleanStrict is Clean followed by an emptiness check
func CleanStrict(code string) (string, error) {
	cleaned := Clean(code)
	if cleaned == "" {
		return "", ErrEmptyDiagram
	}
	return cleaned, nil
}

// WithTheme prepends ThemeDirective unless code already carries an init block
func WithTheme(code string) string {
	code = strings.TrimSpace(code)
	if strings.HasPrefix(code, "%%{init") {
		return code
	}
	return ThemeDirective + "\n" + code
}

// HasHeader reports whether code starts with a graph or flowchart declaration
func HasHeader(code string) bool {
	line := strings.TrimSpace(code)
	for _, kw := range diagramKeywords {
		if strings.HasPrefix(line, kw) {
			return true
		}
	}
	return line == "graph" || line == "flowchart"
}

func stripFences(code string) string {
	lines := strings.Split(code, "\n")
	kept := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			continue
		}
		kept = append(kept, line)
	}
	code = strings.TrimSpace(strings.Join(kept, "\n"))

	if rest, ok := strings.CutPrefix(code, "mermaid"); ok && (rest == "" || rest[0] == '\n' || rest[0] == ' ') {
		code = rest
	}
	return code
}

func dropPreamble(code string) string {
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		if HasHeader(line) {
			return strings.Join(lines[i:], "\n")
		}
	}
	return code
}
