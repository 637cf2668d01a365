package mermaid

import (
	"errors"
	"strings"
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain diagram",
			input:    "graph TD\n  A[Root] --> B[Child]",
			expected: "graph TD\n  A[Root] --> B[Child]",
		},
		{
			name:     "fenced with language tag",
			input:    "```mermaid\ngraph TD\n  A --> B\n```",
			expected: "graph TD\n  A --> B",
		},
		{
			name:     "fenced without language tag",
			input:    "```\ngraph LR\n  A --> B\n```\n",
			expected: "graph LR\n  A --> B",
		},
		{
			name:     "bare mermaid tag",
			input:    "mermaid\ngraph TD\n  A --> B",
			expected: "graph TD\n  A --> B",
		},
		{
			name:     "preamble before header",
			input:    "Here is your diagram:\n\ngraph TD\n  A --> B",
			expected: "graph TD\n  A --> B",
		},
		{
			name:     "flowchart header",
			input:    "Sure!\nflowchart LR\n  A --> B",
			expected: "flowchart LR\n  A --> B",
		},
		{
			name:     "parentheses removed",
			input:    "graph TD\n  A[Growth (2023)] --> B(Round node)",
			expected: "graph TD\n  A[Growth 2023] --> BRound node",
		},
		{
			name:     "windows line endings",
			input:    "graph TD\r\n  A --> B\r\n",
			expected: "graph TD\n  A --> B",
		},
		{
			name:     "no header keeps text",
			input:    "  A --> B  ",
			expected: "A --> B",
		},
		{
			name:     "only fences",
			input:    "```mermaid\n```",
			expected: "",
		},
		{
			name:     "whitespace only",
			input:    " \n\t ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.expected {
				t.Errorf("Clean() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestCleanStrict(t *testing.T) {
	if _, err := CleanStrict("```\n```"); !errors.Is(err, ErrEmptyDiagram) {
		t.Errorf("Expected ErrEmptyDiagram, got %v", err)
	}

	got, err := CleanStrict("graph TD\nA-->B")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "graph TD\nA-->B" {
		t.Errorf("CleanStrict() = %q", got)
	}
}

func TestWithTheme(t *testing.T) {
	themed := WithTheme("graph TD\nA-->B")
	if !strings.HasPrefix(themed, "%%{init:") {
		t.Errorf("Expected init directive prefix, got %q", themed)
	}
	if !strings.HasSuffix(themed, "\ngraph TD\nA-->B") {
		t.Errorf("Expected diagram after directive, got %q", themed)
	}
	for _, want := range []string{`"theme": "neutral"`, `"primaryColor": "#ffffff"`, `"fontFamily": "Arial"`} {
		if !strings.Contains(themed, want) {
			t.Errorf("Directive missing %s", want)
		}
	}

	if again := WithTheme(themed); again != themed {
		t.Error("WithTheme should not add a second directive")
	}
}

func TestHasHeader(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"graph TD", true},
		{"  graph LR", true},
		{"flowchart TB", true},
		{"graph", true},
		{"graphs are fun", false},
		{"A --> B", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := HasHeader(tt.input); got != tt.expected {
			t.Errorf("HasHeader(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}
