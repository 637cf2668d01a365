package resources

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdf-mindmap/internal/llm"
	"github.com/Epistemic-Technology/pdf-mindmap/internal/mermaid"
)

const (
	scheme       = "mindmap://"
	promptPrefix = scheme + "prompts/"
	// ThemeURI is the resource holding the Mermaid init directive
	ThemeURI = scheme + "theme"
)

// MindMapResourceHandler serves the prompts and diagram theme the pipeline
// uses, so agents can reproduce or adjust a generation step themselves
type MindMapResourceHandler struct {
	prompts map[string]string
}

// NewMindMapResourceHandler creates a new resource handler
func NewMindMapResourceHandler() *MindMapResourceHandler {
	return &MindMapResourceHandler{prompts: llm.Prompts()}
}

// ListResources returns a list of available resources
func (h *MindMapResourceHandler) ListResources() []*mcp.Resource {
	names := make([]string, 0, len(h.prompts))
	for name := range h.prompts {
		names = append(names, name)
	}
	sort.Strings(names)

	resources := make([]*mcp.Resource, 0, len(names)+1)
	for _, name := range names {
		resources = append(resources, &mcp.Resource{
			URI:         promptPrefix + name,
			Name:        fmt.Sprintf("%s-prompt", name),
			Description: fmt.Sprintf("Instructions sent to the language model for the %s step; the input text is appended after them", name),
			MIMEType:    "text/plain",
		})
	}
	resources = append(resources, &mcp.Resource{
		URI:         ThemeURI,
		Name:        "mermaid-theme",
		Description: "Mermaid init directive prepended to every diagram before rendering",
		MIMEType:    "text/plain",
	})
	return resources
}

// ReadResource returns the text of a prompt or the theme directive
func (h *MindMapResourceHandler) ReadResource(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	if !strings.HasPrefix(uri, scheme) {
		return nil, fmt.Errorf("invalid URI scheme, expected %s", scheme)
	}

	var content string
	switch {
	case uri == ThemeURI:
		content = mermaid.ThemeDirective
	case strings.HasPrefix(uri, promptPrefix):
		prompt, ok := h.prompts[strings.TrimPrefix(uri, promptPrefix)]
		if !ok {
			return nil, fmt.Errorf("resource not found: %s", uri)
		}
		content = prompt
	default:
		return nil, fmt.Errorf("resource not found: %s", uri)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "text/plain",
				Text:     content,
			},
		},
	}, nil
}
