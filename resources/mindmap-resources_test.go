package resources

import (
	"context"
	"strings"
	"testing"
)

func TestListResources(t *testing.T) {
	h := NewMindMapResourceHandler()
	resources := h.ListResources()

	want := []string{
		"mindmap://prompts/diagram",
		"mindmap://prompts/extract",
		"mindmap://prompts/summarize",
		"mindmap://theme",
	}
	if len(resources) != len(want) {
		t.Fatalf("expected %d resources, got %d", len(want), len(resources))
	}
	for i, r := range resources {
		if r.URI != want[i] {
			t.Errorf("resource %d URI = %q, want %q", i, r.URI, want[i])
		}
	}
}

func TestReadResource(t *testing.T) {
	h := NewMindMapResourceHandler()
	ctx := context.Background()

	tests := []struct {
		uri      string
		contains string
	}{
		{"mindmap://prompts/summarize", "Extract the key concepts"},
		{"mindmap://prompts/diagram", "graph TD"},
		{"mindmap://prompts/extract", `start with "graph "`},
		{"mindmap://theme", `"theme": "neutral"`},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			result, err := h.ReadResource(ctx, tt.uri)
			if err != nil {
				t.Fatalf("ReadResource failed: %v", err)
			}
			if len(result.Contents) != 1 {
				t.Fatalf("expected 1 content, got %d", len(result.Contents))
			}
			if !strings.Contains(result.Contents[0].Text, tt.contains) {
				t.Errorf("content of %s does not contain %q", tt.uri, tt.contains)
			}
		})
	}
}

func TestReadResource_Errors(t *testing.T) {
	h := NewMindMapResourceHandler()
	ctx := context.Background()

	for _, uri := range []string{"pdf://abc", "mindmap://prompts/unknown", "mindmap://other"} {
		if _, err := h.ReadResource(ctx, uri); err == nil {
			t.Errorf("expected error for %s", uri)
		}
	}
}
