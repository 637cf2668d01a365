package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdf-mindmap/internal/logger"
)

type MermaidRenderQuery struct {
	Mermaid string `json:"mermaid"`
}

type MermaidRenderResponse struct {
	Mermaid  string `json:"mermaid"` // Source after cleaning, as rendered
	MIMEType string `json:"mime_type"`
	Size     int    `json:"size"`
}

func MermaidRenderTool() *mcp.Tool {
	inputschema, err := jsonschema.For[MermaidRenderQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "mermaid-render",
		Description: "Render Mermaid diagram source as an image using the mind map theme. Code fences, text before the graph declaration and parentheses are removed before rendering. Use this to re-render a diagram from mindmap-generate after editing it.",
		InputSchema: inputschema,
	}
}

func MermaidRenderToolHandler(ctx context.Context, req *mcp.CallToolRequest, query MermaidRenderQuery, mapper MindMapper, log logger.Logger) (*mcp.CallToolResult, *MermaidRenderResponse, error) {
	log.Info("mermaid-render tool called")

	img, code, err := mapper.RenderMermaid(ctx, query.Mermaid)
	if err != nil {
		return nil, nil, err
	}

	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.ImageContent{Data: img.Data, MIMEType: img.MIMEType},
		},
	}
	return result, &MermaidRenderResponse{Mermaid: code, MIMEType: img.MIMEType, Size: len(img.Data)}, nil
}
