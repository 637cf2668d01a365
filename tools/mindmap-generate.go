package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdf-mindmap/internal/config"
	"github.com/Epistemic-Technology/pdf-mindmap/internal/logger"
	"github.com/Epistemic-Technology/pdf-mindmap/models"
)

type MindMapGenerateQuery struct {
	ZoteroID string `json:"zotero_id,omitempty"` // Attachment key from zotero-search
	URL      string `json:"url,omitempty"`
	RawData  []byte `json:"raw_data,omitempty"`
	Name     string `json:"name,omitempty"` // File name used in results
}

func (q MindMapGenerateQuery) source() DocumentSource {
	return DocumentSource{ZoteroID: q.ZoteroID, URL: q.URL, RawData: q.RawData, Name: q.Name}
}

type MindMapGenerateResponse struct {
	ID        string                `json:"id"`
	Summary   string                `json:"summary"`
	Mermaid   string                `json:"mermaid"`
	MIMEType  string                `json:"mime_type"`
	Documents []models.DocumentInfo `json:"documents,omitempty"`
}

func MindMapGenerateTool() *mcp.Tool {
	inputschema, err := jsonschema.For[MindMapGenerateQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "mindmap-generate",
		Description: "Generate a mind map of a PDF. The document is summarized by a language model, turned into a hierarchical Mermaid diagram and rendered as an image. Provide exactly one of zotero_id (an attachment key from zotero-search), url, or raw_data. Returns the summary, the Mermaid source and the rendered image.",
		InputSchema: inputschema,
	}
}

func MindMapGenerateToolHandler(ctx context.Context, req *mcp.CallToolRequest, query MindMapGenerateQuery, mapper MindMapper, zotero config.ZoteroConfig, log logger.Logger) (*mcp.CallToolResult, *MindMapGenerateResponse, error) {
	log.Info("mindmap-generate tool called")

	upload, err := fetchUpload(ctx, query.source(), zotero)
	if err != nil {
		return nil, nil, err
	}

	mm, err := mapper.Generate(ctx, []models.Upload{upload})
	if err != nil {
		return nil, nil, err
	}

	response := &MindMapGenerateResponse{
		ID:        mm.ID,
		Summary:   mm.Summary,
		Mermaid:   mm.Mermaid,
		MIMEType:  mm.Image.MIMEType,
		Documents: mm.Documents,
	}
	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: mm.Summary},
			&mcp.TextContent{Text: mm.Mermaid},
			&mcp.ImageContent{Data: mm.Image.Data, MIMEType: mm.Image.MIMEType},
		},
	}
	return result, response, nil
}
