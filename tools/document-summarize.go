package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdf-mindmap/internal/config"
	"github.com/Epistemic-Technology/pdf-mindmap/internal/logger"
	"github.com/Epistemic-Technology/pdf-mindmap/models"
)

type DocumentSummarizeQuery struct {
	ZoteroID string `json:"zotero_id,omitempty"` // Attachment key from zotero-search
	URL      string `json:"url,omitempty"`
	RawData  []byte `json:"raw_data,omitempty"`
	Name     string `json:"name,omitempty"` // File name used in results
}

func (q DocumentSummarizeQuery) source() DocumentSource {
	return DocumentSource{ZoteroID: q.ZoteroID, URL: q.URL, RawData: q.RawData, Name: q.Name}
}

type DocumentSummarizeResponse struct {
	Summary   string                `json:"summary"`
	Documents []models.DocumentInfo `json:"documents,omitempty"`
}

func DocumentSummarizeTool() *mcp.Tool {
	inputschema, err := jsonschema.For[DocumentSummarizeQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "document-summarize",
		Description: "Summarize a PDF into its key concepts, grouped by theme, with the statistics, facts and references that support them. This is the first step of mindmap-generate without the diagram. Provide exactly one of zotero_id, url, or raw_data.",
		InputSchema: inputschema,
	}
}

func DocumentSummarizeToolHandler(ctx context.Context, req *mcp.CallToolRequest, query DocumentSummarizeQuery, mapper MindMapper, zotero config.ZoteroConfig, log logger.Logger) (*mcp.CallToolResult, *DocumentSummarizeResponse, error) {
	log.Info("document-summarize tool called")

	upload, err := fetchUpload(ctx, query.source(), zotero)
	if err != nil {
		return nil, nil, err
	}

	summary, infos, err := mapper.Summarize(ctx, []models.Upload{upload})
	if err != nil {
		return nil, nil, err
	}

	return nil, &DocumentSummarizeResponse{Summary: summary, Documents: infos}, nil
}
