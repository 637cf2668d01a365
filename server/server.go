package server

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdf-mindmap/internal/config"
	"github.com/Epistemic-Technology/pdf-mindmap/internal/logger"
	"github.com/Epistemic-Technology/pdf-mindmap/resources"
	"github.com/Epistemic-Technology/pdf-mindmap/tools"
)

const (
	serverName    = "pdf-mindmap"
	serverVersion = "v0.1.0"
)

// CreateServer builds the MCP server exposing the mind map pipeline as tools
// and its prompts and theme as resources
func CreateServer(log logger.Logger, mapper tools.MindMapper, zotero config.ZoteroConfig) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	mcp.AddTool(server, tools.MindMapGenerateTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.MindMapGenerateQuery) (*mcp.CallToolResult, *tools.MindMapGenerateResponse, error) {
		return tools.MindMapGenerateToolHandler(ctx, req, query, mapper, zotero, log)
	})

	mcp.AddTool(server, tools.DocumentSummarizeTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.DocumentSummarizeQuery) (*mcp.CallToolResult, *tools.DocumentSummarizeResponse, error) {
		return tools.DocumentSummarizeToolHandler(ctx, req, query, mapper, zotero, log)
	})

	mcp.AddTool(server, tools.MermaidRenderTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.MermaidRenderQuery) (*mcp.CallToolResult, *tools.MermaidRenderResponse, error) {
		return tools.MermaidRenderToolHandler(ctx, req, query, mapper, log)
	})

	mcp.AddTool(server, tools.ZoteroSearchTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.ZoteroSearchQuery) (*mcp.CallToolResult, *tools.ZoteroSearchResponse, error) {
		return tools.ZoteroSearchToolHandler(ctx, req, query, zotero, log)
	})

	resourceHandler := resources.NewMindMapResourceHandler()
	read := func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return resourceHandler.ReadResource(ctx, req.Params.URI)
	}

	// Template for prompts
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "mindmap://prompts/{name}",
		Name:        "mindmap-prompt",
		Description: "Prompt used for one pipeline step (summarize, diagram or extract)",
		MIMEType:    "text/plain",
	}, read)

	for _, r := range resourceHandler.ListResources() {
		server.AddResource(r, read)
	}

	return server
}
