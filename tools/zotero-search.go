package tools

import (
	"context"
	"errors"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdf-mindmap/internal/config"
	"github.com/Epistemic-Technology/pdf-mindmap/internal/logger"
	"github.com/Epistemic-Technology/pdf-mindmap/internal/operations"
)

type ZoteroSearchQuery struct {
	Query      string   `json:"query,omitempty"`      // Quick search text (searches title, creator, year)
	Tags       []string `json:"tags,omitempty"`       // Filter by tags
	ItemTypes  []string `json:"item_types,omitempty"` // Filter by type (e.g., "book", "journalArticle")
	Collection string   `json:"collection,omitempty"` // Filter by collection key (optional)
	Limit      int      `json:"limit,omitempty"`      // Max results (default 25)
	Sort       string   `json:"sort,omitempty"`       // Sort field (default "dateModified")
}

type ZoteroSearchResponse struct {
	Items []ZoteroItemResult `json:"items"`
	Count int                `json:"count"`
}

type ZoteroItemResult struct {
	Key         string           `json:"key"`
	Title       string           `json:"title"`
	Creators    []string         `json:"creators,omitempty"`
	ItemType    string           `json:"item_type"`
	Date        string           `json:"date,omitempty"`
	Attachments []AttachmentInfo `json:"attachments"`
}

type AttachmentInfo struct {
	Key         string `json:"key"` // Use this as zotero_id in mindmap-generate
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	LinkMode    string `json:"link_mode"` // imported_file, imported_url, linked_file, linked_url
}

func ZoteroSearchTool() *mcp.Tool {
	inputschema, err := jsonschema.For[ZoteroSearchQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "zotero-search",
		Description: "Search a Zotero library for items that have PDF attachments. Returns bibliographic items with their PDF attachment keys; pass an attachment key as zotero_id to mindmap-generate or document-summarize.",
		InputSchema: inputschema,
	}
}

func ZoteroSearchToolHandler(ctx context.Context, req *mcp.CallToolRequest, query ZoteroSearchQuery, zotero config.ZoteroConfig, log logger.Logger) (*mcp.CallToolResult, *ZoteroSearchResponse, error) {
	log.Info("zotero-search tool called")

	if zotero.APIKey == "" {
		return nil, nil, errors.New("ZOTERO_API_KEY is not configured")
	}
	if zotero.LibraryID == "" {
		return nil, nil, errors.New("ZOTERO_LIBRARY_ID is not configured")
	}

	searchParams := operations.ZoteroSearchParams{
		Query:      query.Query,
		Tags:       query.Tags,
		ItemTypes:  query.ItemTypes,
		Collection: query.Collection,
		Limit:      query.Limit,
		Sort:       query.Sort,
	}

	items, err := operations.SearchZotero(ctx, zotero.APIKey, zotero.LibraryID, searchParams, log)
	if err != nil {
		return nil, nil, err
	}

	return nil, toZoteroSearchResponse(items), nil
}

func toZoteroSearchResponse(items []operations.ZoteroItemResult) *ZoteroSearchResponse {
	results := make([]ZoteroItemResult, len(items))
	for i, item := range items {
		results[i] = ZoteroItemResult{
			Key:      item.Key,
			Title:    item.Title,
			Creators: item.Creators,
			ItemType: item.ItemType,
			Date:     item.Date,
		}
		for _, att := range item.Attachments {
			results[i].Attachments = append(results[i].Attachments, AttachmentInfo{
				Key:         att.Key,
				Filename:    att.Filename,
				ContentType: att.ContentType,
				LinkMode:    att.LinkMode,
			})
		}
	}
	return &ZoteroSearchResponse{Items: results, Count: len(results)}
}
