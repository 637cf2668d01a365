package operations

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/Epistemic-Technology/zotero/zotero"

	"github.com/Epistemic-Technology/pdf-mindmap/internal/logger"
)

// ZoteroSearchParams contains parameters for searching a Zotero library.
type ZoteroSearchParams struct {
	Query      string   // Quick search text (searches title, creator, year)
	Tags       []string // Filter by tags
	ItemTypes  []string // Filter by type (e.g., "book", "journalArticle")
	Collection string   // Filter by collection key (optional)
	Limit      int      // Max results (default 25)
	Sort       string   // Sort field (default "dateModified")
}

// ZoteroItemResult is a Zotero item that has at least one PDF attachment
type ZoteroItemResult struct {
	Key         string
	Title       string
	Creators    []string
	ItemType    string
	Date        string
	Attachments []AttachmentInfo
}

// AttachmentInfo contains information about a PDF attached to a Zotero item.
type AttachmentInfo struct {
	Key         string // Use this as zotero_id when generating a mind map
	Filename    string
	ContentType string
	LinkMode    string // imported_file, imported_url, linked_file, linked_url
}

// SearchZotero searches a Zotero library and returns the matching items that
// have PDF attachments, with those attachments listed. Items without a PDF
// cannot be turned into a mind map and are left out.
func SearchZotero(ctx context.Context, apiKey, libraryID string, params ZoteroSearchParams, log logger.Logger) ([]ZoteroItemResult, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Zotero API key is required")
	}
	if libraryID == "" {
		return nil, fmt.Errorf("Zotero library ID is required")
	}

	client := zotero.NewClient(libraryID, zotero.LibraryTypeUser, zotero.WithAPIKey(apiKey))

	queryParams := &zotero.QueryParams{
		Q:        params.Query,
		QMode:    "titleCreatorYear",
		Tag:      params.Tags,
		ItemType: params.ItemTypes,
		Limit:    params.Limit,
		Sort:     params.Sort,
	}
	if queryParams.Limit == 0 {
		queryParams.Limit = 25
	}
	if queryParams.Sort == "" {
		queryParams.Sort = "dateModified"
	}
	if len(queryParams.ItemType) == 0 {
		queryParams.ItemType = []string{"-attachment"}
	}

	var items []zotero.Item
	var err error
	if params.Collection != "" {
		items, err = client.CollectionItems(ctx, params.Collection, queryParams)
		if err != nil {
			log.Error("Failed to search collection %s: %v", params.Collection, err)
			return nil, fmt.Errorf("failed to search collection %s: %w", params.Collection, err)
		}
	} else {
		items, err = client.Items(ctx, queryParams)
		if err != nil {
			log.Error("Failed to search Zotero library: %v", err)
			return nil, fmt.Errorf("failed to search Zotero library: %w", err)
		}
	}

	log.Info("Found %d items in Zotero library", len(items))

	results := make([]ZoteroItemResult, 0, len(items))
	for _, item := range items {
		if item.Data.ItemType == "attachment" {
			continue
		}

		children, err := client.Children(ctx, item.Key, nil)
		if err != nil {
			log.Error("Failed to retrieve children for item %s: %v", item.Key, err)
			continue
		}

		var attachments []AttachmentInfo
		for _, child := range children {
			if child.Data.ItemType != "attachment" || !IsPDFAttachment(child.Data.ContentType, child.Data.Filename) {
				continue
			}
			attachments = append(attachments, AttachmentInfo{
				Key:         child.Key,
				Filename:    child.Data.Filename,
				ContentType: child.Data.ContentType,
				LinkMode:    child.Data.LinkMode,
			})
		}
		if len(attachments) == 0 {
			continue
		}

		result := ZoteroItemResult{
			Key:         item.Key,
			Title:       item.Data.Title,
			ItemType:    item.Data.ItemType,
			Date:        item.Data.DateAdded,
			Attachments: attachments,
		}
		for _, creator := range item.Data.Creators {
			if name := CreatorName(creator.Name, creator.FirstName, creator.LastName); name != "" {
				result.Creators = append(result.Creators, name)
			}
		}
		results = append(results, result)
	}

	log.Info("Returning %d items with PDF attachments", len(results))
	return results, nil
}

// IsPDFAttachment reports whether an attachment is a PDF, by MIME type or, when
// that is missing, by file extension
func IsPDFAttachment(contentType, filename string) bool {
	if contentType != "" {
		return strings.EqualFold(strings.TrimSpace(strings.Split(contentType, ";")[0]), "application/pdf")
	}
	return strings.EqualFold(path.Ext(filename), ".pdf")
}

// CreatorName formats a Zotero creator, which carries either a single name or
// a first and last name
func CreatorName(name, firstName, lastName string) string {
	if name != "" {
		return name
	}
	return strings.TrimSpace(firstName + " " + lastName)
}
