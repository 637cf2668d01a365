package tools

import (
	"context"
	"errors"

	"github.com/Epistemic-Technology/pdf-mindmap/internal/config"
	"github.com/Epistemic-Technology/pdf-mindmap/internal/documents"
	"github.com/Epistemic-Technology/pdf-mindmap/models"
)

// MindMapper is the pipeline the tools call into
type MindMapper interface {
	Generate(ctx context.Context, uploads []models.Upload) (*models.MindMap, error)
	Summarize(ctx context.Context, uploads []models.Upload) (string, []models.DocumentInfo, error)
	RenderMermaid(ctx context.Context, code string) (*models.Image, string, error)
}

// DocumentSource identifies one PDF by exactly one of ZoteroID, URL or RawData
type DocumentSource struct {
	ZoteroID string
	URL      string
	RawData  []byte
	Name     string
}

// fetchUpload resolves a DocumentSource into PDF bytes
func fetchUpload(ctx context.Context, src DocumentSource, zotero config.ZoteroConfig) (models.Upload, error) {
	set := 0
	for _, ok := range []bool{src.ZoteroID != "", src.URL != "", len(src.RawData) > 0} {
		if ok {
			set++
		}
	}
	if set == 0 {
		return models.Upload{}, errors.New("one of zotero_id, url or raw_data is required")
	}
	if set > 1 {
		return models.Upload{}, errors.New("zotero_id, url and raw_data are mutually exclusive")
	}

	if len(src.RawData) > 0 {
		name := src.Name
		if name == "" {
			name = "document.pdf"
		}
		if err := documents.RequirePDF(name, src.RawData); err != nil {
			return models.Upload{}, err
		}
		return models.Upload{Name: name, Data: src.RawData}, nil
	}

	upload, err := documents.GetData(ctx, models.SourceInfo{ZoteroID: src.ZoteroID, URL: src.URL}, zotero.APIKey, zotero.LibraryID)
	if err != nil {
		return models.Upload{}, err
	}
	if src.Name != "" {
		upload.Name = src.Name
	}
	return upload, nil
}
