package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/Epistemic-Technology/zotero/zotero"

	"github.com/Epistemic-Technology/pdf-mindmap/models"
)

const (
	TypePDF     = "pdf"
	TypeHTML    = "html"
	TypeText    = "txt"
	TypeUnknown = "unknown"
)

// ErrNotPDF is returned when an input does not look like a PDF document
var ErrNotPDF = errors.New("not a PDF document")

// DetectType determines the type of document from the raw data by checking
// magic bytes. Only "pdf" is accepted by the pipeline; the other values exist
// so that rejections can say what was received instead.
func DetectType(data []byte) string {
	if len(data) == 0 {
		return TypeUnknown
	}

	if bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("%PDF-")) {
		return TypePDF
	}

	trimmed := bytes.ToLower(bytes.TrimSpace(data[:min(len(data), 512)]))
	if bytes.HasPrefix(trimmed, []byte("<!doctype html")) || bytes.HasPrefix(trimmed, []byte("<html")) {
		return TypeHTML
	}

	if isLikelyText(data) {
		return TypeText
	}
	return TypeUnknown
}

// RequirePDF returns ErrNotPDF, annotated with the detected type, unless data
// is a PDF
func RequirePDF(name string, data []byte) error {
	if t := DetectType(data); t != TypePDF {
		return fmt.Errorf("%s: %w (detected %s)", name, ErrNotPDF, t)
	}
	return nil
}

// isLikelyText checks if the data is likely plain text (no binary content)
func isLikelyText(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	sample := data[:min(len(data), 512)]
	if bytes.IndexByte(sample, 0) >= 0 {
		return false
	}

	printable := 0
	for _, b := range sample {
		if (b >= 32 && b <= 126) || b == '\n' || b == '\r' || b == '\t' {
			printable++
		}
	}
	return float64(printable)/float64(len(sample)) > 0.9
}

// GetData retrieves a PDF from a URL or a Zotero attachment
func GetData(ctx context.Context, sourceInfo models.SourceInfo, zoteroAPIKey, zoteroLibraryID string) (models.Upload, error) {
	var upload models.Upload
	var err error

	switch {
	case sourceInfo.ZoteroID != "":
		upload, err = GetFromZotero(ctx, sourceInfo.ZoteroID, zoteroAPIKey, zoteroLibraryID)
	case sourceInfo.URL != "":
		upload, err = GetFromURL(ctx, sourceInfo.URL)
	default:
		return models.Upload{}, errors.New("no data provided")
	}
	if err != nil {
		return models.Upload{}, err
	}

	if len(upload.Data) == 0 {
		return models.Upload{}, errors.New("no data retrieved")
	}
	if err := RequirePDF(upload.Name, upload.Data); err != nil {
		return models.Upload{}, err
	}
	return upload, nil
}

// GetFromURL fetches a document from a URL
func GetFromURL(ctx context.Context, url string) (models.Upload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.Upload{}, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return models.Upload{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Upload{}, fmt.Errorf("failed to fetch %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Upload{}, fmt.Errorf("failed to read %s: %w", url, err)
	}

	name := path.Base(req.URL.Path)
	if name == "" || name == "/" || name == "." {
		name = req.URL.Host
	}
	return models.Upload{Name: name, Data: data}, nil
}

// GetFromZotero fetches an attachment file from a Zotero library
func GetFromZotero(ctx context.Context, zoteroID string, apiKey string, libraryID string) (models.Upload, error) {
	if apiKey == "" || libraryID == "" {
		return models.Upload{}, errors.New("ZOTERO_API_KEY and ZOTERO_LIBRARY_ID are required for Zotero sources")
	}

	client := zotero.NewClient(libraryID, zotero.LibraryTypeUser, zotero.WithAPIKey(apiKey))

	name := zoteroID
	if item, err := client.Item(ctx, zoteroID, nil); err == nil {
		if item.Data.Filename != "" {
			name = item.Data.Filename
		} else if strings.TrimSpace(item.Data.Title) != "" {
			name = item.Data.Title
		}
	}

	data, err := client.File(ctx, zoteroID)
	if err != nil {
		return models.Upload{}, fmt.Errorf("failed to download Zotero attachment %s: %w", zoteroID, err)
	}
	return models.Upload{Name: name, Data: data}, nil
}
