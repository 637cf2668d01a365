// Package web serves the browser UI and a small JSON API for generating mind
// maps from uploaded PDFs.
package web

import (
	"context"
	"embed"
	"encoding/base64"
	"html/template"
	"strings"

	"github.com/Masterminds/sprig/v3"

	"github.com/Epistemic-Technology/pdf-mindmap/internal/config"
	"github.com/Epistemic-Technology/pdf-mindmap/internal/documents"
	"github.com/Epistemic-Technology/pdf-mindmap/internal/logger"
	"github.com/Epistemic-Technology/pdf-mindmap/models"
)

const pageTitle = "Mind Map Generator on Document"

//go:embed templates/*.html
var templateFS embed.FS

// Pipeline is the part of operations.Generator the handlers use
type Pipeline interface {
	Generate(ctx context.Context, uploads []models.Upload) (*models.MindMap, error)
	RenderMermaid(ctx context.Context, code string) (*models.Image, string, error)
}

// Handler serves the UI and API endpoints
type Handler struct {
	pipeline Pipeline
	cfg      config.ServerConfig
	log      logger.Logger
	tmpl     *template.Template

	// previews renders page thumbnails; defaults to documents.PageImages
	previews func(data []byte, dpi float64, maxPages int) ([][]byte, error)
}

// NewHandler parses the embedded templates and returns a Handler
func NewHandler(p Pipeline, cfg config.ServerConfig, log logger.Logger) (*Handler, error) {
	tmpl, err := template.New("").
		Funcs(sprig.FuncMap()).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Handler{
		pipeline: p,
		cfg:      cfg,
		log:      log,
		tmpl:     tmpl,
		previews: documents.PageImages,
	}, nil
}

type pageData struct {
	Title       string
	MaxUploadMB int64
	Warning     string
	Error       string
	Result      *resultView
}

type resultView struct {
	ID        string
	Summary   string
	Mermaid   string
	ImageURI  template.URL
	Ext       string
	Documents []documentView
}

type documentView struct {
	Name       string
	PageCount  int
	TextLength int
	Previews   []template.URL
}

// dataURI inlines data so results never need to be stored server side
func dataURI(mimeType string, data []byte) template.URL {
	return template.URL("data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data))
}

func extensionFor(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "svg"):
		return "svg"
	case strings.Contains(mimeType, "pdf"):
		return "pdf"
	default:
		return "png"
	}
}
