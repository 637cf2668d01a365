package operations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Epistemic-Technology/pdf-mindmap/internal/documents"
	"github.com/Epistemic-Technology/pdf-mindmap/internal/logger"
	"github.com/Epistemic-Technology/pdf-mindmap/internal/mermaid"
	"github.com/Epistemic-Technology/pdf-mindmap/internal/render"
	"github.com/Epistemic-Technology/pdf-mindmap/internal/workers"
	"github.com/Epistemic-Technology/pdf-mindmap/models"
)

// ErrNoText is returned when none of the inputs yield any text
var ErrNoText = errors.New("no text could be extracted from the uploaded documents")

// Pipeline stages reported through Generator.Progress
const (
	StageExtract   = "Extracting text"
	StageSummarize = "Summarizing"
	StageDiagram   = "Generating diagram"
	StageExtractMM = "Extracting Mermaid code"
	StageRender    = "Rendering diagram"
)

// LanguageModel is the subset of the LLM client the pipeline needs
type LanguageModel interface {
	Summarize(ctx context.Context, text string) (string, error)
	GenerateDiagram(ctx context.Context, summary string) (string, error)
	ExtractMermaid(ctx context.Context, raw string) (string, error)
}

// Generator runs the upload to image pipeline. A Generator holds no per-run
// state and may be shared between requests, except for Progress which is
// meant for single-run callers such as the CLI.
type Generator struct {
	LLM      LanguageModel
	Renderer render.Renderer
	Log      logger.Logger

	// Extract and Validate default to the documents package implementations
	Extract  func([]byte) (string, error)
	Validate func([]byte) (int, error)

	MaxWorkers int
	Progress   func(stage string)
}

// NewGenerator creates a Generator with the default text extraction
func NewGenerator(lm LanguageModel, r render.Renderer, log logger.Logger) *Generator {
	return &Generator{
		LLM:      lm,
		Renderer: r,
		Log:      log,
		Extract:  documents.ExtractText,
		Validate: documents.Validate,
	}
}

// ExtractUploads extracts the text of every upload concurrently and returns
// it combined in upload order, together with per-document statistics
func (g *Generator) ExtractUploads(ctx context.Context, uploads []models.Upload) (string, []models.DocumentInfo, error) {
	if len(uploads) == 0 {
		return "", nil, errors.New("no documents provided")
	}
	g.report(StageExtract)

	type extracted struct {
		text string
		info models.DocumentInfo
	}
	results, err := workers.ParallelProcess(ctx, uploads, g.MaxWorkers, g.Log, func(ctx context.Context, i int, upload models.Upload) (extracted, error) {
		if err := documents.RequirePDF(upload.Name, upload.Data); err != nil {
			return extracted{}, err
		}

		info := models.DocumentInfo{Name: upload.Name}
		if g.Validate != nil {
			pages, err := g.Validate(upload.Data)
			if err != nil {
				g.Log.Warn("PDF validation failed for %s, attempting extraction anyway: %v", upload.Name, err)
			} else {
				info.PageCount = pages
			}
		}

		extract := g.Extract
		if extract == nil {
			extract = documents.ExtractText
		}
		text, err := extract(upload.Data)
		if err != nil {
			return extracted{}, fmt.Errorf("failed to extract text from %s: %w", upload.Name, err)
		}
		info.TextLength = len(text)
		g.Log.Debug("Extracted %d characters from %s (%d pages)", len(text), upload.Name, info.PageCount)
		return extracted{text: text, info: info}, nil
	})
	if err != nil {
		return "", nil, err
	}

	texts := make([]string, len(results))
	infos := make([]models.DocumentInfo, len(results))
	for i, r := range results {
		texts[i] = r.text
		infos[i] = r.info
	}
	return documents.CombineText(texts), infos, nil
}

// Generate runs the whole pipeline over uploads
func (g *Generator) Generate(ctx context.Context, uploads []models.Upload) (*models.MindMap, error) {
	text, infos, err := g.ExtractUploads(ctx, uploads)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoText
	}

	mm, err := g.GenerateFromText(ctx, text)
	if err != nil {
		return nil, err
	}
	mm.Documents = infos
	return mm, nil
}

// GenerateFromText runs the pipeline from already extracted text
func (g *Generator) GenerateFromText(ctx context.Context, text string) (*models.MindMap, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoText
	}

	id := uuid.NewString()
	log := g.Log.With("mindmap_id", id)
	log.Info("Generating mind map from %d characters of text", len(text))

	g.report(StageSummarize)
	summary, err := g.LLM.Summarize(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize document: %w", err)
	}

	g.report(StageDiagram)
	raw, err := g.LLM.GenerateDiagram(ctx, summary)
	if err != nil {
		return nil, fmt.Errorf("failed to generate diagram: %w", err)
	}

	g.report(StageExtractMM)
	extracted, err := g.LLM.ExtractMermaid(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to extract Mermaid code: %w", err)
	}

	g.report(StageRender)
	img, code, err := g.RenderMermaid(ctx, extracted)
	if err != nil {
		return nil, err
	}

	log.Info("Mind map generated: %d bytes of Mermaid, %d byte %s image", len(code), len(img.Data), img.MIMEType)
	return &models.MindMap{
		ID:         id,
		Summary:    summary,
		RawDiagram: raw,
		Mermaid:    code,
		Image:      img,
	}, nil
}

// RenderMermaid cleans code and renders it, returning the image and the
// cleaned source
func (g *Generator) RenderMermaid(ctx context.Context, code string) (*models.Image, string, error) {
	cleaned, err := mermaid.CleanStrict(code)
	if err != nil {
		return nil, "", err
	}
	if !mermaid.HasHeader(cleaned) {
		g.Log.Warn("Mermaid code does not start with a graph declaration")
	}

	img, err := g.Renderer.Render(ctx, cleaned)
	if err != nil {
		return nil, cleaned, fmt.Errorf("failed to render diagram: %w", err)
	}
	return img, cleaned, nil
}

// Summarize extracts and summarizes uploads without producing a diagram
func (g *Generator) Summarize(ctx context.Context, uploads []models.Upload) (string, []models.DocumentInfo, error) {
	text, infos, err := g.ExtractUploads(ctx, uploads)
	if err != nil {
		return "", nil, err
	}
	if strings.TrimSpace(text) == "" {
		return "", nil, ErrNoText
	}

	g.report(StageSummarize)
	summary, err := g.LLM.Summarize(ctx, text)
	if err != nil {
		return "", nil, fmt.Errorf("failed to summarize document: %w", err)
	}
	return summary, infos, nil
}

func (g *Generator) report(stage string) {
	if g.Progress != nil {
		g.Progress(stage)
	}
}
