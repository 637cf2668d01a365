package operations

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Epistemic-Technology/pdf-mindmap/internal/documents"
	"github.com/Epistemic-Technology/pdf-mindmap/internal/logger"
	"github.com/Epistemic-Technology/pdf-mindmap/internal/mermaid"
	"github.com/Epistemic-Technology/pdf-mindmap/models"
)

type fakeLLM struct {
	mu         sync.Mutex
	summaryIn  string
	diagramIn  string
	extractIn  string
	summary    string
	raw        string
	extracted  string
	summaryErr error
}

func (f *fakeLLM) Summarize(ctx context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaryIn = text
	return f.summary, f.summaryErr
}

func (f *fakeLLM) GenerateDiagram(ctx context.Context, summary string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.diagramIn = summary
	return f.raw, nil
}

func (f *fakeLLM) ExtractMermaid(ctx context.Context, raw string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.extractIn = raw
	return f.extracted, nil
}

type fakeRenderer struct {
	code string
	err  error
}

func (f *fakeRenderer) Render(ctx context.Context, code string) (*models.Image, error) {
	f.code = code
	if f.err != nil {
		return nil, f.err
	}
	return &models.Image{Data: []byte("png"), MIMEType: "image/png"}, nil
}

func (f *fakeRenderer) Close() error { return nil }

// fakeExtract treats everything after the PDF header line as the document text
func fakeExtract(data []byte) (string, error) {
	_, text, _ := strings.Cut(string(data), "\n")
	if text == "corrupt" {
		return "", errors.New("bad xref table")
	}
	return text, nil
}

func pdfUpload(name, text string) models.Upload {
	return models.Upload{Name: name, Data: []byte("%PDF-1.4\n" + text)}
}

func newTestGenerator(lm *fakeLLM, r *fakeRenderer) *Generator {
	g := NewGenerator(lm, r, logger.NewNoOpLogger())
	g.Extract = fakeExtract
	g.Validate = func([]byte) (int, error) { return 2, nil }
	return g
}

func TestGenerator_Generate(t *testing.T) {
	lm := &fakeLLM{
		summary:   "Key concepts",
		raw:       "Here you go:\n```mermaid\ngraph TD\nA[Root (main)] --> B\n```",
		extracted: "```mermaid\ngraph TD\nA[Root (main)] --> B\n```",
	}
	r := &fakeRenderer{}
	g := newTestGenerator(lm, r)

	var stages []string
	g.Progress = func(stage string) { stages = append(stages, stage) }

	mm, err := g.Generate(context.Background(), []models.Upload{
		pdfUpload("a.pdf", "first document"),
		pdfUpload("b.pdf", "second document"),
	})
	require.NoError(t, err)

	assert.Equal(t, "first document\nsecond document\n", lm.summaryIn)
	assert.Equal(t, "Key concepts", lm.diagramIn)
	assert.Equal(t, lm.raw, lm.extractIn)
	assert.Equal(t, "graph TD\nA[Root main] --> B", r.code)

	assert.NotEmpty(t, mm.ID)
	assert.Equal(t, "Key concepts", mm.Summary)
	assert.Equal(t, lm.raw, mm.RawDiagram)
	assert.Equal(t, "graph TD\nA[Root main] --> B", mm.Mermaid)
	require.NotNil(t, mm.Image)
	assert.Equal(t, "image/png", mm.Image.MIMEType)
	assert.Equal(t, []models.DocumentInfo{
		{Name: "a.pdf", PageCount: 2, TextLength: len("first document")},
		{Name: "b.pdf", PageCount: 2, TextLength: len("second document")},
	}, mm.Documents)
	assert.Equal(t, []string{StageExtract, StageSummarize, StageDiagram, StageExtractMM, StageRender}, stages)
}

func TestGenerator_GenerateNoText(t *testing.T) {
	lm := &fakeLLM{summary: "unused"}
	g := newTestGenerator(lm, &fakeRenderer{})

	_, err := g.Generate(context.Background(), []models.Upload{pdfUpload("scan.pdf", "  \n ")})
	assert.True(t, errors.Is(err, ErrNoText), "got %v", err)
	assert.Empty(t, lm.summaryIn, "LLM must not be called without text")
}

func TestGenerator_RejectsNonPDF(t *testing.T) {
	g := newTestGenerator(&fakeLLM{}, &fakeRenderer{})

	_, err := g.Generate(context.Background(), []models.Upload{
		pdfUpload("a.pdf", "text"),
		{Name: "notes.txt", Data: []byte("plain notes")},
	})
	assert.True(t, errors.Is(err, documents.ErrNotPDF), "got %v", err)
}

func TestGenerator_NoUploads(t *testing.T) {
	g := newTestGenerator(&fakeLLM{}, &fakeRenderer{})

	_, err := g.Generate(context.Background(), nil)
	assert.Error(t, err)
}

func TestGenerator_ExtractionError(t *testing.T) {
	g := newTestGenerator(&fakeLLM{}, &fakeRenderer{})

	_, err := g.Generate(context.Background(), []models.Upload{pdfUpload("broken.pdf", "corrupt")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.pdf")
}

func TestGenerator_ValidationFailureIsNotFatal(t *testing.T) {
	g := newTestGenerator(&fakeLLM{summary: "s"}, &fakeRenderer{})
	g.Validate = func([]byte) (int, error) { return 0, errors.New("xref damaged") }

	text, infos, err := g.ExtractUploads(context.Background(), []models.Upload{pdfUpload("a.pdf", "hello")})
	require.NoError(t, err)
	assert.Equal(t, "hello\n", text)
	assert.Equal(t, 0, infos[0].PageCount)
}

func TestGenerator_SummaryError(t *testing.T) {
	lm := &fakeLLM{summaryErr: errors.New("quota exceeded")}
	g := newTestGenerator(lm, &fakeRenderer{})

	_, err := g.GenerateFromText(context.Background(), "some text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to summarize document")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestGenerator_EmptyDiagram(t *testing.T) {
	lm := &fakeLLM{summary: "s", raw: "r", extracted: "```\n```"}
	r := &fakeRenderer{}
	g := newTestGenerator(lm, r)

	_, err := g.GenerateFromText(context.Background(), "some text")
	assert.True(t, errors.Is(err, mermaid.ErrEmptyDiagram), "got %v", err)
	assert.Empty(t, r.code, "renderer must not be called")
}

func TestGenerator_RenderError(t *testing.T) {
	lm := &fakeLLM{summary: "s", raw: "r", extracted: "graph TD\nA-->"}
	g := newTestGenerator(lm, &fakeRenderer{err: errors.New("error rendering diagram: 400 - Parse error")})

	_, err := g.GenerateFromText(context.Background(), "some text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400 - Parse error")
}

func TestGenerator_Summarize(t *testing.T) {
	lm := &fakeLLM{summary: "Only a summary"}
	r := &fakeRenderer{}
	g := newTestGenerator(lm, r)

	summary, infos, err := g.Summarize(context.Background(), []models.Upload{pdfUpload("a.pdf", "text")})
	require.NoError(t, err)
	assert.Equal(t, "Only a summary", summary)
	assert.Len(t, infos, 1)
	assert.Empty(t, lm.diagramIn)
	assert.Empty(t, r.code)
}

func TestGenerator_RenderMermaid(t *testing.T) {
	r := &fakeRenderer{}
	g := newTestGenerator(&fakeLLM{}, r)

	img, code, err := g.RenderMermaid(context.Background(), "```mermaid\ngraph LR\nA(x) --> B\n```")
	require.NoError(t, err)
	assert.Equal(t, "graph LR\nAx --> B", code)
	assert.Equal(t, code, r.code)
	assert.NotNil(t, img)
}
