package web

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Epistemic-Technology/pdf-mindmap/internal/documents"
	"github.com/Epistemic-Technology/pdf-mindmap/internal/mermaid"
	"github.com/Epistemic-Technology/pdf-mindmap/internal/operations"
	"github.com/Epistemic-Technology/pdf-mindmap/models"
)

const (
	uploadField     = "files"
	maxMemory       = 32 << 20
	maxMermaidBytes = 1 << 20
	noUploadWarning = "Please upload a PDF file to proceed."
)

var errNoFiles = errors.New("no files uploaded")

// MindMapResponse is the JSON body of POST /api/mindmap
type MindMapResponse struct {
	ID          string                `json:"id"`
	Summary     string                `json:"summary"`
	Mermaid     string                `json:"mermaid"`
	ImageBase64 string                `json:"image_base64"`
	MIMEType    string                `json:"mime_type"`
	Documents   []models.DocumentInfo `json:"documents"`
}

// Index handles GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, http.StatusOK, pageData{Warning: noUploadWarning})
}

// Generate handles POST /generate from the upload form
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	uploads, err := h.readUploads(w, r)
	if errors.Is(err, errNoFiles) {
		h.renderPage(w, http.StatusOK, pageData{Warning: noUploadWarning})
		return
	}
	if err != nil {
		h.renderPage(w, uploadErrorStatus(err), pageData{Error: err.Error()})
		return
	}

	mm, err := h.pipeline.Generate(r.Context(), uploads)
	if err != nil {
		h.log.Error("Failed to generate mind map: %v", err)
		h.renderPage(w, pipelineErrorStatus(err), pageData{Error: err.Error()})
		return
	}

	view := &resultView{
		ID:       mm.ID,
		Summary:  mm.Summary,
		Mermaid:  mm.Mermaid,
		ImageURI: dataURI(mm.Image.MIMEType, mm.Image.Data),
		Ext:      extensionFor(mm.Image.MIMEType),
	}
	for i, doc := range mm.Documents {
		dv := documentView{Name: doc.Name, PageCount: doc.PageCount, TextLength: doc.TextLength}
		if i < len(uploads) {
			dv.Previews = h.pagePreviews(uploads[i])
		}
		view.Documents = append(view.Documents, dv)
	}

	h.renderPage(w, http.StatusOK, pageData{Result: view})
}

// GenerateJSON handles POST /api/mindmap
func (h *Handler) GenerateJSON(w http.ResponseWriter, r *http.Request) {
	uploads, err := h.readUploads(w, r)
	if err != nil {
		h.writeError(w, uploadErrorStatus(err), "invalid upload", err.Error())
		return
	}

	mm, err := h.pipeline.Generate(r.Context(), uploads)
	if err != nil {
		h.log.Error("Failed to generate mind map: %v", err)
		h.writeError(w, pipelineErrorStatus(err), "failed to generate mind map", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, MindMapResponse{
		ID:          mm.ID,
		Summary:     mm.Summary,
		Mermaid:     mm.Mermaid,
		ImageBase64: base64.StdEncoding.EncodeToString(mm.Image.Data),
		MIMEType:    mm.Image.MIMEType,
		Documents:   mm.Documents,
	})
}

// RenderMermaid handles POST /api/render. The body is Mermaid source and the
// response is the rendered image.
func (h *Handler) RenderMermaid(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxMermaidBytes))
	if err != nil {
		h.writeError(w, http.StatusRequestEntityTooLarge, "diagram too large", err.Error())
		return
	}

	img, _, err := h.pipeline.RenderMermaid(r.Context(), string(body))
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, mermaid.ErrEmptyDiagram) {
			status = http.StatusBadRequest
		}
		h.writeError(w, status, "failed to render diagram", err.Error())
		return
	}

	w.Header().Set("Content-Type", img.MIMEType)
	w.WriteHeader(http.StatusOK)
	w.Write(img.Data)
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "pdf-mindmap"})
}

func (h *Handler) readUploads(w http.ResponseWriter, r *http.Request) ([]models.Upload, error) {
	maxBytes := h.cfg.MaxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		if isTooLarge(err) {
			return nil, fmt.Errorf("upload too large (max %dMB): %w", h.cfg.MaxUploadMB, err)
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, errNoFiles
		}
		return nil, fmt.Errorf("invalid upload form: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[uploadField]
	if len(headers) == 0 {
		return nil, errNoFiles
	}

	uploads := make([]models.Upload, 0, len(headers))
	for _, fh := range headers {
		if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
			return nil, fmt.Errorf("%s: %w (only .pdf files are accepted)", fh.Filename, documents.ErrNotPDF)
		}
		data, err := readPart(fh)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
		}
		uploads = append(uploads, models.Upload{Name: fh.Filename, Data: data})
	}
	h.log.Info("Received %d uploaded files", len(uploads))
	return uploads, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (h *Handler) pagePreviews(upload models.Upload) []template.URL {
	if h.previews == nil || h.cfg.PreviewPages <= 0 {
		return nil
	}
	images, err := h.previews(upload.Data, h.cfg.PreviewDPI, h.cfg.PreviewPages)
	if err != nil {
		h.log.Warn("Failed to render previews for %s: %v", upload.Name, err)
		return nil
	}
	uris := make([]template.URL, len(images))
	for i, img := range images {
		uris[i] = dataURI("image/png", img)
	}
	return uris
}

func (h *Handler) renderPage(w http.ResponseWriter, status int, data pageData) {
	data.Title = pageTitle
	data.MaxUploadMB = h.cfg.MaxUploadMB

	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "index.html", data); err != nil {
		h.log.Error("Failed to render page: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response: %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, detail string) {
	resp := map[string]string{
		"error":   message,
		"message": message,
	}
	if detail != "" {
		resp["detail"] = detail
	}
	h.writeJSON(w, status, resp)
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

func uploadErrorStatus(err error) int {
	switch {
	case errors.Is(err, errNoFiles):
		return http.StatusBadRequest
	case isTooLarge(err):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, documents.ErrNotPDF):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusBadRequest
	}
}

func pipelineErrorStatus(err error) int {
	switch {
	case errors.Is(err, documents.ErrNotPDF):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, operations.ErrNoText):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
