package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Epistemic-Technology/pdf-mindmap/internal/logger"
	"github.com/Epistemic-Technology/pdf-mindmap/internal/mermaid"
	"github.com/Epistemic-Technology/pdf-mindmap/models"
)

var krokiFormats = map[string]string{
	"png": "image/png",
	"svg": "image/svg+xml",
	"pdf": "application/pdf",
}

// KrokiRenderer posts diagrams to a Kroki server
type KrokiRenderer struct {
	baseURL string
	format  string
	client  *http.Client
	log     logger.Logger

	mu     sync.Mutex
	closed bool
}

// NewKrokiRenderer creates a renderer for the Kroki instance at baseURL.
// format is one of png, svg or pdf and defaults to png.
func NewKrokiRenderer(baseURL, format string, timeout time.Duration, log logger.Logger) (*KrokiRenderer, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("kroki base URL is required")
	}
	if format == "" {
		format = "png"
	}
	if _, ok := krokiFormats[format]; !ok {
		return nil, fmt.Errorf("unsupported kroki output format: %s", format)
	}
	return &KrokiRenderer{
		baseURL: strings.TrimRight(baseURL, "/"),
		format:  format,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}, nil
}

// Render sends the themed diagram to {base}/mermaid/{format}
func (k *KrokiRenderer) Render(ctx context.Context, code string) (*models.Image, error) {
	if err := k.checkClosed(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(code) == "" {
		return nil, mermaid.ErrEmptyDiagram
	}

	endpoint := k.baseURL + "/mermaid/" + k.format
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBufferString(mermaid.WithTheme(code)))
	if err != nil {
		return nil, fmt.Errorf("failed to create kroki request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	k.log.Debug("Rendering %d bytes of Mermaid via %s", len(code), endpoint)
	resp, err := k.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach kroki: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read kroki response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error rendering diagram: %d - %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return &models.Image{Data: body, MIMEType: krokiFormats[k.format]}, nil
}

// Close marks the renderer closed. Close is idempotent.
func (k *KrokiRenderer) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.closed = true
	k.client.CloseIdleConnections()
	return nil
}

func (k *KrokiRenderer) checkClosed() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return ErrClosed
	}
	return nil
}
