// Package render turns Mermaid source into an image, either through a Kroki
// service or a local headless browser.
package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/Epistemic-Technology/pdf-mindmap/internal/config"
	"github.com/Epistemic-Technology/pdf-mindmap/internal/logger"
	"github.com/Epistemic-Technology/pdf-mindmap/models"
)

// ErrClosed is returned when attempting to use a closed renderer
var ErrClosed = errors.New("renderer is closed")

// Renderer converts Mermaid source to an image
type Renderer interface {
	// Render applies the diagram theme to code and renders it
	Render(ctx context.Context, code string) (*models.Image, error)
	Close() error
}

// New creates the renderer selected by cfg.Kind
func New(cfg config.RendererConfig, log logger.Logger) (Renderer, error) {
	switch cfg.Kind {
	case config.RendererKroki, "":
		return NewKrokiRenderer(cfg.KrokiURL, cfg.Format, cfg.Timeout, log)
	case config.RendererBrowser:
		opts := []Option{
			WithTimeout(cfg.Timeout),
			WithScaleFactor(cfg.ScaleFactor),
			WithViewport(cfg.ViewportWidth, cfg.ViewportHeight),
		}
		if cfg.ChromePath != "" {
			opts = append(opts, WithChromePath(cfg.ChromePath))
		}
		if cfg.MermaidJSURL != "" {
			opts = append(opts, WithMermaidJSURL(cfg.MermaidJSURL))
		}
		if cfg.NoSandbox {
			opts = append(opts, WithNoSandbox())
		}
		if cfg.DownloadBrowser {
			opts = append(opts, WithDownloadBrowser())
		}
		return NewBrowserRenderer(log, opts...)
	default:
		return nil, fmt.Errorf("unknown renderer: %s", cfg.Kind)
	}
}
