package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"github.com/go-rod/rod/lib/launcher"

	"github.com/Epistemic-Technology/pdf-mindmap/internal/logger"
	"github.com/Epistemic-Technology/pdf-mindmap/internal/mermaid"
	"github.com/Epistemic-Technology/pdf-mindmap/models"
)

// The page records the outcome on <body data-status>, and the message of a
// failed render on data-error.
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { margin: 0; background: #ffffff; }
  #diagram { display: inline-block; padding: 16px; background: #ffffff; }
</style>
<script src="{{.MermaidJSURL}}"></script>
</head>
<body>
<div id="diagram"></div>
<script>
  (async () => {
    const body = document.body;
    try {
      mermaid.initialize({ startOnLoad: false, securityLevel: "strict" });
      const { svg } = await mermaid.render("mindmap-svg", {{.Source}});
      document.getElementById("diagram").innerHTML = svg;
      body.setAttribute("data-status", "done");
    } catch (e) {
      body.setAttribute("data-error", String((e && e.message) || e));
      body.setAttribute("data-status", "error");
    }
  })();
</script>
</body>
</html>
`))

// BrowserRenderer renders diagrams with mermaid.js in a headless Chrome and
// screenshots the result.
//
// A BrowserRenderer keeps one browser running for all renders and is safe for
// concurrent use. Call Close to stop the browser.
type BrowserRenderer struct {
	cfg           browserConfig
	log           logger.Logger
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// NewBrowserRenderer starts a headless browser configured by opts
func NewBrowserRenderer(log logger.Logger, opts ...Option) (*BrowserRenderer, error) {
	cfg := defaultBrowserConfig()
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.chromePath == "" && cfg.downloadBrowser {
		path, err := resolveBrowser()
		if err != nil {
			return nil, err
		}
		log.Info("Using downloaded browser at %s", path)
		cfg.chromePath = path
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("headless", cfg.headless),
	)
	if cfg.chromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.chromePath))
	}
	if cfg.noSandbox {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &BrowserRenderer{
		cfg:           cfg,
		log:           log,
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Render lays out the themed diagram in a new tab and returns a PNG
// screenshot of it at the configured scale factor
func (b *BrowserRenderer) Render(ctx context.Context, code string) (*models.Image, error) {
	if err := b.checkClosed(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(code) == "" {
		return nil, mermaid.ErrEmptyDiagram
	}

	page, err := buildPage(b.cfg.mermaidJSURL, mermaid.WithTheme(code))
	if err != nil {
		return nil, err
	}

	f, err := os.CreateTemp("", "pdf-mindmap-*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	name := f.Name()
	defer os.Remove(name)

	if _, err := f.Write(page); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	if b.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.timeout)
		defer cancel()
	}

	tabCtx, tabCancel := chromedp.NewContext(b.browserCtx)
	defer tabCancel()

	// chromedp contexts are not derived from ctx, so cancel the tab ourselves
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	var status, renderErr string
	var ok bool
	if err := chromedp.Run(tabCtx,
		chromedp.EmulateViewport(b.cfg.width, b.cfg.height, chromedp.EmulateScale(b.cfg.scaleFactor)),
		emulation.SetDefaultBackgroundColorOverride().WithColor(&cdp.RGBA{R: 255, G: 255, B: 255, A: 1}),
		chromedp.Navigate("file://"+abs),
		chromedp.WaitReady("body[data-status]", chromedp.ByQuery),
		chromedp.AttributeValue("body", "data-status", &status, &ok, chromedp.ByQuery),
		chromedp.AttributeValue("body", "data-error", &renderErr, &ok, chromedp.ByQuery),
	); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("browser render timed out: %w", ctx.Err())
		}
		return nil, fmt.Errorf("browser render failed: %w", err)
	}
	if status != "done" {
		return nil, fmt.Errorf("error rendering diagram: %s", renderErr)
	}

	var buf []byte
	if err := chromedp.Run(tabCtx,
		chromedp.Screenshot("#diagram", &buf, chromedp.NodeVisible, chromedp.ByQuery),
	); err != nil {
		return nil, fmt.Errorf("failed to capture diagram: %w", err)
	}

	b.log.Debug("Rendered diagram screenshot of %d bytes", len(buf))
	return &models.Image{Data: buf, MIMEType: "image/png"}, nil
}

// Close stops the browser. Close is idempotent.
func (b *BrowserRenderer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	if b.browserCancel != nil {
		b.browserCancel()
	}
	if b.allocCancel != nil {
		b.allocCancel()
	}
	return nil
}

func (b *BrowserRenderer) checkClosed() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	return nil
}

func buildPage(mermaidJSURL, source string) ([]byte, error) {
	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, struct {
		MermaidJSURL string
		Source       string
	}{mermaidJSURL, source})
	if err != nil {
		return nil, fmt.Errorf("failed to build render page: %w", err)
	}
	return buf.Bytes(), nil
}

// resolveBrowser downloads a compatible Chromium binary if one is not
// already cached and returns the path to the executable
func resolveBrowser() (string, error) {
	path, err := launcher.NewBrowser().Get()
	if err != nil {
		return "", fmt.Errorf("failed to download browser: %w", err)
	}
	return path, nil
}
