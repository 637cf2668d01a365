package render

import "time"

// browserConfig holds internal configuration for a BrowserRenderer
type browserConfig struct {
	chromePath      string
	downloadBrowser bool
	noSandbox       bool
	headless        string
	timeout         time.Duration
	scaleFactor     float64
	width           int64
	height          int64
	mermaidJSURL    string
}

func defaultBrowserConfig() browserConfig {
	return browserConfig{
		headless:     "new",
		timeout:      60 * time.Second,
		scaleFactor:  3,
		width:        1600,
		height:       1200,
		mermaidJSURL: "https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.min.js",
	}
}

// Option configures a BrowserRenderer
type Option func(*browserConfig)

// WithChromePath sets the path to the Chrome or Chromium executable.
// By default chromedp searches standard locations.
func WithChromePath(path string) Option {
	return func(c *browserConfig) {
		c.chromePath = path
	}
}

// WithDownloadBrowser fetches a Chromium build when no path is configured
func WithDownloadBrowser() Option {
	return func(c *browserConfig) {
		c.downloadBrowser = true
	}
}

// WithNoSandbox disables the Chrome sandbox, needed when running as root
// inside containers
func WithNoSandbox() Option {
	return func(c *browserConfig) {
		c.noSandbox = true
	}
}

// WithTimeout sets the maximum duration of a single render. A zero or
// negative value disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *browserConfig) {
		c.timeout = d
	}
}

// WithScaleFactor sets the device scale factor of screenshots. Values of zero
// or less are ignored.
func WithScaleFactor(s float64) Option {
	return func(c *browserConfig) {
		if s > 0 {
			c.scaleFactor = s
		}
	}
}

// WithViewport sets the CSS pixel size of the page the diagram is laid out in
func WithViewport(width, height int64) Option {
	return func(c *browserConfig) {
		if width > 0 {
			c.width = width
		}
		if height > 0 {
			c.height = height
		}
	}
}

// WithMermaidJSURL sets where the page loads mermaid.js from
func WithMermaidJSURL(u string) Option {
	return func(c *browserConfig) {
		c.mermaidJSURL = u
	}
}
