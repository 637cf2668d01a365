package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Epistemic-Technology/pdf-mindmap/internal/logger"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	RendererKroki   = "kroki"
	RendererBrowser = "browser"

	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	geminiModel   = "gemini-1.5-flash"
	openAIModel   = "gpt-5-mini"
)

// Config is the full application configuration
type Config struct {
	LLM      LLMConfig        `yaml:"llm"`
	Renderer RendererConfig   `yaml:"renderer"`
	Server   ServerConfig     `yaml:"server"`
	Zotero   ZoteroConfig     `yaml:"zotero"`
	Log      logger.LogConfig `yaml:"log"`
}

// LLMConfig selects the hosted model used for all three prompts
type LLMConfig struct {
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	// Timeout bounds a single completion request
	Timeout time.Duration `yaml:"timeout"`
}

// RendererConfig configures how Mermaid source becomes an image
type RendererConfig struct {
	Kind string `yaml:"kind"`

	KrokiURL string `yaml:"kroki_url"`
	Format   string `yaml:"format"`

	ChromePath      string        `yaml:"chrome_path"`
	DownloadBrowser bool          `yaml:"download_browser"`
	NoSandbox       bool          `yaml:"no_sandbox"`
	MermaidJSURL    string        `yaml:"mermaid_js_url"`
	ScaleFactor     float64       `yaml:"scale_factor"`
	ViewportWidth   int64         `yaml:"viewport_width"`
	ViewportHeight  int64         `yaml:"viewport_height"`
	Timeout         time.Duration `yaml:"timeout"`
}

// ServerConfig configures the web UI
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	MaxUploadMB    int64         `yaml:"max_upload_mb"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	PreviewPages   int           `yaml:"preview_pages"`
	PreviewDPI     float64       `yaml:"preview_dpi"`
}

// ZoteroConfig holds credentials for fetching attachments
type ZoteroConfig struct {
	APIKey    string `yaml:"api_key"`
	LibraryID string `yaml:"library_id"`
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		LLM: LLMConfig{
			Provider: ProviderGemini,
			Timeout:  2 * time.Minute,
		},
		Renderer: RendererConfig{
			Kind:           RendererKroki,
			KrokiURL:       "https://kroki.io",
			Format:         "png",
			MermaidJSURL:   "https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.min.js",
			ScaleFactor:    3,
			ViewportWidth:  1600,
			ViewportHeight: 1200,
			Timeout:        60 * time.Second,
		},
		Server: ServerConfig{
			Addr:           ":8501",
			MaxUploadMB:    200,
			RequestTimeout: 5 * time.Minute,
			PreviewPages:   1,
			PreviewDPI:     36,
		},
	}
}

// Load builds the configuration from an optional .env file, an optional YAML
// file and the environment, in that order of increasing precedence.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	// Chosen once the key sources are known, see resolveProvider.
	cfg.LLM.Provider = ""

	if path == "" {
		path = os.Getenv("PDF_MINDMAP_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	cfg.LLM.applyProviderDefaults()

	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.LLM.Provider, "LLM_PROVIDER")
	cfg.LLM.resolveProvider()
	setString(&cfg.LLM.BaseURL, "LLM_BASE_URL")
	setString(&cfg.LLM.Model, "LLM_MODEL")
	if cfg.LLM.APIKey == "" {
		setString(&cfg.LLM.APIKey, cfg.LLM.keyEnv())
	}
	setString(&cfg.LLM.APIKey, "LLM_API_KEY")

	setString(&cfg.Renderer.Kind, "RENDERER")
	setString(&cfg.Renderer.KrokiURL, "KROKI_URL")
	setString(&cfg.Renderer.ChromePath, "CHROME_PATH")
	if err := setBool(&cfg.Renderer.NoSandbox, "CHROME_NO_SANDBOX"); err != nil {
		return err
	}
	if err := setBool(&cfg.Renderer.DownloadBrowser, "CHROME_DOWNLOAD"); err != nil {
		return err
	}

	setString(&cfg.Server.Addr, "PDF_MINDMAP_ADDR")
	if v := os.Getenv("MAX_UPLOAD_MB"); v != "" {
		mb, err := strconv.ParseInt(v, 10, 64)
		if err != nil || mb <= 0 {
			return fmt.Errorf("invalid MAX_UPLOAD_MB: %q", v)
		}
		cfg.Server.MaxUploadMB = mb
	}

	setString(&cfg.Zotero.APIKey, "ZOTERO_API_KEY")
	setString(&cfg.Zotero.LibraryID, "ZOTERO_LIBRARY_ID")
	return nil
}

// resolveProvider picks the provider when neither the config file nor
// LLM_PROVIDER names one: OpenAI when OPENAI_API_KEY is the only key
// available, Gemini otherwise.
func (c *LLMConfig) resolveProvider() {
	if c.Provider != "" {
		return
	}
	c.Provider = ProviderGemini
	if c.APIKey == "" && os.Getenv("GENAI_API_KEY") == "" && os.Getenv("LLM_API_KEY") == "" && os.Getenv("OPENAI_API_KEY") != "" {
		c.Provider = ProviderOpenAI
	}
}

// keyEnv is the provider specific API key variable
func (c *LLMConfig) keyEnv() string {
	if c.Provider == ProviderOpenAI {
		return "OPENAI_API_KEY"
	}
	return "GENAI_API_KEY"
}

func (c *LLMConfig) applyProviderDefaults() {
	switch c.Provider {
	case ProviderOpenAI:
		if c.Model == "" {
			c.Model = openAIModel
		}
	default:
		if c.BaseURL == "" {
			c.BaseURL = geminiBaseURL
		}
		if c.Model == "" {
			c.Model = geminiModel
		}
	}
}

// Validate reports configuration that would make every request fail
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown LLM provider: %s", c.LLM.Provider)
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("no LLM API key configured for provider %s (set %s or LLM_API_KEY)", c.LLM.Provider, c.LLM.keyEnv())
	}
	switch c.Renderer.Kind {
	case RendererKroki:
		if c.Renderer.KrokiURL == "" {
			return errors.New("kroki renderer requires kroki_url")
		}
	case RendererBrowser:
		if c.Renderer.ScaleFactor <= 0 {
			return errors.New("browser renderer requires a positive scale_factor")
		}
	default:
		return fmt.Errorf("unknown renderer: %s (expected 'kroki' or 'browser')", c.Renderer.Kind)
	}
	return nil
}

// MaxUploadBytes is the request body limit for uploads
func (s ServerConfig) MaxUploadBytes() int64 {
	return s.MaxUploadMB * 1024 * 1024
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, v)
	}
	*dst = b
	return nil
}
