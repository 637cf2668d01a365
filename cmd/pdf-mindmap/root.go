package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Epistemic-Technology/pdf-mindmap/internal/config"
	"github.com/Epistemic-Technology/pdf-mindmap/internal/llm"
	"github.com/Epistemic-Technology/pdf-mindmap/internal/logger"
	"github.com/Epistemic-Technology/pdf-mindmap/internal/operations"
	"github.com/Epistemic-Technology/pdf-mindmap/internal/render"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "pdf-mindmap",
	Short: "Generate Mermaid mind maps from PDF documents",
	Long: `pdf-mindmap summarizes one or more PDFs with a language model, turns the
summary into a Mermaid diagram and renders it as an image. It runs as a web
UI, a one-shot command or an MCP server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// setup loads the configuration and creates the logger every command shares
func setup() (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	log, err := logger.NewLogger(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, log, nil
}

// newGenerator wires the LLM client and renderer into a pipeline. The caller
// must close the returned renderer.
func newGenerator(cfg *config.Config, log logger.Logger) (*operations.Generator, render.Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	renderer, err := render.New(cfg.Renderer, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	client := llm.NewClient(cfg.LLM, log)
	log.Info("Using model %s with %s renderer", client.Model(), cfg.Renderer.Kind)

	return operations.NewGenerator(client, renderer, log), renderer, nil
}
