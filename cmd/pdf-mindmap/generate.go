package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Epistemic-Technology/pdf-mindmap/models"
)

var (
	generateOutput  string
	generateMermaid string
	generateSummary string
	generateTimeout time.Duration
	noColor         bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <file.pdf>...",
	Short: "Generate a mind map image from one or more PDFs",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "image output path (default mindmap-<id>.<ext>)")
	generateCmd.Flags().StringVar(&generateMermaid, "mermaid", "", "also write the Mermaid source to this path")
	generateCmd.Flags().StringVar(&generateSummary, "summary", "", "also write the summary to this path")
	generateCmd.Flags().DurationVar(&generateTimeout, "timeout", 10*time.Minute, "overall time limit")
	generateCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if noColor {
		color.NoColor = true
	}
	success := color.New(color.FgGreen).SprintFunc()
	info := color.New(color.FgCyan).SprintFunc()

	cfg, log, err := setup()
	if err != nil {
		return err
	}

	uploads, err := readFiles(args)
	if err != nil {
		return err
	}

	generator, renderer, err := newGenerator(cfg, log)
	if err != nil {
		return err
	}
	defer renderer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
	defer cancel()

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Writer = os.Stderr
	s.Suffix = " Generating mind map..."
	generator.Progress = func(stage string) {
		s.Lock()
		s.Suffix = " " + stage + "..."
		s.Unlock()
	}
	s.Start()
	result, err := generator.Generate(ctx, uploads)
	s.Stop()
	if err != nil {
		return fmt.Errorf("error generating Mermaid diagram: %w", err)
	}

	for _, doc := range result.Documents {
		fmt.Printf("%s %s (%d pages, %d characters)\n", info("ℹ"), doc.Name, doc.PageCount, doc.TextLength)
	}

	out := generateOutput
	if out == "" {
		out = defaultOutputName(result)
	}
	if err := os.WriteFile(out, result.Image.Data, 0644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	fmt.Printf("%s Mind map written to %s\n", success("✓"), out)

	if generateMermaid != "" {
		if err := os.WriteFile(generateMermaid, []byte(result.Mermaid+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write Mermaid source: %w", err)
		}
		fmt.Printf("%s Mermaid source written to %s\n", success("✓"), generateMermaid)
	}
	if generateSummary != "" {
		if err := os.WriteFile(generateSummary, []byte(result.Summary+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
		fmt.Printf("%s Summary written to %s\n", success("✓"), generateSummary)
	}
	return nil
}

func readFiles(paths []string) ([]models.Upload, error) {
	uploads := make([]models.Upload, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		uploads = append(uploads, models.Upload{Name: filepath.Base(p), Data: data})
	}
	return uploads, nil
}

func defaultOutputName(result *models.MindMap) string {
	id := result.ID
	if len(id) > 8 {
		id = id[:8]
	}
	ext := "png"
	switch result.Image.MIMEType {
	case "image/svg+xml":
		ext = "svg"
	case "application/pdf":
		ext = "pdf"
	}
	return fmt.Sprintf("mindmap-%s.%s", id, ext)
}
