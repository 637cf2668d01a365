package documents

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// buildPDF writes a minimal PDF with one page per content stream, each page
// using a WinAnsi Helvetica font named F1
func buildPDF(contents ...string) []byte {
	n := len(contents)
	fontObj := 3 + 2*n
	var objects []string

	kids := ""
	for i := range contents {
		kids += fmt.Sprintf("%d 0 R ", 3+2*i)
	}
	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, n),
	)
	for i, content := range contents {
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>", fontObj, 4+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}
	objects = append(objects, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func textPage(text string) string {
	return fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
}

func TestExtractText_PageOrder(t *testing.T) {
	data := buildPDF(textPage("Page one."), textPage("Page two."), textPage("Page three."))

	text, err := ExtractText(data)
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}
	if want := "Page one.Page two.Page three."; text != want {
		t.Errorf("ExtractText() = %q, want %q", text, want)
	}
}

func TestExtractText_SkipsUndecodablePage(t *testing.T) {
	// \q is not a valid escape in a literal string
	broken := `BT /F1 12 Tf 72 720 Td (bad \q escape) Tj ET`
	data := buildPDF(textPage("Page one."), broken, textPage("Page three."))

	text, err := ExtractText(data)
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}
	if want := "Page one.Page three."; text != want {
		t.Errorf("ExtractText() = %q, want %q", text, want)
	}
}

func TestValidate_PageCount(t *testing.T) {
	data := buildPDF(textPage("Page one."), textPage("Page two."), textPage("Page three."))

	pageCount, err := Validate(data)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if pageCount != 3 {
		t.Errorf("Expected 3 pages, got %d", pageCount)
	}
}

func TestPageImages_Generated(t *testing.T) {
	data := buildPDF(textPage("Page one."), textPage("Page two."), textPage("Page three."))

	tests := []struct {
		name     string
		maxPages int
		expected int
	}{
		{name: "limited", maxPages: 2, expected: 2},
		{name: "all pages", maxPages: 0, expected: 3},
		{name: "limit above page count", maxPages: 10, expected: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			images, err := PageImages(data, 36, tt.maxPages)
			if err != nil {
				t.Fatalf("PageImages failed: %v", err)
			}
			if len(images) != tt.expected {
				t.Fatalf("Expected %d images, got %d", tt.expected, len(images))
			}
			for i, img := range images {
				if _, err := png.Decode(bytes.NewReader(img)); err != nil {
					t.Errorf("Page %d image is not a valid PNG: %v", i+1, err)
				}
			}
		})
	}
}

func loadSamplePDFs(t *testing.T) []string {
	samplesDir := filepath.Join("..", "samples")
	files, err := filepath.Glob(filepath.Join(samplesDir, "*.pdf"))
	if err != nil {
		t.Fatalf("Failed to list sample PDFs: %v", err)
	}
	if len(files) == 0 {
		t.Skip("No sample PDFs found in samples directory")
	}
	return files
}

func TestValidate_Samples(t *testing.T) {
	for _, filePath := range loadSamplePDFs(t) {
		t.Run(filepath.Base(filePath), func(t *testing.T) {
			pdfBytes, err := os.ReadFile(filePath)
			if err != nil {
				t.Fatalf("Failed to read PDF file %s: %v", filePath, err)
			}

			expectedPageCount, err := api.PageCount(bytes.NewReader(pdfBytes), nil)
			if err != nil {
				t.Fatalf("Failed to get page count: %v", err)
			}

			pageCount, err := Validate(pdfBytes)
			if err != nil {
				t.Fatalf("Validate failed: %v", err)
			}
			if pageCount != expectedPageCount {
				t.Errorf("Expected %d pages, got %d", expectedPageCount, pageCount)
			}
		})
	}
}

func TestExtractText_Samples(t *testing.T) {
	for _, filePath := range loadSamplePDFs(t) {
		t.Run(filepath.Base(filePath), func(t *testing.T) {
			pdfBytes, err := os.ReadFile(filePath)
			if err != nil {
				t.Fatalf("Failed to read PDF file %s: %v", filePath, err)
			}

			text, err := ExtractText(pdfBytes)
			if err != nil {
				t.Fatalf("ExtractText failed: %v", err)
			}
			t.Logf("Extracted %d characters", len(text))
		})
	}
}

func TestPageImages_Samples(t *testing.T) {
	for _, filePath := range loadSamplePDFs(t) {
		t.Run(filepath.Base(filePath), func(t *testing.T) {
			pdfBytes, err := os.ReadFile(filePath)
			if err != nil {
				t.Fatalf("Failed to read PDF file %s: %v", filePath, err)
			}

			images, err := PageImages(pdfBytes, 36, 1)
			if err != nil {
				t.Fatalf("PageImages failed: %v", err)
			}
			if len(images) != 1 {
				t.Fatalf("Expected 1 image, got %d", len(images))
			}
			if _, err := png.Decode(bytes.NewReader(images[0])); err != nil {
				t.Errorf("Page image is not a valid PNG: %v", err)
			}
		})
	}
}

func TestValidate_InvalidInput(t *testing.T) {
	if _, err := Validate([]byte{}); err == nil {
		t.Error("Expected error for empty PDF data, got nil")
	}
	if _, err := Validate([]byte("This is not a PDF")); err == nil {
		t.Error("Expected error for invalid PDF data, got nil")
	}
}

func TestExtractText_InvalidInput(t *testing.T) {
	if _, err := ExtractText([]byte("This is not a PDF")); err == nil {
		t.Error("Expected error for invalid PDF data, got nil")
	}
}

func TestPageImages_InvalidInput(t *testing.T) {
	if _, err := PageImages([]byte("This is not a PDF"), 72, 1); err == nil {
		t.Error("Expected error for invalid PDF data, got nil")
	}
}

func TestCombineText(t *testing.T) {
	tests := []struct {
		name     string
		texts    []string
		expected string
	}{
		{name: "no documents", texts: nil, expected: ""},
		{name: "single document", texts: []string{"alpha"}, expected: "alpha\n"},
		{name: "several documents", texts: []string{"alpha", "beta", ""}, expected: "alpha\nbeta\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CombineText(tt.texts); got != tt.expected {
				t.Errorf("CombineText() = %q, want %q", got, tt.expected)
			}
		})
	}
}
