package documents

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Validate checks that data is a structurally valid PDF and returns its page
// count
func Validate(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("empty document: %w", ErrNotPDF)
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	pdfContext, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("invalid PDF: %w", err)
	}
	return pdfContext.PageCount, nil
}

// ExtractText returns the plain text of every page, in page order, with no
// separator between pages. Pages whose content cannot be decoded are skipped.
func ExtractText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

// CombineText joins the text of several documents, terminating each one with
// a newline
func CombineText(texts []string) string {
	var sb strings.Builder
	for _, text := range texts {
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String()
}
