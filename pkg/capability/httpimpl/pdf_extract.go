package httpimpl

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/colinpriest/austcyberevents/pkg/capability"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
)

// PDFExtractor is a PdfTextExtract implementation backed by pdfcpu's
// content-extraction API. It is used when a RawEvent's URL or
// content-type indicates a PDF rather than HTML. pdfcpu's extraction
// API is file-based, so Extract round-trips through a scratch
// directory rather than operating on the byte slice in memory.
type PDFExtractor struct{}

// NewPDFExtractor returns a ready-to-use PDFExtractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

var _ capability.PdfTextExtract = (*PDFExtractor)(nil)

// Extract implements capability.PdfTextExtract.
func (e *PDFExtractor) Extract(data []byte) (string, error) {
	scratch, err := os.MkdirTemp("", "austcyberevents-pdf-*")
	if err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	inFile := filepath.Join(scratch, "source.pdf")
	if err := os.WriteFile(inFile, data, 0o600); err != nil {
		return "", fmt.Errorf("write scratch pdf: %w", err)
	}

	if err := pdfapi.ExtractContentFile(inFile, scratch, nil, nil); err != nil {
		return "", fmt.Errorf("extract pdf content: %w", err)
	}

	entries, err := os.ReadDir(scratch)
	if err != nil {
		return "", fmt.Errorf("read scratch dir: %w", err)
	}

	var sb strings.Builder
	for _, entry := range entries {
		if entry.Name() == "source.pdf" || entry.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(scratch, entry.Name()))
		if err != nil {
			continue
		}
		sb.Write(content)
		sb.WriteString("\n")
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("pdf contained no extractable text")
	}
	return text, nil
}
