// Package extract provides plain-text extraction from stored documents for
// search indexing. Extraction is best-effort: the store never depends on it.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Extractor extracts plain text from document files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns its text content.
// HTML is stripped of markup, PDF text is pulled per page, and everything
// else is treated as plain UTF-8 text.
func (e *Extractor) Extract(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	return e.ExtractBytes(content, ext)
}

// ExtractBytes extracts text from content based on the given extension.
// ext should include the leading dot (e.g. ".html").
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	switch ext {
	case ".html", ".htm", ".xhtml":
		return extractHTML(content)
	case ".pdf":
		return extractPDF(content)
	default:
		return extractPlain(content)
	}
}
