// Package extractor pulls plain text out of local document files so their
// contents can be submitted for analysis.
package extractor

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FromFile extracts text from a document based on its filename extension.
func FromFile(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return FromPDF(data)
	case ".docx":
		return FromDOCX(data)
	case ".txt", ".md", ".text":
		return FromTXT(data)
	default:
		return "", fmt.Errorf("unsupported document type %q (supported: .pdf, .docx, .txt, .md)", ext)
	}
}
