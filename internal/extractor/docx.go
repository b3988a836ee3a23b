package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// DOCX files are ZIP archives; the document body lives in word/document.xml.
type docxDocument struct {
	XMLName xml.Name `xml:"document"`
	Body    docxBody `xml:"body"`
}

type docxBody struct {
	Paragraphs []docxParagraph `xml:"p"`
}

type docxParagraph struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Text string `xml:"t"`
}

// FromDOCX extracts paragraph text from a DOCX document.
func FromDOCX(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX archive: %w", err)
	}

	var docXML []byte
	for _, f := range archive.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open document.xml: %w", err)
		}
		docXML, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("failed to read document.xml: %w", err)
		}
		break
	}
	if docXML == nil {
		return "", fmt.Errorf("invalid DOCX: word/document.xml not found")
	}

	var doc docxDocument
	if err := xml.Unmarshal(docXML, &doc); err != nil {
		return "", fmt.Errorf("failed to parse document.xml: %w", err)
	}

	var paragraphs []string
	for _, p := range doc.Body.Paragraphs {
		var runs []string
		for _, r := range p.Runs {
			if r.Text != "" {
				runs = append(runs, r.Text)
			}
		}
		if line := strings.TrimSpace(strings.Join(runs, "")); line != "" {
			paragraphs = append(paragraphs, line)
		}
	}

	if len(paragraphs) == 0 {
		return "", fmt.Errorf("no text could be extracted from DOCX")
	}
	return strings.Join(paragraphs, "\n"), nil
}
