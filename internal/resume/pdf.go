package resume

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// ExtractDocumentText converts an uploaded resume document to plain text.
// PDF pages go through MuPDF, txt uploads are read as-is, anything else is
// treated as structured YAML and flattened.
func ExtractDocumentText(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDFText(path)
	case ".txt", ".text":
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read document: %w", err)
		}
		if text := strings.TrimSpace(string(raw)); text != "" {
			return text, nil
		}
		return "", fmt.Errorf("no readable text in %s", path)
	default:
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read resume: %w", err)
		}
		if text := Parse(raw).Text(); text != "" {
			return text, nil
		}
		return "", fmt.Errorf("no readable text in %s", path)
	}
}

func extractPDFText(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	var pages []string
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("extract pdf page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, "\n"), nil
}

// ToConvertedYAML wraps extracted document text in the converted-resume
// schema so it can be stored alongside structured YAML resumes.
func ToConvertedYAML(text, sourceFormat string) map[string]any {
	return map[string]any{
		"raw_text":       text,
		"_source_format": sourceFormat,
		"_converted":     true,
	}
}
