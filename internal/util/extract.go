package util

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
)

const minResumeTextLen = 100

// ExtractPDFText pulls the text layer out of a PDF resume. Scanned PDFs with
// no text layer come back empty and are rejected rather than guessed at.
func ExtractPDFText(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	var pages []string
	var lastErr error
	for n := 0; n < doc.NumPage(); n++ {
		text, err := doc.Text(n)
		if err != nil {
			lastErr = fmt.Errorf("page %d: %w", n+1, err)
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}

	result := strings.TrimSpace(strings.Join(pages, "\n\n"))
	if result == "" {
		if lastErr != nil {
			return "", fmt.Errorf("extract pdf text: %w", lastErr)
		}
		return "", fmt.Errorf("no text layer in pdf")
	}
	if len(result) < minResumeTextLen {
		return "", fmt.Errorf("extracted text too short (%d chars)", len(result))
	}
	return result, nil
}
