// Package pdftext extracts plain text from uploaded PDF documents.
package pdftext

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// Extract returns the plain text of a PDF given its raw bytes.
func Extract(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var buf bytes.Buffer
	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", i, err)
		}
		buf.WriteString(text)
		buf.WriteString("\n")
	}

	if buf.Len() == 0 {
		return "", fmt.Errorf("no extractable text in PDF")
	}

	return buf.String(), nil
}
