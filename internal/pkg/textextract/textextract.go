package textextract

import (
	"bytes"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Decode turns raw document bytes into text. PDFs go through real text
// extraction; everything else is decoded as UTF-8 as-is, so other binary
// formats degrade to mojibake rather than failing.
func Decode(data []byte, contentType, name string) string {
	if isPDF(contentType, name) {
		if text, err := extractPDF(data); err == nil && strings.TrimSpace(text) != "" {
			return text
		}
	}
	return string(data)
}

func isPDF(contentType, name string) bool {
	if strings.EqualFold(contentType, "application/pdf") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}

func extractPDF(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(plain)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
