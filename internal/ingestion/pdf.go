package ingestion

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractPDFText pulls the plain text out of a PDF attachment, such as a
// guide document linked from an FAQ entry. The caller is expected to run the
// result through CleanText before chunking.
func ExtractPDFText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	var b strings.Builder
	if _, err := io.Copy(&b, plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return strings.TrimSpace(b.String()), nil
}

// PDFItem wraps an extracted attachment as a one-entry FAQ source so it can
// flow through the same chunking path as regular entries.
func PDFItem(faqID, title, path string) (FAQItem, error) {
	text, err := ExtractPDFText(path)
	if err != nil {
		return FAQItem{}, err
	}
	return FAQItem{
		FAQID: faqID,
		Title: title,
		Body:  text,
	}, nil
}
