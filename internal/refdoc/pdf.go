package refdoc

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFExtractor handles PDF files. PDF text carries no structure, so every
// non-empty line becomes a body block.
type PDFExtractor struct {
	// MaxBytes bounds the in-memory copy of the upload. Zero means 20MB.
	MaxBytes int64
}

func (e *PDFExtractor) Extract(r io.Reader, filename string) (*Sample, error) {
	data, err := readLimited(r, e.MaxBytes)
	if err != nil {
		return nil, err
	}
	text, err := extractPDFText(data)
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	s := &Sample{Title: titleFromFilename(filename)}
	for _, line := range strings.Split(text, "\n") {
		s.add(Block{Text: strings.Join(strings.Fields(line), " ")})
	}
	return s, nil
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if i > 1 {
			buf.WriteByte('\n')
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}
