package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// extractPDFNative pulls plain text out of a PDF with the pure Go reader.
func (e *Extractor) extractPDFNative(_ context.Context, path string, data []byte) ([]Segment, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	textReader, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	out, err := io.ReadAll(textReader)
	if err != nil {
		return nil, fmt.Errorf("read pdf text: %w", err)
	}
	if len(bytes.TrimSpace(out)) == 0 {
		return nil, nil
	}
	return []Segment{{Text: string(out), Source: path, Kind: "pdf"}}, nil
}
