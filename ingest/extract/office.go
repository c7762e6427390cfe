package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"code.sajari.com/docconv"
)

// extractDocconv converts office and markup formats through docconv, which
// shells out to external tools for several formats. The invocation is
// bounded by the configured conversion timeout; on expiry the attempt is
// abandoned and the chain advances.
func (e *Extractor) extractDocconv(ctx context.Context, path string, data []byte) ([]Segment, error) {
	mimeType := docconv.MimeTypeByExtension(path)

	type result struct {
		res *docconv.Response
		err error
	}
	done := make(chan result, 1)
	go func() {
		res, err := docconv.Convert(bytes.NewReader(data), mimeType, false)
		done <- result{res: res, err: err}
	}()

	timeout := e.convertTimeout
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("docconv %s: %w", mimeType, r.err)
		}
		body := strings.TrimSpace(r.res.Body)
		if body == "" {
			return nil, nil
		}
		return []Segment{{Text: body, Source: path, Kind: "document"}}, nil
	case <-timer.C:
		return nil, fmt.Errorf("docconv %s: conversion timed out after %s", mimeType, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// extractDOCXZip parses word/document.xml directly, a dependency-free
// fallback when the converter is unavailable.
func (e *Extractor) extractDOCXZip(_ context.Context, path string, data []byte) ([]Segment, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx archive: %w", err)
	}
	var docFile *zip.File
	for _, f := range reader.File {
		if strings.EqualFold(f.Name, "word/document.xml") {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("word/document.xml not found")
	}
	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("open word/document.xml: %w", err)
	}
	defer rc.Close()

	text := strings.TrimSpace(string(docxTextFromXML(rc)))
	if text == "" {
		return nil, nil
	}
	return []Segment{{Text: text, Source: path, Kind: "docx"}}, nil
}

func docxTextFromXML(r io.Reader) []byte {
	dec := xml.NewDecoder(r)
	var buf bytes.Buffer
	var lastWasNewline bool
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t", "instrText":
				var text string
				if err := dec.DecodeElement(&text, &t); err == nil {
					buf.WriteString(text)
					lastWasNewline = false
				}
			case "tab":
				buf.WriteByte('\t')
				lastWasNewline = false
			case "br", "cr":
				buf.WriteByte('\n')
				lastWasNewline = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p", "tr":
				if !lastWasNewline {
					buf.WriteByte('\n')
					lastWasNewline = true
				}
			case "tc":
				if !lastWasNewline {
					buf.WriteByte('\t')
					lastWasNewline = false
				}
			}
		}
	}
	return buf.Bytes()
}
