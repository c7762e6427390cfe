// Package extract converts source files into raw text segments using
// format-specific strategy chains. Every strategy failure is logged before
// the chain advances; exhausting the chain yields zero segments, never an
// error out of the file-level call.
package extract

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Segment is one raw text segment extracted from a file, before cleaning.
type Segment struct {
	Text   string
	Source string
	Kind   string
}

// Strategy is one attempt at turning file bytes into text segments. An empty
// result is treated the same as an error: the chain advances.
type Strategy struct {
	Name string
	Fn   func(ctx context.Context, path string, data []byte) ([]Segment, error)
}

// Extractor dispatches on file extension to an ordered chain of strategies.
type Extractor struct {
	logger         *zap.Logger
	convertTimeout time.Duration
}

// Option configures the extractor.
type Option func(*Extractor)

// WithConvertTimeout bounds external conversion tool invocations.
func WithConvertTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.convertTimeout = d
		}
	}
}

// New creates an extractor.
func New(logger *zap.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Extractor{
		logger:         logger.Named("extract"),
		convertTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract runs the strategy chain for the file's extension. Each failure is
// logged with the strategy name before falling through; the plain-text
// reader is always the last resort. A file no strategy can read yields nil.
func (e *Extractor) Extract(ctx context.Context, path string, data []byte) []Segment {
	chain := e.chainFor(path)
	for _, strategy := range chain {
		segments, err := strategy.Fn(ctx, path, data)
		if err != nil {
			e.logger.Warn("extraction strategy failed",
				zap.String("strategy", strategy.Name),
				zap.String("path", path),
				zap.Error(err))
			continue
		}
		if len(segments) == 0 {
			e.logger.Warn("extraction strategy returned no content",
				zap.String("strategy", strategy.Name),
				zap.String("path", path))
			continue
		}
		return segments
	}
	return nil
}

func (e *Extractor) chainFor(path string) []Strategy {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return []Strategy{
			{Name: "pdf-native", Fn: e.extractPDFNative},
			{Name: "pdf-docconv", Fn: e.extractDocconv},
			{Name: "printable-fallback", Fn: e.extractPrintable},
		}
	case ".docx":
		return []Strategy{
			{Name: "docconv", Fn: e.extractDocconv},
			{Name: "docx-zip", Fn: e.extractDOCXZip},
			{Name: "printable-fallback", Fn: e.extractPrintable},
		}
	case ".odt", ".rtf", ".html", ".htm", ".doc":
		return []Strategy{
			{Name: "docconv", Fn: e.extractDocconv},
			{Name: "printable-fallback", Fn: e.extractPrintable},
		}
	case ".md", ".markdown":
		return []Strategy{
			{Name: "markdown", Fn: e.extractMarkdown},
			{Name: "plain-text", Fn: e.extractPlainText},
		}
	case ".xlsx":
		return []Strategy{
			{Name: "xlsx", Fn: e.extractXLSX},
			{Name: "printable-fallback", Fn: e.extractPrintable},
		}
	case ".xls":
		return []Strategy{
			{Name: "xls", Fn: e.extractXLS},
			{Name: "printable-fallback", Fn: e.extractPrintable},
		}
	default:
		return []Strategy{
			{Name: "plain-text", Fn: e.extractPlainText},
			{Name: "printable-fallback", Fn: e.extractPrintable},
		}
	}
}

func (e *Extractor) extractPlainText(_ context.Context, path string, data []byte) ([]Segment, error) {
	if !utf8.Valid(data) {
		return e.extractPrintable(nil, path, data)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, nil
	}
	return []Segment{{Text: text, Source: path, Kind: "text"}}, nil
}

// extractMarkdown strips YAML front matter before treating the remainder as
// plain text.
func (e *Extractor) extractMarkdown(ctx context.Context, path string, data []byte) ([]Segment, error) {
	body := stripFrontMatter(data)
	segments, err := e.extractPlainText(ctx, path, body)
	if err != nil {
		return nil, err
	}
	for i := range segments {
		segments[i].Kind = "markdown"
	}
	return segments, nil
}

func stripFrontMatter(data []byte) []byte {
	if !bytes.HasPrefix(data, []byte("---")) {
		return data
	}
	rest := data[3:]
	if len(rest) > 0 && rest[0] == '\r' {
		rest = rest[1:]
	}
	if len(rest) == 0 || rest[0] != '\n' {
		return data
	}
	for _, marker := range []string{"\n---\n", "\n---\r\n"} {
		if idx := bytes.Index(rest, []byte(marker)); idx >= 0 {
			return rest[idx+len(marker):]
		}
	}
	if bytes.HasSuffix(rest, []byte("\n---")) {
		return nil
	}
	return data
}

// extractPrintable keeps printable runes only; it is the terminal fallback
// for every chain so a partially binary file still yields something.
func (e *Extractor) extractPrintable(_ context.Context, path string, data []byte) ([]Segment, error) {
	text := strings.TrimSpace(string(printableText(data)))
	if text == "" {
		return nil, nil
	}
	return []Segment{{Text: text, Source: path, Kind: "text"}}, nil
}

func printableText(in []byte) []byte {
	var out bytes.Buffer
	for len(in) > 0 {
		r, size := utf8.DecodeRune(in)
		if r == utf8.RuneError && size == 1 {
			b := in[0]
			if b == '\n' || b == '\r' || b == '\t' || (b >= 32 && b < 127) {
				out.WriteByte(b)
			}
			in = in[1:]
			continue
		}
		in = in[size:]
		if isPrintableRune(r) {
			out.WriteRune(r)
		}
	}
	return out.Bytes()
}

func isPrintableRune(r rune) bool {
	if r == '\n' || r == '\r' || r == '\t' {
		return true
	}
	return r >= 32 && r <= 0x10FFFF && r != 127
}
