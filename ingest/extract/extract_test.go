package extract

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestExtract_PlainText(t *testing.T) {
	e := New(zap.NewNop())
	segments := e.Extract(context.Background(), "notes.txt", []byte("machine maintenance schedule\n"))
	require.Len(t, segments, 1)
	assert.Equal(t, "machine maintenance schedule", segments[0].Text)
	assert.Equal(t, "notes.txt", segments[0].Source)
	assert.Equal(t, "text", segments[0].Kind)
}

func TestExtract_MarkdownStripsFrontMatter(t *testing.T) {
	e := New(zap.NewNop())
	data := []byte("---\ntitle: Lab Safety\nauthor: ops\n---\nAlways wear eye protection near the lathe.\n")
	segments := e.Extract(context.Background(), "safety.md", data)
	require.Len(t, segments, 1)
	assert.Equal(t, "Always wear eye protection near the lathe.", segments[0].Text)
	assert.Equal(t, "markdown", segments[0].Kind)
}

func TestExtract_MarkdownWithoutFrontMatter(t *testing.T) {
	e := New(zap.NewNop())
	segments := e.Extract(context.Background(), "readme.md", []byte("# Heading\nbody"))
	require.Len(t, segments, 1)
	assert.Equal(t, "# Heading\nbody", segments[0].Text)
}

func TestExtract_CorruptPDFYieldsNothingButLogs(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	e := New(zap.New(core), WithConvertTimeout(2*time.Second))

	// Entirely non-printable bytes so even the terminal fallback finds no
	// usable text.
	data := make([]byte, 64)
	for i := range data {
		data[i] = byte(i % 8)
	}
	segments := e.Extract(context.Background(), "broken.pdf", data)
	assert.Nil(t, segments)
	assert.GreaterOrEqual(t, logs.Len(), 1, "each failed strategy must be logged")
}

func TestExtract_BinaryFallsBackToPrintable(t *testing.T) {
	e := New(zap.NewNop())
	data := append([]byte{0xff, 0xfe, 0xfd}, []byte("salvageable text")...)
	segments := e.Extract(context.Background(), "mixed.bin", data)
	require.Len(t, segments, 1)
	assert.Equal(t, "salvageable text", segments[0].Text)
}

func TestStripFrontMatter(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		out  string
	}{
		{name: "no front matter", in: "plain body", out: "plain body"},
		{name: "closed block", in: "---\na: 1\n---\nbody", out: "body"},
		{name: "dashes mid text kept", in: "text\n---\nmore", out: "text\n---\nmore"},
		{name: "unterminated block", in: "---\na: 1\nbody", out: "---\na: 1\nbody"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.out, string(stripFrontMatter([]byte(tc.in))))
		})
	}
}

func TestPrintableText(t *testing.T) {
	in := []byte("keep\tthis\nline\x00\x01\x7f and this")
	assert.Equal(t, "keep\tthis\nline and this", string(printableText(in)))
}
