// Package render turns an in-memory report document into bytes in one of
// several output formats.
package render

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/UncleDan/ics-to-word/internal/document"
)

// Renderer writes a document in a single format.
type Renderer interface {
	Format() string
	Extension() string
	ContentType() string
	Render(ctx context.Context, w io.Writer, doc *document.Document) error
}

// Options carries per-format settings.
type Options struct {
	// PDFTimeout bounds headless Chromium printing.
	PDFTimeout time.Duration
}

const DefaultFormat = "docx"

var constructors = map[string]func(Options) Renderer{
	"docx": func(Options) Renderer { return DOCX{} },
	"html": func(Options) Renderer { return HTML{} },
	"pdf":  func(o Options) Renderer { return PDF{Timeout: o.PDFTimeout} },
	"md":   func(Options) Renderer { return Markdown{} },
	"txt":  func(Options) Renderer { return Text{} },
	"json": func(Options) Renderer { return JSON{} },
}

var aliases = map[string]string{
	"word":     "docx",
	"htm":      "html",
	"markdown": "md",
	"text":     "txt",
}

// ErrUnknownFormat is returned by ForFormat.
type ErrUnknownFormat struct {
	Format string
}

func (e *ErrUnknownFormat) Error() string {
	return fmt.Sprintf("unknown output format %q (supported: %s)", e.Format, strings.Join(Formats(), ", "))
}

// ForFormat returns the renderer for a format name or file extension.
// An empty name selects DefaultFormat.
func ForFormat(name string, opts Options) (Renderer, error) {
	key := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "."))
	if key == "" {
		key = DefaultFormat
	}
	if a, ok := aliases[key]; ok {
		key = a
	}
	ctor, ok := constructors[key]
	if !ok {
		return nil, &ErrUnknownFormat{Format: name}
	}
	return ctor(opts), nil
}

// Formats lists the supported format names.
func Formats() []string {
	out := make([]string, 0, len(constructors))
	for k := range constructors {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
