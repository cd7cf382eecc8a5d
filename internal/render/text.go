package render

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/UncleDan/ics-to-word/internal/document"
)

// Text writes a plain-text report. Detail lines are indented, pages are
// separated by a form feed and the summary table is column-aligned by
// display width.
type Text struct{}

func (Text) Format() string      { return "txt" }
func (Text) Extension() string   { return ".txt" }
func (Text) ContentType() string { return "text/plain; charset=utf-8" }

const textIndent = "    "

func (Text) Render(ctx context.Context, w io.Writer, doc *document.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)

	for _, b := range doc.Blocks {
		switch b.Kind {
		case document.KindTime, document.KindLocation, document.KindRecurrence:
			bw.WriteString(textIndent + b.Text + "\n")
		case document.KindDescription:
			for _, line := range strings.Split(b.Text, "\n") {
				bw.WriteString(textIndent + line + "\n")
			}
		case document.KindPageBreak:
			bw.WriteString("\f")
		case document.KindTable:
			writeTextTable(bw, b.Table)
		default:
			bw.WriteString(b.Text + "\n")
		}
	}
	return bw.Flush()
}

func writeTextTable(w *bufio.Writer, t *document.Table) {
	if t == nil {
		return
	}
	widths := columnWidths(t)
	writeRow := func(cells []string) {
		parts := make([]string, len(widths))
		for i, width := range widths {
			cell := ""
			if i < len(cells) {
				cell = strings.ReplaceAll(cells[i], "\n", " ")
			}
			parts[i] = pad(cell, width)
		}
		w.WriteString(strings.TrimRight(strings.Join(parts, "  "), " ") + "\n")
	}

	writeRow(t.Header)
	rule := make([]string, len(widths))
	for i, width := range widths {
		rule[i] = strings.Repeat("=", width)
	}
	w.WriteString(strings.Join(rule, "  ") + "\n")
	for _, row := range t.Rows {
		writeRow(row)
	}
}
