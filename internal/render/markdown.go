package render

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/UncleDan/ics-to-word/internal/document"
)

// Markdown writes a GitHub-flavoured Markdown report. The summary table is
// a pipe table whose columns are padded to equal display width.
type Markdown struct{}

func (Markdown) Format() string      { return "md" }
func (Markdown) Extension() string   { return ".md" }
func (Markdown) ContentType() string { return "text/markdown; charset=utf-8" }

var mdEscaper = strings.NewReplacer(`\`, `\\`, `|`, `\|`, "\n", " ")

func (Markdown) Render(ctx context.Context, w io.Writer, doc *document.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)

	for _, b := range doc.Blocks {
		switch b.Kind {
		case document.KindTitle:
			bw.WriteString("# " + b.Text + "\n\n")
		case document.KindSummaryHeader:
			bw.WriteString("## " + b.Text + "\n\n")
		case document.KindGenerated, document.KindSummaryCount:
			bw.WriteString("_" + b.Text + "_\n\n")
		case document.KindSeparator:
			bw.WriteString("---\n\n")
		case document.KindDateHeader:
			bw.WriteString("### " + b.Text + "\n\n")
		case document.KindEventTitle:
			bw.WriteString("**" + b.Text + "**\n\n")
		case document.KindTime, document.KindLocation, document.KindRecurrence:
			bw.WriteString("> " + b.Text + "\n\n")
		case document.KindDescription:
			for _, line := range strings.Split(b.Text, "\n") {
				bw.WriteString("> " + line + "\n")
			}
			bw.WriteString("\n")
		case document.KindPageBreak:
			bw.WriteString(`<div style="page-break-after: always;"></div>` + "\n\n")
		case document.KindTable:
			writeMarkdownTable(bw, b.Table)
		case document.KindSpacer:
		}
	}
	return bw.Flush()
}

func writeMarkdownTable(w *bufio.Writer, t *document.Table) {
	if t == nil {
		return
	}
	esc := &document.Table{Header: escapeRow(t.Header, true), Rows: make([][]string, len(t.Rows))}
	for i, row := range t.Rows {
		esc.Rows[i] = escapeRow(row, false)
	}
	widths := columnWidths(esc)
	for i := range widths {
		widths[i] = max(widths[i], 3)
	}

	writeRow := func(cells []string) {
		w.WriteString("|")
		for i, width := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			w.WriteString(" " + pad(cell, width) + " |")
		}
		w.WriteString("\n")
	}

	writeRow(esc.Header)
	w.WriteString("|")
	for _, width := range widths {
		w.WriteString(" " + strings.Repeat("-", width) + " |")
	}
	w.WriteString("\n")
	for _, row := range esc.Rows {
		writeRow(row)
	}
	w.WriteString("\n")
}

func escapeRow(cells []string, bold bool) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		c = mdEscaper.Replace(c)
		if bold && c != "" {
			c = "**" + c + "**"
		}
		out[i] = c
	}
	return out
}
