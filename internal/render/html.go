package render

import (
	"context"
	"html/template"
	"io"

	"github.com/UncleDan/ics-to-word/internal/document"
)

// HTML writes a standalone, print-ready HTML page.
type HTML struct{}

func (HTML) Format() string      { return "html" }
func (HTML) Extension() string   { return ".html" }
func (HTML) ContentType() string { return "text/html; charset=utf-8" }

type htmlBlock struct {
	Class     string
	Text      string
	Table     *document.Table
	PageBreak bool
}

type htmlPage struct {
	Title  string
	Blocks []htmlBlock
}

var htmlClasses = map[document.Kind]string{
	document.KindTitle:         "title",
	document.KindGenerated:     "generated",
	document.KindSeparator:     "separator",
	document.KindDateHeader:    "date",
	document.KindEventTitle:    "event-title",
	document.KindTime:          "detail time",
	document.KindLocation:      "detail location",
	document.KindDescription:   "detail description",
	document.KindRecurrence:    "detail recurrence",
	document.KindSpacer:        "spacer",
	document.KindSummaryHeader: "title summary",
	document.KindSummaryCount:  "generated count",
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
@page { size: 8.5in 11in; margin: 1in; }
body { font-family: Calibri, Arial, sans-serif; font-size: 11pt; }
p { margin: 0 0 3pt 0; }
.title { text-align: center; font-size: 20pt; font-weight: bold; color: #002060; margin-bottom: 12pt; }
.generated, .separator { text-align: center; }
.date { font-size: 14pt; font-weight: bold; color: #2e75b6; margin: 12pt 0 6pt 0; }
.event-title { font-size: 12pt; font-weight: bold; }
.detail { margin-left: 0.25in; }
.spacer { min-height: 11pt; }
.page-break { page-break-after: always; break-after: page; }
table { width: 100%; border-collapse: collapse; }
th, td { border: 1px solid #4f81bd; padding: 2pt 5pt; text-align: left; }
th { font-weight: bold; }
</style>
</head>
<body>
{{- range .Blocks}}
{{- if .Table}}
<table>
<thead><tr>{{range .Table.Header}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Table.Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
{{- else if .PageBreak}}
<div class="page-break"></div>
{{- else}}
<p class="{{.Class}}">{{.Text}}</p>
{{- end}}
{{- end}}
</body>
</html>
`))

func (HTML) Render(ctx context.Context, w io.Writer, doc *document.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return htmlTemplate.Execute(w, toHTMLPage(doc))
}

func toHTMLPage(doc *document.Document) htmlPage {
	page := htmlPage{Title: doc.Title, Blocks: make([]htmlBlock, 0, len(doc.Blocks))}
	for _, b := range doc.Blocks {
		switch b.Kind {
		case document.KindTable:
			page.Blocks = append(page.Blocks, htmlBlock{Table: b.Table})
		case document.KindPageBreak:
			page.Blocks = append(page.Blocks, htmlBlock{PageBreak: true})
		default:
			page.Blocks = append(page.Blocks, htmlBlock{Class: htmlClasses[b.Kind], Text: b.Text})
		}
	}
	return page
}
