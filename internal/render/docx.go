package render

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/UncleDan/ics-to-word/internal/document"
)

// DOCX writes a WordprocessingML package: US Letter, 1" margins, one
// paragraph per block and a bordered summary table with a bold header.
type DOCX struct{}

func (DOCX) Format() string    { return "docx" }
func (DOCX) Extension() string { return ".docx" }
func (DOCX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

// summary table column widths in twentieths of a point (6.5" usable width)
var docxColumnWidths = []int{1600, 1300, 3660, 2800}

func (d DOCX) Render(ctx context.Context, w io.Writer, doc *document.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	parts := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxRootRels},
		{"docProps/core.xml", docxCoreProps(doc)},
		{"word/_rels/document.xml.rels", docxDocumentRels},
		{"word/styles.xml", docxStyles},
		{"word/document.xml", docxBody(doc)},
	}
	for _, p := range parts {
		fw, err := zw.Create(p.name)
		if err != nil {
			zw.Close()
			return fmt.Errorf("docx: create %s: %w", p.name, err)
		}
		if _, err := io.WriteString(fw, p.body); err != nil {
			zw.Close()
			return fmt.Errorf("docx: write %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("docx: finalize: %w", err)
	}
	return nil
}

func docxBody(doc *document.Document) string {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)

	for _, blk := range doc.Blocks {
		switch blk.Kind {
		case document.KindTitle, document.KindSummaryHeader:
			docxParagraph(&b, "CalendarTitle", "", blk.Text, false)
		case document.KindGenerated, document.KindSummaryCount:
			docxParagraph(&b, "EventDetail", "center", blk.Text, false)
		case document.KindSeparator:
			docxParagraph(&b, "", "center", blk.Text, false)
		case document.KindDateHeader:
			docxParagraph(&b, "EventDate", "", blk.Text, false)
		case document.KindEventTitle:
			docxParagraph(&b, "EventTitle", "", blk.Text, false)
		case document.KindTime, document.KindLocation, document.KindDescription, document.KindRecurrence, document.KindSpacer:
			docxParagraph(&b, "EventDetail", "", blk.Text, false)
		case document.KindPageBreak:
			b.WriteString(`<w:p><w:r><w:br w:type="page"/></w:r></w:p>`)
		case document.KindTable:
			docxTable(&b, blk.Table)
			// Word expects a paragraph between a table and the section properties.
			b.WriteString(`<w:p/>`)
		}
	}

	b.WriteString(`<w:sectPr><w:pgSz w:w="12240" w:h="15840"/>`)
	b.WriteString(`<w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440" w:header="720" w:footer="720" w:gutter="0"/>`)
	b.WriteString(`</w:sectPr></w:body></w:document>`)
	return b.String()
}

func docxParagraph(b *strings.Builder, style, align, text string, bold bool) {
	b.WriteString(`<w:p>`)
	if style != "" || align != "" {
		b.WriteString(`<w:pPr>`)
		if style != "" {
			fmt.Fprintf(b, `<w:pStyle w:val="%s"/>`, style)
		}
		if align != "" {
			fmt.Fprintf(b, `<w:jc w:val="%s"/>`, align)
		}
		b.WriteString(`</w:pPr>`)
	}
	if text != "" {
		b.WriteString(`<w:r>`)
		if bold {
			b.WriteString(`<w:rPr><w:b/></w:rPr>`)
		}
		b.WriteString(`<w:t xml:space="preserve">`)
		b.WriteString(escapeXML(text))
		b.WriteString(`</w:t></w:r>`)
	}
	b.WriteString(`</w:p>`)
}

func docxTable(b *strings.Builder, t *document.Table) {
	if t == nil {
		return
	}
	b.WriteString(`<w:tbl><w:tblPr><w:tblStyle w:val="TableGrid"/><w:tblW w:w="5000" w:type="pct"/><w:tblBorders>`)
	for _, side := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
		fmt.Fprintf(b, `<w:%s w:val="single" w:sz="4" w:space="0" w:color="4F81BD"/>`, side)
	}
	b.WriteString(`</w:tblBorders></w:tblPr><w:tblGrid>`)
	for _, width := range docxColumnWidths {
		fmt.Fprintf(b, `<w:gridCol w:w="%d"/>`, width)
	}
	b.WriteString(`</w:tblGrid>`)

	docxRow(b, t.Header, true)
	for _, row := range t.Rows {
		docxRow(b, row, false)
	}
	b.WriteString(`</w:tbl>`)
}

func docxRow(b *strings.Builder, cells []string, header bool) {
	b.WriteString(`<w:tr>`)
	if header {
		b.WriteString(`<w:trPr><w:tblHeader/></w:trPr>`)
	}
	for i, cell := range cells {
		width := docxColumnWidths[len(docxColumnWidths)-1]
		if i < len(docxColumnWidths) {
			width = docxColumnWidths[i]
		}
		fmt.Fprintf(b, `<w:tc><w:tcPr><w:tcW w:w="%d" w:type="dxa"/></w:tcPr>`, width)
		docxParagraph(b, "", "", cell, header)
		b.WriteString(`</w:tc>`)
	}
	b.WriteString(`</w:tr>`)
}

func docxCoreProps(doc *document.Document) string {
	created := doc.GeneratedAt.UTC().Format(time.RFC3339)
	return xml.Header +
		`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" ` +
		`xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" ` +
		`xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<dc:title>` + escapeXML(doc.Title) + `</dc:title>` +
		`<dc:identifier>` + escapeXML(doc.ID) + `</dc:identifier>` +
		`<dcterms:created xsi:type="dcterms:W3CDTF">` + created + `</dcterms:created>` +
		`</cp:coreProperties>`
}

func escapeXML(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

const docxContentTypes = xml.Header +
	`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
	`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>` +
	`</Types>`

const docxRootRels = xml.Header +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
	`</Relationships>`

const docxDocumentRels = xml.Header +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>` +
	`</Relationships>`

const docxStyles = xml.Header +
	`<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
	`<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="Calibri" w:hAnsi="Calibri" w:cs="Calibri"/><w:sz w:val="22"/></w:rPr></w:rPrDefault></w:docDefaults>` +
	`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>` +
	`<w:style w:type="paragraph" w:customStyle="1" w:styleId="CalendarTitle"><w:name w:val="CalendarTitle"/><w:basedOn w:val="Normal"/>` +
	`<w:pPr><w:jc w:val="center"/><w:spacing w:after="240"/></w:pPr><w:rPr><w:b/><w:color w:val="002060"/><w:sz w:val="40"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:customStyle="1" w:styleId="EventDate"><w:name w:val="EventDate"/><w:basedOn w:val="Normal"/>` +
	`<w:pPr><w:spacing w:before="240" w:after="120"/></w:pPr><w:rPr><w:b/><w:color w:val="2E75B6"/><w:sz w:val="28"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:customStyle="1" w:styleId="EventTitle"><w:name w:val="EventTitle"/><w:basedOn w:val="Normal"/>` +
	`<w:pPr><w:spacing w:after="60"/></w:pPr><w:rPr><w:b/><w:sz w:val="24"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:customStyle="1" w:styleId="EventDetail"><w:name w:val="EventDetail"/><w:basedOn w:val="Normal"/>` +
	`<w:pPr><w:ind w:left="360"/><w:spacing w:after="60"/></w:pPr><w:rPr><w:sz w:val="22"/></w:rPr></w:style>` +
	`<w:style w:type="table" w:styleId="TableGrid"><w:name w:val="Table Grid"/>` +
	`<w:tblPr><w:tblCellMar><w:left w:w="108" w:type="dxa"/><w:right w:w="108" w:type="dxa"/></w:tblCellMar></w:tblPr></w:style>` +
	`</w:styles>`
