package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/UncleDan/ics-to-word/internal/capture"
	"github.com/UncleDan/ics-to-word/internal/document"
	appLog "github.com/UncleDan/ics-to-word/internal/log"
)

// PDF prints the HTML rendering through headless Chromium.
type PDF struct {
	Timeout time.Duration
}

func (PDF) Format() string      { return "pdf" }
func (PDF) Extension() string   { return ".pdf" }
func (PDF) ContentType() string { return "application/pdf" }

func (p PDF) Render(ctx context.Context, w io.Writer, doc *document.Document) error {
	var html bytes.Buffer
	if err := (HTML{}).Render(ctx, &html, doc); err != nil {
		return err
	}

	start := time.Now()
	pdf, err := capture.PrintHTMLToPDF(ctx, html.String(), capture.PrintOptions{Timeout: p.Timeout})
	if err != nil {
		return fmt.Errorf("pdf: %w", err)
	}
	appLog.Debug("pdf printed", "document_id", doc.ID, "bytes", len(pdf), "elapsed", time.Since(start).String())

	_, err = w.Write(pdf)
	return err
}
