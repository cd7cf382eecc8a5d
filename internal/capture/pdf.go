package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Default print parameters: US Letter with 1" margins, matching the DOCX
// page setup.
const (
	DefaultPaperWidthIn  = 8.5
	DefaultPaperHeightIn = 11.0
	DefaultMarginIn      = 1.0
	DefaultTimeoutSec    = 30
)

// PrintOptions defines parameters for a Chromium-based PDF print.
type PrintOptions struct {
	// PaperWidth / PaperHeight / Margin are in inches. Zero means default.
	PaperWidth  float64
	PaperHeight float64
	Margin      float64

	// Timeout bounds the entire print operation. If zero, a sane default
	// (DefaultTimeoutSec) is used.
	Timeout time.Duration
}

func (o *PrintOptions) applyDefaults() {
	if o.PaperWidth <= 0 {
		o.PaperWidth = DefaultPaperWidthIn
	}
	if o.PaperHeight <= 0 {
		o.PaperHeight = DefaultPaperHeightIn
	}
	if o.Margin <= 0 {
		o.Margin = DefaultMarginIn
	}
	if o.Timeout <= 0 {
		o.Timeout = time.Duration(DefaultTimeoutSec) * time.Second
	}
}

// PrintHTMLToPDF launches a headless Chromium instance via chromedp, loads
// the given HTML into a blank page and prints it to PDF.
//
// The HTML is injected with Page.setDocumentContent rather than served over
// HTTP, so no listener is needed and nothing touches disk.
func PrintHTMLToPDF(parentCtx context.Context, html string, opts PrintOptions) ([]byte, error) {
	if html == "" {
		return nil, fmt.Errorf("capture: html is required")
	}
	opts.applyDefaults()

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var pdf []byte
	tasks := chromedp.Tasks{
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(opts.PaperWidth).
				WithPaperHeight(opts.PaperHeight).
				WithMarginTop(opts.Margin).
				WithMarginBottom(opts.Margin).
				WithMarginLeft(opts.Margin).
				WithMarginRight(opts.Margin).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return nil, fmt.Errorf("capture: chromedp run failed: %w", err)
	}
	return pdf, nil
}
