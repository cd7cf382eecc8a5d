// Package convert runs the calendar-to-report pipeline: decode, parse,
// extract, sort and assemble.
package convert

import (
	"context"

	"github.com/UncleDan/ics-to-word/internal/clock"
	"github.com/UncleDan/ics-to-word/internal/document"
	"github.com/UncleDan/ics-to-word/internal/ics"
	appLog "github.com/UncleDan/ics-to-word/internal/log"
	"github.com/UncleDan/ics-to-word/internal/model"
	"github.com/UncleDan/ics-to-word/internal/organize"
)

// Options configures a Converter.
type Options struct {
	Labels         model.Labels
	ShowRecurrence bool
	// Encodings is the decode fallback chain; empty means ics.DefaultEncodings.
	Encodings []string
	Clock     clock.Clock
}

// Converter is safe for concurrent use; each call owns its own data.
type Converter struct {
	normalizer *ics.Normalizer
	assembler  *document.Assembler
	encodings  []string
}

// New returns a Converter; zero Options select the default labels,
// encodings and system clock.
func New(opts Options) *Converter {
	return &Converter{
		normalizer: ics.NewNormalizer(opts.Labels),
		assembler: document.NewAssembler(document.Options{
			Labels:         opts.Labels,
			ShowRecurrence: opts.ShowRecurrence,
		}, opts.Clock),
		encodings: opts.Encodings,
	}
}

// ConvertBytes decodes raw input and converts it. It fails with
// *ics.DecodeError, *ics.ParseError or *ics.ExtractionError; no document is
// returned alongside an error.
func (c *Converter) ConvertBytes(ctx context.Context, src ics.Source, body []byte) (*document.Document, error) {
	text, err := ics.Decode(src, body, c.encodings)
	if err != nil {
		appLog.Error("calendar decode failed", err, "source", src.Name())
		return nil, err
	}
	return c.Convert(ctx, src, text)
}

// Convert turns decoded calendar text into a report document.
func (c *Converter) Convert(ctx context.Context, src ics.Source, text string) (*document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	events, err := c.Events(src, text)
	if err != nil {
		return nil, err
	}

	doc := c.assembler.Assemble(src.BaseName(), events)
	appLog.Info("calendar converted", "source", src.Name(), "event_count", doc.EventCount, "document_id", doc.ID)
	return doc, nil
}

// EventsBytes decodes raw input and returns its sorted canonical events.
func (c *Converter) EventsBytes(src ics.Source, body []byte) ([]model.CanonicalEvent, error) {
	text, err := ics.Decode(src, body, c.encodings)
	if err != nil {
		return nil, err
	}
	return c.Events(src, text)
}

// Events returns the sorted canonical events of decoded calendar text.
func (c *Converter) Events(src ics.Source, text string) ([]model.CanonicalEvent, error) {
	events, err := ics.ParseEvents(src, text, c.normalizer)
	if err != nil {
		return nil, err
	}
	return organize.Sort(events), nil
}
