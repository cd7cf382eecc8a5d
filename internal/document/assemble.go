package document

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/UncleDan/ics-to-word/internal/clock"
	"github.com/UncleDan/ics-to-word/internal/model"
	"github.com/UncleDan/ics-to-word/internal/organize"
)

const separatorWidth = 50

// Options tunes what the assembler emits beyond the fixed layout.
type Options struct {
	Labels model.Labels
	// ShowRecurrence adds a "Repeats: ..." detail line for recurring events.
	ShowRecurrence bool
}

// Assembler builds report documents from sorted events.
type Assembler struct {
	opts  Options
	clock clock.Clock
}

// NewAssembler returns an Assembler; a nil clock means the system clock.
func NewAssembler(opts Options, c clock.Clock) *Assembler {
	if c == nil {
		c = clock.SystemClock{}
	}
	opts.Labels = opts.Labels.WithDefaults()
	return &Assembler{opts: opts, clock: c}
}

// Assemble builds the report for events, which must already be sorted.
// baseName is the source file name without extension.
func (a *Assembler) Assemble(baseName string, events []model.CanonicalEvent) *Document {
	l := a.opts.Labels
	now := a.clock.Now()

	doc := &Document{
		ID:          uuid.NewString(),
		Source:      baseName,
		Title:       l.TitlePrefix + strings.ToUpper(baseName),
		GeneratedAt: now,
		EventCount:  len(events),
		Events:      events,
	}

	doc.add(KindTitle, doc.Title)
	doc.add(KindGenerated, l.GeneratedPrefix+now.Format(l.GeneratedLayout))
	doc.add(KindSpacer, "")

	for _, g := range organize.Groups(events) {
		doc.add(KindSeparator, strings.Repeat("─", separatorWidth))
		doc.add(KindDateHeader, strings.ToUpper(g.DateLabel))
		for _, ev := range g.Events {
			a.addEvent(doc, ev)
		}
	}

	if len(events) == 0 {
		return doc
	}

	doc.add(KindPageBreak, "")
	doc.add(KindSummaryHeader, l.SummaryHeader)
	doc.add(KindSummaryCount, l.TotalPrefix+strconv.Itoa(len(events)))
	doc.add(KindSpacer, "")

	table := &Table{
		Header: []string{l.ColumnDate, l.ColumnTime, l.ColumnEvent, l.ColumnLocation},
		Rows:   make([][]string, 0, len(events)),
	}
	for _, ev := range events {
		table.Rows = append(table.Rows, []string{ev.DateLabel, ev.StartLabel, ev.Title, ev.Location})
	}
	doc.Blocks = append(doc.Blocks, Block{Kind: KindTable, Table: table})

	return doc
}

func (a *Assembler) addEvent(doc *Document, ev model.CanonicalEvent) {
	doc.add(KindEventTitle, "• "+ev.Title)

	if line := TimeLine(ev); line != "" {
		doc.add(KindTime, line)
	}
	if ev.Location != "" {
		doc.add(KindLocation, ev.Location)
	}
	if ev.Description != "" {
		doc.add(KindDescription, ev.Description)
	}
	if a.opts.ShowRecurrence && ev.Recurrence != "" {
		doc.add(KindRecurrence, a.opts.Labels.RecurrencePrefix+ev.Recurrence)
	}
	doc.add(KindSpacer, "")
}

// TimeLine is StartLabel, followed by " - EndLabel" when the end label is
// present and differs. Events without a start have no time line.
func TimeLine(ev model.CanonicalEvent) string {
	if ev.StartLabel == "" {
		return ""
	}
	if ev.EndLabel != "" && ev.EndLabel != ev.StartLabel {
		return ev.StartLabel + " - " + ev.EndLabel
	}
	return ev.StartLabel
}

func (d *Document) add(k Kind, text string) {
	d.Blocks = append(d.Blocks, Block{Kind: k, Text: text})
}
