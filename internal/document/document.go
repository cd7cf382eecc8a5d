// Package document holds the in-memory report produced from a calendar and
// the assembler that builds it from sorted canonical events.
package document

import (
	"time"

	"github.com/UncleDan/ics-to-word/internal/model"
)

// Kind tags a Block so renderers can style it.
type Kind string

const (
	KindTitle         Kind = "title"
	KindGenerated     Kind = "generated"
	KindSeparator     Kind = "separator"
	KindDateHeader    Kind = "date_header"
	KindEventTitle    Kind = "event_title"
	KindTime          Kind = "time"
	KindLocation      Kind = "location"
	KindDescription   Kind = "description"
	KindRecurrence    Kind = "recurrence"
	KindSpacer        Kind = "spacer"
	KindPageBreak     Kind = "page_break"
	KindSummaryHeader Kind = "summary_header"
	KindSummaryCount  Kind = "summary_count"
	KindTable         Kind = "table"
)

// Block is one paragraph-level element of the document.
type Block struct {
	Kind  Kind   `json:"kind"`
	Text  string `json:"text,omitempty"`
	Table *Table `json:"table,omitempty"`
}

// Table is the summary table. Header is rendered bold.
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Document is a finished report. It is built once by the Assembler and
// only read afterwards.
type Document struct {
	ID          string                 `json:"id"`
	Source      string                 `json:"source"`
	Title       string                 `json:"title"`
	GeneratedAt time.Time              `json:"generated_at"`
	EventCount  int                    `json:"event_count"`
	Blocks      []Block                `json:"blocks"`
	Events      []model.CanonicalEvent `json:"-"`
}

// Count returns how many blocks of kind k the document holds.
func (d *Document) Count(k Kind) int {
	n := 0
	for _, b := range d.Blocks {
		if b.Kind == k {
			n++
		}
	}
	return n
}

// SummaryTable returns the summary table, or nil for an empty calendar.
func (d *Document) SummaryTable() *Table {
	for _, b := range d.Blocks {
		if b.Kind == KindTable {
			return b.Table
		}
	}
	return nil
}
