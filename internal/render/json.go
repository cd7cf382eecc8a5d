package render

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/UncleDan/ics-to-word/internal/document"
	"github.com/UncleDan/ics-to-word/internal/model"
)

// JSON writes the document blocks together with the sorted events.
type JSON struct{}

func (JSON) Format() string      { return "json" }
func (JSON) Extension() string   { return ".json" }
func (JSON) ContentType() string { return "application/json" }

// EventJSON is the wire form of a canonical event. Start and End carry the
// wall clock with a UTC marker that has no zone meaning.
type EventJSON struct {
	UID         string     `json:"uid,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	Start       *time.Time `json:"start,omitempty"`
	End         *time.Time `json:"end,omitempty"`
	AllDay      bool       `json:"all_day"`
	Date        string     `json:"date"`
	StartLabel  string     `json:"start_label"`
	EndLabel    string     `json:"end_label,omitempty"`
	Recurrence  string     `json:"recurrence,omitempty"`
}

type jsonReport struct {
	*document.Document
	Events []EventJSON `json:"events"`
}

func (JSON) Render(ctx context.Context, w io.Writer, doc *document.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{Document: doc, Events: EventsJSON(doc.Events)})
}

// EventsJSON converts canonical events to their wire form.
func EventsJSON(events []model.CanonicalEvent) []EventJSON {
	out := make([]EventJSON, 0, len(events))
	for _, ev := range events {
		je := EventJSON{
			UID:         ev.UID,
			Title:       ev.Title,
			Description: ev.Description,
			Location:    ev.Location,
			Date:        ev.DateLabel,
			StartLabel:  ev.StartLabel,
			EndLabel:    ev.EndLabel,
			Recurrence:  ev.Recurrence,
		}
		if ev.Start != nil {
			t := ev.Start.Wall
			je.Start = &t
			je.AllDay = ev.Start.AllDay
		}
		if ev.End != nil {
			t := ev.End.Wall
			je.End = &t
		}
		out = append(out, je)
	}
	return out
}
