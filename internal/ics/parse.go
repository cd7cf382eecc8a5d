package ics

import (
	"errors"
	"fmt"
	"strings"

	ical "github.com/arran4/golang-ical"

	appLog "github.com/UncleDan/ics-to-word/internal/log"
	"github.com/UncleDan/ics-to-word/internal/model"
)

// maxDepth bounds component nesting; real calendars nest two levels
// (VCALENDAR > VEVENT > VALARM).
const maxDepth = 32

// Parse parses decoded calendar text. A blank body or a container the
// library rejects is a ParseError.
func Parse(src Source, text string) (*ical.Calendar, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ParseError{Source: src, Err: errors.New("empty ICS body")}
	}
	if err := checkContainer(text); err != nil {
		return nil, &ParseError{Source: src, Err: err}
	}

	cal, err := ical.ParseCalendar(strings.NewReader(text))
	if err != nil {
		appLog.Error("ics parse failed", err, "id", src.ID, "location", redactLocation(src))
		return nil, &ParseError{Source: src, Err: err}
	}
	return cal, nil
}

// checkContainer requires the text to open with BEGIN:VCALENDAR and to
// contain a matching END:VCALENDAR, so truncated files are rejected
// rather than yielding a partial event list.
func checkContainer(text string) error {
	first := ""
	hasEnd := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if first == "" {
			first = line
		}
		if strings.EqualFold(line, "END:VCALENDAR") {
			hasEnd = true
		}
	}
	if !strings.EqualFold(first, "BEGIN:VCALENDAR") {
		return errors.New("malformed calendar: missing BEGIN:VCALENDAR")
	}
	if !hasEnd {
		return errors.New("malformed calendar: missing END:VCALENDAR")
	}
	return nil
}

// Walk visits every component of cal depth-first in document order,
// including sub-components such as VALARM. It stops at the first error
// returned by fn.
func Walk(cal *ical.Calendar, fn func(c ical.Component) error) error {
	if cal == nil {
		return errors.New("nil calendar")
	}
	for _, c := range cal.Components {
		if err := walk(c, fn, 1); err != nil {
			return err
		}
	}
	return nil
}

func walk(c ical.Component, fn func(c ical.Component) error, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("components nested deeper than %d levels", maxDepth)
	}
	if c == nil {
		return errors.New("nil component")
	}
	if err := fn(c); err != nil {
		return err
	}
	for _, sub := range c.SubComponents() {
		if err := walk(sub, fn, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Extract returns one CanonicalEvent per VEVENT in the order encountered.
// Every other component kind is skipped. UIDs are not deduplicated.
func Extract(src Source, cal *ical.Calendar, norm *Normalizer) ([]model.CanonicalEvent, error) {
	events := make([]model.CanonicalEvent, 0)
	skipped := 0

	err := Walk(cal, func(c ical.Component) error {
		ve, ok := c.(*ical.VEvent)
		if !ok {
			skipped++
			return nil
		}
		events = append(events, norm.Normalize(rawEvent(ve)))
		return nil
	})
	if err != nil {
		return nil, &ExtractionError{Source: src, Err: err}
	}

	appLog.Info("ics extract completed", "id", src.ID, "event_count", len(events), "skipped_components", skipped)
	return events, nil
}

// ParseEvents runs Parse and Extract on decoded calendar text.
func ParseEvents(src Source, text string, norm *Normalizer) ([]model.CanonicalEvent, error) {
	cal, err := Parse(src, text)
	if err != nil {
		return nil, err
	}
	return Extract(src, cal, norm)
}

func rawEvent(ve *ical.VEvent) RawEvent {
	return RawEvent{
		UID:         field(ve, ical.ComponentPropertyUniqueId),
		Summary:     field(ve, ical.ComponentPropertySummary),
		Description: field(ve, ical.ComponentPropertyDescription),
		Location:    field(ve, ical.ComponentPropertyLocation),
		DTStart:     field(ve, ical.ComponentPropertyDtStart),
		DTEnd:       field(ve, ical.ComponentPropertyDtEnd),
		RRule:       field(ve, ical.ComponentPropertyRrule),
	}
}

func field(ve *ical.VEvent, prop ical.ComponentProperty) *Field {
	p := ve.GetProperty(prop)
	if p == nil {
		return nil
	}
	return &Field{Value: p.Value, Params: p.ICalParameters}
}
