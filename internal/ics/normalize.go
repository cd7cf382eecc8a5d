package ics

import (
	"errors"
	"strings"
	"time"

	appLog "github.com/UncleDan/ics-to-word/internal/log"
	"github.com/UncleDan/ics-to-word/internal/model"
)

// Field is one present property value with its parameters. For TEXT
// properties Value is already decoded text; golang-ical removes the
// escapes while parsing.
type Field struct {
	Value  string
	Params map[string][]string
}

// Param returns the first value of a property parameter, case-insensitively.
func (f *Field) Param(name string) string {
	if f == nil {
		return ""
	}
	for k, vs := range f.Params {
		if strings.EqualFold(k, name) && len(vs) > 0 {
			return vs[0]
		}
	}
	return ""
}

// RawEvent is the property view of one VEVENT. A nil field means the
// property was absent.
type RawEvent struct {
	UID         *Field
	Summary     *Field
	Description *Field
	Location    *Field
	DTStart     *Field
	DTEnd       *Field
	RRule       *Field
}

// Normalizer turns RawEvents into CanonicalEvents. It never fails: every
// missing or malformed field resolves to its documented default.
type Normalizer struct {
	Labels model.Labels
}

// NewNormalizer returns a Normalizer with labels defaulted.
func NewNormalizer(labels model.Labels) *Normalizer {
	return &Normalizer{Labels: labels.WithDefaults()}
}

func (n *Normalizer) Normalize(raw RawEvent) model.CanonicalEvent {
	l := n.Labels
	ev := model.CanonicalEvent{
		UID:         textValue(raw.UID),
		Title:       textValue(raw.Summary),
		Description: CollapseWhitespace(textValue(raw.Description)),
		Location:    textValue(raw.Location),
		DateLabel:   l.DateUnspecified,
	}
	if ev.Title == "" {
		ev.Title = l.Untitled
	}

	if raw.DTStart != nil {
		inst, err := ParseInstant(raw.DTStart)
		if err != nil {
			appLog.Debug("dtstart unusable; treating as absent", "uid", ev.UID, "value", raw.DTStart.Value, "reason", err.Error())
		} else {
			ev.Start = &inst
			ev.DateLabel = inst.Wall.Format(l.DateLayout)
			ev.StartLabel = n.timeLabel(inst)
		}
	}

	if raw.DTEnd != nil {
		inst, err := ParseInstant(raw.DTEnd)
		if err != nil {
			appLog.Debug("dtend unusable; treating as absent", "uid", ev.UID, "value", raw.DTEnd.Value, "reason", err.Error())
		} else {
			ev.End = &inst
			ev.EndLabel = n.timeLabel(inst)
		}
	}

	if raw.RRule != nil {
		ev.Recurrence = DescribeRRule(raw.RRule.Value)
	}

	return ev
}

func (n *Normalizer) timeLabel(inst model.Instant) string {
	if inst.AllDay {
		return n.Labels.AllDay
	}
	return inst.Wall.Format(n.Labels.TimeLayout)
}

// CollapseWhitespace trims s and replaces every run of whitespace,
// newlines included, with a single space. It is idempotent.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func textValue(f *Field) string {
	if f == nil {
		return ""
	}
	return strings.TrimSpace(f.Value)
}

var errEmptyTime = errors.New("empty time value")

// wall-clock layouts tried in order; the zone part, if any, is discarded.
var dateTimeLayouts = []string{
	"20060102T150405",
	"20060102T1504",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

var dateLayouts = []string{
	"20060102",
	"2006-01-02",
}

// ParseInstant reads a DTSTART/DTEND style value and keeps only its
// wall-clock components. TZID parameters, a trailing Z and numeric offsets
// are stripped without converting the time.
func ParseInstant(f *Field) (model.Instant, error) {
	v := strings.TrimSpace(f.Value)
	if v == "" {
		return model.Instant{}, errEmptyTime
	}

	dateOnly := strings.EqualFold(f.Param("VALUE"), "DATE")
	if !strings.ContainsAny(v, "Tt ") {
		dateOnly = true
	}

	if dateOnly {
		// VALUE=DATE with a time part still counts as all-day; keep the date.
		datePart := v
		if i := strings.IndexAny(v, "Tt "); i > 0 {
			datePart = v[:i]
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, datePart); err == nil {
				return model.Instant{Wall: t, AllDay: true}, nil
			}
		}
		return model.Instant{}, errors.New("unrecognized date value")
	}

	wall := stripZone(v)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, wall); err == nil {
			return model.Instant{Wall: t}, nil
		}
	}
	return model.Instant{}, errors.New("unrecognized date-time value")
}

// stripZone removes a trailing Z, ±hh:mm, ±hhmm or ±hh designator and any
// fractional seconds.
func stripZone(v string) string {
	v = strings.TrimSuffix(strings.TrimSuffix(v, "Z"), "z")
	t := strings.IndexAny(v, "Tt ")
	if t < 0 {
		return v
	}
	timePart := v[t+1:]
	if i := strings.IndexAny(timePart, "+-"); i >= 0 {
		timePart = timePart[:i]
	}
	if i := strings.IndexByte(timePart, '.'); i >= 0 {
		timePart = timePart[:i]
	}
	return v[:t] + "T" + timePart
}
