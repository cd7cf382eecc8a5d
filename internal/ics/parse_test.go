package ics

import (
	"strings"
	"testing"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// calendar joins lines with CRLF and wraps them in a VCALENDAR.
func calendar(lines ...string) string {
	all := append([]string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//ics-to-word//test//EN"}, lines...)
	all = append(all, "END:VCALENDAR", "")
	return strings.Join(all, "\r\n")
}

func TestParse_EmptyBody(t *testing.T) {
	_, err := Parse(Source{Location: "empty.ics"}, "  \r\n ")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
	assert.Contains(t, err.Error(), "empty.ics")
}

func TestParse_Corrupt(t *testing.T) {
	_, err := Parse(Source{Location: "bad.ics"}, "this is not a calendar\r\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)

	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestExtract_FiltersToEvents(t *testing.T) {
	text := calendar(
		"BEGIN:VTIMEZONE",
		"TZID:Europe/Rome",
		"BEGIN:STANDARD",
		"DTSTART:19701025T030000",
		"TZOFFSETFROM:+0200",
		"TZOFFSETTO:+0100",
		"END:STANDARD",
		"END:VTIMEZONE",
		"BEGIN:VEVENT",
		"UID:one@example.com",
		"SUMMARY:First",
		"DTSTART;TZID=Europe/Rome:20240301T100000",
		"DTEND;TZID=Europe/Rome:20240301T110000",
		"LOCATION:Sala A",
		"BEGIN:VALARM",
		"ACTION:DISPLAY",
		"TRIGGER:-PT15M",
		"END:VALARM",
		"END:VEVENT",
		"BEGIN:VTODO",
		"UID:todo@example.com",
		"SUMMARY:Not an event",
		"END:VTODO",
		"BEGIN:VEVENT",
		"UID:one@example.com",
		"SUMMARY:Second with same UID",
		"END:VEVENT",
	)

	events, err := ParseEvents(Source{Location: "team.ics"}, text, newTestNormalizer())
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "First", events[0].Title)
	assert.Equal(t, "Sala A", events[0].Location)
	assert.Equal(t, "10:00", events[0].StartLabel)
	assert.Equal(t, "11:00", events[0].EndLabel)
	assert.Equal(t, "01/03/2024", events[0].DateLabel)

	assert.Equal(t, "Second with same UID", events[1].Title)
	assert.Equal(t, events[0].UID, events[1].UID)
	assert.Nil(t, events[1].Start)
}

func TestExtract_EmptyCalendar(t *testing.T) {
	events, err := ParseEvents(Source{}, calendar(), newTestNormalizer())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestExtract_AllDayAndUTC(t *testing.T) {
	text := calendar(
		"BEGIN:VEVENT",
		"UID:holiday",
		"SUMMARY:Holiday",
		"DTSTART;VALUE=DATE:20241225",
		"DTEND;VALUE=DATE:20241226",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:call",
		"SUMMARY:Call",
		"DTSTART:20241224T180000Z",
		"RRULE:FREQ=YEARLY",
		"END:VEVENT",
	)
	events, err := ParseEvents(Source{}, text, newTestNormalizer())
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "All day", events[0].StartLabel)
	assert.True(t, events[0].Start.AllDay)
	assert.Equal(t, "18:00", events[1].StartLabel)
	assert.Equal(t, "", events[1].EndLabel)
	assert.Equal(t, "Yearly", events[1].Recurrence)
}

func TestWalk_VisitsNestedComponents(t *testing.T) {
	text := calendar(
		"BEGIN:VEVENT",
		"UID:a",
		"BEGIN:VALARM",
		"ACTION:DISPLAY",
		"TRIGGER:-PT5M",
		"END:VALARM",
		"END:VEVENT",
	)
	cal, err := Parse(Source{}, text)
	require.NoError(t, err)

	var kinds []string
	require.NoError(t, Walk(cal, func(c ical.Component) error {
		switch c.(type) {
		case *ical.VEvent:
			kinds = append(kinds, "VEVENT")
		case *ical.VAlarm:
			kinds = append(kinds, "VALARM")
		default:
			kinds = append(kinds, "OTHER")
		}
		return nil
	}))
	assert.Equal(t, []string{"VEVENT", "VALARM"}, kinds)
}

func TestExtract_NilCalendar(t *testing.T) {
	_, err := Extract(Source{Location: "x.ics"}, nil, newTestNormalizer())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtract)
}

func TestParse_Truncated(t *testing.T) {
	text := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nBEGIN:VEVENT\r\nSUMMARY:Cut off\r\n"
	_, err := Parse(Source{Location: "cut.ics"}, text)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
	assert.Contains(t, err.Error(), "END:VCALENDAR")
}

func TestParseEvents_BackslashesSurviveDecoding(t *testing.T) {
	text := calendar(
		"BEGIN:VEVENT",
		"UID:paths",
		`SUMMARY:Share C:\\new\\tmp`,
		`DESCRIPTION:path C:\\notes\\N1 done\nsecond line`,
		`LOCATION:a\\,b`,
		"END:VEVENT",
	)
	events, err := ParseEvents(Source{}, text, newTestNormalizer())
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, `Share C:\new\tmp`, events[0].Title)
	assert.Equal(t, `path C:\notes\N1 done second line`, events[0].Description)
	assert.Equal(t, `a\,b`, events[0].Location)
}
