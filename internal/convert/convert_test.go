package convert

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UncleDan/ics-to-word/internal/clock"
	"github.com/UncleDan/ics-to-word/internal/document"
	"github.com/UncleDan/ics-to-word/internal/ics"
)

func newTestConverter() *Converter {
	return New(Options{Clock: &clock.MockClock{FixedNow: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}})
}

func crlf(lines ...string) string {
	return strings.Join(lines, "\r\n") + "\r\n"
}

const scenario = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:ten\r\n" +
	"SUMMARY:Ten o'clock\r\n" +
	"DTSTART:20240301T100000\r\n" +
	"DTEND:20240301T110000\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:nine\r\n" +
	"SUMMARY:Nine o'clock\r\n" +
	"DTSTART:20240301T090000\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:none\r\n" +
	"SUMMARY:Someday\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestConvert_Scenario(t *testing.T) {
	doc, err := newTestConverter().Convert(context.Background(), ics.Source{Location: "/tmp/team.ics"}, scenario)
	require.NoError(t, err)

	assert.Equal(t, "CALENDAR - TEAM", doc.Title)
	assert.Equal(t, 3, doc.EventCount)

	var headers, titles []string
	for _, b := range doc.Blocks {
		switch b.Kind {
		case document.KindDateHeader:
			headers = append(headers, b.Text)
		case document.KindEventTitle:
			titles = append(titles, b.Text)
		}
	}
	assert.Equal(t, []string{"DATE UNSPECIFIED", "01/03/2024"}, headers)
	assert.Equal(t, []string{"• Someday", "• Nine o'clock", "• Ten o'clock"}, titles)

	table := doc.SummaryTable()
	require.NotNil(t, table)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, doc.Count(document.KindEventTitle), len(table.Rows))
	assert.Equal(t, "Someday", table.Rows[0][2])
}

func TestConvert_EmptyCalendar(t *testing.T) {
	text := crlf("BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//test//EN", "END:VCALENDAR")
	doc, err := newTestConverter().Convert(context.Background(), ics.Source{Location: "empty.ics"}, text)
	require.NoError(t, err)

	assert.Equal(t, 0, doc.EventCount)
	assert.Nil(t, doc.SummaryTable())
	assert.Equal(t, 1, doc.Count(document.KindTitle))
	assert.Equal(t, 1, doc.Count(document.KindGenerated))
	assert.Zero(t, doc.Count(document.KindSummaryHeader))
}

func TestConvert_TimezoneWallClockKept(t *testing.T) {
	text := crlf(
		"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//test//EN",
		"BEGIN:VEVENT", "UID:tz", "SUMMARY:Call",
		"DTSTART;TZID=America/New_York:20240601T140000",
		"END:VEVENT",
		"END:VCALENDAR",
	)
	events, err := newTestConverter().Events(ics.Source{}, text)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "14:00", events[0].StartLabel)
}

func TestConvertBytes_Errors(t *testing.T) {
	c := newTestConverter()
	src := ics.Source{Location: "broken.ics"}

	doc, err := c.ConvertBytes(context.Background(), src, []byte("garbage without structure\r\n"))
	assert.Nil(t, doc)
	assert.ErrorIs(t, err, ics.ErrParse)
	assert.Contains(t, err.Error(), "broken.ics")

	doc, err = c.ConvertBytes(context.Background(), src, []byte{0, 0, 0})
	assert.Nil(t, doc)
	assert.ErrorIs(t, err, ics.ErrDecode)
}

func TestConvert_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestConverter().Convert(ctx, ics.Source{}, scenario)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEventsBytes(t *testing.T) {
	events, err := newTestConverter().EventsBytes(ics.Source{}, []byte("\xEF\xBB\xBF"+scenario))
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "Someday", events[0].Title)
	assert.Equal(t, "Nine o'clock", events[1].Title)
	assert.Equal(t, "Ten o'clock", events[2].Title)
}
