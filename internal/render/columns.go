package render

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/UncleDan/ics-to-word/internal/document"
)

// columnWidths returns the display width of the widest cell in each
// column, header included.
func columnWidths(t *document.Table) []int {
	widths := make([]int, len(t.Header))
	measure := func(row []string) {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(t.Header)
	for _, row := range t.Rows {
		measure(row)
	}
	return widths
}

// pad right-fills s with spaces to the given display width.
func pad(s string, width int) string {
	if gap := width - runewidth.StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
