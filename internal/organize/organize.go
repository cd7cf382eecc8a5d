// Package organize orders canonical events chronologically and groups the
// ordered sequence by date label.
package organize

import (
	"slices"

	"github.com/UncleDan/ics-to-word/internal/model"
)

// Group is a maximal run of consecutive sorted events sharing a DateLabel.
type Group struct {
	DateLabel string
	Events    []model.CanonicalEvent
}

// Sort returns a new slice ordered by start wall clock. Events without a
// start sort before every dated event. The sort is stable, so ties keep
// extraction order, and sorting an already sorted slice is a no-op.
func Sort(events []model.CanonicalEvent) []model.CanonicalEvent {
	out := slices.Clone(events)
	slices.SortStableFunc(out, Compare)
	return out
}

// Compare orders a before b by start instant, undated first.
func Compare(a, b model.CanonicalEvent) int {
	switch {
	case a.Start == nil && b.Start == nil:
		return 0
	case a.Start == nil:
		return -1
	case b.Start == nil:
		return 1
	default:
		return a.Start.Wall.Compare(b.Start.Wall)
	}
}

// IsSorted reports whether events are already in Sort order.
func IsSorted(events []model.CanonicalEvent) bool {
	return slices.IsSortedFunc(events, Compare)
}

// Groups folds a sorted slice into date groups without reordering. Two
// events with the same label separated by a different label form two
// groups.
func Groups(sorted []model.CanonicalEvent) []Group {
	var groups []Group
	for i, ev := range sorted {
		if i == 0 || ev.DateLabel != sorted[i-1].DateLabel {
			groups = append(groups, Group{DateLabel: ev.DateLabel})
		}
		last := &groups[len(groups)-1]
		last.Events = append(last.Events, ev)
	}
	return groups
}
