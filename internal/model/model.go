package model

import "time"

// Instant is a normalized event timestamp. Wall holds the wall-clock
// components of the source value in time.UTC; any zone or offset the
// source carried has been dropped, so two Instants compare by wall clock
// only.
type Instant struct {
	Wall time.Time
	// AllDay is true when the source value was a bare date. Wall is then
	// midnight of that date.
	AllDay bool
}

// Before reports whether i sorts before other.
func (i Instant) Before(other Instant) bool {
	return i.Wall.Before(other.Wall)
}

// CanonicalEvent is the normalized, defaulted representation of one VEVENT.
// It is created once during extraction and never mutated afterwards.
type CanonicalEvent struct {
	UID string // iCalendar UID, passthrough only

	Title       string
	Description string
	Location    string

	// Start / End are nil when the property is absent or unusable.
	Start *Instant
	End   *Instant

	DateLabel  string
	StartLabel string
	EndLabel   string

	// Recurrence is a short human label for the RRULE, if any.
	Recurrence string
}

// HasStart reports whether the event carries a usable start instant.
func (e CanonicalEvent) HasStart() bool {
	return e.Start != nil
}
