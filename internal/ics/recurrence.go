package ics

import (
	"fmt"
	"strings"

	"github.com/teambition/rrule-go"
)

// DescribeRRule turns an RRULE value into a short label such as "Weekly",
// "Every 2 days" or "Monthly, 6 times". Unparseable rules yield "".
func DescribeRRule(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "RRULE:"), "rrule:")
	if raw == "" {
		return ""
	}

	opt, err := rrule.StrToROption(raw)
	if err != nil {
		return ""
	}

	unit, adverb := frequencyWords(opt.Freq)
	if unit == "" {
		return ""
	}

	label := adverb
	if opt.Interval > 1 {
		label = fmt.Sprintf("Every %d %ss", opt.Interval, unit)
	}

	switch {
	case opt.Count > 0:
		label += fmt.Sprintf(", %d times", opt.Count)
	case !opt.Until.IsZero():
		label += ", until " + opt.Until.Format("02/01/2006")
	}
	return label
}

func frequencyWords(f rrule.Frequency) (unit, adverb string) {
	switch f {
	case rrule.YEARLY:
		return "year", "Yearly"
	case rrule.MONTHLY:
		return "month", "Monthly"
	case rrule.WEEKLY:
		return "week", "Weekly"
	case rrule.DAILY:
		return "day", "Daily"
	case rrule.HOURLY:
		return "hour", "Hourly"
	case rrule.MINUTELY:
		return "minute", "Every minute"
	case rrule.SECONDLY:
		return "second", "Every second"
	default:
		return "", ""
	}
}
