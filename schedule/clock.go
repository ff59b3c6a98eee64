package schedule

import (
	"fmt"
	"strings"
	"time"
)

// clockLayouts are tried in order when parsing a template time of day.
// Covers "9am", "9:30am", "17:00" and a bare hour.
var clockLayouts = []string{"3:04pm", "3pm", "15:04", "15"}

// parseClock parses a time-of-day string from the weekly template and
// returns its hour and minute.
func parseClock(s string) (hour, minute int, err error) {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	for _, layout := range clockLayouts {
		if t, perr := time.Parse(layout, trimmed); perr == nil {
			return t.Hour(), t.Minute(), nil
		}
	}
	return 0, 0, fmt.Errorf("invalid time of day %q", s)
}

// clockMinutes collapses a time of day to minutes since midnight, for
// ordering comparisons only.
func clockMinutes(hour, minute int) int {
	return hour*60 + minute
}
