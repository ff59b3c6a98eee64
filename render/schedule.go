// Package render writes the computed schedule and the auxiliary listings
// to a terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cyp0633/freeslot/interval"
	"github.com/cyp0633/freeslot/schedule"
)

// Schedule prints the free ranges grouped one line per calendar day, in the
// display timezone. A "Next week:" separator precedes the first day whose
// week-relative index drops below its predecessor's.
func Schedule(w io.Writer, ranges []interval.TimeRange, opts schedule.Options) error {
	loc, err := time.LoadLocation(opts.ShowTimezone)
	if err != nil {
		return fmt.Errorf("%w: show_timezone: %v", schedule.ErrInvalidValue, err)
	}

	label := ""
	if name, ok := opts.TimezoneLabel().Get(); ok {
		label = fmt.Sprintf(" (all %s)", name)
	}
	fmt.Fprintf(w, "Availability for next few days%s:\n", label)

	if len(ranges) == 0 {
		fmt.Fprintln(w, "   no availability")
		return nil
	}

	type cluster struct {
		day    time.Time
		ranges []interval.TimeRange
	}
	var clusters []cluster
	for _, r := range ranges {
		start := r.Start.In(loc)
		day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
		if n := len(clusters); n > 0 && clusters[n-1].day.Equal(day) {
			clusters[n-1].ranges = append(clusters[n-1].ranges, r)
			continue
		}
		clusters = append(clusters, cluster{day: day, ranges: []interval.TimeRange{r}})
	}

	lastIndex := weekIndex(clusters[0].day, opts.WeekStartsOnSunday)
	for _, c := range clusters {
		index := weekIndex(c.day, opts.WeekStartsOnSunday)
		if index < lastIndex {
			fmt.Fprintln(w, "Next week:")
		}
		lastIndex = index

		spans := make([]string, 0, len(c.ranges))
		for _, r := range c.ranges {
			spans = append(spans, fmt.Sprintf("%s - %s",
				formatTime(r.Start.In(loc), opts.Show24Hr),
				formatTime(r.End.In(loc), opts.Show24Hr)))
		}
		fmt.Fprintf(w, " * %-14s %s\n", dayLabel(c.day), strings.Join(spans, ", "))
	}
	return nil
}

// weekIndex maps a day to its position inside the configured week, 0 being
// the week's first day.
func weekIndex(t time.Time, sundayStart bool) int {
	index := (int(t.Weekday()) + 6) % 7
	if sundayStart {
		index = (index + 1) % 7
	}
	return index
}

// dayLabel renders "Mon (Aug 24th):".
func dayLabel(day time.Time) string {
	return fmt.Sprintf("%s (%s %d%s):",
		day.Format("Mon"), day.Format("Jan"), day.Day(), ordinalSuffix(day.Day()))
}

func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}

// formatTime renders a time of day: 24-hour "17:30", or 12-hour with no
// leading zero, lowercase am/pm and the minutes omitted on the whole hour.
func formatTime(t time.Time, show24hr bool) string {
	if show24hr {
		return fmt.Sprintf("%d:%02d", t.Hour(), t.Minute())
	}

	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	suffix := "am"
	if t.Hour() >= 12 {
		suffix = "pm"
	}
	if t.Minute() != 0 {
		return fmt.Sprintf("%d:%02d%s", hour, t.Minute(), suffix)
	}
	return fmt.Sprintf("%d%s", hour, suffix)
}
