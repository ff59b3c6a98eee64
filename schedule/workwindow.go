package schedule

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/cyp0633/freeslot/interval"
)

// ErrDegenerateInterval marks a work window that collapsed to zero or
// negative length after lead-time clipping. It indicates a pathological
// configuration and aborts the run.
var ErrDegenerateInterval = errors.New("degenerate work window")

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

// WorkWindows expands the weekly template into concrete ranges covering
// days_forward calendar days starting today, in the construction timezone.
//
// The earliest bookable moment is now plus the configured lead time, pushed
// down to the whole hour. Windows ending at or before that floor are
// dropped; windows straddling it are clipped. The result is sorted by start:
// dates ascend and within-day windows keep their template order (the
// configuration supplies them in non-decreasing start order).
func WorkWindows(opts Options, now time.Time) ([]interval.TimeRange, error) {
	loc, err := time.LoadLocation(opts.LocalTimezone)
	if err != nil {
		return nil, fmt.Errorf("%w: local_timezone: %v", ErrInvalidValue, err)
	}

	now = now.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	horizonEnd := today.AddDate(0, 0, opts.DaysForward)

	lead := now.Add(time.Duration(opts.HoursTillFirstMeeting) * time.Hour)
	floor := time.Date(lead.Year(), lead.Month(), lead.Day(), lead.Hour(), 0, 0, 0, loc)

	// One WEEKLY rule per templated weekday gives the concrete dates inside
	// the horizon; collecting them into a per-date map keeps multi-weekday
	// templates naturally sorted.
	windowsByDate := make(map[time.Time][][]string)
	for token, windows := range opts.Days {
		if len(windows) == 0 {
			continue
		}
		weekday, ok := weekdayByToken[token]
		if !ok {
			return nil, fmt.Errorf("%w: unrecognized weekday %q in days", ErrInvalidValue, token)
		}

		rule, err := rrule.NewRRule(rrule.ROption{
			Freq:      rrule.WEEKLY,
			Dtstart:   today,
			Byweekday: []rrule.Weekday{rruleWeekdays[weekday]},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build recurrence for %s: %w", token, err)
		}

		for _, occurrence := range rule.Between(today, horizonEnd.Add(-time.Second), true) {
			day := occurrence.In(loc)
			date := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
			windowsByDate[date] = windows
		}
	}

	dates := make([]time.Time, 0, len(windowsByDate))
	for date := range windowsByDate {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	var ranges []interval.TimeRange
	for _, date := range dates {
		for _, w := range windowsByDate[date] {
			if len(w) != 2 {
				return nil, fmt.Errorf("%w: window for %s must be a [start, end] pair, got %v", ErrInvalidValue, date.Format("Mon"), w)
			}
			startHour, startMin, err := parseClock(w[0])
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
			}
			endHour, endMin, err := parseClock(w[1])
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
			}

			start := time.Date(date.Year(), date.Month(), date.Day(), startHour, startMin, 0, 0, loc)
			end := time.Date(date.Year(), date.Month(), date.Day(), endHour, endMin, 0, 0, loc)
			if clockMinutes(endHour, endMin) < clockMinutes(startHour, startMin) {
				// Window crosses midnight.
				end = end.AddDate(0, 0, 1)
			}

			if !end.After(floor) {
				continue
			}
			if start.Before(floor) {
				start = floor
			}
			if !start.Before(end) {
				return nil, fmt.Errorf("%w: %s to %s on %s", ErrDegenerateInterval, w[0], w[1], date.Format("2006-01-02"))
			}
			ranges = append(ranges, interval.TimeRange{Start: start, End: end})
		}
	}

	return ranges, nil
}
