package caldav

import (
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"github.com/cyp0633/freeslot/interval"
)

// eventBusyRanges derives the busy ranges a calendar object contributes to
// [from, to). Transparent and cancelled events occupy no time. Recurring
// events are expanded with their RRULE, honoring EXDATE exclusions; an
// instance override carrying RECURRENCE-ID stands on its own.
func eventBusyRanges(data string, from, to time.Time) ([]interval.TimeRange, error) {
	cals, err := decodeCalendars(data)
	if err != nil {
		return nil, err
	}

	var busy []interval.TimeRange
	for _, cal := range cals {
		for _, event := range cal.Events() {
			ranges, err := expandEvent(event.Component, from, to)
			if err != nil {
				return nil, err
			}
			busy = append(busy, ranges...)
		}
	}
	return busy, nil
}

func expandEvent(comp *ical.Component, from, to time.Time) ([]interval.TimeRange, error) {
	if transparent(comp) || cancelled(comp) {
		return nil, nil
	}

	dtstart := comp.Props.Get(ical.PropDateTimeStart)
	if dtstart == nil {
		return nil, nil
	}
	start, err := comp.Props.DateTime(ical.PropDateTimeStart, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("bad DTSTART: %w", err)
	}

	allDay := strings.EqualFold(dtstart.Params.Get("VALUE"), "DATE")
	duration, err := eventDuration(comp, start, allDay)
	if err != nil {
		return nil, err
	}
	if duration <= 0 {
		return nil, nil
	}

	rule := comp.Props.Get(ical.PropRecurrenceRule)
	if rule == nil || comp.Props.Get(ical.PropRecurrenceID) != nil {
		r := interval.TimeRange{Start: start, End: start.Add(duration)}
		if r.Start.Before(to) && r.End.After(from) {
			return []interval.TimeRange{r}, nil
		}
		return nil, nil
	}

	exdates, err := exceptionDates(comp)
	if err != nil {
		return nil, err
	}

	// Teambition's Between is inclusive of its start, so back it up by the
	// event duration to catch occurrences already running at from.
	set, err := rrule.StrToRRuleSet(fmt.Sprintf("DTSTART:%s\nRRULE:%s",
		start.UTC().Format(periodStamp), rule.Value))
	if err != nil {
		return nil, fmt.Errorf("failed to parse RRULE %q: %w", rule.Value, err)
	}

	var busy []interval.TimeRange
	for _, occurrence := range set.Between(from.Add(-duration), to, true) {
		if excluded(occurrence, exdates) {
			continue
		}
		r := interval.TimeRange{Start: occurrence, End: occurrence.Add(duration)}
		if r.Start.Before(to) && r.End.After(from) {
			busy = append(busy, r)
		}
	}
	return busy, nil
}

func transparent(comp *ical.Component) bool {
	prop := comp.Props.Get(ical.PropTransparency)
	return prop != nil && strings.EqualFold(prop.Value, "TRANSPARENT")
}

func cancelled(comp *ical.Component) bool {
	prop := comp.Props.Get(ical.PropStatus)
	return prop != nil && strings.EqualFold(prop.Value, "CANCELLED")
}

// eventDuration works out how long one occurrence lasts: DTEND wins,
// then DURATION, then the whole day for date-valued events.
func eventDuration(comp *ical.Component, start time.Time, allDay bool) (time.Duration, error) {
	if comp.Props.Get(ical.PropDateTimeEnd) != nil {
		end, err := comp.Props.DateTime(ical.PropDateTimeEnd, time.UTC)
		if err != nil {
			return 0, fmt.Errorf("bad DTEND: %w", err)
		}
		return end.Sub(start), nil
	}
	if prop := comp.Props.Get(ical.PropDuration); prop != nil {
		dur, err := prop.Duration()
		if err != nil {
			return 0, fmt.Errorf("bad DURATION: %w", err)
		}
		return dur, nil
	}
	if allDay {
		return 24 * time.Hour, nil
	}
	return 0, nil
}

var exdateLayouts = []string{periodStamp, "20060102T150405", "20060102"}

// exceptionDates collects every EXDATE value. Values without a timezone
// designator are read as UTC; the query window is UTC as well so this only
// misestimates events from calendars that mix local-time recurrence with
// exceptions, which in practice carry a TZID on both.
func exceptionDates(comp *ical.Component) ([]time.Time, error) {
	var out []time.Time
	for _, prop := range comp.Props.Values(ical.PropExceptionDates) {
		for _, token := range strings.Split(prop.Value, ",") {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			var parsed time.Time
			var err error
			for _, layout := range exdateLayouts {
				parsed, err = time.Parse(layout, token)
				if err == nil {
					break
				}
			}
			if err != nil {
				return nil, fmt.Errorf("bad EXDATE %q", token)
			}
			out = append(out, parsed)
		}
	}
	return out, nil
}

func excluded(t time.Time, exdates []time.Time) bool {
	for _, exdate := range exdates {
		if t.Equal(exdate) {
			return true
		}
		// A date-only exception knocks out every occurrence on that day.
		if exdate.Hour() == 0 && exdate.Minute() == 0 && exdate.Second() == 0 {
			day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			if day.Equal(exdate) {
				return true
			}
		}
	}
	return false
}
