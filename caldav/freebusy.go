package caldav

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/cyp0633/freeslot/interval"
)

const periodStamp = "20060102T150405Z"

// decodeCalendars parses an iCalendar body, which may hold several
// VCALENDAR objects back to back. Line endings are normalized first since
// calendar data embedded in an XML response often lost its CRLFs.
func decodeCalendars(body string) ([]*ical.Calendar, error) {
	normalized := strings.ReplaceAll(body, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\n", "\r\n")

	dec := ical.NewDecoder(strings.NewReader(normalized))
	var cals []*ical.Calendar
	for {
		cal, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode icalendar data: %w", err)
		}
		cals = append(cals, cal)
	}
	return cals, nil
}

// parseFreeBusy extracts the busy periods from a free-busy-query response
// body. FREEBUSY properties typed FREE are skipped; BUSY, BUSY-TENTATIVE
// and BUSY-UNAVAILABLE all count as occupied.
func parseFreeBusy(body []byte) ([]interval.TimeRange, error) {
	cals, err := decodeCalendars(string(body))
	if err != nil {
		return nil, err
	}

	var busy []interval.TimeRange
	for _, cal := range cals {
		for _, comp := range cal.Children {
			if comp.Name != ical.CompFreeBusy {
				continue
			}
			for _, prop := range comp.Props.Values(ical.PropFreeBusy) {
				fbType := strings.ToUpper(prop.Params.Get("FBTYPE"))
				if fbType == "FREE" {
					continue
				}
				ranges, err := parsePeriods(prop.Value)
				if err != nil {
					return nil, err
				}
				busy = append(busy, ranges...)
			}
		}
	}
	return busy, nil
}

// parsePeriods parses a comma separated PERIOD list, each entry either
// start/end or start/duration with UTC DATE-TIME values.
func parsePeriods(value string) ([]interval.TimeRange, error) {
	var out []interval.TimeRange
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "/", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed period %q", entry)
		}

		start, err := time.Parse(periodStamp, parts[0])
		if err != nil {
			return nil, fmt.Errorf("malformed period start %q: %w", parts[0], err)
		}

		var end time.Time
		if strings.HasPrefix(parts[1], "P") || strings.HasPrefix(parts[1], "+P") {
			dur, err := parseISODuration(strings.TrimPrefix(parts[1], "+"))
			if err != nil {
				return nil, fmt.Errorf("malformed period duration %q: %w", parts[1], err)
			}
			end = start.Add(dur)
		} else {
			end, err = time.Parse(periodStamp, parts[1])
			if err != nil {
				return nil, fmt.Errorf("malformed period end %q: %w", parts[1], err)
			}
		}

		r, err := interval.New(start, end)
		if err != nil {
			return nil, fmt.Errorf("period %q: %w", entry, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// parseISODuration parses the RFC 5545 duration grammar: PnW or
// PnDTnHnMnS with every part optional. Negative durations are rejected.
func parseISODuration(s string) (time.Duration, error) {
	rest, ok := strings.CutPrefix(s, "P")
	if !ok || rest == "" {
		return 0, fmt.Errorf("invalid duration %q", s)
	}

	unitsDate := map[byte]time.Duration{'W': 7 * 24 * time.Hour, 'D': 24 * time.Hour}
	unitsTime := map[byte]time.Duration{'H': time.Hour, 'M': time.Minute, 'S': time.Second}
	units := unitsDate

	var total time.Duration
	num := 0
	components := 0
	haveDigits := false
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		switch {
		case c >= '0' && c <= '9':
			num = num*10 + int(c-'0')
			haveDigits = true
		case c == 'T':
			if haveDigits {
				return 0, fmt.Errorf("invalid duration %q", s)
			}
			units = unitsTime
		default:
			unit, ok := units[c]
			if !ok || !haveDigits {
				return 0, fmt.Errorf("invalid duration %q", s)
			}
			total += time.Duration(num) * unit
			num = 0
			components++
			haveDigits = false
		}
	}
	if haveDigits || components == 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return total, nil
}
