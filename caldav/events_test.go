package caldav

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/freeslot/interval"
)

var (
	queryFrom = time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC)
	queryTo   = queryFrom.AddDate(0, 0, 14)
)

func wrapEvent(lines ...string) string {
	all := append([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:test-event",
		"DTSTAMP:20260801T000000Z",
	}, lines...)
	all = append(all, "END:VEVENT", "END:VCALENDAR")
	return strings.Join(all, "\r\n") + "\r\n"
}

func TestEventBusyRangesSimpleEvent(t *testing.T) {
	data := wrapEvent(
		"DTSTART:20260824T170000Z",
		"DTEND:20260824T180000Z",
		"SUMMARY:Standup",
	)

	got, err := eventBusyRanges(data, queryFrom, queryTo)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.True(t, got[0].Start.Equal(time.Date(2026, time.August, 24, 17, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.Hour, got[0].Duration())
}

func TestEventBusyRangesDurationEvent(t *testing.T) {
	data := wrapEvent(
		"DTSTART:20260825T090000Z",
		"DURATION:PT45M",
	)

	got, err := eventBusyRanges(data, queryFrom, queryTo)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, 45*time.Minute, got[0].Duration())
}

func TestEventBusyRangesBadDuration(t *testing.T) {
	data := wrapEvent(
		"DTSTART:20260825T090000Z",
		"DURATION:soon",
	)

	_, err := eventBusyRanges(data, queryFrom, queryTo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DURATION")
}

func TestEventBusyRangesAllDayEvent(t *testing.T) {
	data := wrapEvent("DTSTART;VALUE=DATE:20260826")

	got, err := eventBusyRanges(data, queryFrom, queryTo)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, 24*time.Hour, got[0].Duration())
	assert.True(t, got[0].Start.Equal(time.Date(2026, time.August, 26, 0, 0, 0, 0, time.UTC)))
}

func TestEventBusyRangesSkipsTransparentAndCancelled(t *testing.T) {
	for name, extra := range map[string]string{
		"transparent": "TRANSP:TRANSPARENT",
		"cancelled":   "STATUS:CANCELLED",
	} {
		t.Run(name, func(t *testing.T) {
			data := wrapEvent(
				"DTSTART:20260824T170000Z",
				"DTEND:20260824T180000Z",
				extra,
			)
			got, err := eventBusyRanges(data, queryFrom, queryTo)
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestEventBusyRangesOutsideWindow(t *testing.T) {
	data := wrapEvent(
		"DTSTART:20261001T170000Z",
		"DTEND:20261001T180000Z",
	)

	got, err := eventBusyRanges(data, queryFrom, queryTo)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEventBusyRangesRecurring(t *testing.T) {
	data := wrapEvent(
		"DTSTART:20260817T150000Z",
		"DTEND:20260817T153000Z",
		"RRULE:FREQ=WEEKLY;BYDAY=MO,WE",
		"EXDATE:20260826T150000Z",
	)

	got, err := eventBusyRanges(data, queryFrom, queryTo)
	require.NoError(t, err)

	// Mondays 24th and 31st, Wednesdays 26th (excluded) and 2nd.
	require.Len(t, got, 3)
	starts := make([]time.Time, len(got))
	for i, r := range got {
		starts[i] = r.Start
		assert.Equal(t, 30*time.Minute, r.Duration())
	}
	assert.Contains(t, starts, time.Date(2026, time.August, 24, 15, 0, 0, 0, time.UTC))
	assert.Contains(t, starts, time.Date(2026, time.August, 31, 15, 0, 0, 0, time.UTC))
	assert.Contains(t, starts, time.Date(2026, time.September, 2, 15, 0, 0, 0, time.UTC))
	assert.NotContains(t, starts, time.Date(2026, time.August, 26, 15, 0, 0, 0, time.UTC))
}

func TestEventBusyRangesRecurringWithCount(t *testing.T) {
	data := wrapEvent(
		"DTSTART:20260824T100000Z",
		"DTEND:20260824T110000Z",
		"RRULE:FREQ=DAILY;COUNT=3",
	)

	got, err := eventBusyRanges(data, queryFrom, queryTo)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestEventBusyRangesOverrideInstance(t *testing.T) {
	data := wrapEvent(
		"DTSTART:20260825T110000Z",
		"DTEND:20260825T120000Z",
		"RECURRENCE-ID:20260825T100000Z",
		"RRULE:FREQ=DAILY",
	)

	// An override with RECURRENCE-ID counts once, never expanded.
	got, err := eventBusyRanges(data, queryFrom, queryTo)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Start.Equal(time.Date(2026, time.August, 25, 11, 0, 0, 0, time.UTC)))
}

func TestEventBusyRangesStraddlingStart(t *testing.T) {
	// Started before the window, still running at its start.
	data := wrapEvent(
		"DTSTART:20260823T230000Z",
		"DTEND:20260824T010000Z",
	)

	got, err := eventBusyRanges(data, queryFrom, queryTo)
	require.NoError(t, err)
	require.Len(t, got, 1)

	want := interval.TimeRange{
		Start: time.Date(2026, time.August, 23, 23, 0, 0, 0, time.UTC),
		End:   time.Date(2026, time.August, 24, 1, 0, 0, 0, time.UTC),
	}
	assert.True(t, got[0].Start.Equal(want.Start))
	assert.True(t, got[0].End.Equal(want.End))
}

func TestEventBusyRangesZeroLengthSkipped(t *testing.T) {
	data := wrapEvent("DTSTART:20260824T170000Z")

	got, err := eventBusyRanges(data, queryFrom, queryTo)
	require.NoError(t, err)
	assert.Empty(t, got)
}
