package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/freeslot/interval"
	"github.com/cyp0633/freeslot/schedule"
)

func utcOptions() schedule.Options {
	opts := schedule.DefaultOptions()
	opts.LocalTimezone = "UTC"
	opts.ShowTimezone = "UTC"
	return opts
}

func rng(d, h0, m0, h1, m1 int) interval.TimeRange {
	return interval.TimeRange{
		Start: time.Date(2026, time.August, d, h0, m0, 0, 0, time.UTC),
		End:   time.Date(2026, time.August, d, h1, m1, 0, 0, time.UTC),
	}
}

func renderString(t *testing.T, ranges []interval.TimeRange, opts schedule.Options) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, Schedule(&sb, ranges, opts))
	return sb.String()
}

func TestScheduleBasicOutput(t *testing.T) {
	// Mon Aug 24 and Tue Aug 25, 2026.
	out := renderString(t, []interval.TimeRange{
		rng(24, 9, 0, 10, 30),
		rng(24, 11, 0, 17, 0),
		rng(25, 9, 0, 17, 0),
	}, utcOptions())

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Availability for next few days (all PT):", lines[0])
	assert.Equal(t, " * Mon (Aug 24th): 9am - 10:30am, 11am - 5pm", lines[1])
	assert.Equal(t, " * Tue (Aug 25th): 9am - 5pm", lines[2])
}

func TestScheduleOmitsLabelWhenUnset(t *testing.T) {
	opts := utcOptions()
	require.NoError(t, opts.Set("show_timezone_name", ""))

	out := renderString(t, []interval.TimeRange{rng(24, 9, 0, 10, 0)}, opts)
	assert.True(t, strings.HasPrefix(out, "Availability for next few days:\n"))
}

func TestSchedule24HourFormat(t *testing.T) {
	opts := utcOptions()
	opts.Show24Hr = true

	out := renderString(t, []interval.TimeRange{rng(24, 9, 0, 17, 30)}, opts)
	assert.Contains(t, out, "9:00 - 17:30")
}

func TestScheduleNextWeekMarker(t *testing.T) {
	// Fri Aug 28 then Mon Aug 31: week index drops from 4 to 0.
	out := renderString(t, []interval.TimeRange{
		rng(28, 9, 0, 14, 0),
		rng(31, 9, 0, 17, 0),
	}, utcOptions())

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "Fri (Aug 28th)")
	assert.Equal(t, "Next week:", lines[2])
	assert.Contains(t, lines[3], "Mon (Aug 31st)")
}

func TestScheduleSundayWeekStart(t *testing.T) {
	opts := utcOptions()
	opts.WeekStartsOnSunday = true

	// Sat Aug 29 then Sun Aug 30: with a Sunday-start week the index drops
	// from 6 to 0, so Sunday opens a new week.
	out := renderString(t, []interval.TimeRange{
		rng(29, 9, 0, 12, 0),
		rng(30, 9, 0, 12, 0),
	}, opts)
	assert.Contains(t, out, "Next week:")

	// Monday-start weeks put Saturday at 5 and Sunday at 6, no marker.
	out = renderString(t, []interval.TimeRange{
		rng(29, 9, 0, 12, 0),
		rng(30, 9, 0, 12, 0),
	}, utcOptions())
	assert.NotContains(t, out, "Next week:")
}

func TestScheduleEmpty(t *testing.T) {
	out := renderString(t, nil, utcOptions())
	assert.Contains(t, out, "no availability")
}

func TestScheduleDisplayTimezoneConversion(t *testing.T) {
	opts := utcOptions()
	opts.ShowTimezone = "America/Los_Angeles"

	// 16:00 UTC on Aug 24 is 9am PDT.
	out := renderString(t, []interval.TimeRange{rng(24, 16, 0, 17, 0)}, opts)
	assert.Contains(t, out, "9am - 10am")
}

func TestFormatTime(t *testing.T) {
	at := func(h, m int) time.Time {
		return time.Date(2026, time.August, 24, h, m, 0, 0, time.UTC)
	}
	tests := []struct {
		t      time.Time
		show24 bool
		want   string
	}{
		{at(9, 0), false, "9am"},
		{at(9, 5), false, "9:05am"},
		{at(12, 0), false, "12pm"},
		{at(0, 0), false, "12am"},
		{at(13, 30), false, "1:30pm"},
		{at(9, 0), true, "9:00"},
		{at(13, 30), true, "13:30"},
		{at(0, 5), true, "0:05"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatTime(tt.t, tt.show24))
	}
}

func TestOrdinalSuffix(t *testing.T) {
	assert.Equal(t, "st", ordinalSuffix(1))
	assert.Equal(t, "nd", ordinalSuffix(22))
	assert.Equal(t, "rd", ordinalSuffix(3))
	assert.Equal(t, "th", ordinalSuffix(11))
	assert.Equal(t, "th", ordinalSuffix(12))
	assert.Equal(t, "th", ordinalSuffix(13))
	assert.Equal(t, "st", ordinalSuffix(31))
	assert.Equal(t, "th", ordinalSuffix(24))
}
