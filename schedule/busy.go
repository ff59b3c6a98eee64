package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/cyp0633/freeslot/interval"
)

// BusySource reports the occupied ranges of one calendar over a query
// window. Implementations query an external calendar service; errors are
// fatal for the run and are not retried here.
type BusySource interface {
	Busy(ctx context.Context, calendarID string, from, to time.Time) ([]interval.TimeRange, error)
}

// BusyWindows fetches the busy ranges of one calendar over the planning
// horizon, widens each by the configured spare padding and returns them
// sorted and coalesced. Padding can make neighboring ranges overlap, so
// coalescing here is what keeps the merge sweep's non-overlap precondition
// intact.
func BusyWindows(ctx context.Context, src BusySource, calendarID string, opts Options, now time.Time) ([]interval.TimeRange, error) {
	loc, err := time.LoadLocation(opts.LocalTimezone)
	if err != nil {
		return nil, fmt.Errorf("%w: local_timezone: %v", ErrInvalidValue, err)
	}

	from := now.In(loc)
	to := from.AddDate(0, 0, opts.DaysForward)

	raw, err := src.Busy(ctx, calendarID, from, to)
	if err != nil {
		return nil, fmt.Errorf("busy lookup for calendar %q: %w", calendarID, err)
	}

	before := time.Duration(opts.MeetingSpareBefore) * time.Minute
	after := time.Duration(opts.MeetingSpareAfter) * time.Minute

	padded := make([]interval.TimeRange, 0, len(raw))
	for _, r := range raw {
		padded = append(padded, interval.TimeRange{
			Start: r.Start.Add(-before),
			End:   r.End.Add(after),
		})
	}

	return interval.Coalesce(padded), nil
}
