package schedule

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cyp0633/freeslot/interval"
)

// Plan computes the bookable windows left after subtracting every listed
// calendar's busy time from the weekly template.
//
// Busy lookups are independent of each other and run concurrently, but the
// reductions are applied in the order the calendars were given: each
// calendar narrows the free set the next one sees, so the order must stay
// deterministic. A calendar with no busy time is a pass-through. An empty
// result is a valid outcome, not an error.
func Plan(ctx context.Context, src BusySource, calendarIDs []string, opts Options, now time.Time) ([]interval.TimeRange, error) {
	free, err := WorkWindows(opts, now)
	if err != nil {
		return nil, err
	}

	busyLists := make([][]interval.TimeRange, len(calendarIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range calendarIDs {
		g.Go(func() error {
			busy, err := BusyWindows(gctx, src, id, opts, now)
			if err != nil {
				return err
			}
			busyLists[i] = busy
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	minLength := opts.MeetingLength()
	grid := minLength
	for _, busy := range busyLists {
		free = interval.Merge(free, busy, minLength, grid)
	}
	return free, nil
}
