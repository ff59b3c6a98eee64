// Package interval implements the time-interval algebra used to compute
// meeting availability: half-open time ranges, busy-range coalescing, grid
// rounding and the free/busy subtraction sweep.
package interval

import (
	"fmt"
	"sort"
	"time"
)

// TimeRange is a half-open interval [Start, End). Both endpoints carry their
// own location. A valid range is strictly non-empty (Start < End).
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// New builds a TimeRange and rejects empty or inverted ranges.
func New(start, end time.Time) (TimeRange, error) {
	if !start.Before(end) {
		return TimeRange{}, fmt.Errorf("invalid time range: start %s is not before end %s", start, end)
	}
	return TimeRange{Start: start, End: end}, nil
}

// Duration returns the length of the range.
func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Overlaps reports whether two half-open ranges intersect.
func (r TimeRange) Overlaps(o TimeRange) bool {
	return r.Start.Before(o.End) && o.Start.Before(r.End)
}

// Contains reports whether t falls inside the half-open range.
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

func (r TimeRange) String() string {
	return fmt.Sprintf("[%s, %s)", r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
}

// CeilToGrid returns the smallest time >= t that is congruent to reference
// modulo grid, i.e. t rounded up to the next grid boundary measured from
// reference. A non-positive grid returns t unchanged.
func CeilToGrid(t, reference time.Time, grid time.Duration) time.Time {
	if grid <= 0 {
		return t
	}
	rem := reference.Sub(t) % grid
	if rem < 0 {
		rem += grid
	}
	return t.Add(rem)
}

// Coalesce sorts ranges by start and folds overlapping or adjacent ranges
// into a single non-overlapping ascending list. The input slice is not
// modified. Busy ranges go through here before the merge sweep, which relies
// on busy starts being monotonic and non-overlapping.
func Coalesce(ranges []TimeRange) []TimeRange {
	if len(ranges) == 0 {
		return nil
	}

	sorted := make([]TimeRange, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].End.Before(sorted[j].End)
		}
		return sorted[i].Start.Before(sorted[j].Start)
	})

	out := make([]TimeRange, 0, len(sorted))
	cur := sorted[0]
	for _, r := range sorted[1:] {
		if r.Start.After(cur.End) {
			out = append(out, cur)
			cur = r
			continue
		}
		if r.End.After(cur.End) {
			cur.End = r.End
		}
	}
	return append(out, cur)
}
