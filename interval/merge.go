package interval

import "time"

// Merge subtracts busy from free and returns the remaining bookable ranges.
//
// Both inputs must be sorted by start; busy ranges must additionally be
// mutually non-overlapping (Coalesce establishes this). Whenever a busy range
// cuts into a free range, the surviving tail starts at the busy end rounded
// up to the next multiple of grid measured from the free range's start, so a
// slot never begins before the busy time truly ends. Candidates shorter than
// minLength (compared in whole minutes) are dropped.
//
// Neither input slice is modified; the free range under inspection is held
// in a local register while it is being carved up. Runs in O(len(free) +
// len(busy)).
func Merge(free, busy []TimeRange, minLength, grid time.Duration) []TimeRange {
	out := make([]TimeRange, 0, len(free))

	fi, bi := 0, 0
	var cur TimeRange
	pending := false

	for fi < len(free) {
		if !pending {
			cur = free[fi]
			pending = true
		}

		// Busy ranges ending at or before the current free start are spent.
		for bi < len(busy) && !busy[bi].End.After(cur.Start) {
			bi++
		}

		var candidate TimeRange
		emit := false

		switch {
		case bi == len(busy) || !busy[bi].Start.Before(cur.End):
			// No busy overlap left: the whole free range survives.
			candidate = cur
			emit = true
			fi++
			pending = false

		case !busy[bi].Start.After(cur.Start):
			if !busy[bi].End.Before(cur.End) {
				// Busy covers the free range entirely.
				fi++
				pending = false
				continue
			}
			// Busy eats the head; keep scanning the rounded-up tail.
			next := CeilToGrid(busy[bi].End, cur.Start, grid)
			if next.Before(cur.End) {
				cur.Start = next
			} else {
				fi++
				pending = false
			}
			bi++
			continue

		case !busy[bi].End.Before(cur.End):
			// Busy eats the tail; the head survives.
			candidate = TimeRange{Start: cur.Start, End: busy[bi].Start}
			emit = true
			fi++
			pending = false

		default:
			// Busy sits strictly inside: head survives now, tail is rescanned.
			candidate = TimeRange{Start: cur.Start, End: busy[bi].Start}
			emit = true
			next := CeilToGrid(busy[bi].End, cur.Start, grid)
			if next.Before(cur.End) {
				cur.Start = next
			} else {
				fi++
				pending = false
			}
			bi++
		}

		if emit && wholeMinutes(candidate) >= int64(minLength/time.Minute) {
			out = append(out, candidate)
		}
	}

	return out
}

// wholeMinutes floors the range length to whole minutes.
func wholeMinutes(r TimeRange) int64 {
	return int64(r.End.Sub(r.Start) / time.Minute)
}
