package domain

import "time"

const secondsPerDay = 86400

// DaysActive counts the whole calendar days (UTC) within [from, to] during
// which the resource was active. Any partial day counts as a full day, and a
// calendar day with several activation/deactivation transitions counts
// exactly once. A resource with no deactivation recorded for an activation is
// treated as active through the end of the window. An inverted window yields
// 0, as does a resource that was never activated. The result is never
// negative, however irregular the histories.
func DaysActive(r *Resource, from, to time.Time) int {
	if !r.HasBeenActivated() {
		return 0
	}

	fromSec := from.UTC().Unix()
	toSec := to.UTC().Unix()
	if fromSec > toSec {
		return 0
	}

	activations := filterWindow(r.ActivationTimestamps, fromSec, toSec)
	deactivations := filterWindow(r.DeactivationTimestamps, fromSec, toSec)

	// The resource was already active when the window opened: either every
	// recorded activation predates the window, or the first in-window
	// deactivation has no matching in-window activation. Seed a synthetic
	// activation at the later of creation time and window start, since the
	// resource cannot have been active before it existed.
	if len(activations) == 0 || (len(deactivations) > 0 && deactivations[0] < activations[0]) {
		seed := r.CreatedAt.UTC().Unix()
		if fromSec > seed {
			seed = fromSec
		}
		activations = append([]int64{seed}, activations...)
	}

	days := 0
	for i, opened := range activations {
		closed := toSec
		if i < len(deactivations) {
			closed = deactivations[i]
		}

		// Unsorted histories can pair a deactivation before its activation;
		// such an interval contributes nothing.
		if closed < opened {
			continue
		}

		if i > 0 {
			prevClosed := toSec
			if i-1 < len(deactivations) {
				prevClosed = deactivations[i-1]
			}
			// The previous interval closed on this interval's closing day;
			// that day is already counted.
			if sameCalendarDay(prevClosed, closed) {
				continue
			}
		}

		days += int(ceilDiv(closed-opened, secondsPerDay))

		if i > 0 && sameCalendarDay(activations[i-1], opened) {
			days--
		}
	}

	if days < 0 {
		days = 0
	}
	return days
}

// filterWindow keeps the instants inside [from, to] inclusive, preserving
// insertion order. The histories are not guaranteed sorted.
func filterWindow(ts []int64, from, to int64) []int64 {
	out := make([]int64, 0, len(ts))
	for _, t := range ts {
		if t >= from && t <= to {
			out = append(out, t)
		}
	}
	return out
}

func sameCalendarDay(a, b int64) bool {
	dayA := time.Unix(a, 0).UTC().Truncate(24 * time.Hour)
	dayB := time.Unix(b, 0).UTC().Truncate(24 * time.Hour)
	return dayA.Equal(dayB)
}

func ceilDiv(n, d int64) int64 {
	q := n / d
	if n%d != 0 && (n > 0) == (d > 0) {
		q++
	}
	return q
}
