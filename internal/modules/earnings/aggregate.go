// README: Pure aggregation of earnings records over calendar-day windows.
package earnings

import "time"

// WindowStart returns the inclusive lower bound of a window, bucketed by
// calendar day in the platform timezone. The second return is false for
// all_time, which has no lower bound. today ⊆ last_7_days ⊆ last_30_days
// ⊆ all_time by construction.
func WindowStart(w Window, now time.Time, loc *time.Location) (time.Time, bool) {
	local := now.In(loc)
	y, m, d := local.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, loc)
	switch w {
	case WindowToday:
		return dayStart, true
	case WindowLast7Days:
		return dayStart.AddDate(0, 0, -6), true
	case WindowLast30Days:
		return dayStart.AddDate(0, 0, -29), true
	default:
		return time.Time{}, false
	}
}

// Aggregate sums driver and platform shares over the records whose SettledAt
// falls inside the window. Pure and idempotent: it only reads the snapshot it
// is given, so it is safe to run while new records are being appended —
// records appearing after the snapshot simply are not in it.
func Aggregate(records []Record, w Window, now time.Time, loc *time.Location) Totals {
	t := Totals{Window: w}
	start, bounded := WindowStart(w, now, loc)
	for _, r := range records {
		if bounded && r.SettledAt.Before(start) {
			continue
		}
		t.DriverTotal += r.DriverShare.Amount
		t.PlatformTotal += r.PlatformShare.Amount
		t.Count++
	}
	return t
}
