package compliance

import "time"

// Window is the most recently completed evaluation week: Saturday 00:00:00.000
// through Friday 23:59:59.999 in the given zone, always strictly in the past.
//
// A "now" falling on Saturday counts as 7 days since the last completed
// Saturday, never 0, so the current day is never part of the window.
func Window(now time.Time, loc *time.Location) (start, end time.Time) {
	now = now.In(loc)

	daysSinceSaturday := (int(now.Weekday()) + 1) % 7
	if daysSinceSaturday == 0 {
		daysSinceSaturday = 7
	}
	previousSaturday := now.AddDate(0, 0, -daysSinceSaturday)

	startDay := previousSaturday.AddDate(0, 0, -7)
	start = time.Date(startDay.Year(), startDay.Month(), startDay.Day(), 0, 0, 0, 0, loc)

	endDay := previousSaturday.AddDate(0, 0, -1)
	end = time.Date(endDay.Year(), endDay.Month(), endDay.Day(), 23, 59, 59, int(999*time.Millisecond), loc)
	return start, end
}
